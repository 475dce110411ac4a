package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	internal_errors "github.com/payflowhq/payflow/internal"
	"github.com/payflowhq/payflow/internal/request"
)

// InvoiceData is what invoice extraction yields: just enough to prefill a
// payment request form.
type InvoiceData struct {
	RecipientName string `json:"recipient_name"`
	AmountCents   int64  `json:"amount_cents"`
	Description   string `json:"description"`
}

// Extractor is the generative-model boundary. All methods are best effort;
// a failure never blocks the payment workflow.
type Extractor interface {
	ExtractInvoice(ctx context.Context, imageData []byte, mimeType string) (*InvoiceData, error)
	SuggestCategory(ctx context.Context, description string, categories []string) (string, error)
	Commentary(ctx context.Context, prompt string) (string, error)
	Close() error
}

type Service struct {
	extractor Extractor
	logger    *slog.Logger
}

// NewService accepts a nil extractor, in which case every enrichment call
// reports the feature as disabled.
func NewService(extractor Extractor, logger *slog.Logger) *Service {
	return &Service{
		extractor: extractor,
		logger:    logger,
	}
}

func (s *Service) Enabled() bool {
	return s.extractor != nil
}

func (s *Service) ExtractInvoice(ctx context.Context, imageData []byte, mimeType string) (*InvoiceData, error) {
	if !s.Enabled() {
		return nil, internal_errors.NewValidationError("AI enrichment is not configured", internal_errors.ErrCodeEnrichmentDisabled)
	}

	data, err := s.extractor.ExtractInvoice(ctx, imageData, mimeType)
	if err != nil {
		s.logger.Error("invoice extraction failed", "error", err)
		return nil, internal_errors.NewExternalError("could not extract invoice data", internal_errors.ErrCodeEnrichmentFailed, err)
	}
	return data, nil
}

func (s *Service) SuggestCategory(ctx context.Context, description string, categories []string) (string, error) {
	if !s.Enabled() {
		return "", internal_errors.NewValidationError("AI enrichment is not configured", internal_errors.ErrCodeEnrichmentDisabled)
	}

	category, err := s.extractor.SuggestCategory(ctx, description, categories)
	if err != nil {
		s.logger.Error("category suggestion failed", "error", err)
		return "", internal_errors.NewExternalError("could not suggest a category", internal_errors.ErrCodeEnrichmentFailed, err)
	}
	return category, nil
}

// RiskCommentary produces a short free-text risk note about one request.
func (s *Service) RiskCommentary(ctx context.Context, req *request.Request) (string, error) {
	if !s.Enabled() {
		return "", internal_errors.NewValidationError("AI enrichment is not configured", internal_errors.ErrCodeEnrichmentDisabled)
	}

	prompt := fmt.Sprintf(
		"You are reviewing a payment request for approval risk. Respond with a short plain-text note, two sentences at most.\n"+
			"Amount: %d cents BRL\nDescription: %s\nCategory: %s\nRecipient: %s\nStatus: %s\n",
		req.AmountCents, req.Description, req.Category, req.Recipient.Name, req.Status)

	note, err := s.extractor.Commentary(ctx, prompt)
	if err != nil {
		s.logger.Error("risk commentary failed", "request_id", req.ID, "error", err)
		return "", internal_errors.NewExternalError("could not generate risk commentary", internal_errors.ErrCodeEnrichmentFailed, err)
	}
	return note, nil
}

// ExecutiveSummary produces a free-text digest over a set of requests.
func (s *Service) ExecutiveSummary(ctx context.Context, requests []*request.Request) (string, error) {
	if !s.Enabled() {
		return "", internal_errors.NewValidationError("AI enrichment is not configured", internal_errors.ErrCodeEnrichmentDisabled)
	}

	summary, err := s.extractor.Commentary(ctx, buildSummaryPrompt(requests))
	if err != nil {
		s.logger.Error("executive summary failed", "count", len(requests), "error", err)
		return "", internal_errors.NewExternalError("could not generate summary", internal_errors.ErrCodeEnrichmentFailed, err)
	}
	return summary, nil
}

func buildSummaryPrompt(requests []*request.Request) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following payment requests for an executive audience. ")
	sb.WriteString("Mention total volume, anything unusual, and how many are still waiting. ")
	sb.WriteString("Respond with a short plain-text paragraph.\n\n")
	for _, req := range requests {
		fmt.Fprintf(&sb, "- #%d %s: %d cents BRL, status %s, category %s\n",
			req.ID, req.Description, req.AmountCents, req.Status, req.Category)
	}
	return sb.String()
}
