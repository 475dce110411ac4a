package enrichment

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/payflowhq/payflow/internal/auth"
	"github.com/payflowhq/payflow/internal/request"
	"github.com/payflowhq/payflow/internal/transport"
	"github.com/payflowhq/payflow/pkg/logger"
)

const maxInvoiceUploadBytes = 10 << 20

// RequestsAPI is the slice of the request service the enrichment surface
// reads from. Visibility rules stay with the request service.
type RequestsAPI interface {
	GetByID(actor *auth.User, id int64) (*request.Request, error)
	List(actor *auth.User, filter request.ListFilter) ([]*request.Request, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  *Service
	Requests RequestsAPI
}

func NewHandler(svc *Service, requests RequestsAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Requests:    requests,
	}
}

// ExtractInvoice handles POST /ai/invoice-extraction with a multipart
// "invoice" file field.
func (h *Handler) ExtractInvoice(w http.ResponseWriter, r *http.Request) {
	if !h.ensureEnabled(w) {
		return
	}

	if err := r.ParseMultipartForm(maxInvoiceUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("invoice")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invoice file is required")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxInvoiceUploadBytes))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "could not read invoice file")
		return
	}

	data, err := h.Service.ExtractInvoice(r.Context(), imageData, header.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.Error("ExtractInvoice: failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, data)
}

// SuggestCategory handles POST /ai/category-suggestion
func (h *Handler) SuggestCategory(w http.ResponseWriter, r *http.Request) {
	if !h.ensureEnabled(w) {
		return
	}

	var body struct {
		Description string   `json:"description"`
		Categories  []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Description == "" {
		h.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}

	category, err := h.Service.SuggestCategory(r.Context(), body.Description, body.Categories)
	if err != nil {
		h.Logger.Error("SuggestCategory: failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"category": category})
}

// RiskCommentary handles GET /ai/requests/{id}/risk
func (h *Handler) RiskCommentary(w http.ResponseWriter, r *http.Request) {
	if !h.ensureEnabled(w) {
		return
	}

	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := h.Requests.GetByID(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	note, err := h.Service.RiskCommentary(r.Context(), req)
	if err != nil {
		h.Logger.Error("RiskCommentary: failed", "request_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"commentary": note})
}

// ExecutiveSummary handles GET /ai/summary over the requests visible to
// the caller.
func (h *Handler) ExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	if !h.ensureEnabled(w) {
		return
	}

	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requests, err := h.Requests.List(actor, request.ListFilter{
		Status: r.URL.Query().Get("status"),
		Month:  r.URL.Query().Get("month"),
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	summary, err := h.Service.ExecutiveSummary(r.Context(), requests)
	if err != nil {
		h.Logger.Error("ExecutiveSummary: failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *Handler) ensureEnabled(w http.ResponseWriter) bool {
	if !h.Service.Enabled() {
		h.WriteError(w, http.StatusServiceUnavailable, "AI enrichment is not configured")
		return false
	}
	return true
}
