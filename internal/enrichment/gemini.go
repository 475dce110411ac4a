package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash"

const invoiceExtractionPrompt = `Extract the following fields from this invoice and respond with a JSON object only:
{"recipient_name": string, "amount_cents": integer (total amount in centavos of BRL), "description": string (one line, what the invoice is for)}
If a field cannot be determined, use an empty string or 0.`

// GeminiExtractor implements the Extractor interface against Google Gemini.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiExtractor(apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = defaultModel
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiExtractor{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *GeminiExtractor) ExtractInvoice(ctx context.Context, imageData []byte, mimeType string) (*InvoiceData, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	format := strings.TrimPrefix(mimeType, "image/")
	if format == mimeType {
		format = "png"
	}

	parts := []genai.Part{
		genai.ImageData(format, imageData),
		genai.Text(invoiceExtractionPrompt),
	}

	text, err := g.generate(ctx, parts...)
	if err != nil {
		return nil, err
	}

	data, err := parseInvoiceJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing invoice data: %w", err)
	}
	return data, nil
}

func (g *GeminiExtractor) SuggestCategory(ctx context.Context, description string, categories []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Given this payment description, pick the single best matching category from the list. Respond with the category name only.\nDescription: %s\nCategories: %s",
		description, strings.Join(categories, ", "))

	text, err := g.generate(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *GeminiExtractor) Commentary(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	text, err := g.generate(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}

func (g *GeminiExtractor) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}
	return responseText.String(), nil
}
