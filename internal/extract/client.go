package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ktuntum/statement-ocr/internal/document"
)

// Extractor performs exactly one request/response exchange with the
// document-understanding model and produces a validated transaction
// collection, or fails. The concrete provider is swappable for tests.
type Extractor interface {
	Extract(ctx context.Context, doc *document.Document) ([]Transaction, error)
}

// extractionTemperature keeps the model's output variance low. The
// extraction is still not guaranteed deterministic.
const extractionTemperature float32 = 0.1

// GeminiExtractor is the Gemini-backed Extractor implementation.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates the Gemini client. A missing API key fails
// here, before any network activity.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiExtractor: create genai client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract sends the encoded document plus the fixed instruction and
// output schema to Gemini in a single call, then decodes the textual
// response into transactions. No retry, no partial-result recovery.
func (e *GeminiExtractor) Extract(ctx context.Context, doc *document.Document) ([]Transaction, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: doc.MediaType,
						Data:     doc.Data,
					},
				},
				{Text: buildPrompt(doc.Pages)},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(extractionTemperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("Extract: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, ErrEmptyResponse
	}

	txs, err := decodeTransactions(rawText)
	if err != nil {
		return nil, fmt.Errorf("Extract: %w", err)
	}

	return txs, nil
}

var _ Extractor = (*GeminiExtractor)(nil)
