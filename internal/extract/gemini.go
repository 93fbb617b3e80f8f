package extract

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the hosted model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiExtractor is the hosted-API backend. It sends the whole document
// (PDF or image) inline with the prompt in a single call; Gemini consumes
// multi-page PDFs natively, so the document is treated as one unit and page
// attribution is left to the model's output.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates the hosted backend. Credentials come from the
// environment (GEMINI_API_KEY or Application Default Credentials).
func NewGeminiExtractor(ctx context.Context, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini extractor: create client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract implements the Extractor interface.
func (g *GeminiExtractor) Extract(ctx context.Context, doc *Document, docType DocType) (*Result, error) {
	resolved := docType.Resolve(doc)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: promptFor(resolved)},
				{
					InlineData: &genai.Blob{
						MIMEType: doc.MIMEType(),
						Data:     doc.Bytes,
					},
				},
			},
		},
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return nil, fmt.Errorf("gemini extractor: generate content: %w", err)
	}

	result := &Result{
		PageCount:      1,
		ProcessingTime: elapsed,
		Model:          g.model,
	}

	rawText := resp.Text()
	records, decodeErr := DecodeRecords(rawText)
	if decodeErr != nil {
		// A malformed response is a page-level failure, not a hard error:
		// the run continues with zero predictions for this document.
		result.Errors = append(result.Errors, PageError{
			Page:       1,
			Error:      decodeErr.Error(),
			RawSnippet: snippet(rawText),
		})
		return result, nil
	}

	result.Transactions = records
	return result, nil
}
