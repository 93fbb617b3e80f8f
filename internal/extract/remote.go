package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/receipt-eval/internal/eval"
)

// RetryConfig configures exponential backoff for the remote backend, tuned
// for serverless GPU cold starts.
type RetryConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64 // 0.0 to 1.0, fraction of delay to randomize
}

// DefaultRetryConfig is the backoff used when none is supplied.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialDelay:   2 * time.Second,
	MaxDelay:       30 * time.Second,
	BackoffFactor:  2.0,
	JitterFraction: 0.3,
}

// RemoteExtractor talks to the GPU inference service over HTTP. The service
// does its own PDF rasterization and page-parallel extraction; this client
// just uploads the document and decodes the structured response.
type RemoteExtractor struct {
	endpoint   string
	httpClient *http.Client
	retry      RetryConfig
}

// NewRemoteExtractor creates a client for the given service endpoint.
func NewRemoteExtractor(endpoint string, timeout time.Duration) *RemoteExtractor {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &RemoteExtractor{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryConfig,
	}
}

// remoteResponse mirrors the service's JSON response body.
type remoteResponse struct {
	Transactions   []map[string]any `json:"transactions"`
	Errors         []PageError      `json:"errors"`
	PageCount      int              `json:"page_count"`
	ProcessingTime float64          `json:"processing_time_s"`
	Model          string           `json:"model"`
	GPU            string           `json:"gpu"`
}

// HealthCheck verifies the service is reachable before a run starts.
func (r *RemoteExtractor) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("remote extractor: build health request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote extractor: health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote extractor: health check returned %d", resp.StatusCode)
	}
	return nil
}

// Extract implements the Extractor interface.
func (r *RemoteExtractor) Extract(ctx context.Context, doc *Document, docType DocType) (*Result, error) {
	start := time.Now()

	var decoded remoteResponse
	err := r.withRetry(ctx, func(ctx context.Context) error {
		return r.postExtract(ctx, doc, docType, &decoded)
	})
	if err != nil {
		return nil, err
	}

	transactions := make([]eval.Record, 0, len(decoded.Transactions))
	for _, tx := range decoded.Transactions {
		transactions = append(transactions, eval.Record(tx))
	}

	pageCount := decoded.PageCount
	if pageCount < 1 {
		pageCount = 1
	}
	model := decoded.Model
	if model == "" {
		model = "remote"
	}

	return &Result{
		Transactions: transactions,
		Errors:       decoded.Errors,
		PageCount:    pageCount,
		// Report wall-clock time as seen from this side, matching how the
		// other backends are timed.
		ProcessingTime: time.Since(start).Seconds(),
		Model:          model,
	}, nil
}

func (r *RemoteExtractor) postExtract(ctx context.Context, doc *Document, docType DocType, out *remoteResponse) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", doc.Name())
	if err != nil {
		return fmt.Errorf("remote extractor: create form file: %w", err)
	}
	if _, err := fw.Write(doc.Bytes); err != nil {
		return fmt.Errorf("remote extractor: write form file: %w", err)
	}
	if err := mw.WriteField("doc_type", string(docType)); err != nil {
		return fmt.Errorf("remote extractor: write doc_type field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("remote extractor: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/extract", &body)
	if err != nil {
		return fmt.Errorf("remote extractor: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote extractor: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("remote extractor: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote extractor: service returned %d: %s", resp.StatusCode, snippet(string(raw)))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("remote extractor: decode response: %w", err)
	}
	return nil
}

// withRetry runs fn with exponential backoff plus jitter until it succeeds,
// the context is cancelled, or retries are exhausted.
func (r *RemoteExtractor) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	cfg := r.retry
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
			delay = math.Min(delay, float64(cfg.MaxDelay))
			delay += delay * cfg.JitterFraction * rand.Float64()

			select {
			case <-time.After(time.Duration(delay)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("remote extractor: retries exhausted: %w", lastErr)
}
