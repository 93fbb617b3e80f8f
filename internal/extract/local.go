package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/receipt-eval/internal/eval"
	"github.com/dvloznov/receipt-eval/internal/jobs"
	"github.com/dvloznov/receipt-eval/internal/jobs/inmemory"
)

// DefaultLocalModel is the model identifier reported for local runs when the
// inference server does not declare one.
const DefaultLocalModel = "qwen2-vl-2b"

// defaultPageRetries is how many times a page job is retried after a
// transport failure before it becomes a page error.
const defaultPageRetries = 2

// LocalExtractor drives an accelerator-bound inference server running on the
// same machine, one page image per request. Pages are rendered up front and
// fanned out across a worker pool so a multi-page statement keeps every
// in-process model replica busy.
type LocalExtractor struct {
	endpoint   string
	httpClient *http.Client
	renderer   PageRenderer
	workers    int
	model      string

	// Device is an optional accelerator hint ("cpu", "cuda", "mps")
	// forwarded with each request. Servers pinned to one device ignore it.
	Device string

	// MaxRetries bounds per-page retries on transport failures. Decode
	// failures are never retried; the model would return the same text.
	MaxRetries int
}

// NewLocalExtractor creates a local backend for the given inference server
// endpoint. workers bounds the number of concurrent page requests; it should
// match the number of model replicas the server hosts.
func NewLocalExtractor(endpoint string, workers int, renderer PageRenderer, model string) *LocalExtractor {
	if renderer == nil {
		renderer = NewPopplerRenderer()
	}
	if workers < 1 {
		workers = 1
	}
	if model == "" {
		model = DefaultLocalModel
	}
	return &LocalExtractor{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		renderer:   renderer,
		workers:    workers,
		model:      model,
		MaxRetries: defaultPageRetries,
	}
}

// generateRequest is the inference server's request body.
type generateRequest struct {
	Prompt    string `json:"prompt"`
	ImagePNG  []byte `json:"image_png"` // base64-encoded by encoding/json
	MaxTokens int    `json:"max_tokens"`
	Device    string `json:"device,omitempty"`
}

// generateResponse is the inference server's response body.
type generateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// pageResult carries one worker's outcome back to the collector.
type pageResult struct {
	page    int
	records []eval.Record
	pageErr *PageError
}

// Extract implements the Extractor interface.
func (l *LocalExtractor) Extract(ctx context.Context, doc *Document, docType DocType) (*Result, error) {
	start := time.Now()
	resolved := docType.Resolve(doc)

	pages, err := l.renderer.RenderPages(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("local extractor: %w", err)
	}

	results := make(chan pageResult, len(pages))
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(len(pages), l.workers, store)

	handler := func(ctx context.Context, job jobs.Job) error {
		pj, ok := job.(*jobs.ExtractPageJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %s", job.GetType())
		}
		res, err := l.extractPage(ctx, pj, resolved)
		if err != nil {
			// Transport failure: let the queue retry the page. Once the
			// attempts are exhausted it degrades to a page error so the
			// collector still sees every page exactly once.
			if pj.RetryCount < pj.MaxRetries {
				return err
			}
			results <- pageResult{
				page:    pj.Page,
				pageErr: &PageError{Page: pj.Page, Error: err.Error()},
			}
			return err
		}
		results <- res
		return nil
	}
	if err := queue.Start(ctx, handler); err != nil {
		return nil, fmt.Errorf("local extractor: start workers: %w", err)
	}
	defer queue.Stop(context.Background())

	for i, img := range pages {
		job := &jobs.ExtractPageJob{
			Document:   doc.Path,
			Page:       i + 1,
			DocType:    string(resolved),
			Image:      img,
			MaxRetries: l.MaxRetries,
		}
		if err := queue.PublishExtractPage(ctx, job); err != nil {
			return nil, fmt.Errorf("local extractor: publish page %d: %w", i+1, err)
		}
	}

	collected := make([]pageResult, 0, len(pages))
	for range pages {
		select {
		case res := <-results:
			collected = append(collected, res)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Workers finish in arbitrary order; restore document order so repeated
	// runs over the same file produce identical transaction lists.
	sort.Slice(collected, func(i, j int) bool { return collected[i].page < collected[j].page })

	var (
		transactions []eval.Record
		pageErrors   []PageError
	)
	for _, res := range collected {
		if res.pageErr != nil {
			pageErrors = append(pageErrors, *res.pageErr)
			continue
		}
		transactions = append(transactions, res.records...)
	}

	return &Result{
		Transactions:   transactions,
		Errors:         pageErrors,
		PageCount:      len(pages),
		ProcessingTime: time.Since(start).Seconds(),
		Model:          l.model,
	}, nil
}

// extractPage sends one page image through the inference server and decodes
// the model output. A transport failure is returned as an error so the caller
// can retry; a decode failure is final and becomes a page error result.
func (l *LocalExtractor) extractPage(ctx context.Context, job *jobs.ExtractPageJob, docType DocType) (pageResult, error) {
	text, err := l.generate(ctx, promptFor(docType), job.Image)
	if err != nil {
		return pageResult{}, fmt.Errorf("page %d: %w", job.Page, err)
	}

	records, err := DecodeRecords(text)
	if err != nil {
		return pageResult{
			page: job.Page,
			pageErr: &PageError{
				Page:       job.Page,
				Error:      err.Error(),
				RawSnippet: snippet(text),
			},
		}, nil
	}

	if docType == DocTypeBankStatement {
		for i := range records {
			records[i].SetPage(job.Page)
		}
	}

	return pageResult{page: job.Page, records: records}, nil
}

// generate performs one inference request and returns the raw model text.
func (l *LocalExtractor) generate(ctx context.Context, prompt string, image []byte) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Prompt:    prompt,
		ImagePNG:  image,
		MaxTokens: 1536,
		Device:    l.Device,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference server returned %d: %s", resp.StatusCode, snippet(string(raw)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return decoded.Text, nil
}

var _ Extractor = (*LocalExtractor)(nil)
