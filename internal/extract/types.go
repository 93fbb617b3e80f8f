// Package extract defines the extractor collaborator boundary: backends that
// turn a scanned document into candidate transaction records. The evaluation
// core never branches on which backend produced a result.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/receipt-eval/internal/eval"
)

// DocType hints which prompt and parsing rules a backend should apply.
type DocType string

const (
	DocTypeReceipt       DocType = "receipt"
	DocTypeBankStatement DocType = "bank_statement"
	DocTypeAuto          DocType = "auto"
)

// Resolve maps the auto hint to a concrete type based on the document: PDFs
// default to bank statements, single images to receipts.
func (d DocType) Resolve(doc *Document) DocType {
	if d != DocTypeAuto {
		return d
	}
	if doc.IsPDF() {
		return DocTypeBankStatement
	}
	return DocTypeReceipt
}

// Document is a file handed to an extractor backend.
type Document struct {
	Path  string
	Bytes []byte
}

// LoadDocument reads a document file from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", path, err)
	}
	return &Document{Path: path, Bytes: data}, nil
}

// Name returns the base filename.
func (d *Document) Name() string {
	return filepath.Base(d.Path)
}

// IsPDF reports whether the document is a PDF by extension.
func (d *Document) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(d.Path), ".pdf")
}

// MIMEType returns the MIME type implied by the file extension.
func (d *Document) MIMEType() string {
	switch strings.ToLower(filepath.Ext(d.Path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// PageError records a failure on a single page. Pages erroring never prevents
// transactions from other pages being included and scored.
type PageError struct {
	Page       int    `json:"page"`
	Error      string `json:"error"`
	RawSnippet string `json:"raw,omitempty"`
}

// Result is what every backend returns: the candidate transactions
// (page-tagged when the document has multiple pages), per-page errors, the
// page count, the backend's own processing time and an identifier for the
// model that produced the predictions.
type Result struct {
	Transactions   []eval.Record `json:"transactions"`
	Errors         []PageError   `json:"errors,omitempty"`
	PageCount      int           `json:"page_count"`
	ProcessingTime float64       `json:"processing_time_s"`
	Model          string        `json:"model"`
}

// Extractor is the contract consumed by the evaluation orchestrator.
type Extractor interface {
	// Extract runs the backend on one document. Partial failure is not an
	// error: page-level problems are reported in Result.Errors and the
	// remaining pages' transactions are still returned. A non-nil error
	// means the backend produced nothing usable at all.
	Extract(ctx context.Context, doc *Document, docType DocType) (*Result, error)
}
