// Package runner orchestrates evaluation: it feeds documents through an
// extraction backend, matches the predictions against ground truth and rolls
// the scores up per file and per dataset.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-eval/internal/eval"
	"github.com/dvloznov/receipt-eval/internal/extract"
)

// Runner evaluates documents with a single extraction backend.
type Runner struct {
	extractor extract.Extractor
	opts      eval.MatchOptions
	log       zerolog.Logger
}

// New creates a runner around the given backend.
func New(extractor extract.Extractor, opts eval.MatchOptions, log zerolog.Logger) *Runner {
	return &Runner{extractor: extractor, opts: opts, log: log}
}

// EvaluateFile runs the backend on one document and scores the output against
// the ground-truth file at gtPath.
func (r *Runner) EvaluateFile(ctx context.Context, docPath, gtPath string, docType extract.DocType) (*FileResult, error) {
	groundTruth, err := LoadGroundTruth(gtPath)
	if err != nil {
		return nil, fmt.Errorf("EvaluateFile: %w", err)
	}

	doc, err := extract.LoadDocument(docPath)
	if err != nil {
		return nil, fmt.Errorf("EvaluateFile: %w", err)
	}

	r.log.Info().Str("file", doc.Name()).Str("doc_type", string(docType.Resolve(doc))).Msg("evaluating")

	start := time.Now()
	extracted, err := r.extractor.Extract(ctx, doc, docType)
	if err != nil {
		return nil, fmt.Errorf("EvaluateFile: extract %q: %w", docPath, err)
	}
	elapsed := time.Since(start).Seconds()

	for _, pageErr := range extracted.Errors {
		r.log.Warn().Str("file", doc.Name()).Int("page", pageErr.Page).Str("error", pageErr.Error).Msg("page failed")
	}

	matches := eval.MatchTransactions(extracted.Transactions, groundTruth, r.opts)
	metrics := eval.ComputeMetrics(matches, len(groundTruth))

	pageCount := extracted.PageCount
	if pageCount < 1 {
		pageCount = 1
	}

	result := &FileResult{
		File:                docPath,
		Model:               extracted.Model,
		PageCount:           pageCount,
		Predicted:           len(extracted.Transactions),
		GroundTruth:         len(groundTruth),
		Matched:             metrics.MatchedCount,
		Precision:           metrics.Precision,
		Recall:              metrics.Recall,
		F1:                  metrics.F1,
		DateAccuracy:        metrics.DateAccuracy,
		DescriptionAccuracy: metrics.DescriptionAccuracy,
		AmountAccuracy:      metrics.AmountAccuracy,
		AmountMAE:           metrics.AmountMAE,
		TotalTime:           elapsed,
		TimePerPage:         elapsed / float64(pageCount),
		Matches:             matches,
		Errors:              extracted.Errors,
	}

	r.log.Info().
		Str("file", doc.Name()).
		Float64("f1", result.F1).
		Float64("amount_accuracy", result.AmountAccuracy).
		Float64("time_s", result.TotalTime).
		Msg("scored")

	return result, nil
}

// EvaluateDataset discovers document/ground-truth pairs under dir and
// evaluates each one. A file that fails to evaluate is recorded and skipped;
// the run continues and the aggregate covers the files that succeeded.
func (r *Runner) EvaluateDataset(ctx context.Context, dir string, docType extract.DocType) (*DatasetResult, error) {
	pairs, skipped, err := DiscoverPairs(dir)
	if err != nil {
		return nil, fmt.Errorf("EvaluateDataset: %w", err)
	}
	for _, gt := range skipped {
		r.log.Warn().Str("ground_truth", gt).Msg("no companion document, skipping")
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("EvaluateDataset: no document/ground-truth pairs under %q", dir)
	}

	start := time.Now()
	result := &DatasetResult{}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileResult, err := r.EvaluateFile(ctx, pair.Document, pair.GroundTruth, docType)
		if err != nil {
			r.log.Error().Str("file", pair.Document).Err(err).Msg("evaluation failed")
			result.Failed = append(result.Failed, FileFailure{File: pair.Document, Error: err.Error()})
			continue
		}
		result.Files = append(result.Files, *fileResult)
		if result.Model == "" {
			result.Model = fileResult.Model
		}
	}

	result.FileCount = len(result.Files)
	result.Aggregate = computeAggregate(result.Files)
	result.TotalTime = time.Since(start).Seconds()

	r.log.Info().
		Int("files", result.FileCount).
		Int("failed", len(result.Failed)).
		Float64("f1", result.Aggregate.F1).
		Float64("time_s", result.TotalTime).
		Msg("dataset evaluated")

	return result, nil
}
