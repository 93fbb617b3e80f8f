package runner

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dvloznov/receipt-eval/internal/eval"
	"github.com/dvloznov/receipt-eval/internal/extract"
)

// FileResult is the scored outcome of one document evaluated against its
// ground-truth file.
type FileResult struct {
	File                string              `json:"file"`
	Model               string              `json:"model"`
	PageCount           int                 `json:"page_count"`
	Predicted           int                 `json:"predicted"`
	GroundTruth         int                 `json:"ground_truth"`
	Matched             int                 `json:"matched"`
	Precision           float64             `json:"precision"`
	Recall              float64             `json:"recall"`
	F1                  float64             `json:"f1"`
	DateAccuracy        float64             `json:"date_accuracy"`
	DescriptionAccuracy float64             `json:"description_accuracy"`
	AmountAccuracy      float64             `json:"amount_accuracy"`
	AmountMAE           float64             `json:"amount_mae"`
	TotalTime           float64             `json:"total_time_s"`
	TimePerPage         float64             `json:"time_per_page_s"`
	Matches             []eval.MatchResult  `json:"matches,omitempty"`
	Errors              []extract.PageError `json:"errors,omitempty"`
}

// FileFailure records a document that could not be evaluated at all, for
// example when its ground truth does not parse or the backend returned
// nothing usable.
type FileFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Aggregate holds unweighted averages over the successfully evaluated files.
// Every file counts equally regardless of its transaction count, so a noisy
// hundred-row statement cannot drown out a batch of receipts.
type Aggregate struct {
	Precision           float64 `json:"precision"`
	Recall              float64 `json:"recall"`
	F1                  float64 `json:"f1"`
	DateAccuracy        float64 `json:"date_accuracy"`
	DescriptionAccuracy float64 `json:"description_accuracy"`
	AmountAccuracy      float64 `json:"amount_accuracy"`
	AmountMAE           float64 `json:"amount_mae"`
}

// DatasetResult is the outcome of evaluating a directory of documents.
type DatasetResult struct {
	Model     string        `json:"model"`
	FileCount int           `json:"file_count"`
	Files     []FileResult  `json:"files"`
	Failed    []FileFailure `json:"failed,omitempty"`
	Aggregate Aggregate     `json:"aggregate"`
	TotalTime float64       `json:"total_time_s"`
}

// computeAggregate averages per-file metrics without weighting.
func computeAggregate(files []FileResult) Aggregate {
	if len(files) == 0 {
		return Aggregate{}
	}
	var agg Aggregate
	for _, f := range files {
		agg.Precision += f.Precision
		agg.Recall += f.Recall
		agg.F1 += f.F1
		agg.DateAccuracy += f.DateAccuracy
		agg.DescriptionAccuracy += f.DescriptionAccuracy
		agg.AmountAccuracy += f.AmountAccuracy
		agg.AmountMAE += f.AmountMAE
	}
	n := float64(len(files))
	agg.Precision /= n
	agg.Recall /= n
	agg.F1 /= n
	agg.DateAccuracy /= n
	agg.DescriptionAccuracy /= n
	agg.AmountAccuracy /= n
	agg.AmountMAE /= n
	return agg
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("WriteJSON: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}
