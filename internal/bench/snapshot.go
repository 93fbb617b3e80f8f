// Package bench maintains the extraction quality benchmark: a current
// snapshot, an append-only run history, a generated markdown report and the
// threshold gate CI runs against the snapshot.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dvloznov/receipt-eval/internal/runner"
)

// Tracked metric keys. Thresholds and trend reporting cover these four;
// everything else in a metric set is informational.
const (
	MetricF1                  = "f1_score"
	MetricAmountAccuracy      = "amount_accuracy"
	MetricDateAccuracy        = "date_accuracy"
	MetricDescriptionAccuracy = "description_accuracy"
)

// trackedMetrics pairs metric keys with display names, in report order.
var trackedMetrics = []struct {
	Key  string
	Name string
}{
	{MetricF1, "F1 Score"},
	{MetricAmountAccuracy, "Amount Accuracy"},
	{MetricDateAccuracy, "Date Accuracy"},
	{MetricDescriptionAccuracy, "Description Accuracy"},
}

// MetricSet is a loose bag of metric values. A missing key means the metric
// was not measured, which both the report and the gate treat differently from
// a zero value.
type MetricSet map[string]float64

// Snapshot is the current benchmark state. Results is keyed by group:
// "overall" plus one group per document type.
type Snapshot struct {
	Model      string               `json:"model"`
	Thresholds map[string]float64   `json:"thresholds"`
	Results    map[string]MetricSet `json:"results"`
}

// Overall returns the overall metric group, which may be nil.
func (s *Snapshot) Overall() MetricSet {
	if s.Results == nil {
		return nil
	}
	return s.Results["overall"]
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("LoadSnapshot: parse %q: %w", path, err)
	}
	return &snap, nil
}

// SaveSnapshot writes the snapshot as indented JSON.
func SaveSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("SaveSnapshot: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("SaveSnapshot: %w", err)
	}
	return nil
}

// metricSetFromAggregate converts the runner's aggregate into the snapshot's
// key space.
func metricSetFromAggregate(agg runner.Aggregate, sampleKey string, samples int) MetricSet {
	return MetricSet{
		MetricF1:                  agg.F1,
		MetricAmountAccuracy:      agg.AmountAccuracy,
		MetricDateAccuracy:        agg.DateAccuracy,
		MetricDescriptionAccuracy: agg.DescriptionAccuracy,
		"precision":               agg.Precision,
		"recall":                  agg.Recall,
		"amount_mae":              agg.AmountMAE,
		sampleKey:                 float64(samples),
	}
}

// SnapshotFromDataset builds a snapshot from a dataset evaluation, carrying
// thresholds forward from the previous snapshot. Per-document-type groups are
// derived by splitting the file results on document extension: PDFs count as
// bank statements, images as receipts.
func SnapshotFromDataset(result *runner.DatasetResult, thresholds map[string]float64) *Snapshot {
	snap := &Snapshot{
		Model:      result.Model,
		Thresholds: thresholds,
		Results: map[string]MetricSet{
			"overall": metricSetFromAggregate(result.Aggregate, "total_samples", result.FileCount),
		},
	}

	var receipts, statements []runner.FileResult
	for _, f := range result.Files {
		if strings.EqualFold(filepath.Ext(f.File), ".pdf") {
			statements = append(statements, f)
		} else {
			receipts = append(receipts, f)
		}
	}
	if len(receipts) > 0 {
		snap.Results["receipt"] = perTypeMetrics(receipts)
	}
	if len(statements) > 0 {
		snap.Results["bank_statement"] = perTypeMetrics(statements)
	}
	return snap
}

func perTypeMetrics(files []runner.FileResult) MetricSet {
	agg := runner.Aggregate{}
	var totalTime float64
	for _, f := range files {
		agg.Precision += f.Precision
		agg.Recall += f.Recall
		agg.F1 += f.F1
		agg.DateAccuracy += f.DateAccuracy
		agg.DescriptionAccuracy += f.DescriptionAccuracy
		agg.AmountAccuracy += f.AmountAccuracy
		agg.AmountMAE += f.AmountMAE
		totalTime += f.TotalTime
	}
	n := float64(len(files))
	agg.Precision /= n
	agg.Recall /= n
	agg.F1 /= n
	agg.DateAccuracy /= n
	agg.DescriptionAccuracy /= n
	agg.AmountAccuracy /= n
	agg.AmountMAE /= n

	set := metricSetFromAggregate(agg, "sample_count", len(files))
	set["avg_processing_time_ms"] = totalTime / n * 1000
	return set
}

// GitSHA returns the short commit hash of the working tree, or "unknown" when
// not in a git checkout.
func GitSHA(dir string) string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	sha := strings.TrimSpace(string(out))
	if sha == "" {
		return "unknown"
	}
	return sha
}
