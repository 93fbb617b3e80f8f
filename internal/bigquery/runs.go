// Package bigquery records benchmark runs in a warehouse table so extraction
// quality can be tracked and queried beyond the 50-run local history file.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/receipt-eval/internal/bench"
)

const (
	datasetID          = "ml_benchmarks"
	benchmarkRunsTable = "benchmark_runs"
)

// BenchmarkRunRow represents one benchmark run in BigQuery.
type BenchmarkRunRow struct {
	RunUUID string `bigquery:"run_uuid"`
	RunID   string `bigquery:"run_id"`

	RunTS   time.Time  `bigquery:"run_ts"`
	RunDate civil.Date `bigquery:"run_date"`

	Model  string `bigquery:"model"`
	GitSHA string `bigquery:"git_sha"`

	F1                  float64 `bigquery:"f1_score"`
	AmountAccuracy      float64 `bigquery:"amount_accuracy"`
	DateAccuracy        float64 `bigquery:"date_accuracy"`
	DescriptionAccuracy float64 `bigquery:"description_accuracy"`
	Precision           float64 `bigquery:"precision"`
	Recall              float64 `bigquery:"recall"`
	AmountMAE           float64 `bigquery:"amount_mae"`

	TotalSamples int64 `bigquery:"total_samples"`
}

// RunSink persists benchmark runs. The benchmark CLI treats sink failures as
// non-fatal: the local snapshot and history remain the source of truth.
type RunSink interface {
	InsertRun(ctx context.Context, row *BenchmarkRunRow) error
}

// NewBenchmarkRunRow flattens a snapshot's overall metrics into a warehouse
// row.
func NewBenchmarkRunRow(snap *bench.Snapshot, runID, gitSHA string, now time.Time) *BenchmarkRunRow {
	overall := snap.Overall()
	now = now.UTC()
	return &BenchmarkRunRow{
		RunUUID:             uuid.NewString(),
		RunID:               runID,
		RunTS:               now,
		RunDate:             civil.DateOf(now),
		Model:               snap.Model,
		GitSHA:              gitSHA,
		F1:                  overall[bench.MetricF1],
		AmountAccuracy:      overall[bench.MetricAmountAccuracy],
		DateAccuracy:        overall[bench.MetricDateAccuracy],
		DescriptionAccuracy: overall[bench.MetricDescriptionAccuracy],
		Precision:           overall["precision"],
		Recall:              overall["recall"],
		AmountMAE:           overall["amount_mae"],
		TotalSamples:        int64(overall["total_samples"]),
	}
}

// Sink implements RunSink against a BigQuery dataset.
type Sink struct {
	client *bigquery.Client
}

// NewSink creates a sink for the given project.
func NewSink(ctx context.Context, projectID string) (*Sink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewSink: %w", err)
	}
	return &Sink{client: client}, nil
}

// Close releases the underlying BigQuery client.
func (s *Sink) Close() error {
	return s.client.Close()
}

// InsertRun implements the RunSink interface.
func (s *Sink) InsertRun(ctx context.Context, row *BenchmarkRunRow) error {
	q := s.client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			run_uuid,
			run_id,
			run_ts,
			run_date,
			model,
			git_sha,
			f1_score,
			amount_accuracy,
			date_accuracy,
			description_accuracy,
			precision,
			recall,
			amount_mae,
			total_samples
		)
		VALUES (
			@run_uuid,
			@run_id,
			@run_ts,
			@run_date,
			@model,
			@git_sha,
			@f1_score,
			@amount_accuracy,
			@date_accuracy,
			@description_accuracy,
			@precision,
			@recall,
			@amount_mae,
			@total_samples
		)
	`, datasetID, benchmarkRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_uuid", Value: row.RunUUID},
		{Name: "run_id", Value: row.RunID},
		{Name: "run_ts", Value: row.RunTS},
		{Name: "run_date", Value: row.RunDate},
		{Name: "model", Value: row.Model},
		{Name: "git_sha", Value: row.GitSHA},
		{Name: "f1_score", Value: row.F1},
		{Name: "amount_accuracy", Value: row.AmountAccuracy},
		{Name: "date_accuracy", Value: row.DateAccuracy},
		{Name: "description_accuracy", Value: row.DescriptionAccuracy},
		{Name: "precision", Value: row.Precision},
		{Name: "recall", Value: row.Recall},
		{Name: "amount_mae", Value: row.AmountMAE},
		{Name: "total_samples", Value: row.TotalSamples},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("InsertRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("InsertRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("InsertRun: job error: %w", err)
	}

	return nil
}

var _ RunSink = (*Sink)(nil)
