package inmemory

import (
	"context"
	"testing"

	"github.com/dvloznov/receipt-eval/internal/jobs"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.SaveJob(ctx, &jobs.ExtractPageJob{}); err == nil {
		t.Error("SaveJob should reject a job without an ID")
	}

	job := &jobs.ExtractPageJob{JobID: "job-1", Document: "statement.pdf", Page: 1, Status: jobs.JobStatusPending}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob returned error: %v", err)
	}

	// The worker keeps mutating the published job; the store must hold the
	// state as of the save, not a live alias.
	job.Status = jobs.JobStatusRunning

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob returned error: %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("Status = %s, want %s", got.Status, jobs.JobStatusPending)
	}

	if _, err := store.GetJob(ctx, "missing"); err == nil {
		t.Error("GetJob should fail for an unknown ID")
	}
}

func TestStoreListJobs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seed := []*jobs.ExtractPageJob{
		{JobID: "a", Document: "statement.pdf", Page: 1, Status: jobs.JobStatusCompleted},
		{JobID: "b", Document: "statement.pdf", Page: 2, Status: jobs.JobStatusFailed},
		{JobID: "c", Document: "receipt.jpg", Page: 1, Status: jobs.JobStatusCompleted},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s) returned error: %v", j.JobID, err)
		}
	}

	byDoc, err := store.ListJobs(ctx, jobs.JobFilter{Document: "statement.pdf"})
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(byDoc) != 2 {
		t.Errorf("document filter returned %d jobs, want 2", len(byDoc))
	}

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].JobID != "b" {
		t.Errorf("status filter returned %+v, want job b only", byStatus)
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs returned error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit filter returned %d jobs, want 1", len(limited))
	}
}
