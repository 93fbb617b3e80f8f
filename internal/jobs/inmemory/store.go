package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/receipt-eval/internal/jobs"
)

// Store is an in-memory implementation of JobStore. It is safe for
// concurrent use; state is scoped to a single evaluation run.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ExtractPageJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.ExtractPageJob),
	}
}

// SaveJob implements the JobStore interface.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ExtractPageJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to guard against mutation by the worker after save.
	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy

	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ExtractPageJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs implements the JobStore interface.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractPageJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobs.ExtractPageJob
	for _, job := range s.jobs {
		if filter.Document != "" && job.Document != filter.Document {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		out = append(out, &jobCopy)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}

	return out, nil
}

var _ jobs.JobStore = (*Store)(nil)
