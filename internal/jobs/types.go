// Package jobs defines the task abstraction used to fan page extraction out
// across a pool of workers. Model state is not safe to share, so each worker
// owns one in-flight request; the pool passes immutable page-image buffers in
// and structured per-page results out, keeping the matching core untouched by
// any parallelism.
package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExtractPage represents a single-page extraction job.
	JobTypeExtractPage JobType = "extract_page"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ExtractPageJob represents a request to run model extraction on one rendered
// document page.
type ExtractPageJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Document is the path of the source document.
	Document string `json:"document"`

	// Page is the 1-based page number within the document.
	Page int `json:"page"`

	// DocType is the document-type hint forwarded to the model prompt.
	DocType string `json:"doc_type"`

	// Image is the rendered PNG for this page. Treated as immutable once
	// the job is published.
	Image []byte `json:"-"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ExtractPageJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ExtractPageJob) GetType() JobType {
	return JobTypeExtractPage
}

// GetStatus implements the Job interface.
func (j *ExtractPageJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishExtractPage publishes a page-extraction job.
	PublishExtractPage(ctx context.Context, job *ExtractPageJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue. The handler function is
	// called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. It should return an error if
// the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ExtractPageJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ExtractPageJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractPageJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Document filters jobs by source document path.
	Document string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int
}
