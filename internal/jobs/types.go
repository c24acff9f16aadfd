package jobs

import (
	"context"
	"time"

	"github.com/ktuntum/statement-ocr/internal/document"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeStatement represents a statement extraction job.
	JobTypeAnalyzeStatement JobType = "analyze_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Extraction jobs are
	// never retried; a failed job is terminal.
	JobStatusFailed JobStatus = "failed"
)

// AnalyzeStatementJob represents one statement extraction request.
// The encoded document rides along in memory and is dropped from the
// JSON representation; job records exist for diagnostics only.
type AnalyzeStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Filename is the original name of the uploaded document.
	Filename string `json:"filename"`

	// MediaType is the declared media type of the document.
	MediaType string `json:"media_type"`

	// SizeBytes is the document size.
	SizeBytes int64 `json:"size_bytes"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains the diagnostic cause if the job failed. This is
	// never shown to the user.
	Error string `json:"error,omitempty"`

	// Document is the transport-ready payload for the extraction call.
	Document *document.Document `json:"-"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *AnalyzeStatementJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *AnalyzeStatementJob) GetType() JobType {
	return JobTypeAnalyzeStatement
}

// GetStatus implements the Job interface.
func (j *AnalyzeStatementJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishAnalyzeStatement publishes a statement extraction job.
	PublishAnalyzeStatement(ctx context.Context, job *AnalyzeStatementJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. A returned error marks
// the job failed; it is not re-enqueued.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalyzeStatementJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*AnalyzeStatementJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeStatementJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
