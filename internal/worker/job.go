// Package worker runs durable background jobs on a small pool of
// goroutines. Jobs are persisted before execution so that pending work
// survives restarts, and a monitor resets jobs stuck in processing.
package worker

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a background job
type JobStatus string

// Possible job status values
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobTypeProcessAnalysis is the job type for the per-user analysis
// pipeline (mine, generate, reprioritize).
const JobTypeProcessAnalysis = "process_analysis"

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Status returns the current job status
	Status() JobStatus

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// JobRecord is the persisted form of a job, used to rebuild executable
// jobs during crash recovery.
type JobRecord struct {
	ID        uuid.UUID
	Type      string
	Payload   []byte
	Status    JobStatus
	UpdatedAt time.Time
}

// JobFactory rebuilds an executable job of one type from its persisted
// payload. The runner keeps one factory per job type.
type JobFactory interface {
	// JobType returns the job type this factory handles.
	JobType() string

	// Rebuild turns a persisted record back into an executable job.
	Rebuild(record JobRecord) (Job, error)
}

// JobStore defines the interface for persisting jobs.
type JobStore interface {
	// SaveJob persists a job to the database
	SaveJob(ctx context.Context, job Job) error

	// UpdateJobStatus updates the status of a job. errorMsg is stored
	// alongside failed jobs and ignored otherwise.
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error

	// ListJobsByStatus retrieves records for jobs in the given status.
	// If olderThan is non-zero, only jobs last updated before
	// now-olderThan are returned.
	ListJobsByStatus(ctx context.Context, status JobStatus, olderThan time.Duration) ([]JobRecord, error)

	// WithTx returns a new JobStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) JobStore
}
