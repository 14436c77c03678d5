package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/domain/sequence"
	"github.com/routinely/routinely-api/internal/service"
)

// Common errors
var (
	ErrNilMiner       = errors.New("mining service cannot be nil")
	ErrNilGenerator   = errors.New("task generation service cannot be nil")
	ErrNilPrioritizer = errors.New("task priority service cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyUserID    = errors.New("user ID cannot be empty")
)

// Miner is the slice of the mining service the analysis job needs.
type Miner interface {
	Mine(ctx context.Context, userID uuid.UUID, params sequence.Params) (service.MineResult, error)
}

// Generator is the slice of the task generation service the job needs.
type Generator interface {
	Generate(
		ctx context.Context,
		userID uuid.UUID,
		params service.GenerationParams,
	) ([]*domain.Task, error)
}

// Prioritizer is the slice of the task priority service the job needs.
type Prioritizer interface {
	Reprioritize(
		ctx context.Context,
		userID uuid.UUID,
		applyChanges bool,
	) ([]service.PriorityAdjustment, error)
}

// analysisPayload represents the serialized data stored with the job
type analysisPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// AnalysisJob implements the Job interface for the full per-user
// analysis pipeline: mine recurring sequences, generate tasks from the
// qualifying notes, then reprioritize the user's open tasks. The three
// stages only communicate through persisted state, so a failure in a
// later stage never undoes an earlier one.
type AnalysisJob struct {
	id          uuid.UUID
	userID      uuid.UUID
	miner       Miner
	generator   Generator
	prioritizer Prioritizer
	logger      *slog.Logger
	status      JobStatus
}

// NewAnalysisJob creates a new analysis pipeline job for one user.
func NewAnalysisJob(
	userID uuid.UUID,
	miner Miner,
	generator Generator,
	prioritizer Prioritizer,
	logger *slog.Logger,
) (*AnalysisJob, error) {
	if miner == nil {
		return nil, ErrNilMiner
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if prioritizer == nil {
		return nil, ErrNilPrioritizer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	return &AnalysisJob{
		id:          uuid.New(),
		userID:      userID,
		miner:       miner,
		generator:   generator,
		prioritizer: prioritizer,
		logger:      logger.With("job_type", JobTypeProcessAnalysis, "user_id", userID),
		status:      JobStatusPending,
	}, nil
}

// ID returns the job's unique identifier
func (j *AnalysisJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *AnalysisJob) Type() string {
	return JobTypeProcessAnalysis
}

// Payload returns the job data as a byte slice
func (j *AnalysisJob) Payload() []byte {
	data, err := json.Marshal(analysisPayload{UserID: j.userID})
	if err != nil {
		// Payload is a fixed struct of a uuid; marshaling cannot fail.
		return nil
	}
	return data
}

// Status returns the current job status
func (j *AnalysisJob) Status() JobStatus {
	return j.status
}

// Execute runs the pipeline. Mining and generation use the configured
// defaults; reprioritization applies its changes. A disabled
// reprioritization feature flag skips that stage rather than failing the
// whole pipeline.
func (j *AnalysisJob) Execute(ctx context.Context) error {
	j.status = JobStatusProcessing

	mineResult, err := j.miner.Mine(ctx, j.userID, sequence.Params{})
	if err != nil {
		j.status = JobStatusFailed
		return fmt.Errorf("mining stage failed: %w", err)
	}
	j.logger.Info("mining stage completed",
		"notes_created", mineResult.NotesCreated,
		"notes_updated", mineResult.NotesUpdated)

	created, err := j.generator.Generate(ctx, j.userID, service.GenerationParams{})
	if err != nil {
		j.status = JobStatusFailed
		return fmt.Errorf("generation stage failed: %w", err)
	}
	j.logger.Info("generation stage completed", "tasks_created", len(created))

	adjustments, err := j.prioritizer.Reprioritize(ctx, j.userID, true)
	if err != nil {
		if errors.Is(err, service.ErrFeatureDisabled) {
			j.logger.Info("reprioritization stage skipped, feature disabled")
			j.status = JobStatusCompleted
			return nil
		}
		j.status = JobStatusFailed
		return fmt.Errorf("reprioritization stage failed: %w", err)
	}
	j.logger.Info("reprioritization stage completed", "tasks_considered", len(adjustments))

	j.status = JobStatusCompleted
	return nil
}
