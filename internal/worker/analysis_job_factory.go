package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// AnalysisJobFactory creates AnalysisJob instances, both for fresh
// submissions and for rebuilding persisted jobs during recovery.
type AnalysisJobFactory struct {
	miner       Miner
	generator   Generator
	prioritizer Prioritizer
	logger      *slog.Logger
}

// NewAnalysisJobFactory creates a new factory around the pipeline's
// service dependencies.
func NewAnalysisJobFactory(
	miner Miner,
	generator Generator,
	prioritizer Prioritizer,
	logger *slog.Logger,
) (*AnalysisJobFactory, error) {
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

	return &AnalysisJobFactory{
		miner:       miner,
		generator:   generator,
		prioritizer: prioritizer,
		logger:      logger,
	}, nil
}

// Ensure AnalysisJobFactory implements JobFactory
var _ JobFactory = (*AnalysisJobFactory)(nil)

// JobType implements JobFactory.JobType
func (f *AnalysisJobFactory) JobType() string {
	return JobTypeProcessAnalysis
}

// CreateJob creates a fresh analysis job for the given user.
func (f *AnalysisJobFactory) CreateJob(userID uuid.UUID) (Job, error) {
	return NewAnalysisJob(userID, f.miner, f.generator, f.prioritizer, f.logger)
}

// Rebuild implements JobFactory.Rebuild. The rebuilt job keeps the
// persisted id so status updates land on the original row.
func (f *AnalysisJobFactory) Rebuild(record JobRecord) (Job, error) {
	var payload analysisPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode analysis payload: %w", err)
	}

	job, err := NewAnalysisJob(payload.UserID, f.miner, f.generator, f.prioritizer, f.logger)
	if err != nil {
		return nil, err
	}

	job.id = record.ID
	job.status = record.Status
	return job, nil
}
