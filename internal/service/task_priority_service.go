package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain/scoring"
	"github.com/routinely/routinely-api/internal/store"
)

// PriorityAdjustment records one task's re-scoring outcome. Adjustments
// are reported for every open task, including those whose suggested
// score matched the original and was therefore not persisted.
type PriorityAdjustment struct {
	TaskID         uuid.UUID `json:"task_id"`
	OriginalScore  float64   `json:"original_score"`
	SuggestedScore float64   `json:"suggested_score"`
}

// TaskPriorityService re-scores a user's open tasks from due-date,
// keyword, and status heuristics.
type TaskPriorityService interface {
	// Reprioritize computes a suggested score for every non-terminal
	// task the user owns. When applyChanges is true, scores whose change
	// exceeds the configured epsilon are persisted in one transaction;
	// when false the pass is a dry run. Returns ErrFeatureDisabled when
	// the reprioritization gate is off for the user's tenant.
	Reprioritize(ctx context.Context, userID uuid.UUID, applyChanges bool) ([]PriorityAdjustment, error)
}

type taskPriorityService struct {
	taskRepo TaskRepository
	gate     FeatureGate
	scoring  *scoring.Params
	locks    *userLocks
	logger   *slog.Logger
	nowFn    func() time.Time
}

// NewTaskPriorityService creates a new TaskPriorityService.
// It returns an error if any of the required dependencies are nil.
func NewTaskPriorityService(
	taskRepo TaskRepository,
	gate FeatureGate,
	scoringParams *scoring.Params,
	logger *slog.Logger,
) (TaskPriorityService, error) {
	if taskRepo == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskRepo cannot be nil"}
	}
	if gate == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "gate cannot be nil"}
	}
	if scoringParams == nil {
		scoringParams = scoring.NewDefaultParams()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskPriorityService{
		taskRepo: taskRepo,
		gate:     gate,
		scoring:  scoringParams,
		locks:    sharedUserLocks,
		logger:   logger.With("component", "task_priority_service"),
		nowFn:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Reprioritize implements TaskPriorityService.Reprioritize
func (s *taskPriorityService) Reprioritize(
	ctx context.Context,
	userID uuid.UUID,
	applyChanges bool,
) ([]PriorityAdjustment, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	if !s.gate.Enabled(ctx, FeatureReprioritization, userID) {
		s.logger.Warn("reprioritization requested while gated off",
			"user_id", userID)
		return nil, ErrFeatureDisabled
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	tasks, err := s.taskRepo.ListOpenByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list open tasks",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("reprioritize", "failed to list open tasks", err)
	}

	now := s.nowFn()
	adjustments := make([]PriorityAdjustment, 0, len(tasks))
	changed := make([]PriorityAdjustment, 0, len(tasks))

	for _, task := range tasks {
		original := s.scoring.DefaultScore
		if task.PriorityScore != nil {
			original = *task.PriorityScore
		}

		suggested := scoring.SuggestScore(task, now, s.scoring)

		adj := PriorityAdjustment{
			TaskID:         task.ID,
			OriginalScore:  original,
			SuggestedScore: suggested,
		}
		adjustments = append(adjustments, adj)

		if !scoring.Negligible(original, suggested, s.scoring) {
			changed = append(changed, adj)
		}
	}

	if applyChanges && len(changed) > 0 {
		err = store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
			txRepo := s.taskRepo.WithTx(tx)
			for _, adj := range changed {
				if err := txRepo.UpdatePriority(ctx, adj.TaskID, adj.SuggestedScore); err != nil {
					return NewServiceError("reprioritize", "failed to persist priority", err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("reprioritization pass completed",
		"user_id", userID,
		"tasks_scored", len(adjustments),
		"tasks_changed", len(changed),
		"applied", applyChanges)

	return adjustments, nil
}
