package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/domain/scoring"
	"github.com/routinely/routinely-api/internal/store"
)

// TaskRepository defines the task persistence the engine services need.
type TaskRepository interface {
	// Create saves a new task
	Create(ctx context.Context, task *domain.Task) error

	// UpdatePriority sets the stored priority score of an existing task
	UpdatePriority(ctx context.Context, taskID uuid.UUID, score float64) error

	// ListByUserAndProcessNote retrieves a user's tasks for one note
	ListByUserAndProcessNote(
		ctx context.Context,
		userID uuid.UUID,
		processNoteID uuid.UUID,
		statusIn []domain.TaskStatus,
	) ([]*domain.Task, error)

	// ListOpenByUser retrieves every non-terminal task for the user
	ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// WithTx returns a repository bound to the provided transaction
	WithTx(tx *sql.Tx) store.TaskStore

	// DB returns the underlying database connection
	DB() *sql.DB
}

// GenerationParams controls which process notes qualify for a task.
// Zero values fall back to the configured defaults.
type GenerationParams struct {
	// MinOccurrence is the occurrence count a note must have reached
	MinOccurrence int

	// RecencyDays bounds how long ago the note was last observed
	RecencyDays int

	// ActiveStatuses are the task statuses that block a note from
	// spawning another task. Empty means the standard non-terminal set.
	ActiveStatuses []domain.TaskStatus
}

// TaskGenerationService converts qualifying process notes into suggested
// tasks.
type TaskGenerationService interface {
	// Generate runs one generation pass for the user and returns the
	// tasks it created, most recently observed note first. Notes that
	// already have an active task are skipped, so repeated passes are
	// idempotent until that task reaches a terminal state.
	Generate(ctx context.Context, userID uuid.UUID, params GenerationParams) ([]*domain.Task, error)
}

type taskGenerationService struct {
	noteRepo ProcessNoteRepository
	taskRepo TaskRepository
	defaults GenerationParams
	scoring  *scoring.Params
	locks    *userLocks
	logger   *slog.Logger
	nowFn    func() time.Time
}

// NewTaskGenerationService creates a new TaskGenerationService.
// It returns an error if any of the required dependencies are nil.
func NewTaskGenerationService(
	noteRepo ProcessNoteRepository,
	taskRepo TaskRepository,
	defaults GenerationParams,
	scoringParams *scoring.Params,
	logger *slog.Logger,
) (TaskGenerationService, error) {
	if noteRepo == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "noteRepo cannot be nil"}
	}
	if taskRepo == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "taskRepo cannot be nil"}
	}
	if scoringParams == nil {
		scoringParams = scoring.NewDefaultParams()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskGenerationService{
		noteRepo: noteRepo,
		taskRepo: taskRepo,
		defaults: defaults,
		scoring:  scoringParams,
		locks:    sharedUserLocks,
		logger:   logger.With("component", "task_generation_service"),
		nowFn:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Generate implements TaskGenerationService.Generate
func (s *taskGenerationService) Generate(
	ctx context.Context,
	userID uuid.UUID,
	params GenerationParams,
) ([]*domain.Task, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	params = s.applyDefaults(params)
	now := s.nowFn()

	unlock := s.locks.Lock(userID)
	defer unlock()

	filter := store.ProcessNoteFilter{MinOccurrence: params.MinOccurrence}
	if params.RecencyDays > 0 {
		filter.ObservedSince = now.AddDate(0, 0, -params.RecencyDays)
	}

	notes, err := s.noteRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list process notes",
			"error", err,
			"user_id", userID)
		return nil, NewServiceError("generate", "failed to list process notes", err)
	}

	if len(notes) == 0 {
		s.logger.Debug("no qualifying process notes",
			"user_id", userID,
			"min_occurrence", params.MinOccurrence,
			"recency_days", params.RecencyDays)
		return []*domain.Task{}, nil
	}

	created := make([]*domain.Task, 0, len(notes))

	err = store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.taskRepo.WithTx(tx)

		// Notes arrive ordered by last observation descending, so the
		// returned tasks inherit that order.
		for _, note := range notes {
			active, err := txRepo.ListByUserAndProcessNote(
				ctx, userID, note.ID, params.ActiveStatuses)
			if err != nil {
				return NewServiceError("generate", "failed to check existing tasks", err)
			}
			if len(active) > 0 {
				continue
			}

			task, err := s.buildTask(userID, note, now)
			if err != nil {
				return NewServiceError("generate", "failed to build task", err)
			}
			if err := txRepo.Create(ctx, task); err != nil {
				return NewServiceError("generate", "failed to create task", err)
			}
			created = append(created, task)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("generation pass completed",
		"user_id", userID,
		"notes_considered", len(notes),
		"tasks_created", len(created))

	return created, nil
}

// buildTask materializes a suggested task from a qualifying note. The
// notes field records why the recommendation exists so a reviewer can
// judge it without chasing the source note.
func (s *taskGenerationService) buildTask(
	userID uuid.UUID,
	note *domain.ProcessNote,
	now time.Time,
) (*domain.Task, error) {
	priority := scoring.ComputePriority(note.OccurrenceCount, note.LastObservedAt, now, s.scoring)

	noteID := note.ID
	audit := fmt.Sprintf(
		"Suggested from a recurring process observed %d times (last seen %s): %s",
		note.OccurrenceCount,
		note.LastObservedAt.Format("2006-01-02"),
		note.StepsDescription,
	)

	return domain.NewTask(
		userID,
		&noteID,
		taskDescription(note),
		domain.TaskSourceProcessNote,
		note.ID.String(),
		priority,
		audit,
	)
}

// maxFallbackDescriptionLen bounds the description of tasks built from
// notes that carry no inferred name.
const maxFallbackDescriptionLen = 120

// taskDescription prefers the note's inferred name. Notes written
// outside the miner may lack one; those fall back to the steps
// description, truncated so a long pattern stays a readable title.
func taskDescription(note *domain.ProcessNote) string {
	if note.InferredTaskName != "" {
		return note.InferredTaskName
	}

	description := note.StepsDescription
	if len(description) > maxFallbackDescriptionLen {
		description = description[:maxFallbackDescriptionLen] + "..."
	}
	return description
}

func (s *taskGenerationService) applyDefaults(params GenerationParams) GenerationParams {
	if params.MinOccurrence <= 0 {
		params.MinOccurrence = s.defaults.MinOccurrence
	}
	if params.RecencyDays <= 0 {
		params.RecencyDays = s.defaults.RecencyDays
	}
	if len(params.ActiveStatuses) == 0 {
		params.ActiveStatuses = domain.ActiveTaskStatuses()
	}
	return params
}
