package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/domain/sequence"
	"github.com/routinely/routinely-api/internal/store"
)

// ActivityRepository defines the read-only activity access the miner
// needs from the external activity-logging subsystem.
type ActivityRepository interface {
	// ListForUser retrieves every activity for the user, ordered by
	// timestamp ascending with ties broken by insertion order.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Activity, error)
}

// ProcessNoteRepository defines the note persistence the miner needs.
type ProcessNoteRepository interface {
	// Create saves a new process note
	Create(ctx context.Context, note *domain.ProcessNote) error

	// Update saves changes to an existing process note
	Update(ctx context.Context, note *domain.ProcessNote) error

	// FindByUserAndDescription looks a note up by its natural key
	FindByUserAndDescription(
		ctx context.Context,
		userID uuid.UUID,
		description string,
	) (*domain.ProcessNote, error)

	// ListByUser retrieves a user's notes matching the filter
	ListByUser(
		ctx context.Context,
		userID uuid.UUID,
		filter store.ProcessNoteFilter,
	) ([]*domain.ProcessNote, error)

	// WithTx returns a repository bound to the provided transaction
	WithTx(tx *sql.Tx) store.ProcessNoteStore

	// DB returns the underlying database connection
	DB() *sql.DB
}

// MineResult reports what one mining pass changed.
type MineResult struct {
	// NotesCreated is the number of sequences newly promoted to notes
	NotesCreated int

	// NotesUpdated is the number of existing notes whose occurrence
	// count or last observation actually changed
	NotesUpdated int
}

// MiningService detects recurring activity sequences and persists them
// as process notes.
type MiningService interface {
	// Mine runs one mining pass over the user's full activity history.
	// Zero-valued params fall back to the configured defaults. Fewer
	// activities than the minimum window length is a legitimate no-op,
	// not an error.
	Mine(ctx context.Context, userID uuid.UUID, params sequence.Params) (MineResult, error)
}

type miningService struct {
	activityRepo ActivityRepository
	noteRepo     ProcessNoteRepository
	defaults     sequence.Params
	locks        *userLocks
	logger       *slog.Logger
}

// NewMiningService creates a new MiningService.
// It returns an error if any of the required dependencies are nil.
func NewMiningService(
	activityRepo ActivityRepository,
	noteRepo ProcessNoteRepository,
	defaults sequence.Params,
	logger *slog.Logger,
) (MiningService, error) {
	if activityRepo == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "activityRepo cannot be nil"}
	}
	if noteRepo == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "noteRepo cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &miningService{
		activityRepo: activityRepo,
		noteRepo:     noteRepo,
		defaults:     defaults.Normalize(),
		locks:        sharedUserLocks,
		logger:       logger.With("component", "mining_service"),
	}, nil
}

// Mine implements MiningService.Mine
func (s *miningService) Mine(
	ctx context.Context,
	userID uuid.UUID,
	params sequence.Params,
) (MineResult, error) {
	var result MineResult

	if userID == uuid.Nil {
		return result, ErrInvalidUserID
	}

	params = s.applyDefaults(params)

	unlock := s.locks.Lock(userID)
	defer unlock()

	activities, err := s.activityRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list activities",
			"error", err,
			"user_id", userID)
		return result, NewServiceError("mine", "failed to list activities", err)
	}

	// Too little history to fit a single window. Not an error.
	if len(activities) < params.MinLen {
		s.logger.Debug("not enough activities to mine",
			"user_id", userID,
			"activity_count", len(activities),
			"min_len", params.MinLen)
		return result, nil
	}

	summaries := sequence.Mine(activities, params)
	if len(summaries) == 0 {
		s.logger.Debug("no sequences met the recurrence threshold",
			"user_id", userID,
			"activity_count", len(activities))
		return result, nil
	}

	err = store.RunInTransaction(ctx, s.noteRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.noteRepo.WithTx(tx)

		for _, summary := range summaries {
			existing, err := txRepo.FindByUserAndDescription(ctx, userID, summary.Description)
			switch {
			case errors.Is(err, store.ErrProcessNoteNotFound):
				note, err := domain.NewProcessNote(
					userID,
					summary.InferredTaskName,
					summary.Description,
					summary.SourceActivityIDs,
					summary.OccurrenceCount,
					summary.FirstObservedAt,
					summary.LastObservedAt,
				)
				if err != nil {
					return NewServiceError("mine", "failed to build process note", err)
				}
				if err := txRepo.Create(ctx, note); err != nil {
					return NewServiceError("mine", "failed to create process note", err)
				}
				result.NotesCreated++

			case err != nil:
				return NewServiceError("mine", "failed to look up process note", err)

			default:
				if existing.RecordObservation(summary.OccurrenceCount, summary.LastObservedAt) {
					if err := txRepo.Update(ctx, existing); err != nil {
						return NewServiceError("mine", "failed to update process note", err)
					}
					result.NotesUpdated++
				}
			}
		}
		return nil
	})

	if err != nil {
		// The transaction rolled back; none of the counted writes survived.
		return MineResult{}, err
	}

	s.logger.Info("mining pass completed",
		"user_id", userID,
		"sequences_detected", len(summaries),
		"notes_created", result.NotesCreated,
		"notes_updated", result.NotesUpdated)

	return result, nil
}

func (s *miningService) applyDefaults(params sequence.Params) sequence.Params {
	if params.MinLen <= 0 {
		params.MinLen = s.defaults.MinLen
	}
	if params.MaxLen <= 0 {
		params.MaxLen = s.defaults.MaxLen
	}
	if params.RecurrenceThreshold <= 0 {
		params.RecurrenceThreshold = s.defaults.RecurrenceThreshold
	}
	return params.Normalize()
}
