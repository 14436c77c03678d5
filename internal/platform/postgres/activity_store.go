package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/platform/logger"
	"github.com/routinely/routinely-api/internal/store"
)

// PostgresActivityStore implements the store.ActivityStore interface
// against the activity log table owned by the logging subsystem. This
// service only ever reads from it.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of
// the ActivityStore interface. If logger is nil, a default logger is used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// ListForUser implements store.ActivityStore.ListForUser.
// Activities come back ordered by timestamp ascending; the id tiebreak
// keeps the ordering stable for identical timestamps.
func (s *PostgresActivityStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, activity_type, timestamp
		FROM activities
		WHERE user_id = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query activities",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var activities []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.ActivityType,
			&activity.Timestamp,
		); err != nil {
			log.Error("failed to scan activity row",
				slog.String("error", err.Error()))
			return nil, err
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if activities == nil {
		activities = []domain.Activity{}
	}

	log.Debug("listed activities for user",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(activities)))
	return activities, nil
}
