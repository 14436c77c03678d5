package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/platform/logger"
	"github.com/routinely/routinely-api/internal/store"
)

// PostgresProcessNoteStore implements the store.ProcessNoteStore
// interface using a PostgreSQL database as the storage backend.
// SourceActivityIDs and UserTags are stored as JSONB.
type PostgresProcessNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProcessNoteStore creates a new PostgreSQL implementation of
// the ProcessNoteStore interface. It accepts a database connection or
// transaction managed by the caller. If logger is nil, a default logger
// is used.
func NewPostgresProcessNoteStore(db store.DBTX, logger *slog.Logger) *PostgresProcessNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProcessNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "process_note_store")),
	}
}

// Ensure PostgresProcessNoteStore implements store.ProcessNoteStore
var _ store.ProcessNoteStore = (*PostgresProcessNoteStore)(nil)

// WithTx implements store.ProcessNoteStore.WithTx
func (s *PostgresProcessNoteStore) WithTx(tx *sql.Tx) store.ProcessNoteStore {
	return &PostgresProcessNoteStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ProcessNoteStore.Create.
// Returns store.ErrProcessNoteExists if the (user, description) natural
// key is already taken; the unique index backs up the miner's
// read-then-decide pass against concurrent duplicate triggers.
func (s *PostgresProcessNoteStore) Create(ctx context.Context, note *domain.ProcessNote) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("process note validation failed during create",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	sourceIDs, err := json.Marshal(note.SourceActivityIDs)
	if err != nil {
		return fmt.Errorf("failed to encode source activity ids: %w", err)
	}
	tags, err := json.Marshal(note.UserTags)
	if err != nil {
		return fmt.Errorf("failed to encode user tags: %w", err)
	}

	query := `
		INSERT INTO process_notes (
			id, user_id, inferred_task_name, steps_description,
			source_activity_ids, occurrence_count,
			first_observed_at, last_observed_at,
			user_feedback, user_tags, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.UserID,
		note.InferredTaskName,
		note.StepsDescription,
		sourceIDs,
		note.OccurrenceCount,
		note.FirstObservedAt,
		note.LastObservedAt,
		note.UserFeedback,
		tags,
		note.CreatedAt,
		note.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate process note for user and description",
				slog.String("note_id", note.ID.String()),
				slog.String("user_id", note.UserID.String()))
			return store.ErrProcessNoteExists
		}

		log.Error("failed to create process note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()),
			slog.String("user_id", note.UserID.String()))
		return err
	}

	log.Info("process note created successfully",
		slog.String("note_id", note.ID.String()),
		slog.String("user_id", note.UserID.String()),
		slog.Int("occurrence_count", note.OccurrenceCount))
	return nil
}

// Update implements store.ProcessNoteStore.Update.
// FirstObservedAt, SourceActivityIDs, and the natural key are immutable
// once written; only the mining counters and reviewer fields are saved.
func (s *PostgresProcessNoteStore) Update(ctx context.Context, note *domain.ProcessNote) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("process note validation failed during update",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	tags, err := json.Marshal(note.UserTags)
	if err != nil {
		return fmt.Errorf("failed to encode user tags: %w", err)
	}

	query := `
		UPDATE process_notes
		SET occurrence_count = $1, last_observed_at = $2,
		    user_feedback = $3, user_tags = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		note.OccurrenceCount,
		note.LastObservedAt,
		note.UserFeedback,
		tags,
		note.UpdatedAt,
		note.ID,
	)

	if err != nil {
		log.Error("failed to update process note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("process note not found for update",
			slog.String("note_id", note.ID.String()))
		return store.ErrProcessNoteNotFound
	}

	log.Info("process note updated successfully",
		slog.String("note_id", note.ID.String()),
		slog.Int("occurrence_count", note.OccurrenceCount))
	return nil
}

// GetByID implements store.ProcessNoteStore.GetByID
func (s *PostgresProcessNoteStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.ProcessNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectProcessNoteColumns + ` WHERE id = $1`

	note, err := s.scanOne(ctx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("process note not found", slog.String("note_id", id.String()))
			return nil, store.ErrProcessNoteNotFound
		}
		log.Error("failed to get process note by ID",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return nil, err
	}

	return note, nil
}

// FindByUserAndDescription implements store.ProcessNoteStore.FindByUserAndDescription
func (s *PostgresProcessNoteStore) FindByUserAndDescription(
	ctx context.Context,
	userID uuid.UUID,
	description string,
) (*domain.ProcessNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectProcessNoteColumns + ` WHERE user_id = $1 AND steps_description = $2`

	note, err := s.scanOne(ctx, query, userID, description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProcessNoteNotFound
		}
		log.Error("failed to find process note by natural key",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return note, nil
}

// ListByUser implements store.ProcessNoteStore.ListByUser
func (s *PostgresProcessNoteStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ProcessNoteFilter,
) ([]*domain.ProcessNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectProcessNoteColumns + ` WHERE user_id = $1`
	args := []any{userID}

	if filter.MinOccurrence > 0 {
		args = append(args, filter.MinOccurrence)
		query += fmt.Sprintf(" AND occurrence_count >= $%d", len(args))
	}
	if !filter.ObservedSince.IsZero() {
		args = append(args, filter.ObservedSince)
		query += fmt.Sprintf(" AND last_observed_at >= $%d", len(args))
	}
	query += " ORDER BY last_observed_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query process notes",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var notes []*domain.ProcessNote
	for rows.Next() {
		note, err := scanProcessNote(rows)
		if err != nil {
			log.Error("failed to scan process note row",
				slog.String("error", err.Error()))
			return nil, err
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if notes == nil {
		notes = []*domain.ProcessNote{}
	}

	log.Debug("listed process notes for user",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(notes)))
	return notes, nil
}

const selectProcessNoteColumns = `
	SELECT id, user_id, inferred_task_name, steps_description,
	       source_activity_ids, occurrence_count,
	       first_observed_at, last_observed_at,
	       user_feedback, user_tags, created_at, updated_at
	FROM process_notes`

// rowScanner lets scanProcessNote work for both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresProcessNoteStore) scanOne(
	ctx context.Context,
	query string,
	args ...any,
) (*domain.ProcessNote, error) {
	return scanProcessNote(s.db.QueryRowContext(ctx, query, args...))
}

func scanProcessNote(row rowScanner) (*domain.ProcessNote, error) {
	var note domain.ProcessNote
	var sourceIDs, tags []byte

	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.InferredTaskName,
		&note.StepsDescription,
		&sourceIDs,
		&note.OccurrenceCount,
		&note.FirstObservedAt,
		&note.LastObservedAt,
		&note.UserFeedback,
		&tags,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(sourceIDs, &note.SourceActivityIDs); err != nil {
		return nil, fmt.Errorf("failed to decode source activity ids: %w", err)
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &note.UserTags); err != nil {
			return nil, fmt.Errorf("failed to decode user tags: %w", err)
		}
	}

	note.FirstObservedAt = note.FirstObservedAt.UTC()
	note.LastObservedAt = note.LastObservedAt.UTC()

	return &note, nil
}
