package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/platform/logger"
	"github.com/routinely/routinely-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create.
// Returns store.ErrInvalidEntity on a foreign key violation, which means
// the referenced process note does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (
			id, user_id, process_note_id, description,
			source_type, source_identifier, priority_score, status,
			due_date_inferred, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.ProcessNoteID,
		task.Description,
		task.SourceType,
		task.SourceIdentifier,
		task.PriorityScore,
		task.Status,
		task.DueDateInferred,
		task.Notes,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: referenced process note not found",
				store.ErrInvalidEntity)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectTaskColumns + ` WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// UpdatePriority implements store.TaskStore.UpdatePriority.
// The task's status is deliberately left untouched: reprioritization
// re-scores tasks in place without changing their lifecycle state.
func (s *PostgresTaskStore) UpdatePriority(
	ctx context.Context,
	taskID uuid.UUID,
	score float64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if score < 0.0 || score > 1.0 {
		return domain.ErrPriorityOutOfRange
	}

	query := `
		UPDATE tasks
		SET priority_score = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, score, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task priority",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for priority update",
			slog.String("task_id", taskID.String()))
		return store.ErrTaskNotFound
	}

	log.Debug("task priority updated",
		slog.String("task_id", taskID.String()),
		slog.Float64("score", score))
	return nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status domain.TaskStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidTaskStatus(status) {
		return domain.ErrInvalidTaskStatus
	}

	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for status update",
			slog.String("task_id", taskID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task status updated",
		slog.String("task_id", taskID.String()),
		slog.String("status", string(status)))
	return nil
}

// ListByUserAndProcessNote implements store.TaskStore.ListByUserAndProcessNote
func (s *PostgresTaskStore) ListByUserAndProcessNote(
	ctx context.Context,
	userID uuid.UUID,
	processNoteID uuid.UUID,
	statusIn []domain.TaskStatus,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectTaskColumns + ` WHERE user_id = $1 AND process_note_id = $2`
	args := []any{userID, processNoteID}

	if len(statusIn) > 0 {
		placeholders := make([]string, len(statusIn))
		for i, status := range statusIn {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ", "))
	}
	query += " ORDER BY created_at ASC"

	return s.queryTasks(ctx, log, query, args...)
}

// ListOpenByUser implements store.TaskStore.ListOpenByUser
func (s *PostgresTaskStore) ListOpenByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectTaskColumns + `
		WHERE user_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at ASC`

	return s.queryTasks(
		ctx,
		log,
		query,
		userID,
		domain.TaskStatusCompleted,
		domain.TaskStatusArchived,
	)
}

func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return tasks, nil
}

const selectTaskColumns = `
	SELECT id, user_id, process_note_id, description,
	       source_type, source_identifier, priority_score, status,
	       due_date_inferred, notes, created_at, updated_at
	FROM tasks`

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.ProcessNoteID,
		&task.Description,
		&task.SourceType,
		&task.SourceIdentifier,
		&task.PriorityScore,
		&status,
		&task.DueDateInferred,
		&task.Notes,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	return &task, nil
}
