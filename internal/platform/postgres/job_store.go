package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/platform/logger"
	"github.com/routinely/routinely-api/internal/store"
	"github.com/routinely/routinely-api/internal/worker"
)

// PostgresJobStore implements the worker.JobStore interface using a
// PostgreSQL database, so queued background work survives restarts.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the
// JobStore interface. If logger is nil, a default logger is used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements worker.JobStore
var _ worker.JobStore = (*PostgresJobStore)(nil)

// WithTx implements worker.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) worker.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// SaveJob implements worker.JobStore.SaveJob
func (s *PostgresJobStore) SaveJob(ctx context.Context, job worker.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		INSERT INTO jobs (id, job_type, payload, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID(),
		job.Type(),
		job.Payload(),
		job.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()))
		return err
	}

	log.Debug("job saved",
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()))
	return nil
}

// UpdateJobStatus implements worker.JobStore.UpdateJobStatus
func (s *PostgresJobStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status worker.JobStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, errorMsg, time.Now().UTC(), jobID)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("error", err.Error()),
			slog.String("job_id", jobID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// ListJobsByStatus implements worker.JobStore.ListJobsByStatus
func (s *PostgresJobStore) ListJobsByStatus(
	ctx context.Context,
	status worker.JobStatus,
	olderThan time.Duration,
) ([]worker.JobRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, job_type, payload, status, updated_at
		FROM jobs
		WHERE status = $1
	`
	args := []any{status}

	if olderThan > 0 {
		args = append(args, time.Now().UTC().Add(-olderThan))
		query += " AND updated_at < $2"
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var records []worker.JobRecord
	for rows.Next() {
		var record worker.JobRecord
		var statusStr string
		if err := rows.Scan(
			&record.ID,
			&record.Type,
			&record.Payload,
			&statusStr,
			&record.UpdatedAt,
		); err != nil {
			log.Error("failed to scan job row", slog.String("error", err.Error()))
			return nil, err
		}
		record.Status = worker.JobStatus(statusStr)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return records, nil
}
