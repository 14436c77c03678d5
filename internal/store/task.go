package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdatePriority sets the stored priority score of an existing task
	// without touching its status. Returns ErrTaskNotFound if the task
	// does not exist.
	UpdatePriority(ctx context.Context, taskID uuid.UUID, score float64) error

	// UpdateStatus moves an existing task to the given lifecycle state.
	// Returns ErrTaskNotFound if the task does not exist and
	// domain.ErrInvalidTaskStatus if the status is not valid.
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus) error

	// ListByUserAndProcessNote retrieves a user's tasks linked to the
	// given process note whose status is in statusIn. Returns an empty
	// slice if nothing matches.
	ListByUserAndProcessNote(
		ctx context.Context,
		userID uuid.UUID,
		processNoteID uuid.UUID,
		statusIn []domain.TaskStatus,
	) ([]*domain.Task, error)

	// ListOpenByUser retrieves every non-terminal task for the user,
	// ordered by creation time ascending.
	ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
