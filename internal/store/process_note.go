package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
)

// ProcessNoteFilter narrows ListByUser results. Zero values leave the
// corresponding dimension unfiltered.
type ProcessNoteFilter struct {
	// MinOccurrence keeps only notes observed at least this many times.
	MinOccurrence int

	// ObservedSince keeps only notes whose last observation is at or
	// after this instant.
	ObservedSince time.Time
}

// ProcessNoteStore defines the interface for process note persistence.
type ProcessNoteStore interface {
	// Create saves a new process note to the store.
	// Returns ErrProcessNoteExists if a note for the same user and
	// steps description already exists, and validation errors from the
	// domain ProcessNote if data is invalid.
	Create(ctx context.Context, note *domain.ProcessNote) error

	// Update saves changes to an existing process note.
	// Returns ErrProcessNoteNotFound if the note does not exist.
	Update(ctx context.Context, note *domain.ProcessNote) error

	// GetByID retrieves a process note by its unique ID.
	// Returns ErrProcessNoteNotFound if the note does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProcessNote, error)

	// FindByUserAndDescription looks a note up by its natural key.
	// Returns ErrProcessNoteNotFound if no note matches.
	FindByUserAndDescription(
		ctx context.Context,
		userID uuid.UUID,
		description string,
	) (*domain.ProcessNote, error)

	// ListByUser retrieves a user's process notes matching the filter,
	// ordered by last observation descending. Returns an empty slice if
	// nothing matches.
	ListByUser(
		ctx context.Context,
		userID uuid.UUID,
		filter ProcessNoteFilter,
	) ([]*domain.ProcessNote, error)

	// WithTx returns a new ProcessNoteStore instance that uses the
	// provided transaction. The transaction is created and managed by
	// the caller, typically a service.
	WithTx(tx *sql.Tx) ProcessNoteStore
}
