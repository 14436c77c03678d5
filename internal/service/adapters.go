package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/store"
)

// processNoteRepositoryAdapter pairs a ProcessNoteStore with its
// database handle so services can open transactions against it.
type processNoteRepositoryAdapter struct {
	store.ProcessNoteStore
	db *sql.DB
}

// NewProcessNoteRepositoryAdapter wraps a note store for service use.
func NewProcessNoteRepositoryAdapter(
	noteStore store.ProcessNoteStore,
	db *sql.DB,
) ProcessNoteRepository {
	return &processNoteRepositoryAdapter{ProcessNoteStore: noteStore, db: db}
}

func (a *processNoteRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// taskRepositoryAdapter pairs a TaskStore with its database handle.
type taskRepositoryAdapter struct {
	store.TaskStore
	db *sql.DB
}

// NewTaskRepositoryAdapter wraps a task store for service use.
func NewTaskRepositoryAdapter(taskStore store.TaskStore, db *sql.DB) TaskRepository {
	return &taskRepositoryAdapter{TaskStore: taskStore, db: db}
}

func (a *taskRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// activityRepositoryAdapter narrows an ActivityStore to the read-only
// slice the miner uses.
type activityRepositoryAdapter struct {
	store store.ActivityStore
}

// NewActivityRepositoryAdapter wraps an activity store for service use.
func NewActivityRepositoryAdapter(activityStore store.ActivityStore) ActivityRepository {
	return &activityRepositoryAdapter{store: activityStore}
}

func (a *activityRepositoryAdapter) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.Activity, error) {
	return a.store.ListForUser(ctx, userID)
}
