package testutils

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
	"github.com/routinely/routinely-api/internal/store"
)

// FakeActivityStore is an in-memory store.ActivityStore.
type FakeActivityStore struct {
	mu         sync.Mutex
	Activities []domain.Activity

	// ListErr, when set, is returned by ListForUser.
	ListErr error
}

// NewFakeActivityStore creates an empty fake activity store.
func NewFakeActivityStore() *FakeActivityStore {
	return &FakeActivityStore{}
}

var _ store.ActivityStore = (*FakeActivityStore)(nil)

// ListForUser implements store.ActivityStore.ListForUser. Results come
// back ordered by timestamp ascending, matching the real store.
func (f *FakeActivityStore) ListForUser(
	_ context.Context,
	userID uuid.UUID,
) ([]domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}

	var result []domain.Activity
	for _, activity := range f.Activities {
		if activity.UserID == userID {
			result = append(result, activity)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// FakeProcessNoteStore is an in-memory store.ProcessNoteStore keyed by
// note ID, with natural-key lookups like the real table's unique index.
type FakeProcessNoteStore struct {
	mu    sync.Mutex
	Notes map[uuid.UUID]*domain.ProcessNote

	// CreateErr and UpdateErr, when set, are returned by the
	// corresponding write.
	CreateErr error
	UpdateErr error
}

// NewFakeProcessNoteStore creates an empty fake process note store.
func NewFakeProcessNoteStore() *FakeProcessNoteStore {
	return &FakeProcessNoteStore{Notes: make(map[uuid.UUID]*domain.ProcessNote)}
}

var _ store.ProcessNoteStore = (*FakeProcessNoteStore)(nil)

// Create implements store.ProcessNoteStore.Create
func (f *FakeProcessNoteStore) Create(_ context.Context, note *domain.ProcessNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return f.CreateErr
	}
	if err := note.Validate(); err != nil {
		return err
	}
	for _, existing := range f.Notes {
		if existing.UserID == note.UserID && existing.StepsDescription == note.StepsDescription {
			return store.ErrProcessNoteExists
		}
	}

	stored := *note
	f.Notes[note.ID] = &stored
	return nil
}

// Update implements store.ProcessNoteStore.Update
func (f *FakeProcessNoteStore) Update(_ context.Context, note *domain.ProcessNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	existing, ok := f.Notes[note.ID]
	if !ok {
		return store.ErrProcessNoteNotFound
	}

	// Mirror the real store: only the mining counters and reviewer
	// fields are writable.
	existing.OccurrenceCount = note.OccurrenceCount
	existing.LastObservedAt = note.LastObservedAt
	existing.UserFeedback = note.UserFeedback
	existing.UserTags = note.UserTags
	existing.UpdatedAt = note.UpdatedAt
	return nil
}

// GetByID implements store.ProcessNoteStore.GetByID
func (f *FakeProcessNoteStore) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*domain.ProcessNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	note, ok := f.Notes[id]
	if !ok {
		return nil, store.ErrProcessNoteNotFound
	}
	copied := *note
	return &copied, nil
}

// FindByUserAndDescription implements store.ProcessNoteStore.FindByUserAndDescription
func (f *FakeProcessNoteStore) FindByUserAndDescription(
	_ context.Context,
	userID uuid.UUID,
	description string,
) (*domain.ProcessNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, note := range f.Notes {
		if note.UserID == userID && note.StepsDescription == description {
			copied := *note
			return &copied, nil
		}
	}
	return nil, store.ErrProcessNoteNotFound
}

// ListByUser implements store.ProcessNoteStore.ListByUser, ordered by
// last observation descending like the real store.
func (f *FakeProcessNoteStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
	filter store.ProcessNoteFilter,
) ([]*domain.ProcessNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.ProcessNote
	for _, note := range f.Notes {
		if note.UserID != userID {
			continue
		}
		if filter.MinOccurrence > 0 && note.OccurrenceCount < filter.MinOccurrence {
			continue
		}
		if !filter.ObservedSince.IsZero() && note.LastObservedAt.Before(filter.ObservedSince) {
			continue
		}
		copied := *note
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastObservedAt.After(result[j].LastObservedAt)
	})
	if result == nil {
		result = []*domain.ProcessNote{}
	}
	return result, nil
}

// WithTx implements store.ProcessNoteStore.WithTx. The fake has no real
// transactions, so it returns itself.
func (f *FakeProcessNoteStore) WithTx(_ *sql.Tx) store.ProcessNoteStore {
	return f
}

// FakeTaskStore is an in-memory store.TaskStore.
type FakeTaskStore struct {
	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task

	// CreateErr and UpdatePriorityErr, when set, are returned by the
	// corresponding write.
	CreateErr         error
	UpdatePriorityErr error
}

// NewFakeTaskStore creates an empty fake task store.
func NewFakeTaskStore() *FakeTaskStore {
	return &FakeTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*FakeTaskStore)(nil)

// Create implements store.TaskStore.Create
func (f *FakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateErr != nil {
		return f.CreateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	stored := *task
	f.Tasks[task.ID] = &stored
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (f *FakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// UpdatePriority implements store.TaskStore.UpdatePriority
func (f *FakeTaskStore) UpdatePriority(
	_ context.Context,
	taskID uuid.UUID,
	score float64,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UpdatePriorityErr != nil {
		return f.UpdatePriorityErr
	}
	task, ok := f.Tasks[taskID]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.PriorityScore = &score
	return nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (f *FakeTaskStore) UpdateStatus(
	_ context.Context,
	taskID uuid.UUID,
	status domain.TaskStatus,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !domain.IsValidTaskStatus(status) {
		return domain.ErrInvalidTaskStatus
	}
	task, ok := f.Tasks[taskID]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	return nil
}

// ListByUserAndProcessNote implements store.TaskStore.ListByUserAndProcessNote
func (f *FakeTaskStore) ListByUserAndProcessNote(
	_ context.Context,
	userID uuid.UUID,
	processNoteID uuid.UUID,
	statusIn []domain.TaskStatus,
) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Task
	for _, task := range f.Tasks {
		if task.UserID != userID {
			continue
		}
		if task.ProcessNoteID == nil || *task.ProcessNoteID != processNoteID {
			continue
		}
		if len(statusIn) > 0 && !statusMatches(task.Status, statusIn) {
			continue
		}
		copied := *task
		result = append(result, &copied)
	}
	if result == nil {
		result = []*domain.Task{}
	}
	return result, nil
}

// ListOpenByUser implements store.TaskStore.ListOpenByUser, ordered by
// creation time ascending like the real store.
func (f *FakeTaskStore) ListOpenByUser(
	_ context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*domain.Task
	for _, task := range f.Tasks {
		if task.UserID != userID || task.IsTerminal() {
			continue
		}
		copied := *task
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if result == nil {
		result = []*domain.Task{}
	}
	return result, nil
}

// WithTx implements store.TaskStore.WithTx. The fake has no real
// transactions, so it returns itself.
func (f *FakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return f
}

func statusMatches(status domain.TaskStatus, statusIn []domain.TaskStatus) bool {
	for _, candidate := range statusIn {
		if status == candidate {
			return true
		}
	}
	return false
}
