package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task recommendation
type TaskStatus string

// Possible task status values
const (
	TaskStatusSuggested  TaskStatus = "suggested"
	TaskStatusAccepted   TaskStatus = "accepted"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusArchived   TaskStatus = "archived"
)

// TaskSourceProcessNote is the SourceType for tasks generated from a
// recurring process note.
const TaskSourceProcessNote = "process_note"

// Common validation errors for Task
var (
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID      = errors.New("task user ID cannot be empty")
	ErrEmptyTaskDescription = errors.New("task description cannot be empty")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrPriorityOutOfRange   = errors.New("task priority score must be between 0.0 and 1.0")
)

// Task is an actionable recommendation, optionally traced back to the
// ProcessNote that spawned it. PriorityScore is nullable: tasks created
// through other channels may carry no score until the prioritizer runs.
type Task struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	ProcessNoteID    *uuid.UUID `json:"process_note_id,omitempty"`
	Description      string     `json:"description"`
	SourceType       string     `json:"source_type"`
	SourceIdentifier string     `json:"source_identifier"`
	PriorityScore    *float64   `json:"priority_score,omitempty"`
	Status           TaskStatus `json:"status"`
	DueDateInferred  *time.Time `json:"due_date_inferred,omitempty"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewTask creates a new Task in the suggested state. It generates a new
// UUID for the task ID and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	processNoteID *uuid.UUID,
	description string,
	sourceType string,
	sourceIdentifier string,
	priorityScore float64,
	notes string,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:               uuid.New(),
		UserID:           userID,
		ProcessNoteID:    processNoteID,
		Description:      description,
		SourceType:       sourceType,
		SourceIdentifier: sourceIdentifier,
		PriorityScore:    &priorityScore,
		Status:           TaskStatusSuggested,
		Notes:            notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if t.Description == "" {
		return ErrEmptyTaskDescription
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.PriorityScore != nil && (*t.PriorityScore < 0.0 || *t.PriorityScore > 1.0) {
		return ErrPriorityOutOfRange
	}

	return nil
}

// UpdateStatus updates the task's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !IsValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// IsTerminal reports whether the task has reached a terminal state.
// Terminal tasks are never re-scored by the prioritizer.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusArchived
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusSuggested, TaskStatusAccepted, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusArchived:
		return true
	default:
		return false
	}
}

// ActiveTaskStatuses returns the statuses indicating a recommendation has
// not yet reached a terminal state. A process note may have at most one
// task in one of these statuses at any time.
func ActiveTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusSuggested, TaskStatusAccepted, TaskStatusInProgress}
}
