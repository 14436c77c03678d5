package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ProcessNote
var (
	ErrEmptyProcessNoteID      = errors.New("process note ID cannot be empty")
	ErrEmptyProcessNoteUserID  = errors.New("process note user ID cannot be empty")
	ErrEmptyStepsDescription   = errors.New("process note steps description cannot be empty")
	ErrInvalidOccurrenceCount  = errors.New("process note occurrence count must be at least 1")
	ErrObservationWindowOrder  = errors.New("process note last observed time cannot precede first observed time")
	ErrEmptySourceActivityList = errors.New("process note must reference at least one source activity")
)

// ProcessNote represents a detected recurring activity sequence for one user.
// The pair (UserID, StepsDescription) acts as the natural key: at most one
// note exists per user and canonical sequence description.
//
// UserFeedback and UserTags belong to the human reviewer. The mining pass
// never reads or writes them.
type ProcessNote struct {
	ID                uuid.UUID   `json:"id"`
	UserID            uuid.UUID   `json:"user_id"`
	InferredTaskName  string      `json:"inferred_task_name"`
	StepsDescription  string      `json:"steps_description"`
	SourceActivityIDs []uuid.UUID `json:"source_activity_ids"`
	OccurrenceCount   int         `json:"occurrence_count"`
	FirstObservedAt   time.Time   `json:"first_observed_at"`
	LastObservedAt    time.Time   `json:"last_observed_at"`
	UserFeedback      string      `json:"user_feedback,omitempty"`
	UserTags          []string    `json:"user_tags,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewProcessNote creates a new ProcessNote for a freshly promoted sequence.
// It generates a new UUID for the note ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewProcessNote(
	userID uuid.UUID,
	inferredTaskName string,
	stepsDescription string,
	sourceActivityIDs []uuid.UUID,
	occurrenceCount int,
	firstObservedAt time.Time,
	lastObservedAt time.Time,
) (*ProcessNote, error) {
	now := time.Now().UTC()
	note := &ProcessNote{
		ID:                uuid.New(),
		UserID:            userID,
		InferredTaskName:  inferredTaskName,
		StepsDescription:  stepsDescription,
		SourceActivityIDs: sourceActivityIDs,
		OccurrenceCount:   occurrenceCount,
		FirstObservedAt:   firstObservedAt,
		LastObservedAt:    lastObservedAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the ProcessNote has valid data.
// Returns an error if any field fails validation.
func (n *ProcessNote) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyProcessNoteID
	}

	if n.UserID == uuid.Nil {
		return ErrEmptyProcessNoteUserID
	}

	if n.StepsDescription == "" {
		return ErrEmptyStepsDescription
	}

	if n.OccurrenceCount < 1 {
		return ErrInvalidOccurrenceCount
	}

	if len(n.SourceActivityIDs) == 0 {
		return ErrEmptySourceActivityList
	}

	if n.LastObservedAt.Before(n.FirstObservedAt) {
		return ErrObservationWindowOrder
	}

	return nil
}

// RecordObservation applies a re-detection of the note's sequence.
// OccurrenceCount and LastObservedAt are the only fields the miner may
// change on an existing note; FirstObservedAt and SourceActivityIDs are
// fixed once set. It returns true if either value actually changed.
func (n *ProcessNote) RecordObservation(occurrenceCount int, lastObservedAt time.Time) bool {
	changed := false

	if occurrenceCount != n.OccurrenceCount {
		n.OccurrenceCount = occurrenceCount
		changed = true
	}

	if !lastObservedAt.Equal(n.LastObservedAt) {
		n.LastObservedAt = lastObservedAt
		changed = true
	}

	if changed {
		n.UpdatedAt = time.Now().UTC()
	}

	return changed
}
