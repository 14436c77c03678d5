package api

import (
	"time"

	"github.com/routinely/routinely-api/internal/domain"
)

// ProcessNoteResponse represents a process note in API responses.
type ProcessNoteResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	InferredTaskName  string    `json:"inferred_task_name"`
	StepsDescription  string    `json:"steps_description"`
	SourceActivityIDs []string  `json:"source_activity_ids"`
	OccurrenceCount   int       `json:"occurrence_count"`
	FirstObservedAt   time.Time `json:"first_observed_at"`
	LastObservedAt    time.Time `json:"last_observed_at"`
	UserFeedback      string    `json:"user_feedback,omitempty"`
	UserTags          []string  `json:"user_tags,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ProcessNoteID   *string    `json:"process_note_id,omitempty"`
	Description     string     `json:"description"`
	SourceType      string     `json:"source_type"`
	PriorityScore   *float64   `json:"priority_score,omitempty"`
	Status          string     `json:"status"`
	DueDateInferred *time.Time `json:"due_date_inferred,omitempty"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func processNoteToResponse(note *domain.ProcessNote) ProcessNoteResponse {
	sourceIDs := make([]string, len(note.SourceActivityIDs))
	for i, id := range note.SourceActivityIDs {
		sourceIDs[i] = id.String()
	}

	return ProcessNoteResponse{
		ID:                note.ID.String(),
		UserID:            note.UserID.String(),
		InferredTaskName:  note.InferredTaskName,
		StepsDescription:  note.StepsDescription,
		SourceActivityIDs: sourceIDs,
		OccurrenceCount:   note.OccurrenceCount,
		FirstObservedAt:   note.FirstObservedAt,
		LastObservedAt:    note.LastObservedAt,
		UserFeedback:      note.UserFeedback,
		UserTags:          note.UserTags,
		CreatedAt:         note.CreatedAt,
		UpdatedAt:         note.UpdatedAt,
	}
}

func taskToResponse(task *domain.Task) TaskResponse {
	var noteID *string
	if task.ProcessNoteID != nil {
		s := task.ProcessNoteID.String()
		noteID = &s
	}

	return TaskResponse{
		ID:              task.ID.String(),
		UserID:          task.UserID.String(),
		ProcessNoteID:   noteID,
		Description:     task.Description,
		SourceType:      task.SourceType,
		PriorityScore:   task.PriorityScore,
		Status:          string(task.Status),
		DueDateInferred: task.DueDateInferred,
		Notes:           task.Notes,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = taskToResponse(task)
	}
	return responses
}
