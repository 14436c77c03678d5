package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()
	noteID := uuid.New()

	task, err := NewTask(
		userID,
		&noteID,
		"Review recurring process: a -> b -> c",
		TaskSourceProcessNote,
		noteID.String(),
		0.72,
		"Suggested from a recurring process observed 5 times",
	)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.Status != TaskStatusSuggested {
		t.Errorf("Expected status %s, got %s", TaskStatusSuggested, task.Status)
	}

	if task.ProcessNoteID == nil || *task.ProcessNoteID != noteID {
		t.Error("Expected process note ID to be set")
	}

	if task.PriorityScore == nil || *task.PriorityScore != 0.72 {
		t.Error("Expected priority score 0.72")
	}

	if task.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	score := 0.5
	outOfRange := 1.5

	valid := func() *Task {
		return &Task{
			ID:            uuid.New(),
			UserID:        uuid.New(),
			Description:   "Review recurring process",
			SourceType:    TaskSourceProcessNote,
			PriorityScore: &score,
			Status:        TaskStatusSuggested,
		}
	}

	testCases := []struct {
		name     string
		mutate   func(*Task)
		expected error
	}{
		{
			name:     "valid task",
			mutate:   func(task *Task) {},
			expected: nil,
		},
		{
			name:     "empty ID",
			mutate:   func(task *Task) { task.ID = uuid.Nil },
			expected: ErrEmptyTaskID,
		},
		{
			name:     "empty user ID",
			mutate:   func(task *Task) { task.UserID = uuid.Nil },
			expected: ErrEmptyTaskUserID,
		},
		{
			name:     "empty description",
			mutate:   func(task *Task) { task.Description = "" },
			expected: ErrEmptyTaskDescription,
		},
		{
			name:     "invalid status",
			mutate:   func(task *Task) { task.Status = "someday" },
			expected: ErrInvalidTaskStatus,
		},
		{
			name:     "priority out of range",
			mutate:   func(task *Task) { task.PriorityScore = &outOfRange },
			expected: ErrPriorityOutOfRange,
		},
		{
			name:     "nil priority is allowed",
			mutate:   func(task *Task) { task.PriorityScore = nil },
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			task := valid()
			tc.mutate(task)

			err := task.Validate()
			if err != tc.expected {
				t.Errorf("Expected error %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestTaskIsTerminal(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		status   TaskStatus
		terminal bool
	}{
		{TaskStatusSuggested, false},
		{TaskStatusAccepted, false},
		{TaskStatusInProgress, false},
		{TaskStatusCompleted, true},
		{TaskStatusArchived, true},
	}

	for _, tc := range testCases {
		task := &Task{Status: tc.status}
		if task.IsTerminal() != tc.terminal {
			t.Errorf("Expected IsTerminal()=%v for status %s", tc.terminal, tc.status)
		}
	}
}

func TestTaskUpdateStatus(t *testing.T) {
	t.Parallel() // Enable parallel execution
	task := &Task{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Description: "Review recurring process",
		Status:      TaskStatusSuggested,
	}

	if err := task.UpdateStatus(TaskStatusAccepted); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Status != TaskStatusAccepted {
		t.Errorf("Expected status %s, got %s", TaskStatusAccepted, task.Status)
	}

	if err := task.UpdateStatus("bogus"); err != ErrInvalidTaskStatus {
		t.Errorf("Expected ErrInvalidTaskStatus, got %v", err)
	}
	if task.Status != TaskStatusAccepted {
		t.Error("Expected status to stay unchanged after invalid update")
	}
}

func TestActiveTaskStatuses(t *testing.T) {
	t.Parallel() // Enable parallel execution
	active := ActiveTaskStatuses()

	if len(active) != 3 {
		t.Fatalf("Expected 3 active statuses, got %d", len(active))
	}

	for _, status := range active {
		task := &Task{Status: status}
		if task.IsTerminal() {
			t.Errorf("Active status %s must not be terminal", status)
		}
	}
}
