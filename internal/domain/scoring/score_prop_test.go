package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	"github.com/routinely/routinely-api/internal/domain"
)

// Every score the package produces must land in [0, 1], no matter how
// extreme the inputs are.
func TestComputePriorityStaysInRange(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rapid.Check(t, func(t *rapid.T) {
		occurrenceCount := rapid.IntRange(0, 1_000_000).Draw(t, "occurrenceCount")
		offsetHours := rapid.IntRange(-24*365*10, 24*365*10).Draw(t, "offsetHours")
		lastObserved := now.Add(time.Duration(offsetHours) * time.Hour)

		score := ComputePriority(occurrenceCount, lastObserved, now, params)
		if score < 0.0 || score > 1.0 {
			t.Fatalf("score %v out of range for count=%d offset=%dh",
				score, occurrenceCount, offsetHours)
		}
	})
}

func TestSuggestScoreStaysInRange(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	statuses := []domain.TaskStatus{
		domain.TaskStatusSuggested,
		domain.TaskStatusAccepted,
		domain.TaskStatusInProgress,
		domain.TaskStatusCompleted,
		domain.TaskStatusArchived,
	}

	rapid.Check(t, func(t *rapid.T) {
		task := &domain.Task{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			Description: rapid.String().Draw(t, "description"),
			Notes:       rapid.String().Draw(t, "notes"),
			Status:      rapid.SampledFrom(statuses).Draw(t, "status"),
		}

		if rapid.Bool().Draw(t, "hasScore") {
			stored := rapid.Float64Range(0.0, 1.0).Draw(t, "stored")
			task.PriorityScore = &stored
		}
		if rapid.Bool().Draw(t, "hasDue") {
			offsetHours := rapid.IntRange(-24*90, 24*90).Draw(t, "dueOffsetHours")
			due := now.Add(time.Duration(offsetHours) * time.Hour)
			task.DueDateInferred = &due
		}

		score := SuggestScore(task, now, params)
		if score < 0.0 || score > 1.0 {
			t.Fatalf("score %v out of range for task %+v", score, task)
		}
	})
}
