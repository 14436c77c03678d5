package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputePriority(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		occurrenceCount int
		daysSince       float64
		expected        float64
	}{
		{
			name:            "fresh pattern at saturation",
			occurrenceCount: 50,
			daysSince:       0,
			expected:        1.0, // 0.1 + 0.6 + 0.4, clamped
		},
		{
			name:            "fresh pattern below saturation",
			occurrenceCount: 25,
			daysSince:       0,
			expected:        0.1 + 0.6*0.5 + 0.4,
		},
		{
			name:            "stale pattern loses the recency term",
			occurrenceCount: 25,
			daysSince:       90,
			expected:        0.1 + 0.6*0.5,
		},
		{
			name:            "older than the horizon never goes negative",
			occurrenceCount: 5,
			daysSince:       400,
			expected:        0.1 + 0.6*0.1,
		},
		{
			name:            "count beyond saturation is capped",
			occurrenceCount: 500,
			daysSince:       90,
			expected:        0.1 + 0.6,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lastObserved := now.Add(-time.Duration(tc.daysSince*24) * time.Hour)
			got := ComputePriority(tc.occurrenceCount, lastObserved, now, params)
			if !almostEqual(got, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestSuggestScoreDueDateLadder(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	score := 0.5

	baseTask := func(due *time.Time) *domain.Task {
		return &domain.Task{
			ID:              uuid.New(),
			UserID:          uuid.New(),
			Description:     "follow up",
			PriorityScore:   &score,
			Status:          domain.TaskStatusAccepted,
			DueDateInferred: due,
		}
	}

	testCases := []struct {
		name     string
		due      time.Time
		expected float64
	}{
		{"overdue", now.Add(-24 * time.Hour), 0.5 + params.OverdueBonus},
		{"due today", now.Add(6 * time.Hour), 0.5 + params.DueTodayBonus},
		{"due tomorrow", now.Add(30 * time.Hour), 0.5 + params.DueTomorrowBonus},
		{"due in three days", now.Add(3 * 24 * time.Hour), 0.5 + params.DueSoonBonus},
		{"due this week", now.Add(6 * 24 * time.Hour), 0.5 + params.DueThisWeekBonus},
		{"due later", now.Add(30 * 24 * time.Hour), 0.5 + params.DueLaterBonus},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			due := tc.due
			got := SuggestScore(baseTask(&due), now, params)
			if !almostEqual(got, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}

	t.Run("no due date adds nothing", func(t *testing.T) {
		got := SuggestScore(baseTask(nil), now, params)
		if !almostEqual(got, 0.5) {
			t.Errorf("Expected 0.5, got %v", got)
		}
	})

	// The ladder must strictly decrease with distance to the due date.
	ladder := []float64{
		params.OverdueBonus,
		params.DueTodayBonus,
		params.DueTomorrowBonus,
		params.DueSoonBonus,
		params.DueThisWeekBonus,
		params.DueLaterBonus,
	}
	for i := 1; i < len(ladder); i++ {
		if ladder[i] >= ladder[i-1] {
			t.Errorf("Expected due-date ladder to strictly decrease at index %d", i)
		}
	}
}

func TestSuggestScoreKeywords(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	score := 0.5

	task := func(description, notes string) *domain.Task {
		return &domain.Task{
			ID:            uuid.New(),
			UserID:        uuid.New(),
			Description:   description,
			Notes:         notes,
			PriorityScore: &score,
			Status:        domain.TaskStatusAccepted,
		}
	}

	testCases := []struct {
		name     string
		task     *domain.Task
		expected float64
	}{
		{
			name:     "urgency keyword",
			task:     task("respond to URGENT ticket", ""),
			expected: 0.5 + params.UrgencyBonus,
		},
		{
			name:     "urgency keyword in notes",
			task:     task("respond to ticket", "customer said asap"),
			expected: 0.5 + params.UrgencyBonus,
		},
		{
			name:     "importance keyword",
			task:     task("prepare important review", ""),
			expected: 0.5 + params.ImportanceBonus,
		},
		{
			name:     "urgency and importance stack",
			task:     task("urgent and important filing", ""),
			expected: 0.5 + params.UrgencyBonus + params.ImportanceBonus,
		},
		{
			name:     "repeated keywords count once",
			task:     task("urgent urgent asap", ""),
			expected: 0.5 + params.UrgencyBonus,
		},
		{
			name:     "no keywords",
			task:     task("water the plants", ""),
			expected: 0.5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SuggestScore(tc.task, now, params)
			if !almostEqual(got, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}

	if params.ImportanceBonus >= params.UrgencyBonus {
		t.Error("Expected the importance bonus to stay below the urgency bonus")
	}
}

func TestSuggestScoreStatusAndDefaults(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unset score starts from the default", func(t *testing.T) {
		task := &domain.Task{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			Description: "follow up",
			Status:      domain.TaskStatusAccepted,
		}
		got := SuggestScore(task, now, params)
		if !almostEqual(got, params.DefaultScore) {
			t.Errorf("Expected %v, got %v", params.DefaultScore, got)
		}
	})

	t.Run("in-progress tasks get a bonus", func(t *testing.T) {
		score := 0.5
		task := &domain.Task{
			ID:            uuid.New(),
			UserID:        uuid.New(),
			Description:   "follow up",
			PriorityScore: &score,
			Status:        domain.TaskStatusInProgress,
		}
		got := SuggestScore(task, now, params)
		if !almostEqual(got, 0.5+params.InProgressBonus) {
			t.Errorf("Expected %v, got %v", 0.5+params.InProgressBonus, got)
		}
	})

	t.Run("suggested tasks get a penalty", func(t *testing.T) {
		score := 0.5
		task := &domain.Task{
			ID:            uuid.New(),
			UserID:        uuid.New(),
			Description:   "follow up",
			PriorityScore: &score,
			Status:        domain.TaskStatusSuggested,
		}
		got := SuggestScore(task, now, params)
		if !almostEqual(got, 0.5-params.SuggestedPenalty) {
			t.Errorf("Expected %v, got %v", 0.5-params.SuggestedPenalty, got)
		}
	})

	t.Run("scores clamp at the top", func(t *testing.T) {
		score := 0.95
		due := now.Add(-time.Hour)
		task := &domain.Task{
			ID:              uuid.New(),
			UserID:          uuid.New(),
			Description:     "urgent important follow up",
			PriorityScore:   &score,
			Status:          domain.TaskStatusInProgress,
			DueDateInferred: &due,
		}
		got := SuggestScore(task, now, params)
		if got != 1.0 {
			t.Errorf("Expected clamped 1.0, got %v", got)
		}
	})
}

func TestNegligible(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	if !Negligible(0.5, 0.5, params) {
		t.Error("Expected identical scores to be negligible")
	}
	if !Negligible(0.5, 0.5+params.Epsilon/2, params) {
		t.Error("Expected a sub-epsilon change to be negligible")
	}
	if Negligible(0.5, 0.55, params) {
		t.Error("Expected a real change not to be negligible")
	}
	if Negligible(0.55, 0.5, params) {
		t.Error("Expected negligibility to be symmetric")
	}
}
