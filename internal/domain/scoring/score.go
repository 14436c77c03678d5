// Package scoring implements the priority arithmetic shared by task
// generation and reprioritization. All exported functions are pure and
// return scores clamped to [0.0, 1.0].
package scoring

import (
	"strings"
	"time"

	"github.com/routinely/routinely-api/internal/domain"
)

// ComputePriority calculates the initial priority for a task generated
// from a process note.
//
// The occurrence term contributes up to OccurrenceWeight, saturating at
// OccurrenceSaturation occurrences. The recency term contributes up to
// RecencyWeight, decaying linearly to zero once the pattern has not been
// observed for RecencyHorizonDays. BaseScore keeps the floor above zero.
func ComputePriority(
	occurrenceCount int,
	lastObservedAt time.Time,
	now time.Time,
	params *Params,
) float64 {
	occurrenceRatio := float64(occurrenceCount) / params.OccurrenceSaturation
	if occurrenceRatio > 1.0 {
		occurrenceRatio = 1.0
	}

	daysSince := now.Sub(lastObservedAt).Hours() / 24
	recencyRatio := (params.RecencyHorizonDays - daysSince) / params.RecencyHorizonDays
	if recencyRatio < 0 {
		recencyRatio = 0
	}

	score := params.BaseScore +
		params.OccurrenceWeight*occurrenceRatio +
		params.RecencyWeight*recencyRatio

	return Clamp(score)
}

// SuggestScore recomputes a task's priority from heuristics over its due
// date, text, and status. The stored score (DefaultScore when unset) is
// the starting point; bonuses and penalties accumulate on top of it.
func SuggestScore(task *domain.Task, now time.Time, params *Params) float64 {
	score := params.DefaultScore
	if task.PriorityScore != nil {
		score = *task.PriorityScore
	}

	score += dueDateBonus(task.DueDateInferred, now, params)
	score += keywordBonus(task.Description+" "+task.Notes, params)
	score += statusAdjustment(task.Status, params)

	return Clamp(score)
}

// dueDateBonus rewards approaching or missed due dates. The ladder is
// strictly decreasing with distance: overdue > today > tomorrow > within
// three days > within a week > later. No due date contributes nothing.
func dueDateBonus(due *time.Time, now time.Time, params *Params) float64 {
	if due == nil {
		return 0
	}

	daysUntil := int(due.Sub(now).Hours() / 24)
	switch {
	case due.Before(now):
		return params.OverdueBonus
	case daysUntil < 1:
		return params.DueTodayBonus
	case daysUntil < 2:
		return params.DueTomorrowBonus
	case daysUntil < 4:
		return params.DueSoonBonus
	case daysUntil < 8:
		return params.DueThisWeekBonus
	default:
		return params.DueLaterBonus
	}
}

// keywordBonus scans the task text case-insensitively. The urgency and
// importance bonuses are independent; both can apply at once.
func keywordBonus(text string, params *Params) float64 {
	lowered := strings.ToLower(text)

	var bonus float64
	if containsAny(lowered, params.UrgencyKeywords) {
		bonus += params.UrgencyBonus
	}
	if containsAny(lowered, params.ImportanceKeywords) {
		bonus += params.ImportanceBonus
	}
	return bonus
}

func statusAdjustment(status domain.TaskStatus, params *Params) float64 {
	switch status {
	case domain.TaskStatusInProgress:
		return params.InProgressBonus
	case domain.TaskStatusSuggested:
		return -params.SuggestedPenalty
	default:
		return 0
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Clamp bounds a score to the valid [0.0, 1.0] priority range.
func Clamp(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Negligible reports whether a score change is too small to persist.
func Negligible(before, after float64, params *Params) bool {
	diff := after - before
	if diff < 0 {
		diff = -diff
	}
	return diff <= params.Epsilon
}
