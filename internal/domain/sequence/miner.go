package sequence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/routinely-api/internal/domain"
)

// StepSeparator joins activity types into the canonical description of a
// pattern. The description doubles as the natural key for a user+pattern
// pair, so it must be stable across mining passes.
const StepSeparator = " -> "

// taskNameMaxSteps caps how many steps are spelled out in an inferred
// task name before it is abbreviated.
const taskNameMaxSteps = 4

// Instance is one contiguous occurrence of a pattern: the underlying
// activities in window order.
type Instance []domain.Activity

// Start returns the timestamp of the instance's first activity.
func (in Instance) Start() time.Time {
	return in[0].Timestamp
}

// End returns the timestamp of the instance's last activity.
func (in Instance) End() time.Time {
	return in[len(in)-1].Timestamp
}

// ActivityIDs returns the ordered activity ids backing the instance.
func (in Instance) ActivityIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(in))
	for i, a := range in {
		ids[i] = a.ID
	}
	return ids
}

// Summary describes one pattern that met the recurrence threshold,
// carrying everything a caller needs to create or refresh a process note.
type Summary struct {
	// Steps is the ordered tuple of activity types identifying the pattern.
	Steps []string

	// Description is the canonical string encoding of Steps.
	Description string

	// InferredTaskName is a human-readable label derived from Steps.
	InferredTaskName string

	// OccurrenceCount is the number of observed instances, overlapping
	// instances included.
	OccurrenceCount int

	// FirstObservedAt is the timestamp of the first activity of the
	// chronologically earliest instance.
	FirstObservedAt time.Time

	// LastObservedAt is the timestamp of the last activity of the
	// latest-ending instance. Instances are compared by end time, not
	// start time: with overlapping windows the latest start does not
	// imply the latest end.
	LastObservedAt time.Time

	// SourceActivityIDs are the activity ids of the first instance only.
	SourceActivityIDs []uuid.UUID
}

// Mine enumerates every contiguous window of each length in
// [params.MinLen, params.MaxLen] over the given activities, groups the
// windows by their ordered activity-type tuple, and returns a Summary for
// each pattern observed at least params.RecurrenceThreshold times.
//
// The activities slice must be ordered by timestamp ascending. Fewer than
// MinLen activities is a legitimate empty result, not an error. Summaries
// are returned sorted by description so mining passes are deterministic.
func Mine(activities []domain.Activity, params Params) []Summary {
	params = params.Normalize()

	if len(activities) < params.MinLen {
		return nil
	}

	instances := collectInstances(activities, params)

	var summaries []Summary
	for desc, occurrences := range instances {
		if len(occurrences) < params.RecurrenceThreshold {
			continue
		}
		summaries = append(summaries, summarize(desc, occurrences))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Description < summaries[j].Description
	})

	return summaries
}

// collectInstances records every contiguous window instance, grouped by
// the pattern's canonical description. Instances for one pattern end up
// ordered by start time because windows are enumerated left to right.
func collectInstances(activities []domain.Activity, params Params) map[string][]Instance {
	instances := make(map[string][]Instance)

	for length := params.MinLen; length <= params.MaxLen; length++ {
		if length > len(activities) {
			break
		}
		for start := 0; start+length <= len(activities); start++ {
			window := Instance(activities[start : start+length])
			desc := describeWindow(window)
			instances[desc] = append(instances[desc], window)
		}
	}

	return instances
}

// summarize folds a pattern's instances into a Summary. The earliest
// instance supplies FirstObservedAt and SourceActivityIDs; the
// latest-ending instance supplies LastObservedAt.
func summarize(desc string, occurrences []Instance) Summary {
	first := occurrences[0]

	latestEnd := occurrences[0]
	for _, in := range occurrences[1:] {
		if in.End().After(latestEnd.End()) {
			latestEnd = in
		}
	}

	steps := make([]string, len(first))
	for i, a := range first {
		steps[i] = a.ActivityType
	}

	return Summary{
		Steps:             steps,
		Description:       desc,
		InferredTaskName:  InferTaskName(steps),
		OccurrenceCount:   len(occurrences),
		FirstObservedAt:   first[0].Timestamp,
		LastObservedAt:    latestEnd[len(latestEnd)-1].Timestamp,
		SourceActivityIDs: first.ActivityIDs(),
	}
}

// Describe renders an ordered tuple of activity types as the canonical
// pattern description.
func Describe(steps []string) string {
	return strings.Join(steps, StepSeparator)
}

func describeWindow(window Instance) string {
	var b strings.Builder
	for i, a := range window {
		if i > 0 {
			b.WriteString(StepSeparator)
		}
		b.WriteString(a.ActivityType)
	}
	return b.String()
}

// InferTaskName derives a human-readable task label from a pattern's
// steps. Short patterns are spelled out; longer ones are abbreviated to
// their first and last steps.
func InferTaskName(steps []string) string {
	if len(steps) <= taskNameMaxSteps {
		return fmt.Sprintf("Review recurring process: %s", Describe(steps))
	}
	return fmt.Sprintf(
		"Review recurring process: %s%s...%s%s (%d steps)",
		steps[0], StepSeparator, StepSeparator, steps[len(steps)-1], len(steps),
	)
}
