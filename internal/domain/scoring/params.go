package scoring

// Params defines all configurable parameters for priority scoring.
type Params struct {
	// BaseScore is the floor contribution every generated task receives,
	// so nothing scores zero purely from the occurrence/recency terms.
	BaseScore float64

	// OccurrenceWeight is the maximum contribution of the occurrence term.
	OccurrenceWeight float64

	// OccurrenceSaturation is the occurrence count at which the
	// occurrence term maxes out.
	OccurrenceSaturation float64

	// RecencyWeight is the maximum contribution of the recency term.
	RecencyWeight float64

	// RecencyHorizonDays is the age in days at which the recency term
	// decays to zero.
	RecencyHorizonDays float64

	// DefaultScore is assumed for tasks that carry no stored priority.
	DefaultScore float64

	// Due-date bonuses, strictly decreasing with distance to the due
	// date. Overdue must stay strictly greater than due-today.
	OverdueBonus     float64
	DueTodayBonus    float64
	DueTomorrowBonus float64
	DueSoonBonus     float64 // due within three days
	DueThisWeekBonus float64
	DueLaterBonus    float64

	// Keyword bonuses. Urgency and importance are independent and can
	// both apply to the same task.
	UrgencyBonus       float64
	ImportanceBonus    float64
	UrgencyKeywords    []string
	ImportanceKeywords []string

	// Status adjustments.
	InProgressBonus  float64
	SuggestedPenalty float64

	// Epsilon is the threshold below which a score change is considered
	// negligible and not persisted.
	Epsilon float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		BaseScore:            0.1,
		OccurrenceWeight:     0.6,
		OccurrenceSaturation: 50,
		RecencyWeight:        0.4,
		RecencyHorizonDays:   90,

		DefaultScore: 0.5,

		OverdueBonus:     0.30,
		DueTodayBonus:    0.25,
		DueTomorrowBonus: 0.20,
		DueSoonBonus:     0.15,
		DueThisWeekBonus: 0.10,
		DueLaterBonus:    0.05,

		UrgencyBonus:       0.15,
		ImportanceBonus:    0.08,
		UrgencyKeywords:    []string{"urgent", "asap"},
		ImportanceKeywords: []string{"important"},

		InProgressBonus:  0.05,
		SuggestedPenalty: 0.05,

		Epsilon: 1e-6,
	}
}
