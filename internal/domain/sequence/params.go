package sequence

// Params defines all configurable parameters for pattern mining.
type Params struct {
	// MinLen is the shortest window length considered, in activities.
	MinLen int

	// MaxLen is the longest window length considered, in activities.
	MaxLen int

	// RecurrenceThreshold is the minimum number of observed instances
	// before a pattern is promoted to a process note.
	RecurrenceThreshold int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() Params {
	return Params{
		MinLen:              3,
		MaxLen:              7,
		RecurrenceThreshold: 3,
	}
}

// Normalize fills zero values with defaults and repairs inverted bounds so
// the miner never has to special-case degenerate configurations.
func (p Params) Normalize() Params {
	defaults := NewDefaultParams()

	if p.MinLen <= 0 {
		p.MinLen = defaults.MinLen
	}
	if p.MaxLen <= 0 {
		p.MaxLen = defaults.MaxLen
	}
	if p.MaxLen < p.MinLen {
		p.MaxLen = p.MinLen
	}
	if p.RecurrenceThreshold <= 0 {
		p.RecurrenceThreshold = defaults.RecurrenceThreshold
	}

	return p
}
