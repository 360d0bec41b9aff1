package ical

import (
	"time"
)

// RecurrenceInfo is the recurrence-related content of a calendar component:
// the RRULE text plus the explicit additions and exclusions that modify it.
type RecurrenceInfo struct {
	RRULE        string      // the RRULE content (without the "RRULE:" prefix)
	RDATE        []time.Time // additional recurrence dates
	EXDATE       []time.Time // excluded occurrences
	RecurrenceID *time.Time  // for exception instances, the occurrence being overridden
}

// TimeOccurrence is a single concrete occurrence of a recurring component.
type TimeOccurrence struct {
	Start time.Time
	End   time.Time
}

// ExpansionOptions bounds a recurrence expansion.
type ExpansionOptions struct {
	MaxOccurrences int           // 0 = unlimited
	MaxTimeSpan    time.Duration // 0 = unlimited
}

// DefaultExpansionOptions keeps unbounded rules from expanding forever.
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 1000,
	MaxTimeSpan:    2 * 365 * 24 * time.Hour,
}
