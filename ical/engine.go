// Package ical composes the recurrence engine with iCalendar components:
// it extracts RRULE/RDATE/EXDATE content from emersion/go-ical components,
// expands recurring events over bounded ranges, and answers "does this
// component occur in this window" with a cached fast probe.
package ical

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/cyp0633/librecur/parse"
)

// Engine expands recurring components and answers range queries over them.
// It is safe for concurrent use.
type Engine struct {
	cache     *Cache
	config    EngineConfig
	expansion ExpansionOptions
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConfig replaces the default engine configuration.
func WithConfig(config EngineConfig) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithExpansionOptions replaces the default expansion bounds.
func WithExpansionOptions(opts ExpansionOptions) Option {
	return func(e *Engine) {
		e.expansion = opts
	}
}

// NewEngine creates a recurrence engine with the default configuration.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		config:    DefaultEngineConfig,
		expansion: DefaultExpansionOptions,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.config.CacheEnabled {
		e.cache = NewCache(e.config.CacheConfig)
	}
	return e
}

// Close releases the engine's cache resources.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// HasOccurrenceInRange checks if a recurring event has any occurrence in
// the time range without doing a full expansion.
func (e *Engine) HasOccurrenceInRange(
	masterStart, masterEnd time.Time,
	recurrence RecurrenceInfo,
	rangeStart, rangeEnd time.Time,
) (bool, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get("has", masterStart, masterEnd, recurrence, rangeStart, rangeEnd); ok {
			return cached.(bool), nil
		}
	}

	has, err := e.hasOccurrenceInRange(masterStart, masterEnd, recurrence, rangeStart, rangeEnd)
	if err != nil {
		return false, err
	}
	if e.cache != nil {
		e.cache.Set("has", masterStart, masterEnd, recurrence, rangeStart, rangeEnd, has)
	}
	return has, nil
}

func (e *Engine) hasOccurrenceInRange(
	masterStart, masterEnd time.Time,
	recurrence RecurrenceInfo,
	rangeStart, rangeEnd time.Time,
) (bool, error) {
	// An invalid RRULE is reported even when the master occurrence alone
	// would answer the query.
	if recurrence.RRULE != "" {
		if _, err := parse.RRuleWithStart(recurrence.RRULE, masterStart); err != nil {
			return false, fmt.Errorf("failed to parse RRULE %q: %w", recurrence.RRULE, err)
		}
	}

	// Fast path: the master occurrence itself. Overlap means
	// start <= rangeEnd AND end >= rangeStart.
	if !masterStart.After(rangeEnd) && !masterEnd.Before(rangeStart) {
		if !isExcluded(masterStart, recurrence.EXDATE) {
			return true, nil
		}
	}

	if recurrence.RRULE != "" {
		has, err := e.hasRRuleOccurrenceInRange(masterStart, recurrence.RRULE, recurrence.EXDATE, rangeStart, rangeEnd)
		if err != nil {
			return false, fmt.Errorf("failed to check RRULE occurrences: %w", err)
		}
		if has {
			return true, nil
		}
	}

	duration := masterEnd.Sub(masterStart)
	for _, rdate := range recurrence.RDATE {
		rdateEnd := rdate.Add(duration)
		if !rdate.After(rangeEnd) && !rdateEnd.Before(rangeStart) && !isExcluded(rdate, recurrence.EXDATE) {
			return true, nil
		}
	}

	return false, nil
}

// hasRRuleOccurrenceInRange probes the rule lazily: for large windows it
// first expands a limited slice of the range, then falls back to a bounded
// scan of the full window.
func (e *Engine) hasRRuleOccurrenceInRange(
	masterStart time.Time, rruleText string, exdates []time.Time, rangeStart, rangeEnd time.Time) (bool, error) {

	r, err := parse.RRuleWithStart(rruleText, masterStart)
	if err != nil {
		return false, fmt.Errorf("failed to parse RRULE %q: %w", rruleText, err)
	}

	limitedRangeEnd := rangeEnd
	if rangeEnd.Sub(rangeStart) > e.config.LargeRangeThreshold {
		limitedRangeEnd = rangeStart.Add(e.config.LargeRangeLimit)
	}

	occurrences := r.Between(rangeStart, limitedRangeEnd)
	for _, occurrence := range occurrences {
		if !isExcluded(occurrence, exdates) {
			return true, nil
		}
	}

	if limitedRangeEnd.Before(rangeEnd) {
		e.logger.Debug("limited probe found nothing, scanning full range",
			"rrule", rruleText, "rangeStart", rangeStart, "rangeEnd", rangeEnd)
		checked := 0
		it := r.Iterator()
		for {
			occ, ok := it.Next()
			if !ok || occ.After(rangeEnd) {
				break
			}
			if occ.Before(rangeStart) {
				continue
			}
			if !isExcluded(occ, exdates) {
				return true, nil
			}
			checked++
			if checked >= e.config.MaxProbeOccurrences {
				break
			}
		}
	}

	return false, nil
}

// ExpandInRange returns every occurrence of a recurring event overlapping
// [rangeStart, rangeEnd], in order: the master occurrence, the RRULE
// expansion and the RDATEs, minus the EXDATEs.
func (e *Engine) ExpandInRange(
	masterStart, masterEnd time.Time,
	recurrence RecurrenceInfo,
	rangeStart, rangeEnd time.Time,
) ([]TimeOccurrence, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get("expand", masterStart, masterEnd, recurrence, rangeStart, rangeEnd); ok {
			return cached.([]TimeOccurrence), nil
		}
	}

	requestedEnd := rangeEnd
	if e.expansion.MaxTimeSpan > 0 && rangeEnd.Sub(rangeStart) > e.expansion.MaxTimeSpan {
		e.logger.Debug("clamping expansion range",
			"rangeStart", rangeStart, "rangeEnd", rangeEnd, "maxTimeSpan", e.expansion.MaxTimeSpan)
		rangeEnd = rangeStart.Add(e.expansion.MaxTimeSpan)
	}

	duration := masterEnd.Sub(masterStart)
	starts := make(map[time.Time]bool)
	add := func(start time.Time) {
		if start.After(rangeEnd) || start.Add(duration).Before(rangeStart) {
			return
		}
		if isExcluded(start, recurrence.EXDATE) {
			return
		}
		starts[start] = true
	}

	if recurrence.RRULE != "" {
		r, err := parse.RRuleWithStart(recurrence.RRULE, masterStart)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RRULE %q: %w", recurrence.RRULE, err)
		}
		for _, occ := range r.Between(rangeStart.Add(-duration), rangeEnd) {
			add(occ)
		}
	} else {
		add(masterStart)
	}
	for _, rdate := range recurrence.RDATE {
		add(rdate)
	}

	occurrences := make([]TimeOccurrence, 0, len(starts))
	for start := range starts {
		occurrences = append(occurrences, TimeOccurrence{Start: start, End: start.Add(duration)})
	}
	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].Start.Before(occurrences[j].Start)
	})
	if e.expansion.MaxOccurrences > 0 && len(occurrences) > e.expansion.MaxOccurrences {
		occurrences = occurrences[:e.expansion.MaxOccurrences]
	}

	if e.cache != nil {
		e.cache.Set("expand", masterStart, masterEnd, recurrence, rangeStart, requestedEnd, occurrences)
	}
	return occurrences, nil
}

// isExcluded checks if a given time is in the EXDATE list. Date-only
// exceptions (stored as midnight UTC) match any occurrence on that date.
func isExcluded(t time.Time, exdates []time.Time) bool {
	for _, exdate := range exdates {
		if t.Equal(exdate) {
			return true
		}
		if exdate.Hour() == 0 && exdate.Minute() == 0 && exdate.Second() == 0 && exdate.Location() == time.UTC {
			occurrenceAtMidnight := time.Date(
				t.Year(), t.Month(), t.Day(),
				0, 0, 0, 0, time.UTC,
			)
			if occurrenceAtMidnight.Equal(exdate) {
				return true
			}
		}
	}
	return false
}
