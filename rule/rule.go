package rule

import (
	"sort"
	"time"

	"github.com/samber/mo"
)

// Rule is a validated, normalized recurrence rule. It is immutable after
// construction and may be shared freely: every Iterator spawned from it
// owns its own traversal state.
type Rule struct {
	origOptions Options

	freq     Frequency
	dtstart  time.Time
	interval int
	wkst     Weekday
	count    mo.Option[int]
	until    mo.Option[time.Time]

	bysetpos []int
	bymonth  []int
	// BYMONTHDAY is split by sign: a day matches if its positive day of
	// month is in bymonthday or its day-from-end is in bynmonthday.
	bymonthday   []int
	bynmonthday  []int
	byyearday    []int
	byweekno     []int
	byweekday    []Weekday
	byweekdayNth []WeekdayNum
	byhour       []int
	byminute     []int
	bysecond     []int

	// Precomputed (hour, minute, second) product for day-or-coarser
	// frequencies; sub-day frequencies recompute their timeset as the
	// iterator advances.
	timeset []timeEntry

	loc *time.Location
}

// timeEntry is one cell of the BYHOUR x BYMINUTE x BYSECOND product.
type timeEntry struct {
	hour, minute, second int
}

// New validates opts and builds the immutable rule. Unset parts receive
// their RFC 5545 defaults, seeded from DTSTART where the RFC says so.
func New(opts Options) (*Rule, error) {
	if err := validateBounds(opts); err != nil {
		return nil, err
	}
	if err := validateCrossPart(opts); err != nil {
		return nil, err
	}

	r := &Rule{origOptions: opts}
	r.freq = opts.Freq

	if opts.Dtstart.IsZero() {
		loc := opts.Location
		if loc == nil {
			loc = time.UTC
		}
		opts.Dtstart = time.Now().In(loc)
	}
	r.dtstart = opts.Dtstart.Truncate(time.Second)
	r.loc = r.dtstart.Location()

	r.interval = opts.Interval
	if r.interval == 0 {
		r.interval = 1
	}
	r.wkst = opts.Wkst
	if opts.Count != 0 {
		r.count = mo.Some(opts.Count)
	}
	if !opts.Until.IsZero() {
		r.until = mo.Some(opts.Until)
	}

	r.bysetpos = append([]int(nil), opts.Bysetpos...)

	// A rule with no day-selecting part repeats on DTSTART's own position
	// within the frequency period.
	bymonth := opts.Bymonth
	bymonthday := opts.Bymonthday
	byweekday := opts.Byweekday
	if len(opts.Byweekno) == 0 && len(opts.Byyearday) == 0 &&
		len(opts.Bymonthday) == 0 && len(opts.Byweekday) == 0 {
		switch r.freq {
		case Yearly:
			if len(bymonth) == 0 {
				bymonth = []int{int(r.dtstart.Month())}
			}
			bymonthday = []int{r.dtstart.Day()}
		case Monthly:
			bymonthday = []int{r.dtstart.Day()}
		case Weekly:
			byweekday = []WeekdayNum{{Weekday: dtstartWeekday(r.dtstart)}}
		}
	}

	r.bymonth = append([]int(nil), bymonth...)
	r.byyearday = append([]int(nil), opts.Byyearday...)
	r.byweekno = append([]int(nil), opts.Byweekno...)
	for _, mday := range bymonthday {
		if mday > 0 {
			r.bymonthday = append(r.bymonthday, mday)
		} else {
			r.bynmonthday = append(r.bynmonthday, mday)
		}
	}
	for _, wd := range byweekday {
		if wd.N == 0 {
			r.byweekday = append(r.byweekday, wd.Weekday)
		} else {
			r.byweekdayNth = append(r.byweekdayNth, wd)
		}
	}

	if len(opts.Byhour) == 0 {
		if r.freq < Hourly {
			r.byhour = []int{r.dtstart.Hour()}
		}
	} else {
		r.byhour = append([]int(nil), opts.Byhour...)
	}
	if len(opts.Byminute) == 0 {
		if r.freq < Minutely {
			r.byminute = []int{r.dtstart.Minute()}
		}
	} else {
		r.byminute = append([]int(nil), opts.Byminute...)
	}
	if len(opts.Bysecond) == 0 {
		if r.freq < Secondly {
			r.bysecond = []int{r.dtstart.Second()}
		}
	} else {
		r.bysecond = append([]int(nil), opts.Bysecond...)
	}

	if r.freq < Hourly {
		r.timeset = buildTimeset(r.byhour, r.byminute, r.bysecond)
	}
	return r, nil
}

// buildTimeset is the sorted cartesian product of the time-part sets.
func buildTimeset(hours, minutes, seconds []int) []timeEntry {
	set := make([]timeEntry, 0, len(hours)*len(minutes)*len(seconds))
	for _, h := range hours {
		for _, m := range minutes {
			for _, s := range seconds {
				set = append(set, timeEntry{hour: h, minute: m, second: s})
			}
		}
	}
	sortTimeset(set)
	return set
}

func sortTimeset(set []timeEntry) {
	sort.Slice(set, func(i, j int) bool {
		a, b := set[i], set[j]
		if a.hour != b.hour {
			return a.hour < b.hour
		}
		if a.minute != b.minute {
			return a.minute < b.minute
		}
		return a.second < b.second
	})
}

// dtstartWeekday converts time.Time's Sunday-based weekday to the engine's
// Monday-based one.
func dtstartWeekday(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Options returns a copy of the options the rule was built from, before
// normalization and defaulting.
func (r *Rule) Options() Options {
	return r.origOptions
}

// Dtstart returns the rule's start timestamp (truncated to seconds).
func (r *Rule) Dtstart() time.Time {
	return r.dtstart
}

// Freq returns the rule's base frequency.
func (r *Rule) Freq() Frequency {
	return r.freq
}

// Unbounded reports whether the rule has neither COUNT nor UNTIL and
// therefore denotes an infinite sequence.
func (r *Rule) Unbounded() bool {
	return r.count.IsAbsent() && r.until.IsAbsent()
}
