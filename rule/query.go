package rule

import (
	"time"

	"github.com/cyp0633/librecur/internal/calmask"
)

// All returns every occurrence of the rule. It refuses unbounded rules:
// without COUNT or UNTIL the sequence never ends.
func (r *Rule) All() ([]time.Time, error) {
	if r.Unbounded() {
		return nil, ErrUnboundedRule
	}
	var out []time.Time
	it := r.Iterator()
	for {
		occ, ok := it.Next()
		if !ok {
			return out, nil
		}
		out = append(out, occ)
	}
}

// Between returns the occurrences in [begin, end], both ends inclusive.
// Iteration short-circuits at the first occurrence past end.
func (r *Rule) Between(begin, end time.Time) []time.Time {
	var out []time.Time
	it := r.Iterator()
	for {
		occ, ok := it.Next()
		if !ok {
			return out
		}
		if occ.After(end) {
			return out
		}
		if !occ.Before(begin) {
			out = append(out, occ)
		}
	}
}

// Contains reports whether t is an occurrence of the rule.
//
// Most rules are decided without enumeration: bounds check, direct BY-part
// checks against the calendar masks, then modular interval arithmetic on
// the frequency grid. COUNT and BYSETPOS make membership depend on the
// global enumeration, so those rules fall back to bounded iteration.
func (r *Rule) Contains(t time.Time) bool {
	t = t.Truncate(time.Second)
	if t.Before(r.dtstart) {
		return false
	}
	if until, ok := r.until.Get(); ok && t.After(until) {
		return false
	}
	if r.count.IsPresent() || len(r.bysetpos) != 0 {
		return r.containsByIteration(t)
	}

	year, month, day := t.Date()
	info := newIterInfo(r)
	info.rebuild(year, int(month))
	yday := yearDay(year, int(month), day)
	if len(info.filterDaySet([]int{yday})) == 0 {
		return false
	}

	hour, minute, second := t.Clock()
	if len(r.byhour) != 0 && !intsContain(r.byhour, hour) {
		return false
	}
	if len(r.byminute) != 0 && !intsContain(r.byminute, minute) {
		return false
	}
	if len(r.bysecond) != 0 && !intsContain(r.bysecond, second) {
		return false
	}

	return r.onIntervalGrid(t)
}

// onIntervalGrid checks the candidate against the frequency/interval
// modular arithmetic: the candidate's interval index relative to DTSTART
// must be a multiple of INTERVAL. Differences are civil-calendar
// differences, not absolute durations.
func (r *Rule) onIntervalGrid(t time.Time) bool {
	if r.interval == 1 {
		return true
	}
	startYear, startMonth, _ := r.dtstart.Date()
	year, month, _ := t.Date()
	switch r.freq {
	case Yearly:
		return (year-startYear)%r.interval == 0
	case Monthly:
		months := (year-startYear)*12 + int(month) - int(startMonth)
		return months%r.interval == 0
	case Weekly:
		// Weeks are counted on the WKST grid: shift the day difference by
		// DTSTART's offset into its own week.
		offset := calmask.Mod(int(dtstartWeekday(r.dtstart))-int(r.wkst), 7)
		weeks, _ := calmask.Divmod(civilDays(r.dtstart, t)+offset, 7)
		return weeks%r.interval == 0
	case Daily:
		return civilDays(r.dtstart, t)%r.interval == 0
	case Hourly:
		hours := civilDays(r.dtstart, t)*24 + t.Hour() - r.dtstart.Hour()
		return calmask.Mod(hours, r.interval) == 0
	case Minutely:
		minutes := (civilDays(r.dtstart, t)*24+t.Hour()-r.dtstart.Hour())*60 +
			t.Minute() - r.dtstart.Minute()
		return calmask.Mod(minutes, r.interval) == 0
	default: // Secondly
		seconds := ((civilDays(r.dtstart, t)*24+t.Hour()-r.dtstart.Hour())*60+
			t.Minute()-r.dtstart.Minute())*60 + t.Second() - r.dtstart.Second()
		return calmask.Mod(seconds, r.interval) == 0
	}
}

// containsByIteration decides membership by enumeration, stopping at the
// first occurrence past t.
func (r *Rule) containsByIteration(t time.Time) bool {
	it := r.Iterator()
	for {
		occ, ok := it.Next()
		if !ok {
			return false
		}
		if occ.Equal(t) {
			return true
		}
		if occ.After(t) {
			return false
		}
	}
}

// civilDays returns the number of calendar days between the dates of a and
// b, ignoring clock time and location.
func civilDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
