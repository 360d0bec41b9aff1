package rule

import (
	"sort"
	"time"

	"github.com/cyp0633/librecur/internal/calmask"
)

// maxCycles bounds how many empty intervals the driver may cross without
// emitting before it gives up. The ceilings cover the 28-year Gregorian
// sub-cycle: any rule that can produce an occurrence at all does so within
// that many intervals of its frequency. For the sub-day frequencies the
// value bounds only the inner time-advance loop; their interval guard uses
// the daily ceiling.
var maxCycles = map[Frequency]int{
	Yearly:   28,
	Monthly:  336,
	Weekly:   1461,
	Daily:    10227,
	Hourly:   24,
	Minutely: 1440,
	Secondly: 86400,
}

// Iterator walks a rule's occurrences in non-decreasing order. It owns all
// mutable traversal state; the rule it came from is never touched.
type Iterator struct {
	rule *Rule
	info *iterInfo

	year, month, day     int
	hour, minute, second int

	timeset  []timeEntry
	remain   []time.Time
	total    int
	finished bool
}

// Iterator spawns a fresh lazy iterator over the rule's occurrences.
func (r *Rule) Iterator() *Iterator {
	it := &Iterator{rule: r, info: newIterInfo(r)}

	dt := r.dtstart
	if r.freq == Weekly {
		// Align to the week start so each weekly dayset is one full
		// WKST-based week. Occurrences before DTSTART are skipped at
		// emission.
		offset := calmask.Mod(int(dtstartWeekday(dt))-int(r.wkst), 7)
		dt = dt.AddDate(0, 0, -offset)
	}
	it.year, it.month, it.day = dt.Year(), int(dt.Month()), dt.Day()
	it.hour, it.minute, it.second = dt.Clock()

	if r.freq < Hourly {
		it.timeset = r.timeset
	} else if r.freq >= Hourly && len(r.byhour) != 0 && !intsContain(r.byhour, it.hour) ||
		r.freq >= Minutely && len(r.byminute) != 0 && !intsContain(r.byminute, it.minute) ||
		r.freq >= Secondly && len(r.bysecond) != 0 && !intsContain(r.bysecond, it.second) {
		// The start time itself is filtered out; the first advance phase
		// must find the first legal time.
		it.timeset = nil
	} else {
		it.timeset = it.info.timeSet(r.freq, it.hour, it.minute, it.second)
	}
	return it
}

// Next returns the next occurrence, or false when the sequence ends.
func (it *Iterator) Next() (time.Time, bool) {
	if len(it.remain) == 0 && !it.finished {
		it.generate()
	}
	if len(it.remain) == 0 {
		return time.Time{}, false
	}
	value := it.remain[0]
	it.remain = it.remain[1:]
	return value, true
}

// generate runs the interval loop until at least one occurrence is buffered
// or the sequence terminates.
func (it *Iterator) generate() {
	r := it.rule

	// The guard counts consecutive intervals crossed without buffering an
	// occurrence; sub-day frequencies share the daily ceiling since their
	// dayset is a single day.
	guardFreq := r.freq
	if guardFreq > Daily {
		guardFreq = Daily
	}
	guard := maxCycles[guardFreq]

	for cycles := 0; len(it.remain) == 0; cycles++ {
		if cycles >= guard {
			it.finished = true
			return
		}

		it.info.rebuild(it.year, it.month)
		dayset := it.info.daySet(r.freq, it.year, it.month, it.day)
		kept := it.info.filterDaySet(dayset)

		if len(r.bysetpos) != 0 && len(it.timeset) != 0 {
			if !it.emitSetpos(kept) {
				return
			}
		} else {
			if !it.emitAll(kept) {
				return
			}
		}

		if !it.advance(len(kept) == 0) {
			return
		}
	}
}

// filterDaySet applies the BY-part cascade to the interval's yeardays.
func (info *iterInfo) filterDaySet(dayset []int) []int {
	r := info.rule
	kept := dayset[:0:len(dayset)]
	for _, i := range dayset {
		if len(r.bymonth) != 0 && !intsContain(r.bymonth, info.monthMask[i]) {
			continue
		}
		if len(r.byweekno) != 0 && info.weekNoMask[i] == 0 {
			continue
		}
		if len(r.byweekday) != 0 && !weekdaysContain(r.byweekday, info.weekdayMask[i]) {
			continue
		}
		if len(r.byweekdayNth) != 0 && info.nthWeekdayMask[i] == 0 {
			continue
		}
		if len(r.byyearday) != 0 {
			if i < info.yearLen {
				if !intsContain(r.byyearday, i+1) && !intsContain(r.byyearday, i-info.yearLen) {
					continue
				}
			} else {
				// Overhang days normalize against the next year.
				if !intsContain(r.byyearday, i+1-info.yearLen) && !intsContain(r.byyearday, -info.nextYearLen+i-info.yearLen) {
					continue
				}
			}
		}
		if (len(r.bymonthday) != 0 || len(r.bynmonthday) != 0) &&
			!intsContain(r.bymonthday, info.monthDayMask[i]) &&
			!intsContain(r.bynmonthday, info.negMonthDayMsk[i]) {
			continue
		}
		kept = append(kept, i)
	}
	return kept
}

// occurrence builds a concrete timestamp from a yearday and a time entry.
func (it *Iterator) occurrence(yday int, te timeEntry) time.Time {
	date := it.info.firstYday.AddDate(0, 0, yday)
	return time.Date(date.Year(), date.Month(), date.Day(),
		te.hour, te.minute, te.second, 0, it.rule.loc)
}

// emit buffers a candidate if it is not before DTSTART, honoring UNTIL and
// COUNT. It reports whether iteration should continue.
func (it *Iterator) emit(res time.Time) bool {
	r := it.rule
	if until, ok := r.until.Get(); ok && res.After(until) {
		it.finished = true
		return false
	}
	if res.Before(r.dtstart) {
		return true
	}
	it.total++
	it.remain = append(it.remain, res)
	if count, ok := r.count.Get(); ok && it.total >= count {
		it.finished = true
		return false
	}
	return true
}

// emitAll walks the (dayset x timeset) product in order.
func (it *Iterator) emitAll(kept []int) bool {
	for _, i := range kept {
		for _, te := range it.timeset {
			if !it.emit(it.occurrence(i, te)) {
				return false
			}
		}
	}
	return true
}

// emitSetpos projects the BYSETPOS positions out of the interval's
// (dayset x timeset) product, deduplicates, sorts and emits them.
func (it *Iterator) emitSetpos(kept []int) bool {
	r := it.rule
	var poslist []time.Time
	for _, pos := range r.bysetpos {
		var dayPos, timePos int
		if pos < 0 {
			dayPos, timePos = calmask.Divmod(pos, len(it.timeset))
		} else {
			dayPos, timePos = calmask.Divmod(pos-1, len(it.timeset))
		}
		yday, ok := subscript(kept, dayPos)
		if !ok {
			continue
		}
		res := it.occurrence(yday, it.timeset[timePos])
		if !timesContain(poslist, res) {
			poslist = append(poslist, res)
		}
	}
	sort.Slice(poslist, func(i, j int) bool { return poslist[i].Before(poslist[j]) })
	for _, res := range poslist {
		if !it.emit(res) {
			return false
		}
	}
	return true
}

// advance moves the calendar position to the next interval. emptyDay tells
// the sub-day frequencies that the whole current day was filtered out, so
// they can skip straight to the last cycle before midnight. It reports
// whether iteration should continue.
func (it *Iterator) advance(emptyDay bool) bool {
	r := it.rule
	fixday := false

	switch r.freq {
	case Yearly:
		it.year += r.interval
	case Monthly:
		it.month += r.interval
		if it.month > 12 {
			div, mod := calmask.Divmod(it.month, 12)
			it.month = mod
			it.year += div
			if it.month == 0 {
				it.month = 12
				it.year--
			}
		}
	case Weekly:
		// day is already WKST-aligned, so a plain 7-day stride keeps it so.
		it.day += r.interval * 7
		fixday = true
	case Daily:
		it.day += r.interval
		fixday = true
	case Hourly:
		if emptyDay {
			it.hour += ((23 - it.hour) / r.interval) * r.interval
		}
		found := false
		for j := 0; j < maxCycles[Hourly]; j++ {
			it.hour += r.interval
			div, mod := calmask.Divmod(it.hour, 24)
			if div != 0 {
				it.hour = mod
				it.day += div
				fixday = true
			}
			if len(r.byhour) == 0 || intsContain(r.byhour, it.hour) {
				found = true
				break
			}
		}
		if !found {
			it.finished = true
			return false
		}
		it.timeset = it.info.timeSet(r.freq, it.hour, it.minute, it.second)
	case Minutely:
		if emptyDay {
			it.minute += ((1439 - (it.hour*60 + it.minute)) / r.interval) * r.interval
		}
		found := false
		for j := 0; j < maxCycles[Minutely]; j++ {
			it.minute += r.interval
			div, mod := calmask.Divmod(it.minute, 60)
			if div != 0 {
				it.minute = mod
				it.hour += div
				div, mod = calmask.Divmod(it.hour, 24)
				if div != 0 {
					it.hour = mod
					it.day += div
					fixday = true
				}
			}
			if (len(r.byhour) == 0 || intsContain(r.byhour, it.hour)) &&
				(len(r.byminute) == 0 || intsContain(r.byminute, it.minute)) {
				found = true
				break
			}
		}
		if !found {
			it.finished = true
			return false
		}
		it.timeset = it.info.timeSet(r.freq, it.hour, it.minute, it.second)
	case Secondly:
		if emptyDay {
			it.second += ((86399 - (it.hour*3600 + it.minute*60 + it.second)) / r.interval) * r.interval
		}
		found := false
		for j := 0; j < maxCycles[Secondly]; j++ {
			it.second += r.interval
			div, mod := calmask.Divmod(it.second, 60)
			if div != 0 {
				it.second = mod
				it.minute += div
				div, mod = calmask.Divmod(it.minute, 60)
				if div != 0 {
					it.minute = mod
					it.hour += div
					div, mod = calmask.Divmod(it.hour, 24)
					if div != 0 {
						it.hour = mod
						it.day += div
						fixday = true
					}
				}
			}
			if (len(r.byhour) == 0 || intsContain(r.byhour, it.hour)) &&
				(len(r.byminute) == 0 || intsContain(r.byminute, it.minute)) &&
				(len(r.bysecond) == 0 || intsContain(r.bysecond, it.second)) {
				found = true
				break
			}
		}
		if !found {
			it.finished = true
			return false
		}
		it.timeset = it.info.timeSet(r.freq, it.hour, it.minute, it.second)
	}

	if fixday && it.day > 28 {
		daysInMonth := calmask.DaysIn(it.year, it.month)
		for it.day > daysInMonth {
			it.day -= daysInMonth
			it.month++
			if it.month == 13 {
				it.month = 1
				it.year++
			}
			daysInMonth = calmask.DaysIn(it.year, it.month)
		}
	}
	return true
}

// subscript indexes a slice the way a BYSETPOS position does: negative
// indices count from the end.
func subscript(values []int, index int) (int, bool) {
	if index < 0 {
		index += len(values)
	}
	if index < 0 || index >= len(values) {
		return 0, false
	}
	return values[index], true
}

func timesContain(values []time.Time, t time.Time) bool {
	for _, v := range values {
		if v.Equal(t) {
			return true
		}
	}
	return false
}
