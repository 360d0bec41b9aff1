package rule

import (
	"time"

	"github.com/cyp0633/librecur/internal/calmask"
)

// iterInfo carries the per-year and per-month masks one iterator needs.
// rebuild refreshes the year masks when the iterator crosses into a new
// year and the nth-weekday mask when it enters a new month. Masks are per
// iterator, never shared.
type iterInfo struct {
	rule *Rule

	lastYear  int
	lastMonth int

	yearLen     int
	nextYearLen int
	firstYday   time.Time // January 1st of the current year, in the rule's location
	yearWeekday int       // weekday of January 1st, 0 = Monday

	monthMask      []int
	monthRange     []int
	monthDayMask   []int
	negMonthDayMsk []int
	weekdayMask    []int
	weekNoMask     []int
	nthWeekdayMask []int
}

func newIterInfo(r *Rule) *iterInfo {
	return &iterInfo{rule: r, lastYear: -1, lastMonth: -1}
}

// rebuild recomputes the masks that depend on the current calendar
// position.
func (info *iterInfo) rebuild(year, month int) {
	r := info.rule
	if year != info.lastYear {
		info.yearLen = calmask.YearLen(year)
		info.nextYearLen = calmask.YearLen(year + 1)
		info.firstYday = time.Date(year, time.January, 1, 0, 0, 0, 0, r.loc)
		info.yearWeekday = int(dtstartWeekday(info.firstYday))
		info.weekdayMask = calmask.WeekdaySeries[info.yearWeekday:]
		if info.yearLen == 365 {
			info.monthMask = calmask.Month365
			info.monthDayMask = calmask.MonthDay365
			info.negMonthDayMsk = calmask.NegMonthDay365
			info.monthRange = calmask.MonthRange365
		} else {
			info.monthMask = calmask.Month366
			info.monthDayMask = calmask.MonthDay366
			info.negMonthDayMsk = calmask.NegMonthDay366
			info.monthRange = calmask.MonthRange366
		}
		info.rebuildWeekNoMask(year)
	}
	if len(r.byweekdayNth) != 0 && (month != info.lastMonth || year != info.lastYear) {
		info.rebuildNthWeekdayMask(month)
	}
	info.lastYear = year
	info.lastMonth = month
}

// rebuildWeekNoMask marks the yeardays belonging to the requested ISO-8601
// week numbers. Week 1 is the first week with at least four days in the new
// year; weeks begin on the rule's WKST day.
func (info *iterInfo) rebuildWeekNoMask(year int) {
	r := info.rule
	if len(r.byweekno) == 0 {
		info.weekNoMask = nil
		return
	}

	info.weekNoMask = make([]int, info.yearLen+7)
	wkst := int(r.wkst)
	firstWkst := calmask.Mod(7-info.yearWeekday+wkst, 7)
	no1Wkst := firstWkst
	var weekYearLen int
	if no1Wkst >= 4 {
		// Week 1 starts in the previous year; its days there count
		// toward this year's week grid.
		no1Wkst = 0
		weekYearLen = info.yearLen + calmask.Mod(info.yearWeekday-wkst, 7)
	} else {
		weekYearLen = info.yearLen - no1Wkst
	}
	div, mod := calmask.Divmod(weekYearLen, 7)
	numWeeks := div + mod/4

	for _, n := range r.byweekno {
		if n < 0 {
			n += numWeeks + 1
		}
		if n <= 0 || n > numWeeks {
			continue
		}
		var i int
		if n > 1 {
			i = no1Wkst + (n-1)*7
			if no1Wkst != firstWkst {
				i -= 7 - firstWkst
			}
		} else {
			i = no1Wkst
		}
		for j := 0; j < 7; j++ {
			info.weekNoMask[i] = 1
			i++
			if info.weekdayMask[i] == wkst {
				break
			}
		}
	}

	if intsContain(r.byweekno, 1) {
		// Week 1 of the next year may claim days at the end of this one.
		i := no1Wkst + numWeeks*7
		if no1Wkst != firstWkst {
			i -= 7 - firstWkst
		}
		if i < info.yearLen {
			for j := 0; j < 7; j++ {
				info.weekNoMask[i] = 1
				i++
				if info.weekdayMask[i] == wkst {
					break
				}
			}
		}
	}

	if no1Wkst != 0 {
		// Days before this year's week 1 belong to the last week of the
		// previous year; mark them when that week number is requested.
		var lastYearWeeks int
		if !intsContain(r.byweekno, -1) {
			prevYearWeekday := int(dtstartWeekday(time.Date(year-1, time.January, 1, 0, 0, 0, 0, r.loc)))
			prevNo1Wkst := calmask.Mod(7-prevYearWeekday+wkst, 7)
			prevYearLen := calmask.YearLen(year - 1)
			if prevNo1Wkst >= 4 {
				lastYearWeeks = 52 + calmask.Mod(prevYearLen+calmask.Mod(prevYearWeekday-wkst, 7), 7)/4
			} else {
				lastYearWeeks = 52 + calmask.Mod(info.yearLen-no1Wkst, 7)/4
			}
		} else {
			lastYearWeeks = -1
		}
		if intsContain(r.byweekno, lastYearWeeks) {
			for i := 0; i < no1Wkst; i++ {
				info.weekNoMask[i] = 1
			}
		}
	}
}

// rebuildNthWeekdayMask marks the yeardays selected by BYDAY entries with
// an ordinal prefix. The ranges the ordinals index into are the current
// month for FREQ=MONTHLY, the BYMONTH months for a yearly rule with
// BYMONTH, and the whole year otherwise.
func (info *iterInfo) rebuildNthWeekdayMask(month int) {
	r := info.rule
	var ranges [][2]int
	switch r.freq {
	case Yearly:
		if len(r.bymonth) != 0 {
			for _, m := range r.bymonth {
				ranges = append(ranges, [2]int{info.monthRange[m-1], info.monthRange[m]})
			}
		} else {
			ranges = [][2]int{{0, info.yearLen}}
		}
	case Monthly:
		ranges = [][2]int{{info.monthRange[month-1], info.monthRange[month]}}
	}
	if len(ranges) == 0 {
		return
	}

	info.nthWeekdayMask = make([]int, info.yearLen)
	for _, rng := range ranges {
		first, last := rng[0], rng[1]-1
		for _, wn := range r.byweekdayNth {
			wday, n := int(wn.Weekday), wn.N
			var i int
			if n < 0 {
				i = last + (n+1)*7
				i -= calmask.Mod(info.weekdayMask[i]-wday, 7)
			} else {
				i = first + (n-1)*7
				i += calmask.Mod(7-info.weekdayMask[i]+wday, 7)
			}
			if first <= i && i <= last {
				info.nthWeekdayMask[i] = 1
			}
		}
	}
}

// daySet returns the 0-based yeardays making up the current interval.
func (info *iterInfo) daySet(freq Frequency, year, month, day int) []int {
	switch freq {
	case Yearly:
		set := make([]int, info.yearLen)
		for i := range set {
			set[i] = i
		}
		return set
	case Monthly:
		start, end := info.monthRange[month-1], info.monthRange[month]
		set := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			set = append(set, i)
		}
		return set
	case Weekly:
		// The iterator keeps day aligned to WKST, so walking forward
		// until the next week start yields exactly one week. The walk may
		// run into the mask overhang past December 31st.
		i := yearDay(year, month, day)
		set := make([]int, 0, 7)
		for j := 0; j < 7; j++ {
			set = append(set, i)
			i++
			if info.weekdayMask[i] == int(info.rule.wkst) {
				break
			}
		}
		return set
	default:
		return []int{yearDay(year, month, day)}
	}
}

// timeSet returns the (hour, minute, second) combinations for the current
// interval at sub-day frequencies. Day-or-coarser frequencies use the
// rule's precomputed timeset instead.
func (info *iterInfo) timeSet(freq Frequency, hour, minute, second int) []timeEntry {
	r := info.rule
	switch freq {
	case Hourly:
		set := buildTimeset([]int{hour}, r.byminute, r.bysecond)
		return set
	case Minutely:
		set := buildTimeset([]int{hour}, []int{minute}, r.bysecond)
		return set
	default: // Secondly
		return []timeEntry{{hour: hour, minute: minute, second: second}}
	}
}

// yearDay returns the 0-based day of year of a calendar date.
func yearDay(year, month, day int) int {
	if calmask.IsLeap(year) {
		return calmask.MonthRange366[month-1] + day - 1
	}
	return calmask.MonthRange365[month-1] + day - 1
}

func intsContain(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func weekdaysContain(values []Weekday, v int) bool {
	for _, x := range values {
		if int(x) == v {
			return true
		}
	}
	return false
}
