// Package calmask holds the precomputed civil-calendar lookup tables the
// recurrence engine indexes by 0-based yearday, plus the small integer
// helpers (floored division, positive modulo) the mask arithmetic relies on.
//
// The month and day masks cover a full year (365 or 366 days) followed by
// the first seven days of the next year: 372 entries for a common year, 373
// for a leap year. The overhang is what lets a weekly
// dayset run across the year boundary without special cases.
package calmask

// Month mask: month number (1..12) at each yearday, then January again for
// the seven overhang days.
var (
	Month366 []int
	Month365 []int

	// Day of month (1..31) at each yearday.
	MonthDay366 []int
	MonthDay365 []int

	// Day of month counted from the end (-31..-1) at each yearday.
	NegMonthDay366 []int
	NegMonthDay365 []int

	// Repeating 0..6 weekday series (0 = Monday). Sliced from the weekday
	// of January 1st to obtain a per-year yearday-to-weekday mask.
	WeekdaySeries []int

	// Cumulative day count at the start of each month, so
	// MonthRangeN[m-1]..MonthRangeN[m] is the yearday range of month m.
	MonthRange366 = []int{0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366}
	MonthRange365 = []int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}
)

func init() {
	Month366 = concat(repeat(1, 31), repeat(2, 29), repeat(3, 31),
		repeat(4, 30), repeat(5, 31), repeat(6, 30), repeat(7, 31),
		repeat(8, 31), repeat(9, 30), repeat(10, 31), repeat(11, 30),
		repeat(12, 31), repeat(1, 7))
	// A common year is the leap-year mask with February 29th removed.
	Month365 = concat(Month366[:59], Month366[60:])

	d29, d30, d31 := span(1, 30), span(1, 31), span(1, 32)
	MonthDay366 = concat(d31, d29, d31, d30, d31, d30, d31, d31, d30, d31, d30, d31, d31[:7])
	MonthDay365 = concat(MonthDay366[:59], MonthDay366[60:])

	n29, n30, n31 := span(-29, 0), span(-30, 0), span(-31, 0)
	NegMonthDay366 = concat(n31, n29, n31, n30, n31, n30, n31, n31, n30, n31, n30, n31, n31[:7])
	NegMonthDay365 = concat(NegMonthDay366[:31], NegMonthDay366[32:])

	for i := 0; i < 55; i++ {
		WeekdaySeries = append(WeekdaySeries, 0, 1, 2, 3, 4, 5, 6)
	}
}

func repeat(value, count int) []int {
	result := make([]int, count)
	for i := range result {
		result[i] = value
	}
	return result
}

// span returns the integers in the half-open range [start, end).
func span(start, end int) []int {
	result := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		result = append(result, i)
	}
	return result
}

func concat(slices ...[]int) []int {
	var result []int
	for _, s := range slices {
		result = append(result, s...)
	}
	return result
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// YearLen returns 365 or 366.
func YearLen(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// DaysIn returns the number of days in the given month of the given year.
func DaysIn(year, month int) int {
	if IsLeap(year) {
		return MonthRange366[month] - MonthRange366[month-1]
	}
	return MonthRange365[month] - MonthRange365[month-1]
}

// Divmod is floored integer division with its remainder, so the remainder
// always has the sign of the divisor. Mask index arithmetic depends on this
// behavior for negative offsets; Go's truncated % would break it.
func Divmod(a, b int) (div, mod int) {
	div = a / b
	mod = a % b
	if mod != 0 && (mod < 0) != (b < 0) {
		div--
		mod += b
	}
	return div, mod
}

// Mod returns the positive remainder of a/b for positive b.
func Mod(a, b int) int {
	_, mod := Divmod(a, b)
	return mod
}
