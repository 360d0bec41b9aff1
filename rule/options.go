package rule

import (
	"fmt"
	"time"
)

// Options is the raw, unvalidated description of a recurrence rule. Zero
// values mean "not specified": empty slices leave a BY part unset, a zero
// Dtstart defaults to the current time, Interval 0 becomes 1. New validates
// an Options value and returns the immutable Rule it denotes.
type Options struct {
	Freq     Frequency
	Dtstart  time.Time
	Interval int
	Wkst     Weekday
	Count    int
	Until    time.Time

	Bysetpos   []int
	Bymonth    []int
	Bymonthday []int
	Byyearday  []int
	Byweekno   []int
	Byweekday  []WeekdayNum
	Byhour     []int
	Byminute   []int
	Bysecond   []int

	// Location for occurrence construction when Dtstart is zero; ignored
	// otherwise (occurrences always carry Dtstart's location).
	Location *time.Location
}

// validateBounds checks every numeric rule part against the value ranges
// RFC 5545 assigns it. Range violations can never produce an occurrence, so
// they are rejected up front with the part's name.
func validateBounds(opts Options) error {
	bounds := []struct {
		values    []int
		part      string
		lo, hi    int
		plusMinus bool // the range also applies mirrored to negatives
		nonzero   bool
	}{
		{opts.Bysecond, "BYSECOND", 0, 60, false, false},
		{opts.Byminute, "BYMINUTE", 0, 59, false, false},
		{opts.Byhour, "BYHOUR", 0, 23, false, false},
		{opts.Bymonthday, "BYMONTHDAY", 1, 31, true, true},
		{opts.Byyearday, "BYYEARDAY", 1, 366, true, true},
		{opts.Byweekno, "BYWEEKNO", 1, 53, true, true},
		{opts.Bymonth, "BYMONTH", 1, 12, false, false},
		{opts.Bysetpos, "BYSETPOS", 1, 366, true, true},
	}

	for _, b := range bounds {
		for _, v := range b.values {
			ok := v >= b.lo && v <= b.hi
			if b.plusMinus {
				ok = ok || (v <= -b.lo && v >= -b.hi)
			}
			if !ok || (b.nonzero && v == 0) {
				rangeText := fmt.Sprintf("must be between %d and %d", b.lo, b.hi)
				if b.plusMinus {
					rangeText += fmt.Sprintf(" or %d and %d", -b.lo, -b.hi)
				}
				return &ValidationError{Part: b.part, Reason: fmt.Sprintf("value %d %s", v, rangeText)}
			}
		}
	}

	for _, wd := range opts.Byweekday {
		if wd.Weekday < Monday || wd.Weekday > Sunday {
			return &ValidationError{Part: "BYDAY", Reason: fmt.Sprintf("invalid weekday %d", int(wd.Weekday))}
		}
		if wd.N > 53 || wd.N < -53 {
			return &ValidationError{Part: "BYDAY", Reason: "ordinal prefix must be between 1 and 53 or -1 and -53"}
		}
	}

	if opts.Freq < Yearly || opts.Freq > Secondly {
		return &ValidationError{Part: "FREQ", Reason: fmt.Sprintf("invalid frequency %d", int(opts.Freq))}
	}
	if opts.Wkst < Monday || opts.Wkst > Sunday {
		return &ValidationError{Part: "WKST", Reason: fmt.Sprintf("invalid weekday %d", int(opts.Wkst))}
	}
	if opts.Interval < 0 {
		return &ValidationError{Part: "INTERVAL", Reason: "must be a positive integer"}
	}
	if opts.Count < 0 {
		return &ValidationError{Part: "COUNT", Reason: "must be a positive integer"}
	}
	return nil
}

// validateCrossPart enforces the RFC 5545 constraints that tie parts to
// each other and to the frequency.
func validateCrossPart(opts Options) error {
	if opts.Count != 0 && !opts.Until.IsZero() {
		return &ValidationError{Part: "COUNT", Reason: "COUNT and UNTIL are mutually exclusive"}
	}

	hasNth := false
	for _, wd := range opts.Byweekday {
		if wd.N != 0 {
			hasNth = true
			break
		}
	}
	if hasNth {
		if opts.Freq != Monthly && opts.Freq != Yearly {
			return &ValidationError{Part: "BYDAY", Reason: "ordinal prefix requires FREQ=MONTHLY or FREQ=YEARLY"}
		}
		if opts.Freq == Yearly && len(opts.Byweekno) != 0 {
			return &ValidationError{Part: "BYDAY", Reason: "ordinal prefix cannot be combined with BYWEEKNO"}
		}
	}
	if len(opts.Bymonthday) != 0 && opts.Freq == Weekly {
		return &ValidationError{Part: "BYMONTHDAY", Reason: "not compatible with FREQ=WEEKLY"}
	}
	if len(opts.Byyearday) != 0 && opts.Freq >= Monthly && opts.Freq <= Daily {
		return &ValidationError{Part: "BYYEARDAY", Reason: "only compatible with FREQ=YEARLY, HOURLY, MINUTELY and SECONDLY"}
	}
	if len(opts.Byweekno) != 0 && opts.Freq != Yearly {
		return &ValidationError{Part: "BYWEEKNO", Reason: "requires FREQ=YEARLY"}
	}
	if len(opts.Bysetpos) != 0 {
		other := len(opts.Bymonth)+len(opts.Byweekno)+len(opts.Byyearday)+
			len(opts.Bymonthday)+len(opts.Byweekday)+len(opts.Byhour)+
			len(opts.Byminute)+len(opts.Bysecond) > 0
		if !other {
			return &ValidationError{Part: "BYSETPOS", Reason: "requires at least one other BY part"}
		}
	}
	return nil
}
