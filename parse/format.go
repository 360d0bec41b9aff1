package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cyp0633/librecur/rule"
)

// Format renders the rule back into RFC 5545 RRULE content, without the
// "RRULE:" prefix. Only the parts the rule was built with are emitted, so
// parsing the result reproduces the original rule.
func Format(r *rule.Rule) string {
	opts := r.Options()
	parts := []string{"FREQ=" + opts.Freq.String()}

	if opts.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(opts.Interval))
	}
	if opts.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(opts.Count))
	}
	if !opts.Until.IsZero() {
		parts = append(parts, "UNTIL="+opts.Until.UTC().Format("20060102T150405Z"))
	}
	if opts.Wkst != rule.Monday {
		parts = append(parts, "WKST="+opts.Wkst.String())
	}
	if len(opts.Bymonth) > 0 {
		parts = append(parts, "BYMONTH="+joinInts(opts.Bymonth))
	}
	if len(opts.Byweekno) > 0 {
		parts = append(parts, "BYWEEKNO="+joinInts(opts.Byweekno))
	}
	if len(opts.Byyearday) > 0 {
		parts = append(parts, "BYYEARDAY="+joinInts(opts.Byyearday))
	}
	if len(opts.Bymonthday) > 0 {
		parts = append(parts, "BYMONTHDAY="+joinInts(opts.Bymonthday))
	}
	if len(opts.Byweekday) > 0 {
		days := make([]string, len(opts.Byweekday))
		for i, wd := range opts.Byweekday {
			days[i] = wd.String()
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	if len(opts.Byhour) > 0 {
		parts = append(parts, "BYHOUR="+joinInts(opts.Byhour))
	}
	if len(opts.Byminute) > 0 {
		parts = append(parts, "BYMINUTE="+joinInts(opts.Byminute))
	}
	if len(opts.Bysecond) > 0 {
		parts = append(parts, "BYSECOND="+joinInts(opts.Bysecond))
	}
	if len(opts.Bysetpos) > 0 {
		parts = append(parts, "BYSETPOS="+joinInts(opts.Bysetpos))
	}
	return strings.Join(parts, ";")
}

// FormatWithStart renders a DTSTART line followed by the RRULE line, the
// two-line snippet RRule accepts back.
func FormatWithStart(r *rule.Rule) string {
	dtstart := r.Dtstart().UTC().Format("20060102T150405Z")
	return fmt.Sprintf("DTSTART:%s\nRRULE:%s", dtstart, Format(r))
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
