package rule

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// knownParts are the RFC 5545 rule-part names NewFromParts accepts.
var knownParts = map[string]bool{
	"DTSTART": true, "FREQ": true, "UNTIL": true, "COUNT": true,
	"INTERVAL": true, "BYSECOND": true, "BYMINUTE": true, "BYHOUR": true,
	"BYDAY": true, "BYMONTHDAY": true, "BYYEARDAY": true, "BYWEEKNO": true,
	"BYMONTH": true, "BYSETPOS": true, "WKST": true,
}

var bydayPattern = regexp.MustCompile(`^([+-]?[0-9]+)?(MO|TU|WE|TH|FR|SA|SU)$`)

// NewFromParts validates a raw rule-part record and builds the rule. Keys
// are matched case-insensitively against the RFC 5545 part names; unknown
// keys are rejected with an error listing them. Values may be typed
// (integers, slices, time.Time) or strings, including comma-separated
// strings where a list is expected.
func NewFromParts(parts map[string]any) (*Rule, error) {
	normalized := make(map[string]any, len(parts))
	var unknown []string
	for key, value := range parts {
		upper := strings.ToUpper(strings.TrimSpace(key))
		if !knownParts[upper] {
			unknown = append(unknown, upper)
			continue
		}
		normalized[upper] = value
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown rule parts: %s", strings.Join(unknown, ", "))}
	}

	var opts Options
	var err error

	raw, ok := normalized["FREQ"]
	if !ok {
		return nil, &ValidationError{Part: "FREQ", Reason: "required"}
	}
	switch v := raw.(type) {
	case Frequency:
		opts.Freq = v
	case string:
		opts.Freq, err = ParseFrequency(strings.ToUpper(strings.TrimSpace(v)))
		if err != nil {
			return nil, err
		}
	default:
		return nil, &ValidationError{Part: "FREQ", Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}

	if raw, ok := normalized["DTSTART"]; ok {
		if opts.Dtstart, err = coerceTime("DTSTART", raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := normalized["UNTIL"]; ok {
		if opts.Until, err = coerceTime("UNTIL", raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := normalized["COUNT"]; ok {
		if opts.Count, err = coerceInt("COUNT", raw); err != nil {
			return nil, err
		}
		if opts.Count <= 0 {
			return nil, &ValidationError{Part: "COUNT", Reason: "must be a positive integer"}
		}
	}
	if raw, ok := normalized["INTERVAL"]; ok {
		if opts.Interval, err = coerceInt("INTERVAL", raw); err != nil {
			return nil, err
		}
		if opts.Interval <= 0 {
			return nil, &ValidationError{Part: "INTERVAL", Reason: "must be a positive integer"}
		}
	}
	if raw, ok := normalized["WKST"]; ok {
		switch v := raw.(type) {
		case Weekday:
			opts.Wkst = v
		case string:
			opts.Wkst, err = ParseWeekday(strings.ToUpper(strings.TrimSpace(v)))
			if err != nil {
				return nil, err
			}
		default:
			return nil, &ValidationError{Part: "WKST", Reason: fmt.Sprintf("unsupported value type %T", raw)}
		}
	}

	intLists := []struct {
		part string
		dest *[]int
	}{
		{"BYSECOND", &opts.Bysecond},
		{"BYMINUTE", &opts.Byminute},
		{"BYHOUR", &opts.Byhour},
		{"BYMONTHDAY", &opts.Bymonthday},
		{"BYYEARDAY", &opts.Byyearday},
		{"BYWEEKNO", &opts.Byweekno},
		{"BYMONTH", &opts.Bymonth},
		{"BYSETPOS", &opts.Bysetpos},
	}
	for _, l := range intLists {
		if raw, ok := normalized[l.part]; ok {
			if *l.dest, err = coerceIntList(l.part, raw); err != nil {
				return nil, err
			}
		}
	}

	if raw, ok := normalized["BYDAY"]; ok {
		if opts.Byweekday, err = coerceByday(raw); err != nil {
			return nil, err
		}
	}

	return New(opts)
}

// coerceByday parses BYDAY entries of the form [[+|-]n]WD, separating
// ordinal-prefixed entries from plain weekdays.
func coerceByday(raw any) ([]WeekdayNum, error) {
	var tokens []string
	switch v := raw.(type) {
	case []WeekdayNum:
		return v, nil
	case WeekdayNum:
		return []WeekdayNum{v}, nil
	case Weekday:
		return []WeekdayNum{{Weekday: v}}, nil
	case string:
		tokens = strings.Split(v, ",")
	case []string:
		tokens = v
	default:
		return nil, &ValidationError{Part: "BYDAY", Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}

	var out []WeekdayNum
	for _, tok := range tokens {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		m := bydayPattern.FindStringSubmatch(tok)
		if m == nil {
			return nil, &ValidationError{Part: "BYDAY", Reason: fmt.Sprintf("invalid entry %q", tok)}
		}
		var wn WeekdayNum
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n == 0 || n > 53 || n < -53 {
				return nil, &ValidationError{Part: "BYDAY", Reason: fmt.Sprintf("ordinal prefix out of range in %q", tok)}
			}
			wn.N = n
		}
		wd, err := ParseWeekday(m[2])
		if err != nil {
			return nil, &ValidationError{Part: "BYDAY", Reason: fmt.Sprintf("invalid entry %q", tok)}
		}
		wn.Weekday = wd
		out = append(out, wn)
	}
	return out, nil
}

func coerceInt(part string, raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, &ValidationError{Part: part, Reason: fmt.Sprintf("invalid integer %q", v)}
		}
		return n, nil
	default:
		return 0, &ValidationError{Part: part, Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}
}

func coerceIntList(part string, raw any) ([]int, error) {
	switch v := raw.(type) {
	case []int:
		return v, nil
	case int:
		return []int{v}, nil
	case string:
		var out []int
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &ValidationError{Part: part, Reason: fmt.Sprintf("invalid integer %q", tok)}
			}
			out = append(out, n)
		}
		return out, nil
	case []string:
		var out []int
		for _, tok := range v {
			n, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil {
				return nil, &ValidationError{Part: part, Reason: fmt.Sprintf("invalid integer %q", tok)}
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return nil, &ValidationError{Part: part, Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}
}

// coerceTime accepts a timestamp value, seconds since the Unix epoch, or an
// iCalendar / RFC 3339 date-time string.
func coerceTime(part string, raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case string:
		t, err := parseTimeString(strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, &ValidationError{Part: part, Reason: fmt.Sprintf("unparseable date-time %q", v)}
		}
		return t, nil
	default:
		return time.Time{}, &ValidationError{Part: part, Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}
}

// parseTimeString tries the iCalendar basic formats first, then RFC 3339.
func parseTimeString(value string) (time.Time, error) {
	for _, layout := range []string{"20060102T150405Z", "20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339, value)
}
