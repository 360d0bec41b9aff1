// Package parse converts between the RFC 5545 textual forms and the rule
// package's structured values: RRULE content lines, BYDAY tokens, and the
// iCalendar DATE / DATE-TIME basic formats used by DTSTART, UNTIL, RDATE
// and EXDATE.
package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyp0633/librecur/rule"
)

// RRule parses RRULE text into a validated rule. The input may be the bare
// part list ("FREQ=DAILY;COUNT=3"), a full content line with the "RRULE:"
// prefix, or a DTSTART line followed by an RRULE line separated by a
// newline, which is how recurrence rules travel alongside their start in
// iCalendar snippets.
func RRule(s string) (*rule.Rule, error) {
	parts, err := ruleParts(s)
	if err != nil {
		return nil, err
	}
	return rule.NewFromParts(parts)
}

// RRuleWithStart parses RRULE text and forces the given DTSTART, overriding
// any start embedded in the text.
func RRuleWithStart(s string, dtstart time.Time) (*rule.Rule, error) {
	parts, err := ruleParts(s)
	if err != nil {
		return nil, err
	}
	parts["DTSTART"] = dtstart
	return rule.NewFromParts(parts)
}

// ruleParts splits RRULE text into a raw rule-part record.
func ruleParts(s string) (map[string]any, error) {
	parts := make(map[string]any)
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(strings.ToUpper(line), "DTSTART"):
			name, params, value, err := splitContentLine(line)
			if err != nil {
				return nil, err
			}
			if name != "DTSTART" {
				return nil, fmt.Errorf("unexpected content line %q", name)
			}
			t, err := DateTime(value, params)
			if err != nil {
				return nil, fmt.Errorf("invalid DTSTART %q: %w", value, err)
			}
			parts["DTSTART"] = t
		default:
			body := line
			if idx := strings.Index(line, ":"); idx >= 0 && strings.EqualFold(line[:idx], "RRULE") {
				body = line[idx+1:]
			}
			for _, pair := range strings.Split(body, ";") {
				pair = strings.TrimSpace(pair)
				if pair == "" {
					continue
				}
				key, value, found := strings.Cut(pair, "=")
				if !found {
					return nil, fmt.Errorf("malformed rule part %q", pair)
				}
				parts[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
			}
		}
	}
	return parts, nil
}

// splitContentLine separates "NAME;PARAM=V;PARAM=V:value" into its pieces.
func splitContentLine(line string) (name string, params map[string][]string, value string, err error) {
	head, value, found := strings.Cut(line, ":")
	if !found {
		return "", nil, "", fmt.Errorf("content line %q has no value", line)
	}
	fields := strings.Split(head, ";")
	name = strings.ToUpper(strings.TrimSpace(fields[0]))
	params = make(map[string][]string)
	for _, field := range fields[1:] {
		k, v, found := strings.Cut(field, "=")
		if !found {
			return "", nil, "", fmt.Errorf("malformed parameter %q", field)
		}
		k = strings.ToUpper(strings.TrimSpace(k))
		params[k] = append(params[k], strings.TrimSpace(v))
	}
	return name, params, value, nil
}

// DateTime parses an iCalendar DATE or DATE-TIME property value. A
// VALUE=DATE parameter (or a value in plain date form) yields midnight UTC;
// date-times without the trailing Z are treated as UTC as well, since the
// engine's timestamps are civil values and zone resolution is the host's
// concern.
func DateTime(value string, params map[string][]string) (time.Time, error) {
	if isDateOnly(value, params) {
		t, err := time.ParseInLocation("20060102", value, time.UTC)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	}
	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	// A date-only value without the VALUE=DATE parameter still parses.
	return time.ParseInLocation("20060102", value, time.UTC)
}

// DateTimeList parses a comma-separated DATE/DATE-TIME list, as carried by
// RDATE and EXDATE. Unparseable entries are skipped rather than failing the
// whole property.
func DateTimeList(value string, params map[string][]string) []time.Time {
	if value == "" {
		return nil
	}
	var out []time.Time
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if t, err := DateTime(entry, params); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func isDateOnly(value string, params map[string][]string) bool {
	if params != nil {
		if vp := params["VALUE"]; len(vp) > 0 && strings.ToUpper(vp[0]) == "DATE" {
			return true
		}
	}
	return len(value) == 8 && !strings.Contains(value, "T")
}
