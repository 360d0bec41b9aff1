// Package xcal serializes recurrence rules to and from the xCal XML format
// (RFC 6321): the <recur> element whose children carry one rule part each.
package xcal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/cyp0633/librecur/rule"
)

// dateTimeLayout is the xCal date-time form, which uses the extended
// ISO 8601 format rather than iCalendar's compact one.
const dateTimeLayout = "2006-01-02T15:04:05Z"

// Encode renders the rule as an xCal <recur> element.
func Encode(r *rule.Rule) *etree.Element {
	opts := r.Options()
	recur := etree.NewElement("recur")

	recur.CreateElement("freq").SetText(opts.Freq.String())
	if opts.Count > 0 {
		recur.CreateElement("count").SetText(strconv.Itoa(opts.Count))
	}
	if !opts.Until.IsZero() {
		recur.CreateElement("until").SetText(opts.Until.UTC().Format(dateTimeLayout))
	}
	if opts.Interval > 1 {
		recur.CreateElement("interval").SetText(strconv.Itoa(opts.Interval))
	}
	addInts(recur, "bysecond", opts.Bysecond)
	addInts(recur, "byminute", opts.Byminute)
	addInts(recur, "byhour", opts.Byhour)
	for _, wd := range opts.Byweekday {
		recur.CreateElement("byday").SetText(wd.String())
	}
	addInts(recur, "bymonthday", opts.Bymonthday)
	addInts(recur, "byyearday", opts.Byyearday)
	addInts(recur, "byweekno", opts.Byweekno)
	addInts(recur, "bymonth", opts.Bymonth)
	addInts(recur, "bysetpos", opts.Bysetpos)
	if opts.Wkst != rule.Monday {
		recur.CreateElement("wkst").SetText(opts.Wkst.String())
	}
	return recur
}

// Decode builds a rule from an xCal <recur> element, using dtstart as the
// rule's start (the <recur> value does not carry one).
func Decode(recur *etree.Element, dtstart time.Time) (*rule.Rule, error) {
	if recur.Tag != "recur" {
		return nil, fmt.Errorf("expected <recur> element, got <%s>", recur.Tag)
	}

	parts := map[string]any{"DTSTART": dtstart}
	lists := make(map[string][]string)
	for _, child := range recur.ChildElements() {
		name := strings.ToUpper(child.Tag)
		text := strings.TrimSpace(child.Text())
		switch name {
		case "FREQ", "COUNT", "INTERVAL", "WKST":
			parts[name] = text
		case "UNTIL":
			until, err := time.ParseInLocation(dateTimeLayout, text, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("invalid <until> value %q: %w", text, err)
			}
			parts["UNTIL"] = until
		case "BYSECOND", "BYMINUTE", "BYHOUR", "BYDAY", "BYMONTHDAY",
			"BYYEARDAY", "BYWEEKNO", "BYMONTH", "BYSETPOS":
			lists[name] = append(lists[name], text)
		default:
			return nil, fmt.Errorf("unknown <recur> child <%s>", child.Tag)
		}
	}
	for name, values := range lists {
		parts[name] = values
	}
	return rule.NewFromParts(parts)
}

func addInts(parent *etree.Element, tag string, values []int) {
	for _, v := range values {
		parent.CreateElement(tag).SetText(strconv.Itoa(v))
	}
}
