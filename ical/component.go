package ical

import (
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/cyp0633/librecur/parse"
)

// FromComponent extracts recurrence information from an iCal component.
func FromComponent(comp *ics.Component) RecurrenceInfo {
	info := RecurrenceInfo{}

	if prop := comp.Props.Get(ics.PropRecurrenceRule); prop != nil && prop.Value != "" {
		info.RRULE = prop.Value
	}
	if prop := comp.Props.Get(ics.PropRecurrenceDates); prop != nil && prop.Value != "" {
		info.RDATE = parse.DateTimeList(prop.Value, prop.Params)
	}
	if prop := comp.Props.Get(ics.PropExceptionDates); prop != nil && prop.Value != "" {
		info.EXDATE = parse.DateTimeList(prop.Value, prop.Params)
	}
	if prop := comp.Props.Get("RECURRENCE-ID"); prop != nil && prop.Value != "" {
		if recID, err := parse.DateTime(prop.Value, prop.Params); err == nil {
			info.RecurrenceID = &recID
		}
	}

	return info
}

// TimeInfoFromComponent extracts the master start and end times from an
// iCal component. hasTime is false when the component carries no usable
// start.
func TimeInfoFromComponent(comp *ics.Component) (start, end time.Time, hasTime bool) {
	// Props.DateTime yields a zero time without error for a missing
	// property, so zero values count as absent.
	if dtstart, err := comp.Props.DateTime(ics.PropDateTimeStart, nil); err == nil && !dtstart.IsZero() {
		start = dtstart
		hasTime = true

		if dtend, err := comp.Props.DateTime(ics.PropDateTimeEnd, nil); err == nil && !dtend.IsZero() {
			end = dtend
			// An all-day event whose DTEND equals its DTSTART date spans
			// the whole day.
			startYear, startMonth, startDay := start.Date()
			endYear, endMonth, endDay := end.Date()
			if isAllDayDate(start) && startYear == endYear && startMonth == endMonth && startDay == endDay {
				end = start.AddDate(0, 0, 1)
			}
		} else if durationProp := comp.Props.Get(ics.PropDuration); durationProp != nil {
			duration, err := durationProp.Duration()
			if err != nil {
				hasTime = false
				return
			}
			end = start.Add(duration)
		} else if isAllDayDate(start) {
			end = start.AddDate(0, 0, 1)
		} else {
			end = start
		}
	}

	// A VTODO may carry its time as a DUE property instead.
	if comp.Name == ics.CompToDo {
		if due, err := comp.Props.DateTime(ics.PropDue, nil); err == nil && !due.IsZero() {
			if !hasTime {
				start = due
				end = due
				hasTime = true
			} else if due.After(end) {
				end = due
			}
		}
	}

	return start, end, hasTime
}

// ExpandComponent expands a recurring component over [rangeStart, rangeEnd].
func (e *Engine) ExpandComponent(comp *ics.Component, rangeStart, rangeEnd time.Time) ([]TimeOccurrence, error) {
	start, end, hasTime := TimeInfoFromComponent(comp)
	if !hasTime {
		return nil, nil
	}
	return e.ExpandInRange(start, end, FromComponent(comp), rangeStart, rangeEnd)
}

// isAllDayDate checks if a time represents an all-day date (midnight).
func isAllDayDate(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}
