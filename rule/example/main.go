// Command example demonstrates the recurrence engine: expanding a rule
// built from options, parsing RRULE text, and expanding a recurring
// iCalendar event through the ical integration.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	ics "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/cyp0633/librecur/ical"
	"github.com/cyp0633/librecur/parse"
	"github.com/cyp0633/librecur/rule"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Third Thursday of every month at 09:00.
	r, err := rule.New(rule.Options{
		Freq:      rule.Monthly,
		Count:     6,
		Byweekday: []rule.WeekdayNum{{Weekday: rule.Thursday, N: 3}},
		Dtstart:   time.Date(2024, 1, 18, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		logger.Error("invalid rule", "error", err)
		os.Exit(1)
	}

	fmt.Println("third Thursday of each month:")
	occurrences, err := r.All()
	if err != nil {
		logger.Error("expansion failed", "error", err)
		os.Exit(1)
	}
	for _, occ := range occurrences {
		fmt.Println("  ", occ.Format(time.RFC3339))
	}

	// A biweekly Tuesday/Thursday rule parsed from its textual form.
	parsed, err := parse.RRuleWithStart("FREQ=WEEKLY;INTERVAL=2;BYDAY=TU,TH;COUNT=4",
		time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	if err != nil {
		logger.Error("parse failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("parsed", parse.Format(parsed), "contains 2024-01-16 09:00:",
		parsed.Contains(time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)))

	// Expanding a recurring VEVENT with an exception date.
	event := ics.NewComponent(ics.CompEvent)
	event.Props.SetText(ics.PropUID, uuid.New().String())
	event.Props.SetText(ics.PropSummary, "standup")
	event.Props.SetDateTime(ics.PropDateTimeStart, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))
	event.Props.SetDateTime(ics.PropDateTimeEnd, time.Date(2024, 1, 1, 9, 45, 0, 0, time.UTC))
	rrule := ics.NewProp(ics.PropRecurrenceRule)
	rrule.Value = "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR"
	event.Props.Set(rrule)
	event.Props.SetText(ics.PropExceptionDates, "20240102T093000Z")

	engine := ical.NewEngine(ical.WithLogger(logger))
	defer engine.Close()

	window, err := engine.ExpandComponent(event,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC))
	if err != nil {
		logger.Error("component expansion failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("standup occurrences in the first week:")
	for _, occ := range window {
		fmt.Println("  ", occ.Start.Format(time.RFC3339), "-", occ.End.Format(time.RFC3339))
	}
}
