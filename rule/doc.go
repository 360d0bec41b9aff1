/*
Package rule implements the iCalendar recurrence rule (RFC 5545 §3.3.10)
expansion engine: given a start timestamp and a declarative rule it produces
the ordered, possibly infinite, sequence of timestamps the rule denotes.

# Basic Usage

Build a rule from structured options and walk its occurrences lazily:

	r, err := rule.New(rule.Options{
		Freq:    rule.Daily,
		Count:   3,
		Dtstart: time.Date(1997, 9, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		log.Fatal(err)
	}
	it := r.Iterator()
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		fmt.Println(occ)
	}

Rules can also be built from a raw rule-part record keyed by the RFC 5545
part names, with string or typed values:

	r, err := rule.NewFromParts(map[string]any{
		"FREQ":    "MONTHLY",
		"BYDAY":   "TU,WE,TH",
		"BYSETPOS": 3,
		"DTSTART": "19970902T090000Z",
	})

# Queries

A bounded rule enumerates fully with All; Between returns the occurrences
inside an inclusive range without materializing the rest of the sequence;
Contains answers membership, using modular arithmetic instead of
enumeration whenever the rule permits:

	times, err := r.All()
	window := r.Between(begin, end)
	ok := r.Contains(t)

# Semantics

Every BY* part is expressed as mask-and-filter over a day-granularity
enumeration of each interval, reproducing the RFC's expand/limit behavior
across all seven frequencies, ISO-8601 week numbering, negative indices and
leap years. Occurrences are emitted in non-decreasing order; a rule that
stops producing occurrences within a full 28-year Gregorian cycle simply
ends its sequence.

A Rule is immutable after construction and safe to share; each Iterator
owns its own state and is not safe for concurrent use by itself.
*/
package rule
