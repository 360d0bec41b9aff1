package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dt(year, month, day, hour, minute, second int) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// take collects up to n occurrences from a fresh iterator.
func take(t *testing.T, r *Rule, n int) []time.Time {
	t.Helper()
	it := r.Iterator()
	var out []time.Time
	for len(out) < n {
		occ, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, occ)
	}
	return out
}

func TestIterator_Expansion(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []time.Time
	}{
		{
			name: "daily with count",
			opts: Options{Freq: Daily, Count: 3, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			want: []time.Time{
				dt(1997, 9, 2, 9, 0, 0),
				dt(1997, 9, 3, 9, 0, 0),
				dt(1997, 9, 4, 9, 0, 0),
			},
		},
		{
			name: "daily until inclusive",
			opts: Options{Freq: Daily, Until: dt(1997, 9, 4, 9, 0, 0), Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			want: []time.Time{
				dt(1997, 9, 2, 9, 0, 0),
				dt(1997, 9, 3, 9, 0, 0),
				dt(1997, 9, 4, 9, 0, 0),
			},
		},
		{
			name: "yearly bymonth skips months before dtstart",
			opts: Options{Freq: Yearly, Count: 6, Bymonth: []int{1, 2, 3}, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			want: []time.Time{
				dt(1998, 1, 2, 9, 0, 0),
				dt(1998, 2, 2, 9, 0, 0),
				dt(1998, 3, 2, 9, 0, 0),
				dt(1999, 1, 2, 9, 0, 0),
				dt(1999, 2, 2, 9, 0, 0),
				dt(1999, 3, 2, 9, 0, 0),
			},
		},
		{
			name: "yearly first and last monday of january",
			opts: Options{
				Freq: Yearly, Count: 4, Bymonth: []int{1},
				Byweekday: []WeekdayNum{{Weekday: Monday, N: 1}, {Weekday: Monday, N: -1}},
				Dtstart:   dt(1997, 1, 1, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 1, 6, 9, 0, 0),
				dt(1997, 1, 27, 9, 0, 0),
				dt(1998, 1, 5, 9, 0, 0),
				dt(1998, 1, 26, 9, 0, 0),
			},
		},
		{
			name: "monthly last day of month",
			opts: Options{Freq: Monthly, Count: 3, Bymonthday: []int{-1}, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			want: []time.Time{
				dt(1997, 9, 30, 9, 0, 0),
				dt(1997, 10, 31, 9, 0, 0),
				dt(1997, 11, 30, 9, 0, 0),
			},
		},
		{
			name: "monthly third of tuesday wednesday thursday",
			opts: Options{
				Freq: Monthly, Count: 3, Bysetpos: []int{3},
				Byweekday: []WeekdayNum{{Weekday: Tuesday}, {Weekday: Wednesday}, {Weekday: Thursday}},
				Dtstart:   dt(1997, 9, 2, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 9, 4, 9, 0, 0),
				dt(1997, 10, 7, 9, 0, 0),
				dt(1997, 11, 6, 9, 0, 0),
			},
		},
		{
			name: "monthly last workday via negative setpos",
			opts: Options{
				Freq: Monthly, Count: 3, Bysetpos: []int{-1},
				Byweekday: []WeekdayNum{
					{Weekday: Monday}, {Weekday: Tuesday}, {Weekday: Wednesday},
					{Weekday: Thursday}, {Weekday: Friday},
				},
				Dtstart: dt(1997, 9, 2, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 9, 30, 9, 0, 0),
				dt(1997, 10, 31, 9, 0, 0),
				dt(1997, 11, 28, 9, 0, 0),
			},
		},
		{
			name: "yearly monday of week 20",
			opts: Options{
				Freq: Yearly, Count: 3, Byweekno: []int{20},
				Byweekday: []WeekdayNum{{Weekday: Monday}},
				Dtstart:   dt(1997, 1, 1, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 5, 12, 9, 0, 0),
				dt(1998, 5, 11, 9, 0, 0),
				dt(1999, 5, 17, 9, 0, 0),
			},
		},
		{
			name: "yearly monday of week 53",
			opts: Options{
				Freq: Yearly, Count: 2, Byweekno: []int{53},
				Byweekday: []WeekdayNum{{Weekday: Monday}},
				Dtstart:   dt(1998, 1, 1, 9, 0, 0),
			},
			want: []time.Time{
				dt(1998, 12, 28, 9, 0, 0),
				dt(2004, 12, 27, 9, 0, 0),
			},
		},
		{
			name: "biweekly tuesday and thursday with sunday week start",
			opts: Options{
				Freq: Weekly, Interval: 2, Count: 4, Wkst: Sunday,
				Byweekday: []WeekdayNum{{Weekday: Tuesday}, {Weekday: Thursday}},
				Dtstart:   dt(1997, 9, 2, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 9, 2, 9, 0, 0),
				dt(1997, 9, 4, 9, 0, 0),
				dt(1997, 9, 16, 9, 0, 0),
				dt(1997, 9, 18, 9, 0, 0),
			},
		},
		{
			name: "wkst moves days between biweekly intervals",
			opts: Options{
				Freq: Weekly, Interval: 2, Count: 4, Wkst: Monday,
				Byweekday: []WeekdayNum{{Weekday: Tuesday}, {Weekday: Sunday}},
				Dtstart:   dt(1997, 8, 5, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 8, 5, 9, 0, 0),
				dt(1997, 8, 10, 9, 0, 0),
				dt(1997, 8, 19, 9, 0, 0),
				dt(1997, 8, 24, 9, 0, 0),
			},
		},
		{
			name: "wkst sunday variant of the same rule",
			opts: Options{
				Freq: Weekly, Interval: 2, Count: 4, Wkst: Sunday,
				Byweekday: []WeekdayNum{{Weekday: Tuesday}, {Weekday: Sunday}},
				Dtstart:   dt(1997, 8, 5, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 8, 5, 9, 0, 0),
				dt(1997, 8, 17, 9, 0, 0),
				dt(1997, 8, 19, 9, 0, 0),
				dt(1997, 8, 31, 9, 0, 0),
			},
		},
		{
			name: "yearly 20th monday of the year",
			opts: Options{
				Freq: Yearly, Count: 3,
				Byweekday: []WeekdayNum{{Weekday: Monday, N: 20}},
				Dtstart:   dt(1997, 5, 19, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 5, 19, 9, 0, 0),
				dt(1998, 5, 18, 9, 0, 0),
				dt(1999, 5, 17, 9, 0, 0),
			},
		},
		{
			name: "monthly first friday",
			opts: Options{
				Freq: Monthly, Count: 4,
				Byweekday: []WeekdayNum{{Weekday: Friday, N: 1}},
				Dtstart:   dt(1997, 9, 5, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 9, 5, 9, 0, 0),
				dt(1997, 10, 3, 9, 0, 0),
				dt(1997, 11, 7, 9, 0, 0),
				dt(1997, 12, 5, 9, 0, 0),
			},
		},
		{
			name: "every 18 months on monthdays 10 through 15",
			opts: Options{
				Freq: Monthly, Interval: 18, Count: 10,
				Bymonthday: []int{10, 11, 12, 13, 14, 15},
				Dtstart:    dt(1997, 9, 10, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 9, 10, 9, 0, 0),
				dt(1997, 9, 11, 9, 0, 0),
				dt(1997, 9, 12, 9, 0, 0),
				dt(1997, 9, 13, 9, 0, 0),
				dt(1997, 9, 14, 9, 0, 0),
				dt(1997, 9, 15, 9, 0, 0),
				dt(1999, 3, 10, 9, 0, 0),
				dt(1999, 3, 11, 9, 0, 0),
				dt(1999, 3, 12, 9, 0, 0),
				dt(1999, 3, 13, 9, 0, 0),
			},
		},
		{
			name: "yearly every third year on fixed yeardays",
			opts: Options{
				Freq: Yearly, Interval: 3, Count: 10,
				Byyearday: []int{1, 100, 200},
				Dtstart:   dt(1997, 1, 1, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 1, 1, 9, 0, 0),
				dt(1997, 4, 10, 9, 0, 0),
				dt(1997, 7, 19, 9, 0, 0),
				dt(2000, 1, 1, 9, 0, 0),
				dt(2000, 4, 9, 9, 0, 0),
				dt(2000, 7, 18, 9, 0, 0),
				dt(2003, 1, 1, 9, 0, 0),
				dt(2003, 4, 10, 9, 0, 0),
				dt(2003, 7, 19, 9, 0, 0),
				dt(2006, 1, 1, 9, 0, 0),
			},
		},
		{
			name: "negative yearday is the last day of the year",
			opts: Options{Freq: Yearly, Count: 2, Byyearday: []int{-1}, Dtstart: dt(1997, 1, 1, 9, 0, 0)},
			want: []time.Time{
				dt(1997, 12, 31, 9, 0, 0),
				dt(1998, 12, 31, 9, 0, 0),
			},
		},
		{
			name: "february 29 only exists in leap years",
			opts: Options{
				Freq: Yearly, Count: 2, Bymonth: []int{2}, Bymonthday: []int{29},
				Dtstart: dt(1996, 2, 29, 9, 0, 0),
			},
			want: []time.Time{
				dt(1996, 2, 29, 9, 0, 0),
				dt(2000, 2, 29, 9, 0, 0),
			},
		},
		{
			name: "hourly every three hours until five pm",
			opts: Options{
				Freq: Hourly, Interval: 3,
				Until:   dt(1997, 9, 2, 17, 0, 0),
				Dtstart: dt(1997, 9, 2, 9, 0, 0),
			},
			want: []time.Time{
				dt(1997, 9, 2, 9, 0, 0),
				dt(1997, 9, 2, 12, 0, 0),
				dt(1997, 9, 2, 15, 0, 0),
			},
		},
		{
			name: "minutely every fifteen minutes",
			opts: Options{Freq: Minutely, Interval: 15, Count: 6, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			want: []time.Time{
				dt(1997, 9, 2, 9, 0, 0),
				dt(1997, 9, 2, 9, 15, 0),
				dt(1997, 9, 2, 9, 30, 0),
				dt(1997, 9, 2, 9, 45, 0),
				dt(1997, 9, 2, 10, 0, 0),
				dt(1997, 9, 2, 10, 15, 0),
			},
		},
		{
			name: "hourly start time outside byhour jumps forward",
			opts: Options{Freq: Hourly, Count: 3, Byhour: []int{12, 13}, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			want: []time.Time{
				dt(1997, 9, 2, 12, 0, 0),
				dt(1997, 9, 2, 13, 0, 0),
				dt(1997, 9, 3, 12, 0, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.opts)
			require.NoError(t, err)
			got := take(t, r, len(tt.want)+5)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIterator_MinutelyByhourWrapsToNextDay(t *testing.T) {
	// Every 20 minutes from 9:00 to 16:40, then again the next morning.
	r, err := New(Options{
		Freq: Minutely, Interval: 20,
		Byhour:  []int{9, 10, 11, 12, 13, 14, 15, 16},
		Dtstart: dt(1997, 9, 2, 9, 0, 0),
	})
	require.NoError(t, err)

	got := take(t, r, 25)
	require.Len(t, got, 25)
	assert.Equal(t, dt(1997, 9, 2, 9, 0, 0), got[0])
	assert.Equal(t, dt(1997, 9, 2, 9, 20, 0), got[1])
	assert.Equal(t, dt(1997, 9, 2, 16, 40, 0), got[23])
	assert.Equal(t, dt(1997, 9, 3, 9, 0, 0), got[24])
}

func TestIterator_SecondlyCarriesAcrossMidnight(t *testing.T) {
	r, err := New(Options{
		Freq: Secondly, Interval: 90, Count: 4,
		Dtstart: dt(1997, 9, 2, 23, 58, 45),
	})
	require.NoError(t, err)

	got := take(t, r, 4)
	assert.Equal(t, []time.Time{
		dt(1997, 9, 2, 23, 58, 45),
		dt(1997, 9, 3, 0, 0, 15),
		dt(1997, 9, 3, 0, 1, 45),
		dt(1997, 9, 3, 0, 3, 15),
	}, got)
}

func TestIterator_ImpossibleRuleTerminates(t *testing.T) {
	// February 30th never exists; the safety bound must end the sequence
	// instead of spinning.
	r, err := New(Options{
		Freq: Yearly, Bymonth: []int{2}, Bymonthday: []int{30},
		Dtstart: dt(1997, 1, 1, 9, 0, 0),
	})
	require.NoError(t, err)

	it := r.Iterator()
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestIterator_MonotonicAndBounded(t *testing.T) {
	rules := []Options{
		{Freq: Daily, Count: 40, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
		{Freq: Monthly, Count: 30, Bymonthday: []int{31}, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
		{Freq: Weekly, Interval: 3, Count: 20, Wkst: Sunday,
			Byweekday: []WeekdayNum{{Weekday: Friday}, {Weekday: Monday}},
			Dtstart:   dt(1997, 9, 2, 9, 0, 0)},
		{Freq: Yearly, Count: 12, Byweekno: []int{1, -1}, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
	}
	for _, opts := range rules {
		r, err := New(opts)
		require.NoError(t, err)
		occs, err := r.All()
		require.NoError(t, err)
		require.NotEmpty(t, occs)
		assert.Len(t, occs, opts.Count)
		for i, occ := range occs {
			assert.False(t, occ.Before(r.Dtstart()), "occurrence %d before dtstart", i)
			if i > 0 {
				assert.True(t, occs[i-1].Before(occ) || occs[i-1].Equal(occ),
					"occurrence %d out of order", i)
			}
		}
	}
}

func TestIterator_DtstartIncludedWhenItMatches(t *testing.T) {
	r, err := New(Options{Freq: Weekly, Count: 5, Dtstart: dt(1997, 9, 2, 9, 0, 0)})
	require.NoError(t, err)
	occs, err := r.All()
	require.NoError(t, err)
	require.NotEmpty(t, occs)
	assert.Equal(t, dt(1997, 9, 2, 9, 0, 0), occs[0])
}

func TestIterator_KeepsDtstartLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	start := time.Date(2024, 3, 1, 8, 30, 0, 0, loc)
	r, err := New(Options{Freq: Daily, Count: 2, Dtstart: start})
	require.NoError(t, err)
	occs, err := r.All()
	require.NoError(t, err)
	require.Len(t, occs, 2)
	for _, occ := range occs {
		assert.Equal(t, loc, occ.Location())
	}
}
