package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_RefusesUnboundedRule(t *testing.T) {
	r, err := New(Options{Freq: Daily, Dtstart: dt(1997, 9, 2, 9, 0, 0)})
	require.NoError(t, err)
	_, err = r.All()
	assert.ErrorIs(t, err, ErrUnboundedRule)
}

func TestBetween_MatchesIteratorSubsequence(t *testing.T) {
	r, err := New(Options{
		Freq: Weekly, Count: 30,
		Byweekday: []WeekdayNum{{Weekday: Monday}, {Weekday: Wednesday}},
		Dtstart:   dt(1997, 9, 1, 9, 0, 0),
	})
	require.NoError(t, err)

	begin := dt(1997, 10, 1, 0, 0, 0)
	end := dt(1997, 11, 1, 0, 0, 0)

	all, err := r.All()
	require.NoError(t, err)
	var want []time.Time
	for _, occ := range all {
		if !occ.Before(begin) && !occ.After(end) {
			want = append(want, occ)
		}
	}
	assert.Equal(t, want, r.Between(begin, end))
}

func TestBetween_InclusiveEnds(t *testing.T) {
	r, err := New(Options{Freq: Daily, Count: 10, Dtstart: dt(1997, 9, 2, 9, 0, 0)})
	require.NoError(t, err)

	got := r.Between(dt(1997, 9, 3, 9, 0, 0), dt(1997, 9, 5, 9, 0, 0))
	assert.Equal(t, []time.Time{
		dt(1997, 9, 3, 9, 0, 0),
		dt(1997, 9, 4, 9, 0, 0),
		dt(1997, 9, 5, 9, 0, 0),
	}, got)
}

func TestBetween_WorksOnUnboundedRules(t *testing.T) {
	r, err := New(Options{Freq: Monthly, Bymonthday: []int{-1}, Dtstart: dt(1997, 9, 2, 9, 0, 0)})
	require.NoError(t, err)

	got := r.Between(dt(1998, 1, 1, 0, 0, 0), dt(1998, 3, 31, 23, 59, 59))
	assert.Equal(t, []time.Time{
		dt(1998, 1, 31, 9, 0, 0),
		dt(1998, 2, 28, 9, 0, 0),
		dt(1998, 3, 31, 9, 0, 0),
	}, got)
}

func TestContains_FastPath(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		in   []time.Time
		out  []time.Time
	}{
		{
			name: "daily with interval",
			opts: Options{Freq: Daily, Interval: 2, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			in:   []time.Time{dt(1997, 9, 2, 9, 0, 0), dt(1997, 9, 4, 9, 0, 0), dt(1998, 1, 1, 9, 0, 0)},
			out: []time.Time{
				dt(1997, 9, 3, 9, 0, 0),  // off the interval grid
				dt(1997, 9, 4, 10, 0, 0), // wrong hour
				dt(1997, 9, 1, 9, 0, 0),  // before dtstart
			},
		},
		{
			name: "monthly on the 31st",
			opts: Options{Freq: Monthly, Bymonthday: []int{31}, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			in:   []time.Time{dt(1997, 10, 31, 9, 0, 0), dt(1997, 12, 31, 9, 0, 0)},
			out:  []time.Time{dt(1997, 11, 30, 9, 0, 0), dt(1997, 10, 30, 9, 0, 0)},
		},
		{
			name: "biweekly respects wkst grid",
			opts: Options{
				Freq: Weekly, Interval: 2, Wkst: Sunday,
				Byweekday: []WeekdayNum{{Weekday: Tuesday}, {Weekday: Thursday}},
				Dtstart:   dt(1997, 9, 2, 9, 0, 0),
			},
			in:  []time.Time{dt(1997, 9, 2, 9, 0, 0), dt(1997, 9, 4, 9, 0, 0), dt(1997, 9, 16, 9, 0, 0)},
			out: []time.Time{dt(1997, 9, 9, 9, 0, 0), dt(1997, 9, 11, 9, 0, 0), dt(1997, 9, 23, 9, 0, 0)},
		},
		{
			name: "hourly with interval",
			opts: Options{Freq: Hourly, Interval: 6, Dtstart: dt(1997, 9, 2, 9, 0, 0)},
			in:   []time.Time{dt(1997, 9, 2, 15, 0, 0), dt(1997, 9, 3, 3, 0, 0)},
			out:  []time.Time{dt(1997, 9, 2, 16, 0, 0), dt(1997, 9, 2, 15, 30, 0)},
		},
		{
			name: "yearly nth weekday",
			opts: Options{
				Freq:      Yearly,
				Byweekday: []WeekdayNum{{Weekday: Monday, N: 20}},
				Dtstart:   dt(1997, 5, 19, 9, 0, 0),
			},
			in:  []time.Time{dt(1997, 5, 19, 9, 0, 0), dt(1998, 5, 18, 9, 0, 0)},
			out: []time.Time{dt(1997, 5, 12, 9, 0, 0), dt(1998, 5, 11, 9, 0, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.opts)
			require.NoError(t, err)
			for _, ts := range tt.in {
				assert.True(t, r.Contains(ts), "expected %v to be an occurrence", ts)
			}
			for _, ts := range tt.out {
				assert.False(t, r.Contains(ts), "expected %v not to be an occurrence", ts)
			}
		})
	}
}

func TestContains_FallsBackForCountAndSetpos(t *testing.T) {
	t.Run("count truncates membership", func(t *testing.T) {
		r, err := New(Options{Freq: Daily, Count: 3, Dtstart: dt(1997, 9, 2, 9, 0, 0)})
		require.NoError(t, err)
		assert.True(t, r.Contains(dt(1997, 9, 4, 9, 0, 0)))
		// The fourth day matches every filter but COUNT already ran out.
		assert.False(t, r.Contains(dt(1997, 9, 5, 9, 0, 0)))
	})

	t.Run("setpos membership needs enumeration", func(t *testing.T) {
		r, err := New(Options{
			Freq: Monthly, Bysetpos: []int{3},
			Byweekday: []WeekdayNum{{Weekday: Tuesday}, {Weekday: Wednesday}, {Weekday: Thursday}},
			Until:     dt(1998, 9, 2, 9, 0, 0),
			Dtstart:   dt(1997, 9, 2, 9, 0, 0),
		})
		require.NoError(t, err)
		assert.True(t, r.Contains(dt(1997, 9, 4, 9, 0, 0)))
		// A Tuesday that passes the BY filters but is not the third
		// weekday of its month.
		assert.False(t, r.Contains(dt(1997, 9, 2, 9, 0, 0)))
	})
}

func TestContains_AgreesWithIteration(t *testing.T) {
	r, err := New(Options{
		Freq: Monthly, Count: 12,
		Byweekday: []WeekdayNum{{Weekday: Friday, N: -1}},
		Dtstart:   dt(1997, 9, 2, 9, 0, 0),
	})
	require.NoError(t, err)

	occs, err := r.All()
	require.NoError(t, err)
	require.Len(t, occs, 12)
	for _, occ := range occs {
		assert.True(t, r.Contains(occ), "emitted %v must be a member", occ)
		// Timestamps strictly between occurrences are not members.
		assert.False(t, r.Contains(occ.Add(time.Hour)))
	}
}
