// Package overlap merges raw recognizer fragments whose text spans overlap
package overlap

import (
	"sort"
	"time"

	"datemerge/internal/core/temporal"
)

// Merge sorts fragments by span and folds overlapping neighbours together
// two instants of the same grain become an interval that ends with the second one's period,
// a date instant and a time instant become one instant on that date at that time,
// any other overlap keeps the first fragment
// the pass repeats until nothing overlaps so the output is a fixed point
func Merge(in []temporal.Fragment) []temporal.Fragment {
	out := make([]temporal.Fragment, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})

	for {
		next, merged := pass(out)
		out = next
		if !merged {
			return out
		}
	}
}

// pass does one left to right scan, consuming the second fragment of each merged pair
func pass(in []temporal.Fragment) ([]temporal.Fragment, bool) {
	if len(in) < 2 {
		return in, false
	}
	out := make([]temporal.Fragment, 0, len(in))
	merged := false
	for i := 0; i < len(in); i++ {
		if i+1 < len(in) && in[i].End > in[i+1].Start {
			out = append(out, pair(in[i], in[i+1]))
			merged = true
			i++
			continue
		}
		out = append(out, in[i])
	}
	return out, merged
}

// pair combines two overlapping fragments
func pair(a, b temporal.Fragment) temporal.Fragment {
	ia, okA := a.Value.(temporal.Instant)
	ib, okB := b.Value.(temporal.Instant)
	if !okA || !okB {
		return a
	}

	f := temporal.Fragment{Start: a.Start, End: max(a.End, b.End), Dim: temporal.DimTime}
	if ia.Precision == ib.Precision {
		if ib.Time.Before(ia.Time) {
			ia, ib = ib, ia
		}
		// "du lundi au vendredi" covers friday, intervals keep an exclusive end
		to := temporal.Instant{Time: ib.End(ib.Time.Location()), Precision: ib.Precision}
		f.Value = temporal.Interval{From: ia, To: to}
		return f
	}

	// only a date grain paired with a time grain has a known reading
	if ia.Precision.IsTime() == ib.Precision.IsTime() {
		return a
	}
	date, clock := ia, ib
	if ia.Precision.IsTime() {
		date, clock = ib, ia
	}
	f.Value = atTimeOfDay(date, clock)
	return f
}

// atTimeOfDay keeps the calendar date of date and the clock of clock
func atTimeOfDay(date, clock temporal.Instant) temporal.Instant {
	c := clock.Time.In(date.Time.Location())
	y, m, d := date.Time.Date()
	return temporal.Instant{
		Time:      time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, date.Time.Location()),
		Precision: clock.Precision,
	}
}
