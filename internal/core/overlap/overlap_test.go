package overlap

import (
	"reflect"
	"testing"
	"time"

	"datemerge/internal/core/grain"
	"datemerge/internal/core/temporal"
)

func inst(t time.Time, g grain.Grain) temporal.Instant {
	return temporal.Instant{Time: t, Precision: g}
}

func frag(start, end int, v temporal.Value) temporal.Fragment {
	return temporal.Fragment{Start: start, End: end, Value: v, Dim: temporal.DimTime}
}

func TestMerge_DateAndTimeOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	monday := inst(time.Date(2025, time.October, 13, 0, 0, 0, 0, loc), grain.Day)
	// the recognizer resolves "15h" against today
	threePM := inst(time.Date(2025, time.October, 6, 15, 0, 0, 0, loc), grain.Hour)

	// "lundi à 15h": the time fragment starts inside the date fragment span
	got := Merge([]temporal.Fragment{
		frag(3, 11, threePM),
		frag(0, 8, monday),
	})

	if len(got) != 1 || got[0].Start != 0 || got[0].End != 11 {
		t.Fatalf("got %+v", got)
	}
	v, ok := got[0].Value.(temporal.Instant)
	if !ok {
		t.Fatalf("value %T", got[0].Value)
	}
	if want := time.Date(2025, time.October, 13, 15, 0, 0, 0, loc); !v.Time.Equal(want) || v.Precision != grain.Hour {
		t.Fatalf("instant %s", v)
	}
}

func TestMerge_SameGrainBecomesInterval(t *testing.T) {
	mon := inst(time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC), grain.Day)
	fri := inst(time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC), grain.Day)

	got := Merge([]temporal.Fragment{frag(0, 12, mon), frag(9, 20, fri)})

	if len(got) != 1 || got[0].End != 20 {
		t.Fatalf("got %+v", got)
	}
	iv, ok := got[0].Value.(temporal.Interval)
	if !ok {
		t.Fatalf("value %T", got[0].Value)
	}
	if !iv.From.Time.Equal(mon.Time) || iv.From.Precision != grain.Day {
		t.Fatalf("from %s", iv.From)
	}
	// friday is part of the interval, it ends when friday does
	saturday := time.Date(2025, time.October, 11, 0, 0, 0, 0, time.UTC)
	if !iv.To.Time.Equal(saturday) || iv.To.Precision != grain.Day {
		t.Fatalf("to %s", iv.To)
	}
	if during := fri.Time.Add(10 * time.Hour); !iv.End(time.UTC).After(during) {
		t.Fatalf("interval ended before friday 10:00: %s", iv.End(time.UTC))
	}
}

func TestMerge_UnknownShapeKeepsFirst(t *testing.T) {
	day := inst(time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC), grain.Day)
	month := inst(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), grain.Month)
	dur := temporal.Duration{Length: time.Hour}

	got := Merge([]temporal.Fragment{frag(0, 5, day), frag(2, 9, dur)})
	if len(got) != 1 || got[0].Value != temporal.Value(day) || got[0].End != 5 {
		t.Fatalf("duration overlap: %+v", got)
	}

	got = Merge([]temporal.Fragment{frag(0, 5, day), frag(2, 9, month)})
	if len(got) != 1 || got[0].Value != temporal.Value(day) {
		t.Fatalf("two date grains: %+v", got)
	}
}

func TestMerge_DisjointUntouched(t *testing.T) {
	a := frag(0, 5, inst(time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC), grain.Day))
	b := frag(6, 10, inst(time.Date(2025, time.October, 6, 15, 0, 0, 0, time.UTC), grain.Hour))

	if got := Merge([]temporal.Fragment{b, a}); !reflect.DeepEqual(got, []temporal.Fragment{a, b}) {
		t.Fatalf("got %+v", got)
	}
	if got := Merge(nil); len(got) != 0 {
		t.Fatalf("Merge(nil) = %+v", got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	base := time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC)
	inputs := [][]temporal.Fragment{
		{
			frag(0, 6, inst(base, grain.Day)),
			frag(4, 10, inst(base.AddDate(0, 0, 1), grain.Day)),
			frag(8, 14, inst(base.Add(9*time.Hour), grain.Hour)),
			frag(12, 18, inst(base.Add(10*time.Hour), grain.Hour)),
		},
		{
			frag(0, 3, inst(base, grain.Day)),
			frag(1, 4, inst(base.Add(time.Hour), grain.Hour)),
			frag(2, 5, inst(base.Add(2*time.Hour), grain.Hour)),
		},
	}
	for _, in := range inputs {
		once := Merge(in)
		for i := 0; i+1 < len(once); i++ {
			if once[i].End > once[i+1].Start {
				t.Fatalf("fragments still overlap: %+v", once)
			}
		}
		if twice := Merge(once); !reflect.DeepEqual(once, twice) {
			t.Fatalf("not a fixed point:\n%+v\n%+v", once, twice)
		}
	}
}
