package datesmerge

import (
	"context"
	"fmt"
	"time"

	"datemerge/internal/core/grain"
	"datemerge/internal/core/intent"
	"datemerge/internal/core/temporal"
)

// mergeWith applies the locale rules to the initial value and the new one
// substitutions win first, then the grain decision re-reads the new text
func (e *Engine) mergeWith(ctx context.Context, mc Context, initial, current temporal.Descriptor) (Resolution, error) {
	zone := mc.Reference.Location()
	old, err := temporal.AsRange(initial.Value)
	if err != nil {
		return Resolution{}, fmt.Errorf("initial value: %w", err)
	}
	nv, err := temporal.AsRange(current.Value)
	if err != nil {
		return Resolution{}, fmt.Errorf("new value: %w", err)
	}

	in := e.classify(mc, current.Content)
	refDay := grain.Day.Truncate(mc.Reference)
	start := old.Start().In(zone)

	switch in.Kind {
	case intent.SubstituteDay:
		day, err := dayOfMonth(start, in.Day)
		if err != nil {
			return Resolution{Intent: in.Kind}, err
		}
		if !day.Before(refDay) {
			return resolved(current, temporal.Instant{Time: day, Precision: grain.Day}, BranchDayOfMonth, in.Kind), nil
		}
	case intent.SubstituteWeekday:
		day := dayOfWeek(start, in.Weekday, refDay)
		if !day.Before(refDay) {
			return resolved(current, temporal.Instant{Time: day, Precision: grain.Day}, BranchDayOfWeek, in.Kind), nil
		}
	}

	d, branch, ok := e.mergeGrain(mc, in, old, nv)
	if !ok {
		return Resolution{Value: current, OK: true, Branch: BranchUnmerged, Intent: in.Kind}, nil
	}

	ref := start
	if !d.Additive {
		ref = d.Grain.Truncate(start)
	}
	v, ok := e.parseFirst(ctx, mc.Language, ref, current.Content)
	if !ok {
		return Resolution{Value: current, OK: true, Branch: BranchUnmerged, Intent: in.Kind}, nil
	}
	if r, isRange := v.(temporal.Range); isRange && grain.Day.Truncate(r.Start().In(zone)).Before(refDay) {
		e.log.Debug().
			Str("content", current.Content).
			Time("start", r.Start()).
			Msg("re-read lands before the reference day, keeping new value")
		return Resolution{Value: current, OK: true, Branch: BranchUnmerged, Intent: in.Kind}, nil
	}
	return resolved(current, v, branch, in.Kind), nil
}

// mergeGrain decides how the new text is re-read against the initial value
// a stale initial value never merges
func (e *Engine) mergeGrain(mc Context, in intent.Intent, old, nv temporal.Range) (Decision, Branch, bool) {
	zone := mc.Reference.Location()
	if old.End(zone).Before(mc.Reference) {
		return Decision{}, BranchUnmerged, false
	}

	switch in.Kind {
	case intent.Add:
		return Decision{Additive: true, Grain: nv.Grain()}, BranchAdditive, true
	case intent.NarrowTimeOfDay:
		return Decision{Additive: false, Grain: grain.Day}, BranchNarrowed, true
	}

	if grain.Compare(old.Grain(), nv.Grain()) > 0 && !old.Grain().End(nv.Start(), zone).Before(nv.End(zone)) {
		d := Decision{Additive: false, Grain: grain.Max(mc.Reference, old.Start())}
		if e.opts.Refine {
			return d, BranchRefined, true
		}
		e.log.Debug().Str("grain", d.Grain.String()).Msg("refinement decision discarded")
	}
	return Decision{}, BranchUnmerged, false
}

func (e *Engine) classify(mc Context, text string) intent.Intent {
	if e.rules == nil {
		return intent.Intent{Kind: intent.None}
	}
	return e.rules.Classify(mc.Language, text)
}

func resolved(current temporal.Descriptor, v temporal.Value, b Branch, k intent.Kind) Resolution {
	return Resolution{
		Value: temporal.Descriptor{
			Content:     current.Content,
			Position:    current.Position,
			Probability: current.Probability,
			Value:       v,
		},
		OK:     true,
		Branch: b,
		Intent: k,
	}
}

// dayOfMonth keeps year and month of start and moves to day at midnight
func dayOfMonth(start time.Time, day int) (time.Time, error) {
	y, m, _ := start.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, start.Location()).Day()
	if day < 1 || day > last {
		return time.Time{}, fmt.Errorf("day %d out of range for %s %d", day, m, y)
	}
	return time.Date(y, m, day, 0, 0, 0, 0, start.Location()), nil
}

// dayOfWeek moves start to the ISO weekday target, 0 keeps start's weekday
// the next occurrence is taken when target comes later in the week, is sunday, or when the
// previous occurrence is already before the reference day
func dayOfWeek(start time.Time, target int, refDay time.Time) time.Time {
	cur := intent.IsoWeekday(start.Weekday())
	if target == 0 {
		target = cur
	}
	if cur == target {
		return grain.Day.Truncate(start)
	}

	previous := grain.Day.Truncate(start.AddDate(0, 0, -stepBack(cur, target)))
	if cur < target || target == 7 || previous.Before(refDay) {
		return grain.Day.Truncate(start.AddDate(0, 0, stepForward(cur, target)))
	}
	return previous
}

// stepForward counts days to the next target strictly after cur
func stepForward(cur, target int) int {
	n := (target - cur + 7) % 7
	if n == 0 {
		n = 7
	}
	return n
}

// stepBack counts days to the previous target strictly before cur
func stepBack(cur, target int) int {
	n := (cur - target + 7) % 7
	if n == 0 {
		n = 7
	}
	return n
}
