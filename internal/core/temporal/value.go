// Package temporal holds the value model shared by the recognizer adapter and the merge engine
package temporal

import (
	"fmt"
	"time"

	"datemerge/internal/core/grain"
)

// Value is a resolved temporal value: Instant, Interval or Duration
type Value interface {
	// Kind names the concrete shape for logs and wire payloads
	Kind() string
	fmt.Stringer
}

// Range is a Value with a start and an exclusive end
type Range interface {
	Value
	Start() time.Time
	End(zone *time.Location) time.Time
	Grain() grain.Grain
}

// Instant is one zoned instant resolved to a grain
type Instant struct {
	Time      time.Time
	Precision grain.Grain
}

// Kind implements Value
func (Instant) Kind() string { return "instant" }

// Start implements Range
func (i Instant) Start() time.Time { return i.Time }

// End is the grain sized period end computed in zone
func (i Instant) End(zone *time.Location) time.Time { return i.Precision.End(i.Time, zone) }

// Grain implements Range
func (i Instant) Grain() grain.Grain { return i.Precision }

func (i Instant) String() string {
	return fmt.Sprintf("%s/%s", i.Time.Format(time.RFC3339), i.Precision)
}

// Interval is a pair of instants, its grain is the grain of From
type Interval struct {
	From Instant
	To   Instant
}

// NewInterval builds an interval and rejects an end before the start
func NewInterval(from, to Instant) (Interval, error) {
	if to.Time.Before(from.Time) {
		return Interval{}, fmt.Errorf("temporal: interval end %s before start %s", to.Time, from.Time)
	}
	return Interval{From: from, To: to}, nil
}

// Kind implements Value
func (Interval) Kind() string { return "interval" }

// Start implements Range
func (iv Interval) Start() time.Time { return iv.From.Time }

// End implements Range, interval ends are already exclusive
func (iv Interval) End(*time.Location) time.Time { return iv.To.Time }

// Grain implements Range
func (iv Interval) Grain() grain.Grain { return iv.From.Precision }

func (iv Interval) String() string { return iv.From.String() + ".." + iv.To.String() }

// Duration is a length of time with no anchor
type Duration struct {
	Length time.Duration
}

// Kind implements Value
func (Duration) Kind() string { return "duration" }

func (d Duration) String() string { return d.Length.String() }

// GrainOf returns the driving grain of v
func GrainOf(v Value) (grain.Grain, error) {
	r, ok := v.(Range)
	if !ok {
		return 0, fmt.Errorf("temporal: %s value has no grain", kindOf(v))
	}
	return r.Grain(), nil
}

// AsRange asserts that v carries a start and an end
func AsRange(v Value) (Range, error) {
	r, ok := v.(Range)
	if !ok {
		return nil, fmt.Errorf("temporal: %s value is not a range", kindOf(v))
	}
	return r, nil
}

// WithZone projects every instant of v into zone
func WithZone(v Value, zone *time.Location) Value {
	if zone == nil {
		return v
	}
	switch x := v.(type) {
	case Instant:
		return Instant{Time: x.Time.In(zone), Precision: x.Precision}
	case Interval:
		return Interval{
			From: Instant{Time: x.From.Time.In(zone), Precision: x.From.Precision},
			To:   Instant{Time: x.To.Time.In(zone), Precision: x.To.Precision},
		}
	default:
		return v
	}
}

func kindOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind()
}
