// Package grain models the precision of a temporal value, from second to year
// Grains are totally ordered, coarser grains compare greater
package grain

import (
	"fmt"
	"strings"
	"time"
)

// Grain is the unit a temporal value is resolved to
type Grain uint8

const (
	// Second is the finest grain
	Second Grain = iota
	// Minute grain
	Minute
	// Hour grain
	Hour
	// Day grain
	Day
	// Week grain, weeks start on monday
	Week
	// Month grain
	Month
	// Quarter grain
	Quarter
	// Year is the coarsest grain
	Year
)

// All lists every grain from finest to coarsest
var All = []Grain{Second, Minute, Hour, Day, Week, Month, Quarter, Year}

var names = [...]string{"second", "minute", "hour", "day", "week", "month", "quarter", "year"}

// String returns the lowercase grain name used on the wire
func (g Grain) String() string {
	if int(g) < len(names) {
		return names[g]
	}
	return fmt.Sprintf("grain(%d)", uint8(g))
}

// Parse maps a wire name to a Grain
func Parse(s string) (Grain, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return Grain(i), nil
		}
	}
	return 0, fmt.Errorf("grain: unknown grain %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (g Grain) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Grain) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Compare returns -1, 0 or 1 when a is finer, equal or coarser than b
func Compare(a, b Grain) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsTime reports whether g is a time of day grain
func (g Grain) IsTime() bool { return g <= Hour }

// Truncate zeroes every field finer than g, keeping t's location
func (g Grain) Truncate(t time.Time) time.Time {
	loc := t.Location()
	y, m, d := t.Date()
	switch g {
	case Second:
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	case Minute:
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	case Hour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Week:
		back := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Quarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, first, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
}

// End returns the exclusive end of the g sized period starting at start
// date grains add calendar units to start seen from zone, so a day across a DST change keeps its wall clock
func (g Grain) End(start time.Time, zone *time.Location) time.Time {
	switch g {
	case Second:
		return start.Add(time.Second)
	case Minute:
		return start.Add(time.Minute)
	case Hour:
		return start.Add(time.Hour)
	}
	if zone == nil {
		zone = start.Location()
	}
	at := start.In(zone)
	switch g {
	case Day:
		return at.AddDate(0, 0, 1)
	case Week:
		return at.AddDate(0, 0, 7)
	case Month:
		return at.AddDate(0, 1, 0)
	case Quarter:
		return at.AddDate(0, 3, 0)
	default:
		return at.AddDate(1, 0, 0)
	}
}

// Max returns the coarsest whole unit separating a and b
// argument order does not matter
func Max(a, b time.Time) Grain {
	if b.Before(a) {
		a, b = b, a
	}
	b = b.In(a.Location())
	switch {
	case !a.AddDate(1, 0, 0).After(b):
		return Year
	case !a.AddDate(0, 1, 0).After(b):
		return Month
	case !a.AddDate(0, 0, 7).After(b):
		return Week
	case !a.AddDate(0, 0, 1).After(b):
		return Day
	case b.Sub(a) >= time.Hour:
		return Hour
	case b.Sub(a) >= time.Minute:
		return Minute
	default:
		return Second
	}
}
