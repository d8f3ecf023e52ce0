// Package intent classifies the text of a newly recognized date fragment into the merge
// intent it expresses relative to a value carried over from a previous turn
package intent

import (
	"fmt"
	"time"
)

// Kind is the tag of a classified intent
type Kind uint8

const (
	// None means no locale rule matched, the merge falls back to grain comparison
	None Kind = iota
	// SubstituteDay keeps year and month of the prior value and replaces its day
	SubstituteDay
	// SubstituteWeekday moves the prior value to a named weekday
	SubstituteWeekday
	// NarrowTimeOfDay keeps the prior day and narrows it to a part of the day or a clock time
	NarrowTimeOfDay
	// Add re-resolves the new text relative to the prior value
	Add
)

var kindNames = [...]string{"none", "substitute_day", "substitute_weekday", "narrow_time_of_day", "add"}

// Priority lists the kinds in the order rules are tried
var Priority = []Kind{SubstituteDay, SubstituteWeekday, NarrowTimeOfDay, Add}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a rule pack intent name to a Kind
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return None, fmt.Errorf("intent: unknown intent %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Intent is the outcome of classifying one fragment
// Day is set for SubstituteDay, Weekday for SubstituteWeekday as 1 monday to 7 sunday,
// a zero Weekday keeps the prior weekday
type Intent struct {
	Kind    Kind
	Rule    string
	Day     int
	Weekday int
}

// Classifier classifies normalized or raw fragment text for one locale
type Classifier interface {
	Classify(text string) Intent
}

// IsoWeekday maps a time.Weekday to 1 for monday through 7 for sunday
func IsoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
