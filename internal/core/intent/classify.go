package intent

import (
	"strconv"
	"strings"
)

// Normalize returns text as the rule set's patterns see it
func (rs *RuleSet) Normalize(text string) string { return rs.norm.Normalize(text) }

// Classify returns the intent of the first rule matching the whole normalized text
func (rs *RuleSet) Classify(text string) Intent {
	s := rs.Normalize(text)
	if s == "" {
		return Intent{Kind: None}
	}
	for _, r := range rs.Rules {
		m := r.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		in := Intent{Kind: r.Kind, Rule: r.ID}
		switch r.Kind {
		case SubstituteDay:
			in.Day = captureInt(r, m, "day")
		case SubstituteWeekday:
			in.Weekday = rs.weekdayIn(s)
		}
		return in
	}
	return Intent{Kind: None}
}

// weekdayIn finds the first weekday name contained in s, monday first
func (rs *RuleSet) weekdayIn(s string) int {
	for i, w := range rs.weekdays {
		if strings.Contains(s, w) {
			return i + 1
		}
	}
	return 0
}

// captureInt reads a named numeric group, -1 when absent or not a number
func captureInt(r Rule, m []string, name string) int {
	i := r.re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return -1
	}
	n, err := strconv.Atoi(m[i])
	if err != nil {
		return -1
	}
	return n
}

// Counts reports how many rules the set holds per intent kind
func (rs *RuleSet) Counts() map[Kind]int {
	out := make(map[Kind]int, len(Priority))
	for _, r := range rs.Rules {
		out[r.Kind]++
	}
	return out
}
