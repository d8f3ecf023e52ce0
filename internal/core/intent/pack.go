package intent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"datemerge/internal/core/normalize"
)

//go:embed rules.json
var embedded []byte

type rawRule struct {
	ID       string   `json:"id"`
	Intent   string   `json:"intent"`
	Pattern  string   `json:"pattern"`
	Examples []string `json:"examples,omitempty"`
}

type rawLocale struct {
	Locale   string            `json:"locale"`
	Weekdays []string          `json:"weekdays"`
	Slots    map[string]string `json:"slots"`
	Rules    []rawRule         `json:"rules"`
}

type rawPack struct {
	Version int         `json:"version"`
	Locales []rawLocale `json:"locales"`
}

// Rule is one compiled full string pattern
type Rule struct {
	ID       string
	Kind     Kind
	Pattern  string
	Examples []string
	re       *regexp.Regexp
}

// RuleSet is the compiled rule list of one locale, ordered by intent priority
type RuleSet struct {
	Locale   language.Base
	Rules    []Rule
	weekdays []string
	norm     *normalize.Normalizer
}

// Table maps a base language to its rule set
// locales without a rule set classify every fragment as None
type Table struct {
	Version int
	sets    map[language.Base]*RuleSet
}

// Load compiles the embedded rule pack
func Load() (*Table, error) { return Parse(embedded) }

// MustLoad is Load for package init and main
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse compiles a rule pack document
func Parse(doc []byte) (*Table, error) {
	var rp rawPack
	if err := json.Unmarshal(doc, &rp); err != nil {
		return nil, fmt.Errorf("intent: parse rules: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("intent: unsupported rules version %d (want 1)", rp.Version)
	}

	t := &Table{Version: rp.Version, sets: make(map[language.Base]*RuleSet, len(rp.Locales))}
	for _, rl := range rp.Locales {
		rs, err := compileLocale(rl)
		if err != nil {
			return nil, err
		}
		t.sets[rs.Locale] = rs
	}
	return t, nil
}

func compileLocale(rl rawLocale) (*RuleSet, error) {
	tag, err := language.Parse(rl.Locale)
	if err != nil {
		return nil, fmt.Errorf("intent: locale %q: %w", rl.Locale, err)
	}
	base, _ := tag.Base()

	slots := make(map[string]string, len(rl.Slots)+1)
	for k, v := range rl.Slots {
		slots[k] = "(?:" + v + ")"
	}
	weekdays := make([]string, 0, len(rl.Weekdays))
	quoted := make([]string, 0, len(rl.Weekdays))
	for _, w := range rl.Weekdays {
		w = strings.ToLower(strings.TrimSpace(w))
		weekdays = append(weekdays, w)
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(weekdays) != 0 && len(weekdays) != 7 {
		return nil, fmt.Errorf("intent: locale %q lists %d weekdays", rl.Locale, len(weekdays))
	}
	slots["WEEKDAY"] = "(?:" + strings.Join(quoted, "|") + ")"

	rs := &RuleSet{Locale: base, weekdays: weekdays, norm: normalize.New(tag)}
	for _, r := range rl.Rules {
		kind, err := ParseKind(r.Intent)
		if err != nil {
			return nil, fmt.Errorf("intent: rule %s: %w", r.ID, err)
		}
		exp, err := expandSlots(r.Pattern, slots)
		if err != nil {
			return nil, fmt.Errorf("intent: rule %s: %w", r.ID, err)
		}
		// rules always match the whole normalized fragment
		re, err := regexp.Compile("^(?:" + exp + ")$")
		if err != nil {
			return nil, fmt.Errorf("intent: compile %s: %w", r.ID, err)
		}
		rs.Rules = append(rs.Rules, Rule{ID: r.ID, Kind: kind, Pattern: exp, Examples: r.Examples, re: re})
	}

	rank := make(map[Kind]int, len(Priority))
	for i, k := range Priority {
		rank[k] = i
	}
	sort.SliceStable(rs.Rules, func(i, j int) bool { return rank[rs.Rules[i].Kind] < rank[rs.Rules[j].Kind] })
	return rs, nil
}

// expandSlots replaces {NAME} with the slot's regex fragment
// an unknown slot is an error so typos do not silently compile into literals
func expandSlots(pattern string, slots map[string]string) (string, error) {
	var b strings.Builder
	rest := pattern
	for {
		i := strings.Index(rest, "{")
		if i < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		j := strings.Index(rest[i:], "}")
		if j < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		name := rest[i+1 : i+j]
		// regex repetition like {2} or {1,3} is not a slot
		if _, err := strconv.Atoi(strings.Replace(name, ",", "", 1)); err == nil {
			b.WriteString(rest[:i+j+1])
			rest = rest[i+j+1:]
			continue
		}
		frag, ok := slots[name]
		if !ok {
			return "", fmt.Errorf("unknown slot {%s}", name)
		}
		b.WriteString(rest[:i])
		b.WriteString(frag)
		rest = rest[i+j+1:]
	}
}

// For returns the rule set for tag's base language
func (t *Table) For(tag language.Tag) (*RuleSet, bool) {
	if t == nil {
		return nil, false
	}
	base, conf := tag.Base()
	if conf < language.High {
		return nil, false
	}
	rs, ok := t.sets[base]
	return rs, ok
}

// Supports reports whether tag has a rule set
func (t *Table) Supports(tag language.Tag) bool {
	_, ok := t.For(tag)
	return ok
}

// unsupported answers None for every fragment
type unsupported struct{}

func (unsupported) Classify(string) Intent { return Intent{Kind: None} }

// ClassifierFor returns the classifier of tag's base language
// a locale without a rule set gets one that always answers None
func (t *Table) ClassifierFor(tag language.Tag) Classifier {
	if rs, ok := t.For(tag); ok {
		return rs
	}
	return unsupported{}
}

// Classify classifies text with the classifier of tag
func (t *Table) Classify(tag language.Tag, text string) Intent {
	return t.ClassifierFor(tag).Classify(text)
}

// Locales lists the configured base languages in a stable order
func (t *Table) Locales() []*RuleSet {
	out := make([]*RuleSet, 0, len(t.sets))
	for _, rs := range t.sets {
		out = append(out, rs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locale.String() < out[j].Locale.String() })
	return out
}
