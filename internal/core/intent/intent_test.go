package intent

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestLoad(t *testing.T) {
	tbl, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Version != 1 {
		t.Fatalf("version %d", tbl.Version)
	}
	if !tbl.Supports(language.French) || !tbl.Supports(language.MustParse("fr-CA")) {
		t.Fatalf("french not supported")
	}
	if tbl.Supports(language.English) || tbl.Supports(language.Und) {
		t.Fatalf("only french ships a rule set")
	}

	locales := tbl.Locales()
	if len(locales) != 1 {
		t.Fatalf("locales %d", len(locales))
	}
	counts := locales[0].Counts()
	for _, k := range Priority {
		if counts[k] <= 0 {
			t.Fatalf("no rule for %s", k)
		}
	}
}

func TestRules_OrderedByPriority(t *testing.T) {
	rs, ok := MustLoad().For(language.French)
	if !ok {
		t.Fatalf("no french rule set")
	}
	last := 0
	for _, r := range rs.Rules {
		idx := -1
		for i, k := range Priority {
			if k == r.Kind {
				idx = i
			}
		}
		if idx < last {
			t.Fatalf("rule %s out of priority order", r.ID)
		}
		last = idx
	}
}

// every example shipped in the rule pack must classify to its own rule's intent
func TestRules_Examples(t *testing.T) {
	rs, ok := MustLoad().For(language.French)
	if !ok {
		t.Fatalf("no french rule set")
	}
	for _, r := range rs.Rules {
		if len(r.Examples) == 0 {
			t.Fatalf("rule %s has no examples", r.ID)
		}
		for _, ex := range r.Examples {
			if got := rs.Classify(ex); got.Kind != r.Kind {
				t.Fatalf("%s: %q classified %s by %s", r.ID, ex, got.Kind, got.Rule)
			}
		}
	}
}

func TestClassify_French(t *testing.T) {
	tbl := MustLoad()

	tests := []struct {
		text    string
		kind    Kind
		day     int
		weekday int
	}{
		{text: "le 3", kind: SubstituteDay, day: 3},
		{text: "  Le   20 ", kind: SubstituteDay, day: 20},
		{text: "le 20 02", kind: None},
		{text: "vendredi", kind: SubstituteWeekday, weekday: 5},
		{text: "Le Dimanche", kind: SubstituteWeekday, weekday: 7},
		{text: "lundi", kind: SubstituteWeekday, weekday: 1},
		{text: "mardi prochain", kind: Add},
		{text: "la semaine suivante", kind: Add},
		{text: "le lendemain", kind: Add},
		{text: "lendemain", kind: Add},
		{text: "la veille", kind: Add},
		{text: "deux jours d'après", kind: Add},
		{text: "en soirée", kind: NarrowTimeOfDay},
		{text: "En fin d’après-midi", kind: NarrowTimeOfDay},
		{text: "le matin", kind: NarrowTimeOfDay},
		{text: "à 15h", kind: NarrowTimeOfDay},
		{text: "vers 9h30", kind: NarrowTimeOfDay},
		{text: "entre 14h et 16h", kind: NarrowTimeOfDay},
		{text: "demain", kind: None},
		{text: "le 3 mars", kind: None},
		{text: "", kind: None},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got := tbl.Classify(language.French, tc.text)
			if got.Kind != tc.kind {
				t.Fatalf("kind %s, want %s (rule %s)", got.Kind, tc.kind, got.Rule)
			}
			if tc.kind == SubstituteDay && got.Day != tc.day {
				t.Fatalf("day %d, want %d", got.Day, tc.day)
			}
			if tc.kind == SubstituteWeekday && got.Weekday != tc.weekday {
				t.Fatalf("weekday %d, want %d", got.Weekday, tc.weekday)
			}
		})
	}
}

func TestClassify_UnsupportedLocale(t *testing.T) {
	tbl := MustLoad()
	for _, text := range []string{"le 3", "vendredi", "next tuesday", "en soirée"} {
		if got := tbl.Classify(language.English, text); got.Kind != None {
			t.Fatalf("%q classified %s", text, got.Kind)
		}
	}
}

func TestClassifierFor(t *testing.T) {
	tbl := MustLoad()

	fr := tbl.ClassifierFor(language.MustParse("fr-FR"))
	if _, ok := fr.(*RuleSet); !ok {
		t.Fatalf("french classifier %T", fr)
	}
	if got := fr.Classify("le 3"); got.Kind != SubstituteDay {
		t.Fatalf("fr classified %s", got.Kind)
	}

	en := tbl.ClassifierFor(language.English)
	if got := en.Classify("le 3"); got.Kind != None || got.Rule != "" {
		t.Fatalf("en classified %+v", got)
	}
	var nilTable *Table
	if got := nilTable.ClassifierFor(language.French).Classify("le 3"); got.Kind != None {
		t.Fatalf("nil table classified %s", got.Kind)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"version", `{"version":2,"locales":[]}`, ""},
		{"not json", `not json`, ""},
		{"slot", `{"version":1,"locales":[{"locale":"fr","rules":[{"id":"x","intent":"add","pattern":"{NOPE}"}]}]}`, "unknown slot"},
		{"intent", `{"version":1,"locales":[{"locale":"fr","rules":[{"id":"x","intent":"shrug","pattern":"a"}]}]}`, "unknown intent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err %v, want %q", err, tc.want)
			}
		})
	}
}

func TestExpandSlots_KeepsRepetition(t *testing.T) {
	got, err := expandSlots(`\d{2} {X}`, map[string]string{"X": "(?:a|b)"})
	if err != nil || got != `\d{2} (?:a|b)` {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestIsoWeekday(t *testing.T) {
	for d, want := range map[time.Weekday]int{time.Monday: 1, time.Saturday: 6, time.Sunday: 7} {
		if got := IsoWeekday(d); got != want {
			t.Fatalf("IsoWeekday(%s) = %d", d, got)
		}
	}
}
