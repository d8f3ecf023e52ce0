// Package normalize provides the deterministic text normalizer applied to fragment text
// before it is classified
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFC composition so accents match precomposed rule patterns
// 3 Remove control and format chars
// 4 Typographic apostrophes to ASCII
// 5 Width fold fullwidth to ASCII
// 6 Locale aware lowercasing
// 7 Collapse every whitespace run to a single space and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe, each call borrows a transformer chain from its pool
type Normalizer struct {
	pool sync.Pool
}

// New constructs a Normalizer lowercasing with the rules of tag
func New(tag language.Tag) *Normalizer {
	n := &Normalizer{}
	n.pool.New = func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.Predicate(isControl)),
			runes.Remove(runes.In(unicode.Cf)), // ZWJ ZWNJ FEFF etc
			runes.Map(foldApostrophe),
			width.Fold,
			cases.Lower(tag),
		)
	}
	return n
}

// Normalize returns the normalized form of s following the pipeline described above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := n.pool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	n.pool.Put(tr)
	if err != nil {
		// a chain failure leaves the plain lowercase text, still usable for matching
		ns = strings.ToLower(s)
	}

	return collapseSpaces(ns)
}

// isControl keeps whitespace controls so line breaks still separate words
func isControl(r rune) bool { return unicode.IsControl(r) && !unicode.IsSpace(r) }

func foldApostrophe(r rune) rune {
	switch r {
	case '’', '‘', 'ʼ', '´', '`':
		return '\''
	}
	return r
}

// collapseSpaces converts every whitespace run, line breaks included, to one ASCII space and trims
func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
