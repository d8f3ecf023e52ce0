package datesmerge

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"

	"datemerge/internal/core/grain"
	"datemerge/internal/core/temporal"
)

// concat folds the disjoint fragments of one utterance into a single descriptor
// fragments of distinct grains are re-read together since one may disambiguate another,
// fragments sharing a grain are never joined and the most confident one wins
func (e *Engine) concat(ctx context.Context, mc Context, fresh []temporal.Descriptor) (temporal.Descriptor, error) {
	if len(fresh) == 1 {
		return fresh[0], nil
	}

	seen := make(map[grain.Grain]struct{}, len(fresh))
	for _, d := range fresh {
		g, err := temporal.GrainOf(d.Value)
		if err != nil {
			return temporal.Descriptor{}, err
		}
		seen[g] = struct{}{}
	}
	top := best(fresh)
	if len(seen) != len(fresh) {
		return top, nil
	}

	ordered := make([]temporal.Descriptor, len(fresh))
	copy(ordered, fresh)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })
	parts := make([]string, 0, len(ordered))
	for _, d := range ordered {
		parts = append(parts, d.Content)
	}
	text := strings.Join(parts, " ")

	v, ok := e.parseFirst(ctx, mc.Language, mc.Reference, text)
	if !ok {
		return top, nil
	}
	return temporal.Descriptor{
		Content:     text,
		Position:    ordered[0].Position,
		Probability: top.Probability,
		Value:       v,
	}, nil
}

// best returns the most confident descriptor, ties go to the lowest position
func best(ds []temporal.Descriptor) temporal.Descriptor {
	top := ds[0]
	for _, d := range ds[1:] {
		if d.Probability > top.Probability || (d.Probability == top.Probability && d.Position < top.Position) {
			top = d
		}
	}
	return top
}

// parseFirst returns the first time value the parser finds in text
// parser errors are logged and read as no match
func (e *Engine) parseFirst(ctx context.Context, lang language.Tag, ref time.Time, text string) (temporal.Value, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	frags, err := e.parser.Parse(ctx, lang, temporal.DimTime, ref, text)
	if err != nil {
		e.log.Warn().Err(err).Str("text", text).Str("lang", lang.String()).Msg("parse failed")
		return nil, false
	}
	if len(frags) == 0 || frags[0].Value == nil {
		return nil, false
	}
	return frags[0].Value, true
}
