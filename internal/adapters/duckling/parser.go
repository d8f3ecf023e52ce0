package duckling

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"

	"datemerge/internal/core/overlap"
	"datemerge/internal/core/temporal"
	perr "datemerge/internal/platform/errors"
	"datemerge/internal/platform/logger"
)

// RecognitionProbability is the confidence given to every recognized fragment
const RecognitionProbability = 0.8

// Fetcher is the transport the Parser reads raw entries from
type Fetcher interface {
	Parse(ctx context.Context, req Request) ([]Entry, error)
}

// Evaluation is the outcome of evaluating a text for one dimension
type Evaluation struct {
	Evaluated bool
	Value     temporal.Value
	Score     float64
}

// Parser decodes Duckling answers into fragments and descriptors
type Parser struct {
	client Fetcher
	log    logger.Logger
}

// NewParser wires a Parser over c
func NewParser(c Fetcher) *Parser {
	if c == nil {
		panic("duckling.NewParser requires a non nil Fetcher")
	}
	return &Parser{client: c, log: *logger.Named("duckling")}
}

// Fragments parses text for dim and reports transport or input errors
// time fragments whose spans overlap are merged
func (p *Parser) Fragments(ctx context.Context, lang language.Tag, dim temporal.Dimension, ref time.Time, text string) ([]temporal.Fragment, error) {
	if !Supported(dim) {
		return nil, perr.InvalidArgf("dimension %q not supported", dim)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	byDim, err := p.fetch(ctx, lang, ref, text, []temporal.Dimension{dim})
	if err != nil {
		return nil, err
	}
	return byDim[dim], nil
}

// Parse implements the merge engine parser port
// failures are logged and read as no fragments
func (p *Parser) Parse(ctx context.Context, lang language.Tag, dim temporal.Dimension, ref time.Time, text string) ([]temporal.Fragment, error) {
	out, err := p.Fragments(ctx, lang, dim, ref, text)
	if err != nil {
		p.log.Warn().Err(err).
			Str("lang", lang.String()).
			Str("dim", string(dim)).
			Str("text", text).
			Msg("parse error")
		return nil, nil
	}
	return out, nil
}

// Recognize parses a whole utterance for dims and returns one descriptor per fragment,
// ordered by position
func (p *Parser) Recognize(ctx context.Context, lang language.Tag, ref time.Time, text string, dims []temporal.Dimension) ([]temporal.Descriptor, error) {
	if len(dims) == 0 {
		dims = []temporal.Dimension{temporal.DimTime}
	}
	for _, d := range dims {
		if !Supported(d) {
			return nil, perr.InvalidArgf("dimension %q not supported", d)
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	byDim, err := p.fetch(ctx, lang, ref, text, dims)
	if err != nil {
		return nil, err
	}

	var out []temporal.Descriptor
	for _, d := range dims {
		for _, f := range byDim[d] {
			out = append(out, temporal.Descriptor{
				Content:     f.Text(text),
				Position:    f.Start,
				Probability: RecognitionProbability,
				Value:       f.Value,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// Evaluate reads text as a single value of dim
// the first fragment wins, scoring 1 when it spans the whole text and 0.5 otherwise
func (p *Parser) Evaluate(ctx context.Context, lang language.Tag, dim temporal.Dimension, ref time.Time, text string) (Evaluation, error) {
	frags, err := p.Fragments(ctx, lang, dim, ref, text)
	if err != nil {
		return Evaluation{}, err
	}
	if len(frags) == 0 {
		return Evaluation{}, nil
	}
	f := frags[0]
	score := 0.5
	if f.Start == 0 && f.End == len(text) {
		score = 1
	}
	return Evaluation{Evaluated: true, Value: f.Value, Score: score}, nil
}

func (p *Parser) fetch(ctx context.Context, lang language.Tag, ref time.Time, text string, dims []temporal.Dimension) (map[temporal.Dimension][]temporal.Fragment, error) {
	names := make([]string, 0, len(dims))
	for _, d := range dims {
		names = append(names, string(d))
	}
	entries, err := p.client.Parse(ctx, Request{Lang: lang, Text: text, Dims: names, Ref: ref})
	if err != nil {
		return nil, err
	}

	var zone *time.Location
	if !ref.IsZero() {
		zone = ref.Location()
	}
	dec := newDecoder(text, zone, p.log)
	out := make(map[temporal.Dimension][]temporal.Fragment, len(dims))
	for _, d := range dims {
		frags := dec.decode(entries, d)
		if d == temporal.DimTime {
			frags = overlap.Merge(frags)
		}
		out[d] = frags
	}
	return out, nil
}
