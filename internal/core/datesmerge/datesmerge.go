// Package datesmerge reconciles a date carried over from a previous dialogue turn with
// the date fragments recognized in the current utterance
//
// The engine never fails a call: unsupported entity types resolve to nothing, parser
// failures count as no candidates, and any internal error degrades to the newest value
package datesmerge

import (
	"context"
	"time"

	"golang.org/x/text/language"

	"datemerge/internal/core/grain"
	"datemerge/internal/core/intent"
	"datemerge/internal/core/temporal"
	"datemerge/internal/platform/logger"
)

// Parser resolves text into temporal fragments relative to ref
// implementations return an empty list when nothing matches
type Parser interface {
	Parse(ctx context.Context, lang language.Tag, dim temporal.Dimension, ref time.Time, text string) ([]temporal.Fragment, error)
}

// Context is what the caller knows about the merge request
// Reference is "now" for the dialogue turn, its location is the zone all dates are projected to
type Context struct {
	EntityType string
	Language   language.Tag
	Reference  time.Time
}

// Branch names the rule that produced a merge result
type Branch string

// Branches
const (
	BranchUnsupported Branch = "unsupported"
	BranchEmpty       Branch = "empty"
	BranchFresh       Branch = "fresh"
	BranchDayOfMonth  Branch = "day_of_month"
	BranchDayOfWeek   Branch = "day_of_week"
	BranchAdditive    Branch = "additive"
	BranchNarrowed    Branch = "narrowed"
	BranchRefined     Branch = "refined"
	BranchUnmerged    Branch = "unmerged"
	BranchFallback    Branch = "fallback"
)

// Resolution is the detailed outcome of a merge
// OK is false when the engine resolved nothing
type Resolution struct {
	Value  temporal.Descriptor
	OK     bool
	Branch Branch
	Intent intent.Kind
	Err    error
}

// Decision tells how a new fragment is re-read against the initial value
// additive re-reads relative to the initial instant, otherwise relative to its truncation to Grain
type Decision struct {
	Additive bool
	Grain    grain.Grain
}

// Options tune the engine
type Options struct {
	// Refine lets the non additive refinement decision act instead of being discarded
	Refine bool
}

// Engine is safe for concurrent use when its Parser is
type Engine struct {
	parser Parser
	rules  *intent.Table
	opts   Options
	log    logger.Logger
	now    func() time.Time
}

// New constructs an Engine, rules may be nil to disable every locale rule
func New(p Parser, rules *intent.Table, opts Options) *Engine {
	if p == nil {
		panic("datesmerge.New requires a non nil Parser")
	}
	return &Engine{
		parser: p,
		rules:  rules,
		opts:   opts,
		log:    *logger.Named("datesmerge"),
		now:    time.Now,
	}
}

// Merge returns the resolved value for descriptors, false when there is none
func (e *Engine) Merge(ctx context.Context, mc Context, descriptors []temporal.Descriptor) (temporal.Descriptor, bool) {
	r := e.Resolve(ctx, mc, descriptors)
	return r.Value, r.OK
}

// Resolve is Merge reporting which branch decided the result
func (e *Engine) Resolve(ctx context.Context, mc Context, descriptors []temporal.Descriptor) Resolution {
	if mc.EntityType != temporal.DatetimeEntityType {
		e.log.Warn().Str("entity_type", mc.EntityType).Msg("merge not supported for entity type")
		return Resolution{Branch: BranchUnsupported}
	}
	if mc.Reference.IsZero() {
		mc.Reference = e.now()
	}

	initial, fresh := partition(descriptors)
	if len(fresh) == 0 {
		if initial != nil {
			return Resolution{Value: *initial, OK: true, Branch: BranchEmpty}
		}
		return Resolution{Branch: BranchEmpty}
	}

	current, err := e.concat(ctx, mc, fresh)
	if err != nil {
		e.log.Error().Err(err).Int("values", len(fresh)).Msg("concat failed")
		return Resolution{Value: best(fresh), OK: true, Branch: BranchFallback, Err: err}
	}
	if initial == nil {
		return Resolution{Value: current, OK: true, Branch: BranchFresh}
	}

	res, err := e.mergeWith(ctx, mc, *initial, current)
	if err != nil {
		e.log.Error().Err(err).
			Str("content", current.Content).
			Str("lang", mc.Language.String()).
			Msg("date merge failed, keeping new value")
		return Resolution{Value: current, OK: true, Branch: BranchFallback, Intent: res.Intent, Err: err}
	}
	return res
}

// partition splits the first initial descriptor from the new ones
func partition(ds []temporal.Descriptor) (*temporal.Descriptor, []temporal.Descriptor) {
	var initial *temporal.Descriptor
	fresh := make([]temporal.Descriptor, 0, len(ds))
	for i := range ds {
		if ds[i].Initial {
			if initial == nil {
				initial = &ds[i]
			}
			continue
		}
		fresh = append(fresh, ds[i])
	}
	return initial, fresh
}
