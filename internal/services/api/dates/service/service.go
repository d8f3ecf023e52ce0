// Package service contains dates workflows
package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"datemerge/internal/adapters/duckling"
	"datemerge/internal/core/datesmerge"
	"datemerge/internal/core/intent"
	"datemerge/internal/core/temporal"
	"datemerge/internal/modkit/repokit"
	perr "datemerge/internal/platform/errors"
	"datemerge/internal/platform/logger"
	"datemerge/internal/services/api/dates/domain"
	"datemerge/internal/services/api/dates/repo"
)

const (
	batchLimitDefault = 8
	logLimitDefault   = 50
	logLimitMax       = 500
	daysDefault       = 7
	daysMax           = 365
)

// Service defines the dates service contract
type Service interface {
	domain.ServicePort
}

// Recognizer turns text into fragments and descriptors
type Recognizer interface {
	Fragments(ctx context.Context, lang language.Tag, dim temporal.Dimension, ref time.Time, text string) ([]temporal.Fragment, error)
	Recognize(ctx context.Context, lang language.Tag, ref time.Time, text string, dims []temporal.Dimension) ([]temporal.Descriptor, error)
	Evaluate(ctx context.Context, lang language.Tag, dim temporal.Dimension, ref time.Time, text string) (duckling.Evaluation, error)
}

// Merger resolves a carried value against new descriptors
type Merger interface {
	Resolve(ctx context.Context, mc datesmerge.Context, ds []temporal.Descriptor) datesmerge.Resolution
}

// Config tunes the service
type Config struct {
	// BatchLimit bounds concurrent merges of one batch
	BatchLimit int
	// LogMerges writes every merge to the postgres audit log when one is wired
	LogMerges bool
	// Refine is reported by Engine, the merger owns the behavior
	Refine bool
}

// Option configures Svc
type Option func(*Svc)

// WithAudit wires the postgres merge log
func WithAudit(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) Option {
	return func(s *Svc) {
		if db == nil || binder == nil {
			return
		}
		s.db = db
		s.binder = binder
		s.Repo = repokit.MustBind(binder, db)
	}
}

// WithEvents wires the clickhouse event sink
func WithEvents(ev repo.Events) Option {
	return func(s *Svc) { s.events = ev }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Svc) { s.now = now }
}

// Svc implements the dates service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	events repo.Events

	rec   Recognizer
	eng   Merger
	rules *intent.Table
	cfg   Config

	now   func() time.Time
	newID func() uuid.UUID
}

// New constructs a dates service
func New(rec Recognizer, eng Merger, rules *intent.Table, cfg Config, opts ...Option) *Svc {
	if rec == nil {
		panic("dates.Service requires a non nil Recognizer")
	}
	if eng == nil {
		panic("dates.Service requires a non nil Merger")
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = batchLimitDefault
	}
	s := &Svc{
		rec:   rec,
		eng:   eng,
		rules: rules,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// request is a decoded language and reference pair
type request struct {
	lang language.Tag
	ref  time.Time
}

func (s *Svc) request(lang, reference, tz string) (request, error) {
	tag, err := langOf(lang)
	if err != nil {
		return request{}, err
	}
	ref, err := referenceOf(reference, tz, s.now())
	if err != nil {
		return request{}, err
	}
	return request{lang: tag, ref: ref}, nil
}

// Parse returns every fragment of one dimension found in the text
func (s *Svc) Parse(ctx context.Context, in domain.ParseInput) ([]domain.FragmentDTO, error) {
	rq, err := s.request(in.Language, in.Reference, in.Timezone)
	if err != nil {
		return nil, err
	}
	dim := temporal.DimTime
	if in.Dimension != "" {
		dim = temporal.Dimension(in.Dimension)
	}
	frags, err := s.rec.Fragments(ctx, rq.lang, dim, rq.ref, in.Text)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FragmentDTO, 0, len(frags))
	for _, f := range frags {
		out = append(out, domain.FragmentDTO{
			Start: f.Start,
			End:   f.End,
			Text:  f.Text(in.Text),
			Dim:   string(f.Dim),
			Value: fromValue(f.Value),
		})
	}
	return out, nil
}

// Recognize returns descriptors for the requested dimensions, time when none
func (s *Svc) Recognize(ctx context.Context, in domain.RecognizeInput) ([]domain.DescriptorDTO, error) {
	rq, err := s.request(in.Language, in.Reference, in.Timezone)
	if err != nil {
		return nil, err
	}
	dims := make([]temporal.Dimension, 0, len(in.Dimensions))
	for _, d := range in.Dimensions {
		dims = append(dims, temporal.Dimension(d))
	}
	ds, err := s.rec.Recognize(ctx, rq.lang, rq.ref, in.Text, dims)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DescriptorDTO, 0, len(ds))
	for _, d := range ds {
		out = append(out, fromDescriptor(d))
	}
	return out, nil
}

// Evaluate reads a single value of one dimension
func (s *Svc) Evaluate(ctx context.Context, in domain.EvaluateInput) (domain.EvaluateOutput, error) {
	rq, err := s.request(in.Language, in.Reference, in.Timezone)
	if err != nil {
		return domain.EvaluateOutput{}, err
	}
	ev, err := s.rec.Evaluate(ctx, rq.lang, temporal.Dimension(in.Dimension), rq.ref, in.Text)
	if err != nil {
		return domain.EvaluateOutput{}, err
	}
	out := domain.EvaluateOutput{Evaluated: ev.Evaluated, Score: ev.Score}
	if ev.Evaluated {
		v := fromValue(ev.Value)
		out.Value = &v
	}
	return out, nil
}

// outcome is one merge ready to be recorded
type outcome struct {
	id         uuid.UUID
	at         time.Time
	entityType string
	rq         request
	res        datesmerge.Resolution
}

// Merge resolves the carried value against the new descriptors
func (s *Svc) Merge(ctx context.Context, in domain.MergeInput) (domain.MergeOutput, error) {
	oc, err := s.merge(ctx, in)
	if err != nil {
		return domain.MergeOutput{}, err
	}
	s.record(ctx, []outcome{oc})
	return outputOf(oc), nil
}

// MergeBatch merges independent requests concurrently, results keep input order
// an invalid item reports its error in place and does not fail the batch
func (s *Svc) MergeBatch(ctx context.Context, in domain.BatchInput) (domain.BatchOutput, error) {
	results := make([]domain.MergeOutput, len(in.Items))
	done := make([]*outcome, len(in.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchLimit)
	for i, item := range in.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			oc, err := s.merge(gctx, item)
			if err != nil {
				results[i] = domain.MergeOutput{Branch: "invalid", Error: err.Error()}
				return nil
			}
			results[i] = outputOf(oc)
			done[i] = &oc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.BatchOutput{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "merge batch interrupted")
	}

	ocs := make([]outcome, 0, len(done))
	for _, oc := range done {
		if oc != nil {
			ocs = append(ocs, *oc)
		}
	}
	s.record(ctx, ocs)
	return domain.BatchOutput{Results: results}, nil
}

func (s *Svc) merge(ctx context.Context, in domain.MergeInput) (outcome, error) {
	rq, err := s.request(in.Language, in.Reference, in.Timezone)
	if err != nil {
		return outcome{}, err
	}
	ds, err := toDescriptors(in.Values, rq.ref.Location())
	if err != nil {
		return outcome{}, err
	}
	res := s.eng.Resolve(ctx, datesmerge.Context{
		EntityType: in.EntityType,
		Language:   rq.lang,
		Reference:  rq.ref,
	}, ds)
	return outcome{id: s.newID(), at: s.now(), entityType: in.EntityType, rq: rq, res: res}, nil
}

func outputOf(oc outcome) domain.MergeOutput {
	out := domain.MergeOutput{
		ID:     oc.id.String(),
		Merged: oc.res.OK,
		Branch: string(oc.res.Branch),
		Intent: intentOf(oc.res),
	}
	if oc.res.OK {
		d := fromDescriptor(oc.res.Value)
		out.Value = &d
	}
	if oc.res.Err != nil {
		out.Error = oc.res.Err.Error()
	}
	return out
}

// record writes outcomes to the audit log and the event sink, failures are logged only
func (s *Svc) record(ctx context.Context, ocs []outcome) {
	if len(ocs) == 0 {
		return
	}
	if s.cfg.LogMerges && s.Repo != nil {
		err := s.db.Tx(ctx, func(q repokit.Queryer) error {
			r := repokit.MustBind(s.binder, q)
			for _, oc := range ocs {
				if err := r.Insert(ctx, entryOf(oc)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			logger.C(ctx).Warn().Str("component", "dates").Err(err).Int("merges", len(ocs)).Msg("merge log write failed")
		}
	}
	if s.events != nil {
		evs := make([]repo.Event, 0, len(ocs))
		for _, oc := range ocs {
			evs = append(evs, repo.Event{
				At:         oc.at,
				ID:         oc.id,
				EntityType: oc.entityType,
				Lang:       oc.rq.lang.String(),
				Branch:     string(oc.res.Branch),
				Intent:     intentOf(oc.res),
				Merged:     oc.res.OK,
			})
		}
		if err := s.events.Record(ctx, evs); err != nil {
			logger.C(ctx).Warn().Str("component", "dates").Err(err).Int("merges", len(ocs)).Msg("merge events write failed")
		}
	}
}

func intentOf(res datesmerge.Resolution) string {
	if res.Intent == intent.None {
		return ""
	}
	return res.Intent.String()
}

func entryOf(oc outcome) repo.Entry {
	e := repo.Entry{
		ID:         oc.id,
		CreatedAt:  oc.at.UTC(),
		EntityType: oc.entityType,
		Lang:       oc.rq.lang.String(),
		Reference:  oc.rq.ref.UTC(),
		Branch:     string(oc.res.Branch),
		Intent:     intentOf(oc.res),
		Merged:     oc.res.OK,
	}
	if oc.res.OK {
		e.Content = oc.res.Value.Content
		if oc.res.Value.Value != nil {
			e.Value = oc.res.Value.Value.String()
		}
	}
	if oc.res.Err != nil {
		e.Error = oc.res.Err.Error()
	}
	return e
}

// Log lists the most recent audited merges
func (s *Svc) Log(ctx context.Context, limit int) ([]domain.LogRow, error) {
	if s.Repo == nil {
		return nil, perr.Unavailablef("merge log is not enabled")
	}
	switch {
	case limit <= 0:
		limit = logLimitDefault
	case limit > logLimitMax:
		limit = logLimitMax
	}
	rows, err := s.Repo.Recent(ctx, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "merge log")
	}
	out := make([]domain.LogRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.LogRow{
			ID:         r.ID.String(),
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
			EntityType: r.EntityType,
			Language:   r.Lang,
			Reference:  r.Reference.UTC().Format(time.RFC3339),
			Branch:     r.Branch,
			Intent:     r.Intent,
			Content:    r.Content,
			Value:      r.Value,
			Merged:     r.Merged,
			Error:      r.Error,
		})
	}
	return out, nil
}

// Branches counts merges per day and branch over the last days
func (s *Svc) Branches(ctx context.Context, days int) ([]domain.BranchRow, error) {
	if s.events == nil {
		return nil, perr.Unavailablef("merge events are not enabled")
	}
	switch {
	case days <= 0:
		days = daysDefault
	case days > daysMax:
		days = daysMax
	}
	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1-days)
	rows, err := s.events.Branches(ctx, since)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "merge events")
	}
	out := make([]domain.BranchRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.BranchRow{
			Day:    r.Day.UTC().Format(time.DateOnly),
			Branch: r.Branch,
			Merges: r.Merges,
		})
	}
	return out, nil
}

// Engine describes the loaded rule pack
func (s *Svc) Engine(context.Context) domain.EngineInfo {
	info := domain.EngineInfo{Refine: s.cfg.Refine, Locales: []domain.EngineLocale{}}
	if s.rules == nil {
		return info
	}
	info.RulesVersion = s.rules.Version
	for _, rs := range s.rules.Locales() {
		rules := make(map[string]int)
		for k, n := range rs.Counts() {
			rules[k.String()] = n
		}
		info.Locales = append(info.Locales, domain.EngineLocale{Locale: rs.Locale.String(), Rules: rules})
	}
	sort.Slice(info.Locales, func(i, j int) bool { return info.Locales[i].Locale < info.Locales[j].Locale })
	return info
}
