// Package module wires dates into the API using modkit
package module

import (
	"context"
	"time"

	"datemerge/internal/adapters/duckling"
	"datemerge/internal/core/datesmerge"
	"datemerge/internal/core/intent"
	modkit "datemerge/internal/modkit"
	"datemerge/internal/modkit/httpkit"
	"datemerge/internal/modkit/repokit"
	"datemerge/internal/platform/net/middleware"
	str "datemerge/internal/platform/strings"
	dateshttp "datemerge/internal/services/api/dates/http"
	datesrepo "datemerge/internal/services/api/dates/repo"
	datessvc "datemerge/internal/services/api/dates/service"
)

// Module implements the dates module
type Module struct {
	b     modkit.Built
	svc   datessvc.Service
	ports any
}

// New constructs the dates module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	o := FromConfig(deps.Cfg)
	base := []modkit.Option{modkit.WithName("dates"), modkit.WithPrefix("/dates")}
	if o.MaxInflight > 0 {
		base = append(base, modkit.WithMiddlewares(middleware.Throttle(o.MaxInflight)))
	}
	b := modkit.Build(append(base, opts...)...)

	rules := intent.MustLoad()
	parser := duckling.NewParser(duckling.NewClient(o.Duckling))
	engine := datesmerge.New(parser, rules, datesmerge.Options{Refine: o.Refine})

	var svcOpts []datessvc.Option
	if deps.PG != nil {
		binder := datesrepo.NewPG()
		if o.EnsureSchema {
			ensureSchema(deps, binder)
		}
		svcOpts = append(svcOpts, datessvc.WithAudit(deps.PG, binder))
	}
	if deps.CH != nil {
		svcOpts = append(svcOpts, datessvc.WithEvents(datesrepo.NewCH(deps.CH)))
	}
	svc := datessvc.New(parser, engine, rules, datessvc.Config{
		BatchLimit: o.BatchLimit,
		LogMerges:  o.LogMerges,
		Refine:     o.Refine,
	}, svcOpts...)

	return &Module{b: b, svc: svc, ports: adaptDatesPort{svc: svc}}
}

// ensureSchema creates the merge log table, a failure leaves the log best effort
func ensureSchema(deps modkit.Deps, binder repokit.Binder[datesrepo.Repo]) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repokit.MustBind(binder, deps.PG).EnsureSchema(ctx); err != nil {
		deps.Log.Warn().Err(err).Msg("dates: merge log schema not ensured")
	}
}

// MountRoutes mounts the dates endpoints under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { dateshttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports exposes the dates service port
func (m *Module) Ports() any { return m.ports }
