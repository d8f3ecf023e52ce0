// Package module mounts the meta endpoints
package module

import (
	"time"

	modkit "datemerge/internal/modkit"
	"datemerge/internal/modkit/httpkit"
	str "datemerge/internal/platform/strings"

	metahttp "datemerge/internal/services/api/meta/http"
)

// Ports declares the optional ports meta reports on
type Ports struct {
	Engine metahttp.EngineReporter
}

// Module serves health, readiness and engine info
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	d := metahttp.Deps{
		ServiceName: "datemerge-api",
		StartedAt:   time.Now(),
	}
	if p, ok := b.Ports.(Ports); ok {
		d.Engine = p.Engine
	}
	// a disabled backend must stay a nil interface to read as skipped
	if p, ok := deps.PG.(metahttp.Pinger); ok {
		d.PG = p
	}
	if p, ok := deps.CH.(metahttp.Pinger); ok {
		d.CH = p
	}
	return &Module{b: b, deps: d}
}

// MountRoutes mounts health and readiness under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports is nil, nothing consumes meta
func (m *Module) Ports() any { return nil }
