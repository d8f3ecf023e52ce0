// Package http serves health, readiness and engine info
package http

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"datemerge/internal/core/version"
	"datemerge/internal/modkit/httpkit"
	datesdomain "datemerge/internal/services/api/dates/domain"
)

// Pinger is a backend that can report readiness
type Pinger interface {
	Ping(context.Context) error
}

// EngineReporter describes the loaded merge rules
type EngineReporter interface {
	Engine(context.Context) datesdomain.EngineInfo
}

// Deps are the handler dependencies, a nil backend is reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          Pinger
	CH          Pinger
	Engine      EngineReporter
}

const readyTimeout = 2 * time.Second

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/engine", h.engine)
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Now     string `json:"now"`
}

// ReadyCheck is one backend probe, Status is ok, fail or skipped
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse is ok when every backend answered, fail when one did not,
// degraded when some are not configured
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse reports uptime
type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

// EngineResponse reports the merge rules next to the build
type EngineResponse struct {
	Engine *datesdomain.EngineInfo `json:"engine,omitempty"`
	Build  version.BuildInfo       `json:"build"`
}

func (h *handlers) stamp() string { return h.now().UTC().Format(time.RFC3339) }

func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.deps.ServiceName, Now: h.stamp()}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	probes := []struct {
		name string
		p    Pinger
	}{{"pg", h.deps.PG}, {"ch", h.deps.CH}}

	checks := make([]ReadyCheck, len(probes))
	var g errgroup.Group
	for i, pr := range probes {
		checks[i] = ReadyCheck{Name: pr.name, Status: "skipped"}
		if pr.p == nil {
			continue
		}
		g.Go(func() error {
			if err := pr.p.Ping(ctx); err != nil {
				checks[i].Status, checks[i].Error = "fail", err.Error()
				return nil
			}
			checks[i].Status = "ok"
			return nil
		})
	}
	_ = g.Wait()

	overall := "ok"
	for _, c := range checks {
		switch {
		case c.Status == "fail":
			overall = "fail"
		case c.Status == "skipped" && overall == "ok":
			overall = "degraded"
		}
	}
	return ReadyResponse{Status: overall, Checks: checks, Now: h.stamp()}, nil
}

func (h *handlers) version(*http.Request) (any, error) { return version.Info(), nil }

func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}

func (h *handlers) engine(r *http.Request) (any, error) {
	out := EngineResponse{Build: version.Info()}
	if h.deps.Engine != nil {
		info := h.deps.Engine.Engine(r.Context())
		out.Engine = &info
	}
	return out, nil
}
