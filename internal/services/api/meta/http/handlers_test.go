package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "datemerge/internal/platform/net/http"
	datesdomain "datemerge/internal/services/api/dates/domain"
)

type fakeEngine struct{}

func (fakeEngine) Engine(context.Context) datesdomain.EngineInfo {
	return datesdomain.EngineInfo{RulesVersion: 1, Locales: []datesdomain.EngineLocale{{Locale: "fr"}}}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, data any) int {
	t.Helper()
	mux := chi.NewRouter()
	phttp.AdaptChi(mux).Route("/meta", func(r phttp.Router) { Register(r, d) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(env.Data, data); err != nil {
		t.Fatalf("decode data: %v body=%s", err, rec.Body.String())
	}
	return rec.Code
}

func TestEngine(t *testing.T) {
	var out EngineResponse
	if code := get(t, Deps{Engine: fakeEngine{}}, "/meta/engine", &out); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if out.Engine == nil || out.Engine.RulesVersion != 1 || out.Engine.Locales[0].Locale != "fr" {
		t.Fatalf("unexpected engine %+v", out.Engine)
	}

	out = EngineResponse{}
	get(t, Deps{}, "/meta/engine", &out)
	if out.Engine != nil {
		t.Fatalf("engine should be omitted without a reporter")
	}
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		deps Deps
		want string
	}{
		{"no stores", Deps{}, "degraded"},
		{"all ok", Deps{PG: pinger{}, CH: pinger{}}, "ok"},
		{"ch down", Deps{PG: pinger{}, CH: pinger{err: errors.New("connection refused")}}, "fail"},
		{"ch only", Deps{CH: pinger{}}, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out ReadyResponse
			get(t, tc.deps, "/meta/ready", &out)
			if out.Status != tc.want {
				t.Fatalf("status %q want %q checks=%+v", out.Status, tc.want, out.Checks)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	var out HealthResponse
	get(t, Deps{ServiceName: "datemerge-api"}, "/meta/health", &out)
	if !out.OK || out.Service != "datemerge-api" {
		t.Fatalf("unexpected health %+v", out)
	}
}

func TestService_Uptime(t *testing.T) {
	var out ServiceResponse
	get(t, Deps{ServiceName: "datemerge-api", StartedAt: time.Now().Add(-90 * time.Second)}, "/meta/service", &out)
	if out.Uptime < 90 || out.Name != "datemerge-api" {
		t.Fatalf("unexpected service %+v", out)
	}
}

func TestReady_ReportsPingError(t *testing.T) {
	var out ReadyResponse
	get(t, Deps{PG: pinger{err: errors.New("connection refused")}}, "/meta/ready", &out)
	if len(out.Checks) != 2 || out.Checks[0].Status != "fail" || out.Checks[0].Error != "connection refused" || out.Checks[1].Status != "skipped" {
		t.Fatalf("checks %+v", out.Checks)
	}
}
