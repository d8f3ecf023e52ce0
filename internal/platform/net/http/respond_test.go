package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"datemerge/internal/platform/config"
	perr "datemerge/internal/platform/errors"
	pnet "datemerge/internal/platform/net"
	phttp "datemerge/internal/platform/net/http"
)

type mergeReq struct {
	Language string `json:"language" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

func do(t *testing.T, h phttp.Handler, method, body string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, "/dates/parse", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-7"))
	rec := httptest.NewRecorder()
	h(rec, req)

	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	return rec, env
}

func TestJSONHandler(t *testing.T) {
	called := false
	h := phttp.JSONHandler(func(_ *http.Request, in mergeReq) (any, error) {
		called = true
		return map[string]string{"lang": in.Language}, nil
	})

	rec, env := do(t, h, http.MethodPost, `{"language":"fr","text":"demain"}`)
	if rec.Code != http.StatusOK || env.RequestID != "rid-7" || !called {
		t.Fatalf("status %d env %+v", rec.Code, env)
	}
	if m, _ := env.Data.(map[string]any); m["lang"] != "fr" {
		t.Fatalf("data %#v", env.Data)
	}
}

func TestJSONHandler_RejectsBeforeCalling(t *testing.T) {
	h := phttp.JSONHandler(func(*http.Request, mergeReq) (any, error) {
		t.Fatal("handler must not run")
		return nil, nil
	})
	for name, body := range map[string]string{
		"broken json":    `{`,
		"missing field":  `{"language":"fr"}`,
		"unknown fields": `{"language":"fr","text":"x","mood":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPost, body)
			if rec.Code != http.StatusBadRequest || env.Error == "" {
				t.Fatalf("status %d env %+v", rec.Code, env)
			}
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	h := phttp.JSONHandlerNoBody(func(*http.Request) (any, error) {
		return nil, perr.WithField(perr.InvalidArgf("unknown timezone %q", "Mars/Olympus"), "timezone")
	})
	rec, env := do(t, h, http.MethodGet, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
	if env.Code != perr.ErrorCodeInvalidArgument || env.Field != "timezone" || env.Data != nil {
		t.Fatalf("env %+v", env)
	}
	if rec.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Fatalf("content type %q", rec.Header().Get("Content-Type"))
	}

	h = phttp.JSONHandlerNoBody(func(*http.Request) (any, error) { return nil, errors.New("boom") })
	rec, env = do(t, h, http.MethodGet, "")
	if rec.Code != http.StatusInternalServerError || env.Code != perr.ErrorCodeUnknown || env.Error != "boom" {
		t.Fatalf("status %d env %+v", rec.Code, env)
	}
}

func TestResponsePassthrough(t *testing.T) {
	h := phttp.JSONHandlerNoBody(func(*http.Request) (any, error) {
		return phttp.Response{Status: http.StatusAccepted, Body: []int{1, 2}}, nil
	})
	rec, env := do(t, h, http.MethodGet, "")
	if rec.Code != http.StatusAccepted || env.StatusCode != http.StatusAccepted || env.Status != "Accepted" {
		t.Fatalf("status %d env %+v", rec.Code, env)
	}
}

func TestRouter_RouteAndUse(t *testing.T) {
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	r.Route("/api/v1", func(api phttp.Router) {
		api.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("X-Scope", "api")
				next.ServeHTTP(w, req)
			})
		})
		api.Post("/dates/merge", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
		api.Handle("/raw", http.NotFoundHandler())
	})

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/dates/merge", nil))
	if rec.Code != http.StatusCreated || rec.Header().Get("X-Scope") != "api" {
		t.Fatalf("status %d scope %q", rec.Code, rec.Header().Get("X-Scope"))
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dates/merge", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on POST route: %d", rec.Code)
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Setenv("CORE_API_PORT", "127.0.0.1:0")
	t.Setenv("CORE_API_SHUTDOWN_GRACE", "1s")
	srv := phttp.NewServer(config.New().Prefix("CORE_API_"))
	if srv.Addr() != "127.0.0.1:0" {
		t.Fatalf("addr %q", srv.Addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestNewServer_BarePort(t *testing.T) {
	t.Setenv("CORE_API_PORT", "8081")
	if got := phttp.NewServer(config.New().Prefix("CORE_API_")).Addr(); got != ":8081" {
		t.Fatalf("addr %q", got)
	}
}
