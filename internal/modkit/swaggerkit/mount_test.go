package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "datemerge/internal/platform/net/http"
)

func TestMount_Disabled(t *testing.T) {
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), false)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d want 404", rec.Code)
	}
}

func TestMount_DocListsAPIRoutes(t *testing.T) {
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	Mount(r, true)
	r.Route("/api/v1/dates", func(rr phttp.Router) {
		rr.Post("/merge/batch", func(http.ResponseWriter, *http.Request) {})
		rr.Get("/branches", func(http.ResponseWriter, *http.Request) {})
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var doc document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	op, ok := doc.Paths["/api/v1/dates/merge/batch"]["post"]
	if !ok {
		t.Fatalf("batch route missing: %+v", doc.Paths)
	}
	if op.OperationID != "post_dates_merge_batch" || len(op.Tags) != 1 || op.Tags[0] != "dates" {
		t.Fatalf("operation %+v", op)
	}
	if _, ok := doc.Paths["/api/docs/doc.json"]; ok {
		t.Fatalf("docs routes should not be documented")
	}
	if doc.Info["title"] != "datemerge API" {
		t.Fatalf("info %+v", doc.Info)
	}
}

func TestMount_Redirect(t *testing.T) {
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), true)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if rec.Code != http.StatusPermanentRedirect || rec.Header().Get("Location") != "/api/docs/" {
		t.Fatalf("status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
}
