// Package swaggerkit serves the swagger UI and an OpenAPI document built from the mounted routes
package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"datemerge/internal/core/version"
	phttp "datemerge/internal/platform/net/http"
)

// Mount the Swagger UI and JSON spec if enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(r.Mux()))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

type operation struct {
	OperationID string              `json:"operationId"`
	Tags        []string            `json:"tags,omitempty"`
	Responses   map[string]response `json:"responses"`
}

type response struct {
	Description string `json:"description"`
}

type document struct {
	OpenAPI string                          `json:"openapi"`
	Info    map[string]string               `json:"info"`
	Paths   map[string]map[string]operation `json:"paths"`
}

// buildDoc lists every /api route chi knows about
func buildDoc(mux http.Handler) document {
	bi := version.Info()
	doc := document{
		OpenAPI: "3.0.3",
		Info:    map[string]string{"title": bi.Service + " API", "version": bi.Version},
		Paths:   map[string]map[string]operation{},
	}
	routes, ok := mux.(chi.Routes)
	if !ok {
		return doc
	}
	_ = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api/v") {
			return nil
		}
		route = strings.TrimSuffix(route, "/")
		if doc.Paths[route] == nil {
			doc.Paths[route] = map[string]operation{}
		}
		doc.Paths[route][strings.ToLower(method)] = operation{
			OperationID: operationID(method, route),
			Tags:        tagOf(route),
			Responses:   map[string]response{"200": {Description: "OK"}},
		}
		return nil
	})
	return doc
}

// operationID turns POST /api/v1/dates/merge/batch into post_dates_merge_batch
func operationID(method, route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) > 2 {
		parts = parts[2:]
	}
	return strings.ToLower(method) + "_" + strings.Join(parts, "_")
}

func tagOf(route string) []string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) < 3 {
		return nil
	}
	return []string{parts[2]}
}

func serveDocJSON(mux http.Handler) phttp.Handler {
	return func(w http.ResponseWriter, _ *http.Request) {
		doc := buildDoc(mux)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(doc)
	}
}
