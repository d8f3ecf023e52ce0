// Package middleware adapts chi middleware and adds request logging and panic recovery
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Middleware is a net/http middleware
type Middleware = func(http.Handler) http.Handler

// RequestID attaches or propagates X-Request-ID
func RequestID() Middleware { return chimw.RequestID }

// RealIP sets RemoteAddr from X-Forwarded-For or X-Real-IP
func RealIP() Middleware { return chimw.RealIP }

// NoCache disables client and proxy caching
func NoCache() Middleware { return chimw.NoCache }

// Timeout cancels the request context after d
func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// Compress gzips JSON responses at level
func Compress(level int) Middleware {
	return chimw.NewCompressor(level, "application/json").Handler
}

// CORS allows browser callers from origins, none configured means any
func CORS(origins []string) Middleware {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return chicors.Handler(chicors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

// Throttle caps in flight requests, callers past the cap get 429
func Throttle(limit int) Middleware { return chimw.Throttle(limit) }
