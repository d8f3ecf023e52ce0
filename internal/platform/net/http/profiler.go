package http

import (
	stdhttp "net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves pprof under prefix/pprof when enabled
func MountProfiler(r Router, prefix string, enabled bool) {
	if enabled {
		r.Handle(prefix+"/*", stdhttp.StripPrefix(prefix, chimw.Profiler()))
	}
}
