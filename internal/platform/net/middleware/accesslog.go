package middleware

import (
	"net/http"
	"time"

	"datemerge/internal/platform/logger"
	pnet "datemerge/internal/platform/net"
)

type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	cw.bytes += n
	return n, err
}

// AccessLog puts a request logger carrying request_id on the context and logs
// one line per request, requests slower than slow log at warn, 0 never does
func AccessLog(base *logger.Logger, slow time.Duration) Middleware {
	if base == nil {
		base = logger.Named("http")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With().Str("request_id", pnet.RequestID(r.Context())).Logger()
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r.WithContext(logger.WithContext(r.Context(), &l)))

			elapsed := time.Since(start)
			evt := l.Info()
			if slow > 0 && elapsed >= slow {
				evt = l.Warn()
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
