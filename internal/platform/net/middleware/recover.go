package middleware

import (
	"net/http"
	"runtime/debug"

	perr "datemerge/internal/platform/errors"
	"datemerge/internal/platform/logger"
	pnet "datemerge/internal/platform/net"
	phttp "datemerge/internal/platform/net/http"
)

// RecoverJSON turns a panic into a 500 error envelope and logs the stack
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if id := pnet.RequestID(r.Context()); id != "" {
				w.Header().Set("X-Request-ID", id)
			}
			phttp.Handle(func(*http.Request) phttp.Response {
				return phttp.Error(perr.PanicErrf("panic recovered"))
			})(w, r)
		}()
		next.ServeHTTP(w, r)
	})
}
