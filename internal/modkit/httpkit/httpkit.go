// Package httpkit is the routing surface modules register endpoints on
package httpkit

import (
	"compress/flate"
	"net/http"
	"strings"
	"time"

	"datemerge/internal/platform/logger"
	phttp "datemerge/internal/platform/net/http"
	"datemerge/internal/platform/net/middleware"
)

// Router is the platform router seam
type Router = phttp.Router

// Get registers a handler that reads no body
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.JSONHandlerNoBody(h))
}

// PostJSON registers a handler fed a decoded and validated T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// StackOptions tunes CommonStack, zero values take defaults
type StackOptions struct {
	Log         *logger.Logger
	Timeout     time.Duration // 30s
	SlowRequest time.Duration // 0 never warns
	CORSOrigins []string      // any
}

// CommonStack is the middleware every API scope runs
func CommonStack(o StackOptions) []middleware.Middleware {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []middleware.Middleware{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(o.Log, o.SlowRequest),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(o.CORSOrigins),
		middleware.Compress(flate.BestSpeed),
		middleware.Timeout(o.Timeout),
	}
}

// MountAPI opens /api/{version}, applies mw and lets mount register on it
//
//	httpkit.MountAPI(r, "v1", httpkit.CommonStack(httpkit.StackOptions{}), func(api httpkit.Router) {
//		dates.MountRoutes(api)
//	})
func MountAPI(r Router, version string, mw []middleware.Middleware, mount func(Router)) {
	r.Route("/api/"+strings.Trim(version, "/"), func(api Router) {
		if len(mw) > 0 {
			api.Use(mw...)
		}
		mount(api)
	})
}

// MountAPIV1 mounts under /api/v1
func MountAPIV1(r Router, mw []middleware.Middleware, mount func(Router)) {
	MountAPI(r, "v1", mw, mount)
}
