// Package api provides the HTTP API for the application
package api

import (
	"datemerge/internal/platform/config"
	"datemerge/internal/platform/logger"
	phttp "datemerge/internal/platform/net/http"
	"datemerge/internal/platform/store"

	"datemerge/internal/modkit"
	"datemerge/internal/modkit/httpkit"
	"datemerge/internal/modkit/module"
	"datemerge/internal/modkit/swaggerkit"

	datesdomain "datemerge/internal/services/api/dates/domain"
	datesmod "datemerge/internal/services/api/dates/module"
	metamod "datemerge/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	Stack          httpkit.StackOptions
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	// dates first, meta reports on its engine port
	dates := datesmod.New(deps)
	engine := module.MustPortsOf[datesdomain.ServicePort](dates)

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Engine: engine})),
		dates,
	}

	// versioned API with a common middleware stack
	stack := opt.Stack
	if stack.Log == nil {
		stack.Log = opt.Logger
	}
	httpkit.MountAPIV1(r, httpkit.CommonStack(stack), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
