package modkit

import (
	"net/http"

	"datemerge/internal/modkit/httpkit"
	str "datemerge/internal/platform/strings"
)

// Built is what a module keeps from its options
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies opts in order
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// Mount opens the module prefix on r, applies the module middlewares, then registers endpoints
func (b Built) Mount(r httpkit.Router, register func(httpkit.Router)) {
	r.Route(str.MustPrefix(b.Prefix), func(rr httpkit.Router) {
		for _, mw := range b.Mw {
			rr.Use(mw)
		}
		register(rr)
	})
}
