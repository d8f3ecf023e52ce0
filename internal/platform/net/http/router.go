package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is the platform handler type used everywhere
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the minimal surface modules mount against
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Route(pattern string, fn func(Router))

	// Mux is the underlying chi router, it also satisfies chi.Routes
	Mux() http.Handler
}

type chiRouter struct{ r chi.Router }

// AdaptChi adapts a *chi.Mux to a Router
func AdaptChi(m *chi.Mux) Router { return chiRouter{r: m} }

func (c chiRouter) Get(p string, h Handler)  { c.r.Method(http.MethodGet, p, http.HandlerFunc(h)) }
func (c chiRouter) Post(p string, h Handler) { c.r.Method(http.MethodPost, p, http.HandlerFunc(h)) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Mux() http.Handler { return c.r }
