package modkit

import "net/http"

// Option mutates build configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	ports  any
}

// WithName sets the module name used in logs
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option {
	return func(c *buildCfg) { c.prefix = prefix }
}

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}

// WithPorts injects ports another module exposes
// the concrete type is owned by the importing module
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}
