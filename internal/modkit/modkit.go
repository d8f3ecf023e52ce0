// Package modkit provides module wiring and core deps
package modkit

import (
	"datemerge/internal/modkit/httpkit"
	"datemerge/internal/modkit/repokit"
	"datemerge/internal/platform/config"
	"datemerge/internal/platform/logger"
	"datemerge/internal/platform/store"
)

// Module is the surface API modules expose to the composition root
type Module interface {
	MountRoutes(r httpkit.Router)
	// Ports returns the module port set for cross wiring, or nil
	Ports() any
	Name() string
}

// Deps holds the core dependencies passed to modules
// PG and CH are nil when the backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
