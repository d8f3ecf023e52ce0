// Package module pulls typed ports out of composed modules
package module

import modkit "datemerge/internal/modkit"

// Module is the composed module surface
type Module = modkit.Module
