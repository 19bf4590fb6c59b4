// Package modkit provides module wiring and the shared deps bundle
package modkit

import (
	"registrygate/internal/platform/config"
	"registrygate/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// wiring only, modules read their own knobs from Cfg under a prefix
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
}

// NewDeps returns deps bound to the process logger and the environment
func NewDeps() Deps {
	return Deps{Log: *logger.Get(), Cfg: config.New()}
}

// Named returns a copy whose logger carries a component field
func (d Deps) Named(component string) Deps {
	d.Log = d.Log.With().Str("component", component).Logger()
	return d
}
