// Package app assembles process-wide configuration once, via an explicit
// builder, and runs every registered plugin before the application becomes
// interactive. Plugins run in registration order; the first failure aborts
// the bootstrap.
package app

import (
	"fmt"

	"timeloop/internal/config"
	"timeloop/internal/logger"
	"timeloop/internal/store"
)

// Plugin is a startup component configured once during bootstrap.
type Plugin interface {
	Name() string
	Setup(a *App) error
}

// App is the assembled application state after a successful bootstrap.
type App struct {
	Config config.Config
	Log    logger.Logger

	// Store is set by the sql plugin and is ready (opened and migrated)
	// once Bootstrap returns.
	Store store.Store
}

// Close releases resources held by plugins.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Builder assembles the pieces of an App.
type Builder struct {
	cfg     config.Config
	log     logger.Logger
	plugins []Plugin
}

// NewBuilder returns a Builder with default config and logger.
func NewBuilder() *Builder {
	return &Builder{
		cfg: config.DefaultConfig(),
		log: logger.Default,
	}
}

// WithConfig sets the process configuration.
func (b *Builder) WithConfig(cfg config.Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the logger used by the bootstrap and handed to the App.
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.log = log
	return b
}

// Plugin registers a plugin. Plugins run in registration order.
func (b *Builder) Plugin(p Plugin) *Builder {
	b.plugins = append(b.plugins, p)
	return b
}

// Bootstrap runs every registered plugin. Any plugin failure is fatal to
// startup: the partially built App is closed and the error returned.
func (b *Builder) Bootstrap() (*App, error) {
	a := &App{
		Config: b.cfg,
		Log:    b.log,
	}

	for _, p := range b.plugins {
		b.log.Debug("setting up plugin %s", p.Name())
		if err := p.Setup(a); err != nil {
			a.Close()
			return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}

	return a, nil
}
