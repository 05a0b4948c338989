// Package di provides dependency injection container
package di

import (
	"log/slog"

	"github.com/ssargent/sq/pkg/config"
	"github.com/ssargent/sq/pkg/metrics"
	"github.com/ssargent/sq/pkg/pattern"
	"github.com/ssargent/sq/pkg/pipeline"
	"github.com/ssargent/sq/pkg/storage"
)

// SeenStore is a closable seen-set for import dedupe
type SeenStore interface {
	pipeline.SeenSet
	Close() error
}

// SeenStoreFactory opens a seen-set in dir ("" = temporary)
type SeenStoreFactory func(dir string, logger *slog.Logger) (SeenStore, error)

// Container holds all the dependencies for the application
type Container struct {
	config           *config.Config
	logger           *slog.Logger
	metrics          *metrics.Metrics
	library          *pattern.Library
	seenStoreFactory SeenStoreFactory
}

// NewContainer creates a new dependency injection container with defaults
func NewContainer() *Container {
	cfg := config.DefaultConfig()
	return &Container{
		config:  cfg,
		logger:  slog.Default(),
		metrics: metrics.NewMetrics(),
		library: pattern.NewLibrary(cfg),
		seenStoreFactory: func(dir string, logger *slog.Logger) (SeenStore, error) {
			return storage.OpenSeenStore(dir, logger)
		},
	}
}

// Configure installs the resolved configuration and logger. The pattern
// library is rebuilt from the configuration.
func (c *Container) Configure(cfg *config.Config, logger *slog.Logger) {
	c.config = cfg
	c.logger = logger
	c.library = pattern.NewLibrary(cfg)
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// GetMetrics returns the run metrics
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetPatternLibrary returns the named pattern library
func (c *Container) GetPatternLibrary() *pattern.Library {
	return c.library
}

// OpenSeenStore opens a seen-set through the configured factory
func (c *Container) OpenSeenStore(dir string) (SeenStore, error) {
	return c.seenStoreFactory(dir, c.logger)
}

// SetSeenStoreFactory allows overriding the seen-set factory (for testing)
func (c *Container) SetSeenStoreFactory(factory SeenStoreFactory) {
	c.seenStoreFactory = factory
}
