package di

import (
	"github.com/goliatone/go-store-coordinator/aggregate"
	"github.com/goliatone/go-store-coordinator/cache"
	"github.com/goliatone/go-store-coordinator/coordinator"
	"github.com/goliatone/go-store-coordinator/query"
	"github.com/goliatone/go-store-coordinator/source"
)

// Container provides dependency injection for the coordination components.
// It holds the shared cache store and record cache service and offers
// factory functions for per-entity-kind coordinators. Build one container
// per logical scope (application, session, test); there is no package-level
// instance.
type Container struct {
	store   cache.CacheStore
	records cache.CacheService
	config  cache.Config
}

// NewContainer creates a container with the provided cache configuration.
func NewContainer(config cache.Config) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	records, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}

	return &Container{
		store:   cache.NewMemoryStore(),
		records: records,
		config:  config,
	}, nil
}

// NewContainerWithDefaults creates a container using default configuration.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// Store returns the shared keyed TTL store.
func (c *Container) Store() cache.CacheStore {
	return c.store
}

// Records returns the shared read-through record cache.
func (c *Container) Records() cache.CacheService {
	return c.records
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewCoordinator creates a coordinator for one entity kind wired to the
// container's caches. An empty namespace is derived from the entity type's
// name. Since Go methods cannot have type parameters, this is provided as a
// package-level function.
func NewCoordinator[T any](c *Container, namespace string, src source.DataSource[T], cfg coordinator.Config, opts ...coordinator.Option[T]) *coordinator.Coordinator[T] {
	if namespace == "" {
		namespace = query.NamespaceFor[T]()
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = c.config.ListTTL
	}
	return coordinator.New(namespace, src, c.store, c.records, cfg, opts...)
}

// NewMetricsCoordinator creates a dashboard aggregate coordinator wired to
// the container's store.
func NewMetricsCoordinator(c *Container, namespace string, composer *aggregate.Composer, fetchers map[aggregate.SourceID]aggregate.Fetcher, cfg coordinator.MetricsConfig, opts ...coordinator.MetricsOption) *coordinator.MetricsCoordinator {
	if cfg.TTL <= 0 {
		cfg.TTL = c.config.RecordTTL
	}
	return coordinator.NewMetrics(namespace, composer, fetchers, c.store, cfg, opts...)
}
