package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-store-coordinator/aggregate"
	"github.com/goliatone/go-store-coordinator/cache"
	"github.com/goliatone/go-store-coordinator/query"
	"github.com/jonboulle/clockwork"
)

// MetricsConfig tunes a MetricsCoordinator.
type MetricsConfig struct {
	// TTL bounds the cached aggregate view. Default: 10m.
	TTL time.Duration

	// StaleAfter is the age past which the view counts as stale.
	// Default: TTL.
	StaleAfter time.Duration

	// RefreshInterval drives the background scheduler. Default: 5m.
	RefreshInterval time.Duration

	// SourceTimeout bounds each source fetch during a collection pass.
	// Default: 10s.
	SourceTimeout time.Duration
}

// DefaultMetricsConfig returns the defaults documented on MetricsConfig.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		TTL:             10 * time.Minute,
		RefreshInterval: 5 * time.Minute,
		SourceTimeout:   10 * time.Second,
	}
}

func (c MetricsConfig) withDefaults() MetricsConfig {
	def := DefaultMetricsConfig()
	if c.TTL <= 0 {
		c.TTL = def.TTL
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = c.TTL
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = def.RefreshInterval
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = def.SourceTimeout
	}
	return c
}

// MetricsOption customizes a MetricsCoordinator at construction.
type MetricsOption func(*MetricsCoordinator)

// WithMetricsClock injects the clock; tests pass a fake.
func WithMetricsClock(clock clockwork.Clock) MetricsOption {
	return func(m *MetricsCoordinator) { m.clock = clock }
}

// WithMetricsLogger injects a logger for absorbed source failures.
func WithMetricsLogger(logger Logger) MetricsOption {
	return func(m *MetricsCoordinator) { m.logger = logger }
}

// MetricsCoordinator owns one aggregated dashboard view: it collects values
// from several independent sources, composes them with per-field outage
// policies, caches the result, and refreshes it in the background. Sources
// failing or timing out yield a partial view with carried-over fields, never
// a view of silent zeros.
type MetricsCoordinator struct {
	composer  *aggregate.Composer
	fetchers  map[aggregate.SourceID]aggregate.Fetcher
	store     cache.CacheStore
	key       string
	cfg       MetricsConfig
	clock     clockwork.Clock
	logger    Logger
	staleness StalenessTracker
	scheduler *RefreshScheduler
	gate      FetchGate

	mu       sync.Mutex
	view     *aggregate.View
	lastErrs aggregate.Errors
	closed   bool
}

// NewMetrics creates a MetricsCoordinator under the given namespace.
func NewMetrics(namespace string, composer *aggregate.Composer, fetchers map[aggregate.SourceID]aggregate.Fetcher, store cache.CacheStore, cfg MetricsConfig, opts ...MetricsOption) *MetricsCoordinator {
	m := &MetricsCoordinator{
		composer: composer,
		fetchers: fetchers,
		store:    store,
		key:      query.NewComposer(namespace).MetricsKey(),
		cfg:      cfg.withDefaults(),
		clock:    clockwork.NewRealClock(),
		logger:   noopLogger{},
	}

	for _, opt := range opts {
		opt(m)
	}

	m.scheduler = NewRefreshScheduler(m.clock, func(ctx context.Context) {
		if err := m.Refresh(ctx); err != nil {
			m.logger.Error("scheduled metrics refresh failed", "error", err)
		}
	})

	return m
}

// Load publishes the cached view when a valid entry exists and otherwise
// runs a collection pass.
func (m *MetricsCoordinator) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.mu.Unlock()

	if cached, ok := m.store.Get(m.key); ok {
		if view, ok := cached.(*aggregate.View); ok {
			m.mu.Lock()
			if !m.closed {
				m.view = view
			}
			m.mu.Unlock()
			return nil
		}
	}
	return m.Refresh(ctx)
}

// Refresh runs a collection pass and composes a new view. Concurrent calls
// share one pass through the fetch gate. Source failures mark sources
// unavailable; they never fail the refresh itself.
func (m *MetricsCoordinator) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	prev := m.view
	m.mu.Unlock()

	type pass struct {
		view *aggregate.View
		errs aggregate.Errors
	}

	result, err := RunGated(ctx, &m.gate, m.key, func(ctx context.Context) (pass, error) {
		vals, errs := aggregate.Collect(ctx, m.fetchers, m.cfg.SourceTimeout)
		return pass{view: m.composer.Compose(prev, vals, m.clock.Now()), errs: errs}, nil
	})
	if err != nil {
		return err
	}

	for id, srcErr := range result.errs {
		m.logger.Error("metrics source unavailable", "source", string(id), "error", srcErr)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.view = result.view
	m.lastErrs = result.errs

	// Only a complete pass counts as fresh; a partial view should be retried
	// as soon as staleness-driven consumers ask for it.
	if !result.view.Partial {
		m.staleness.MarkFresh(result.view.ComputedAt)
	}
	m.store.Set(m.key, result.view, m.cfg.TTL)
	return nil
}

// RefreshIfStale refreshes once the view has aged past StaleAfter, and
// otherwise behaves like Load.
func (m *MetricsCoordinator) RefreshIfStale(ctx context.Context) error {
	if m.IsStale() {
		return m.Refresh(ctx)
	}
	return m.Load(ctx)
}

// View returns the current aggregate view; nil before the first pass.
func (m *MetricsCoordinator) View() *aggregate.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// LastErrors returns the per-source failures of the most recent pass.
func (m *MetricsCoordinator) LastErrors() aggregate.Errors {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(aggregate.Errors, len(m.lastErrs))
	for id, err := range m.lastErrs {
		out[id] = err
	}
	return out
}

// IsStale reports whether the view is older than StaleAfter, or was never
// fully computed.
func (m *MetricsCoordinator) IsStale() bool {
	return m.staleness.IsStale(m.clock.Now(), m.cfg.StaleAfter)
}

// StartAutoRefresh begins background passes at RefreshInterval.
func (m *MetricsCoordinator) StartAutoRefresh() {
	m.scheduler.Start(m.cfg.RefreshInterval)
}

// StopAutoRefresh cancels future background passes.
func (m *MetricsCoordinator) StopAutoRefresh() {
	m.scheduler.Stop()
}

// Close tears the coordinator down; passes completing afterwards are
// dropped. Idempotent.
func (m *MetricsCoordinator) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.scheduler.Stop()
}
