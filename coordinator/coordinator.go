package coordinator

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/goliatone/go-store-coordinator/cache"
	"github.com/goliatone/go-store-coordinator/query"
	"github.com/goliatone/go-store-coordinator/source"
	"github.com/jonboulle/clockwork"
)

// Config holds the per-instance tuning of a Coordinator. Defaults apply to
// any zero field, so callers only set what they care about; nothing is
// configured globally.
type Config struct {
	// ListTTL bounds the validity of cached query results. Default: 5m.
	ListTTL time.Duration

	// StaleAfter is the age past which the current view counts as stale.
	// Default: ListTTL.
	StaleAfter time.Duration

	// RefreshInterval drives the background scheduler. Default: 1m.
	RefreshInterval time.Duration

	// FetchTimeout bounds each collaborator call; a timed-out call is an
	// outage, not a crash. Default: 10s.
	FetchTimeout time.Duration

	// BatchConcurrency bounds parallel batch targets; 1 means sequential.
	BatchConcurrency int

	// MaxSelection caps the multi-select set; 0 means unbounded.
	MaxSelection int
}

// DefaultConfig returns the defaults documented on Config.
func DefaultConfig() Config {
	return Config{
		ListTTL:          5 * time.Minute,
		StaleAfter:       5 * time.Minute,
		RefreshInterval:  time.Minute,
		FetchTimeout:     10 * time.Second,
		BatchConcurrency: 1,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ListTTL <= 0 {
		c.ListTTL = def.ListTTL
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = c.ListTTL
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = def.RefreshInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.BatchConcurrency < 1 {
		c.BatchConcurrency = 1
	}
	return c
}

// Snapshot is the read-only state handed to the presentation layer.
type Snapshot[T any] struct {
	Items       []T
	Total       int
	Loading     bool
	LastError   string
	ComputedAt  time.Time
	Descriptor  query.Descriptor
	Provisional []string
}

// Option customizes a Coordinator at construction.
type Option[T any] func(*Coordinator[T])

// WithClock injects the clock; tests pass a fake.
func WithClock[T any](clock clockwork.Clock) Option[T] {
	return func(c *Coordinator[T]) { c.clock = clock }
}

// WithLogger injects a logger for absorbed failures.
func WithLogger[T any](logger Logger) Option[T] {
	return func(c *Coordinator[T]) { c.logger = logger }
}

// WithIDFunc overrides how record IDs are extracted. The default uses
// reflection over common ID field names.
func WithIDFunc[T any](fn func(T) string) Option[T] {
	return func(c *Coordinator[T]) { c.id = fn }
}

// Coordinator owns the cached, filterable, periodically refreshed view of
// one entity kind. It is an explicit, constructible object: build one per
// scope that needs it, pass it along, and Close it when done. There are no
// process-wide instances.
type Coordinator[T any] struct {
	src      source.DataSource[T]
	store    cache.CacheStore
	records  cache.CacheService
	composer query.Composer
	cfg      Config

	gate      FetchGate
	staleness StalenessTracker
	scheduler *RefreshScheduler
	selection *SelectionSet
	clock     clockwork.Clock
	logger    Logger
	id        func(T) string

	mu          sync.Mutex
	desc        query.Descriptor
	generation  uint64
	items       []T
	total       int
	loading     bool
	lastErr     string
	computedAt  time.Time
	provisional map[string]struct{}
	closed      bool
}

// New creates a Coordinator for one entity kind. The namespace scopes every
// cache key this coordinator derives.
func New[T any](namespace string, src source.DataSource[T], store cache.CacheStore, records cache.CacheService, cfg Config, opts ...Option[T]) *Coordinator[T] {
	c := &Coordinator[T]{
		src:         src,
		store:       store,
		records:     records,
		composer:    query.NewComposer(namespace),
		cfg:         cfg.withDefaults(),
		clock:       clockwork.NewRealClock(),
		logger:      noopLogger{},
		id:          extractID[T],
		provisional: make(map[string]struct{}),
	}
	c.selection = NewSelectionSet(c.cfg.MaxSelection)

	for _, opt := range opts {
		opt(c)
	}

	c.scheduler = NewRefreshScheduler(c.clock, func(ctx context.Context) {
		if err := c.Refresh(ctx); err != nil {
			c.logger.Error("scheduled refresh failed", "error", err)
		}
	})

	return c
}

// Load populates the view for the current descriptor, serving from cache
// when a valid entry exists. A collaborator outage is absorbed: the previous
// items are retained and Snapshot().LastError carries the cause. Only
// contract violations (an invalid descriptor) return an error.
func (c *Coordinator[T]) Load(ctx context.Context) error {
	return c.fetch(ctx, false)
}

// Refresh re-queries the collaborator even when a cached entry exists and
// repopulates the cache.
func (c *Coordinator[T]) Refresh(ctx context.Context) error {
	return c.fetch(ctx, true)
}

// RefreshIfStale refreshes when the view has aged past StaleAfter, and
// otherwise behaves like Load. Intended for "refresh on view entry".
func (c *Coordinator[T]) RefreshIfStale(ctx context.Context) error {
	if c.IsStale() {
		return c.Refresh(ctx)
	}
	return c.Load(ctx)
}

// GetByID returns a single record through the read-through record cache.
func (c *Coordinator[T]) GetByID(ctx context.Context, id string) (T, error) {
	if c.isClosed() {
		var zero T
		return zero, ErrClosed
	}
	return cache.GetOrFetch(ctx, c.records, c.composer.RecordKey(id), func(ctx context.Context) (T, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
		return c.src.GetByID(fetchCtx, id)
	})
}

// ApplyFilters overlays partial filters onto the current descriptor (a nil
// value slice removes a field), resets to the first page, and reloads.
func (c *Coordinator[T]) ApplyFilters(ctx context.Context, partial map[string][]string) error {
	return c.mutateDescriptor(ctx, func(d query.Descriptor) query.Descriptor {
		return d.Merge(partial)
	})
}

// ClearFilters drops all filters and the search term, then reloads.
func (c *Coordinator[T]) ClearFilters(ctx context.Context) error {
	return c.mutateDescriptor(ctx, func(d query.Descriptor) query.Descriptor {
		return d.WithoutFilters()
	})
}

// SetSort orders the view by the given field and direction, then reloads.
func (c *Coordinator[T]) SetSort(ctx context.Context, field string, order query.SortOrder) error {
	return c.mutateDescriptor(ctx, func(d query.Descriptor) query.Descriptor {
		return d.WithSort(field, order)
	})
}

// Search replaces the search term, then reloads.
func (c *Coordinator[T]) Search(ctx context.Context, term string) error {
	return c.mutateDescriptor(ctx, func(d query.Descriptor) query.Descriptor {
		return d.WithSearch(term)
	})
}

// GoToPage moves to page n, keeping filters, sort, and search, then reloads.
func (c *Coordinator[T]) GoToPage(ctx context.Context, n int) error {
	return c.mutateDescriptor(ctx, func(d query.Descriptor) query.Descriptor {
		return d.WithPage(n)
	})
}

// Create writes a new record through the collaborator, applies a provisional
// local patch so the view reflects it immediately, and invalidates affected
// list entries. The patch is reconciled away by the next authoritative fetch.
func (c *Coordinator[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if c.isClosed() {
		return zero, ErrClosed
	}

	created, err := c.src.Mutate(ctx, source.MutationCreate, "", record)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	if !c.closed {
		c.items = append([]T{created}, c.items...)
		c.total++
		c.provisional[c.id(created)] = struct{}{}
		c.generation++
	}
	c.mu.Unlock()

	c.store.InvalidatePrefix(c.composer.ListPrefix())
	return created, nil
}

// Update writes an existing record through the collaborator and patches it
// into the view provisionally.
func (c *Coordinator[T]) Update(ctx context.Context, record T) (T, error) {
	var zero T
	if c.isClosed() {
		return zero, ErrClosed
	}

	id := c.id(record)
	updated, err := c.src.Mutate(ctx, source.MutationUpdate, id, record)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	if !c.closed {
		for i := range c.items {
			if c.id(c.items[i]) == id {
				c.items[i] = updated
				break
			}
		}
		c.provisional[id] = struct{}{}
		c.generation++
	}
	c.mu.Unlock()

	c.store.InvalidatePrefix(c.composer.ListPrefix())
	if err := c.records.Delete(ctx, c.composer.RecordKey(id)); err != nil {
		c.logger.Error("record cache invalidation failed", "id", id, "error", err)
	}
	return updated, nil
}

// Delete removes a record through the collaborator and splices it out of the
// view provisionally.
func (c *Coordinator[T]) Delete(ctx context.Context, id string) error {
	if c.isClosed() {
		return ErrClosed
	}

	if _, err := c.src.Mutate(ctx, source.MutationDelete, id, nil); err != nil {
		return err
	}

	c.mu.Lock()
	if !c.closed {
		for i := range c.items {
			if c.id(c.items[i]) == id {
				c.items = append(c.items[:i], c.items[i+1:]...)
				c.total--
				break
			}
		}
		c.provisional[id] = struct{}{}
		c.generation++
	}
	c.mu.Unlock()

	c.store.InvalidatePrefix(c.composer.ListPrefix())
	if err := c.records.Delete(ctx, c.composer.RecordKey(id)); err != nil {
		c.logger.Error("record cache invalidation failed", "id", id, "error", err)
	}
	return nil
}

// RunBatch applies one operation to many targets with partial-failure
// semantics, then invalidates this namespace's cache entries wholesale and
// clears the selection.
func (c *Coordinator[T]) RunBatch(ctx context.Context, op BatchOperation) (BatchResult, error) {
	if c.isClosed() {
		return BatchResult{}, ErrClosed
	}

	kind, err := mutationKind(op.Kind)
	if err != nil {
		return BatchResult{}, err
	}

	executor := NewBatchExecutor(c.cfg.BatchConcurrency)
	result := executor.Execute(ctx, op, func(ctx context.Context, id string, params any) error {
		_, err := c.src.Mutate(ctx, kind, id, params)
		return err
	})

	c.mu.Lock()
	c.generation++
	c.mu.Unlock()

	c.store.InvalidatePrefix(c.composer.Prefix())
	if err := c.records.DeleteByPrefix(ctx, c.composer.Prefix()); err != nil {
		c.logger.Error("record cache invalidation failed", "error", err)
	}
	c.selection.Clear()

	if !result.Success() {
		c.logger.Error("batch completed with failures",
			"kind", string(op.Kind), "failed", result.Failed, "total", result.Total)
	}
	return result, nil
}

// SelectMany adds IDs to the multi-select set, honoring MaxSelection. It
// returns how many were actually added.
func (c *Coordinator[T]) SelectMany(ids ...string) int {
	return c.selection.Add(ids...)
}

// ToggleSelect flips one ID's selection and reports the resulting state.
func (c *Coordinator[T]) ToggleSelect(id string) bool {
	return c.selection.Toggle(id)
}

// Selection returns the selected IDs in insertion order.
func (c *Coordinator[T]) Selection() []string {
	return c.selection.IDs()
}

// ClearSelection empties the multi-select set.
func (c *Coordinator[T]) ClearSelection() {
	c.selection.Clear()
}

// Snapshot returns a copy of the current view state.
func (c *Coordinator[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot[T]{
		Items:      append([]T(nil), c.items...),
		Total:      c.total,
		Loading:    c.loading,
		LastError:  c.lastErr,
		ComputedAt: c.computedAt,
		Descriptor: c.desc,
	}
	for id := range c.provisional {
		snap.Provisional = append(snap.Provisional, id)
	}
	return snap
}

// IsStale reports whether the view has aged past StaleAfter.
func (c *Coordinator[T]) IsStale() bool {
	return c.staleness.IsStale(c.clock.Now(), c.cfg.StaleAfter)
}

// LastError returns the most recent absorbed collaborator failure, or "".
func (c *Coordinator[T]) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// StartAutoRefresh begins background refreshes at RefreshInterval.
func (c *Coordinator[T]) StartAutoRefresh() {
	c.scheduler.Start(c.cfg.RefreshInterval)
}

// StopAutoRefresh cancels future background refreshes; one in flight
// completes but its result is applied only while the coordinator is open.
func (c *Coordinator[T]) StopAutoRefresh() {
	c.scheduler.Stop()
}

// Close tears the coordinator down: the scheduler is stopped and any fetch
// completing afterwards is dropped instead of applied. Idempotent.
func (c *Coordinator[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.scheduler.Stop()
}

func (c *Coordinator[T]) mutateDescriptor(ctx context.Context, mutate func(query.Descriptor) query.Descriptor) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.desc = mutate(c.desc)
	c.generation++
	c.mu.Unlock()

	return c.fetch(ctx, false)
}

func (c *Coordinator[T]) fetch(ctx context.Context, bypassCache bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	desc := c.desc
	gen := c.generation
	c.mu.Unlock()

	key, normalized, err := c.composer.Canonicalize(desc)
	if err != nil {
		return err
	}

	if !bypassCache {
		if cached, ok := c.store.Get(key); ok {
			if result, ok := cached.(source.QueryResult[T]); ok {
				c.apply(gen, result, false)
				return nil
			}
		}
	}

	c.setLoading(true)
	result, err := RunGated(ctx, &c.gate, key, func(ctx context.Context) (source.QueryResult[T], error) {
		fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
		return c.src.Query(fetchCtx, normalized)
	})
	if err != nil {
		c.recordError(err)
		return nil
	}

	if c.apply(gen, result, true) {
		c.store.Set(key, result, c.cfg.ListTTL)
	}
	return nil
}

// apply installs a fetch result unless the coordinator was closed or its
// state moved on while the fetch was in flight; stale results are dropped,
// never applied. It reports whether the result was installed.
func (c *Coordinator[T]) apply(gen uint64, result source.QueryResult[T], fresh bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = false
	if c.closed || gen != c.generation {
		return false
	}

	c.items = append([]T(nil), result.Items...)
	c.total = result.TotalCount
	c.lastErr = ""
	for id := range c.provisional {
		delete(c.provisional, id)
	}

	now := c.clock.Now()
	c.computedAt = now
	if fresh {
		c.staleness.MarkFresh(now)
	}
	return true
}

func (c *Coordinator[T]) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = false
	if c.closed {
		return
	}
	c.lastErr = err.Error()
	c.logger.Error("collaborator unavailable", "namespace", c.composer.Namespace(), "error", err)
}

func (c *Coordinator[T]) setLoading(v bool) {
	c.mu.Lock()
	if !c.closed {
		c.loading = v
	}
	c.mu.Unlock()
}

func (c *Coordinator[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func mutationKind(kind OperationKind) (source.MutationKind, error) {
	switch kind {
	case BatchUpdate:
		return source.MutationUpdate, nil
	case BatchDelete:
		return source.MutationDelete, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBatchKind, kind)
	}
}

// extractID pulls an identifier out of a record using reflection over the
// usual field names. Entities with unconventional IDs supply WithIDFunc.
func extractID[T any](record T) string {
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}

	for _, name := range []string{"ID", "Id", "id"} {
		field := v.FieldByName(name)
		if field.IsValid() && field.CanInterface() {
			return fmt.Sprintf("%v", field.Interface())
		}
	}
	return ""
}
