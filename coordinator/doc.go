// Package coordinator ties the caching, staleness, refresh, and batch pieces
// into per-entity-kind facades.
//
// # Overview
//
// Two facades are exported:
//
//   - Coordinator[T]: the cached, filterable, pageable view of one entity
//     kind, backed by a source.DataSource. Query results are cached under
//     canonical keys with a TTL, concurrent fetches for the same key are
//     collapsed through a FetchGate, and a RefreshScheduler re-runs the
//     current query in the background.
//   - MetricsCoordinator: an aggregated dashboard view composed from several
//     independent sources with per-field outage policies.
//
// The supporting pieces (FetchGate, StalenessTracker, RefreshScheduler,
// BatchExecutor, SelectionSet) are exported individually for callers that
// need them outside a facade.
//
// # Lifecycle
//
// Coordinators are explicit objects: construct one per scope that needs it
// and pass it along; nothing here is a process-wide singleton.
//
//	coord := coordinator.New("organizations", src, store, records, coordinator.DefaultConfig())
//	defer coord.Close()
//
//	if err := coord.Load(ctx); err != nil { ... }
//	coord.StartAutoRefresh()
//
// Close is mandatory before discarding a coordinator: it stops the refresh
// scheduler's timer and arms the disposal guard, so a fetch or tick that
// completes afterwards is dropped instead of written into a dead view.
//
// # Failure handling
//
// A collaborator outage never unwinds the caller. Load and Refresh keep the
// previous items, record the cause in Snapshot().LastError, and return nil;
// batch item failures are collected in the BatchResult; scheduler misuse
// (double Start, Stop while stopped) is a no-op. Only contract violations
// surface as errors: an invalid descriptor, an unknown batch kind, or use
// after Close.
//
// # Optimistic mutations
//
// Create, Update, and Delete write through the collaborator, then patch the
// local view provisionally and invalidate affected cache entries. Patched
// IDs are tagged until the next authoritative fetch reconciles them; a fetch
// that was already in flight when the mutation happened is discarded rather
// than allowed to resurrect pre-mutation data.
package coordinator
