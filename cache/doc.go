// Package cache defines the caching contracts the coordinator builds on.
//
// # Overview
//
// Two complementary contracts live here:
//
//   - CacheService: a read-through cache for single-record lookups. The
//     default implementation is backed by sturdyc, which deduplicates
//     concurrent fetches for the same key and can remember missing records.
//   - CacheStore: a plain keyed TTL store for query results and aggregate
//     views. It never fetches; the caller decides what a miss means. Each
//     entry carries its own TTL, so list queries and dashboard aggregates can
//     live in one store with different lifetimes.
//
// # TTL semantics
//
// A CacheStore entry is treated as absent once now - storedAt >= ttl; the
// boundary instant itself is expired. Expired entries are evicted lazily on
// access. Set always replaces; there is no merge.
//
// # Basic usage
//
//	store := cache.NewMemoryStore()
//	store.Set("orders::list::a1b2", result, 5*time.Minute)
//	if v, ok := store.Get("orders::list::a1b2"); ok {
//		return v.(QueryResult)
//	}
//
// For record lookups use the typed read-through helper:
//
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	org, err := cache.GetOrFetch(ctx, svc, "organizations::get::"+id,
//		func(ctx context.Context) (Organization, error) {
//			return src.GetByID(ctx, id)
//		})
//
// # Key derivation
//
// Cache keys for query results should come from the query package's Composer
// so that logically equal filter sets collapse to the same key. Hand-built
// keys are fine for fixed, parameterless entries.
//
// # Concurrency
//
// Both contracts must be safe for concurrent use. The memory store guards its
// table with a mutex; sturdyc shards internally.
package cache
