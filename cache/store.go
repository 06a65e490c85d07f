package cache

import (
	"time"

	"github.com/goliatone/go-store-coordinator/internal/cacheinfra"
	"github.com/jonboulle/clockwork"
)

// CacheStore is a keyed, TTL-bound store of opaque payloads. Unlike
// CacheService it never initiates a fetch; a miss is a miss.
//
// Contract:
//   - Get returns ok=false both when no entry exists and when the entry's TTL
//     has elapsed. An entry is expired once now - storedAt >= ttl.
//   - Set unconditionally replaces any existing entry under the same key.
//   - Invalidate with no keys clears the entire store.
//   - Implementations must be safe for concurrent use.
type CacheStore interface {
	Get(key string) (any, bool)
	Set(key string, payload any, ttl time.Duration)
	Invalidate(keys ...string)
	InvalidatePrefix(prefix string)
	Len() int
}

// NewMemoryStore returns the default in-memory CacheStore implementation.
// Entries are evicted lazily on access; nothing survives process restart.
func NewMemoryStore() CacheStore {
	return cacheinfra.NewMemoryStore(clockwork.NewRealClock())
}

// NewMemoryStoreWithClock returns a CacheStore backed by the provided clock.
// Tests use this with a fake clock to exercise expiry without sleeping.
func NewMemoryStoreWithClock(clock clockwork.Clock) CacheStore {
	return cacheinfra.NewMemoryStore(clock)
}
