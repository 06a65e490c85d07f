package cacheinfra

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// entry is an immutable stored payload. Replacing a key installs a new entry;
// the payload of an existing entry is never mutated in place.
type entry struct {
	payload  any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// MemoryStore is a mutex-guarded, clock-injected TTL store. Expired entries
// are evicted lazily when read; there is no background sweep.
type MemoryStore struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[string]entry
}

// NewMemoryStore creates a MemoryStore that reads time from the given clock.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns the payload stored under key, or ok=false when the key is
// absent or its TTL has elapsed.
func (s *MemoryStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(s.clock.Now()) {
		delete(s.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key with the given TTL, replacing any existing
// entry. A non-positive TTL stores nothing.
func (s *MemoryStore) Set(key string, payload any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{
		payload:  payload,
		storedAt: s.clock.Now(),
		ttl:      ttl,
	}
	s.mu.Unlock()
}

// Invalidate removes the given keys. With no keys it clears the whole store.
func (s *MemoryStore) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 0 {
		s.entries = make(map[string]entry)
		return
	}
	for _, key := range keys {
		delete(s.entries, key)
	}
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (s *MemoryStore) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
}

// Len reports the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
