package cache

import (
	"time"

	"github.com/goliatone/go-store-coordinator/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
// ListTTL and RecordTTL are the per-cache-class defaults; callers can still
// override the TTL on every CacheStore.Set call.
type Config struct {
	Capacity             int
	NumShards            int
	RecordTTL            time.Duration
	ListTTL              time.Duration
	EvictionPercentage   int
	EarlyRefresh         *EarlyRefreshConfig
	MissingRecordStorage bool
	EvictionInterval     time.Duration
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults:
// 5 minutes for list queries, 10 minutes for record and aggregate lookups.
func DefaultConfig() Config {
	internal := cacheinfra.DefaultConfig()
	return Config{
		Capacity:             internal.Capacity,
		NumShards:            internal.NumShards,
		RecordTTL:            internal.TTL,
		ListTTL:              5 * time.Minute,
		EvictionPercentage:   internal.EvictionPercentage,
		MissingRecordStorage: internal.MissingRecordStorage,
		EvictionInterval:     internal.EvictionInterval,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.ListTTL <= 0 {
		return &cacheinfra.ConfigError{Field: "ListTTL", Message: "must be greater than 0"}
	}
	return c.toInternal().Validate()
}

// NewCacheService constructs the default read-through cache service backed by
// sturdyc using the provided configuration.
func NewCacheService(cfg Config) (CacheService, error) {
	return cacheinfra.NewSturdycService(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if c.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.RecordTTL,
		EvictionPercentage:   c.EvictionPercentage,
		EarlyRefresh:         early,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
	}
}
