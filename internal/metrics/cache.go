package metrics

import (
	"context"
	"time"

	"github.com/go-trellis/trellis/internal/core"
)

// CacheWrapper provides a read-through cache for gauge data.
// It queries the database on cache miss and updates the cache for subsequent requests.
type CacheWrapper struct {
	store core.MetricsStore
	cache core.Cache[int64]
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(store core.MetricsStore, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		store: store,
		cache: cache,
	}
}

// GetConnectedMerchantsCount retrieves the number of connected merchants of
// an integration. Replicas sharing a Redis cache only hit the database once per ttl.
func (m *CacheWrapper) GetConnectedMerchantsCount(
	ctx context.Context,
	integration string,
	ttl time.Duration,
) (int64, error) {
	return m.cache.GetWithFetch(
		ctx,
		"merchants:connected:"+integration,
		ttl,
		func(ctx context.Context, _ string) (int64, error) {
			return m.store.CountConnectedMerchants(ctx, integration)
		},
	)
}
