package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-trellis/trellis/internal/core"
)

type cacheItem[T any] struct {
	value     T
	expiresAt time.Time
}

var _ core.Cache[struct{}] = (*MemoryCache[struct{}])(nil)

// MemoryCache is a process-local Cache. Expired entries are dropped on
// read. Suitable for single-instance deployments.
type MemoryCache[T any] struct {
	mu    sync.RWMutex
	items map[string]cacheItem[T]
}

func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{
		items: make(map[string]cacheItem[T]),
	}
}

func (m *MemoryCache[T]) Get(ctx context.Context, key string) (T, error) {
	m.mu.RLock()
	item, exists := m.items[key]
	m.mu.RUnlock()

	var zero T
	if !exists {
		return zero, ErrCacheMiss
	}
	if time.Now().After(item.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.items[key]; ok && cur.expiresAt.Equal(item.expiresAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return zero, ErrCacheMiss
	}
	return item.value, nil
}

func (m *MemoryCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = cacheItem[T]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryCache[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Close drops every entry.
func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]cacheItem[T])
	return nil
}

func (m *MemoryCache[T]) Health(ctx context.Context) error {
	return nil
}

// GetWithFetch has no stampede protection; concurrent misses may each call fetchFunc.
func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	return getWithFetch[T](ctx, m, key, ttl, fetchFunc)
}

// getWithFetch is the cache-aside read shared by the implementations.
func getWithFetch[T any](
	ctx context.Context,
	c core.Cache[T],
	key string,
	ttl time.Duration,
	fetchFunc func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}
	value, err := fetchFunc(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}
