package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	if err := cache.Set(ctx, "merchants:new:instagram", 42, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := cache.Get(ctx, "merchants:new:instagram")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != 42 {
		t.Errorf("Expected value 42, got %d", value)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache := NewMemoryCache[int64]()

	_, err := cache.Get(context.Background(), "non-existent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	if err := cache.Set(ctx, "expire-key", 100, 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := cache.Get(ctx, "expire-key"); err != nil {
		t.Fatalf("Get failed before expiration: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := cache.Get(ctx, "expire-key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after expiration, got %v", err)
	}

	cache.mu.RLock()
	_, stillStored := cache.items["expire-key"]
	cache.mu.RUnlock()
	if stillStored {
		t.Error("Expected expired entry to be dropped on read")
	}
}

func TestMemoryCache_DeleteAndClose(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	_ = cache.Set(ctx, "key1", 1, time.Minute)
	_ = cache.Set(ctx, "key2", 2, time.Minute)

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "key1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := cache.Get(ctx, "key2"); !errors.Is(err, ErrCacheMiss) {
		t.Error("Expected cache to be cleared after Close")
	}
	if err := cache.Health(ctx); err != nil {
		t.Errorf("Health check should always succeed for memory cache, got: %v", err)
	}
}

func TestMemoryCache_GetWithFetch(t *testing.T) {
	c := NewMemoryCache[int64]()
	ctx := context.Background()

	fetchCount := 0
	fetchFunc := func(ctx context.Context, key string) (int64, error) {
		fetchCount++
		return 42, nil
	}

	for range 2 {
		value, err := c.GetWithFetch(ctx, "key", time.Minute, fetchFunc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != 42 {
			t.Errorf("expected 42, got %d", value)
		}
	}
	if fetchCount != 1 {
		t.Errorf("expected fetchFunc called once, got %d", fetchCount)
	}
}

func TestMemoryCache_GetWithFetch_FetchError(t *testing.T) {
	c := NewMemoryCache[int64]()
	ctx := context.Background()

	expectedErr := errors.New("fetch failed")
	_, err := c.GetWithFetch(ctx, "key", time.Minute,
		func(ctx context.Context, key string) (int64, error) {
			return 0, expectedErr
		},
	)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected fetch error, got %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("failed fetch must not populate the cache, got %v", err)
	}
}

func TestMemoryCache_GetWithFetch_Concurrent(t *testing.T) {
	c := NewMemoryCache[int64]()
	ctx := context.Background()

	var fetchCount atomic.Int64
	fetchFunc := func(ctx context.Context, key string) (int64, error) {
		fetchCount.Add(1)
		return 99, nil
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			val, err := c.GetWithFetch(ctx, "shared-key", time.Minute, fetchFunc)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if val != 99 {
				t.Errorf("expected 99, got %d", val)
			}
		})
	}
	wg.Wait()

	if fetchCount.Load() < 1 {
		t.Error("expected at least one fetch")
	}
}
