// Package cache holds the menu cache: a single well-known key in front of
// the catalog store, invalidated synchronously by every catalog mutation.
package cache

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"
)

const (
	defaultMenuKey = "menu:all"
	defaultTTL     = time.Hour
)

// Store is the backing key-value store. Get reports a miss with ok=false;
// an error from any method is a degradation, never a reason to fail a read.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// MenuCache wraps a Store with the single menu key and its TTL.
type MenuCache struct {
	store Store
	key   string
	ttl   time.Duration
}

func NewMenuCache(store Store) *MenuCache {
	key := os.Getenv("REDIS_MENU_CACHE_KEY")
	if key == "" {
		key = defaultMenuKey
	}
	ttl := defaultTTL
	if raw := os.Getenv("REDIS_CACHE_TTL"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}
	return &MenuCache{store: store, key: key, ttl: ttl}
}

// Get returns the cached menu JSON. Store errors degrade to a miss so the
// caller falls back to assembling from the catalog store.
func (m *MenuCache) Get(ctx context.Context) (string, bool) {
	value, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		log.Printf("⚠️ menu cache read failed: %v", err)
		return "", false
	}
	return value, ok
}

// Set populates the cache. A write failure only costs a future cache miss.
func (m *MenuCache) Set(ctx context.Context, value string) {
	if err := m.store.Set(ctx, m.key, value, m.ttl); err != nil {
		log.Printf("⚠️ menu cache write failed: %v", err)
	}
}

// Invalidate drops the menu key. Deleting an absent key is a no-op, so
// concurrent invalidations are safe. Catalog mutations call this before
// reporting success; if the process dies between commit and invalidation
// the stale entry survives at most until the TTL expires.
func (m *MenuCache) Invalidate(ctx context.Context) {
	if err := m.store.Del(ctx, m.key); err != nil {
		log.Printf("⚠️ menu cache invalidation failed: %v", err)
	}
}
