// Package cache is a read-through helper over the Redis JSON helpers. Entries
// expire after a fixed TTL and are never invalidated explicitly.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/redis"
)

// Store is the subset of the Redis client used for caching.
type Store interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Observer is notified of every lookup result.
type Observer interface {
	CacheLookup(hit bool)
}

// Cache wraps a Store with a TTL. A nil Cache or Store disables caching.
type Cache struct {
	store    Store
	ttl      time.Duration
	logg     *logger.Logger
	observer Observer
}

func New(store Store, ttl time.Duration, logg *logger.Logger, observer Observer) *Cache {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Cache{store: store, ttl: ttl, logg: logg, observer: observer}
}

// Key builds a namespaced key; empty parts are kept as "-" so page 1 with no
// search and page 1 with search "" map to the same entry.
func (c *Cache) Key(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		if p == "" {
			p = "-"
		}
		normalized[i] = p
	}
	if c == nil || c.store == nil {
		return ""
	}
	return c.store.CacheKey(normalized...)
}

// Load returns the cached value under key, or calls load and stores its result.
// Cache errors are logged and never fail the request.
func Load[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil || c.store == nil || key == "" {
		return load(ctx)
	}

	var cached T
	err := c.store.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		c.observe(true)
		return cached, nil
	case errors.Is(err, redis.ErrCacheMiss):
		c.observe(false)
	default:
		c.observe(false)
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "cache read failed: "+err.Error())
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := c.store.SetJSON(ctx, key, value, c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "cache write failed: "+err.Error())
	}
	return value, nil
}

func (c *Cache) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(hit)
	}
}
