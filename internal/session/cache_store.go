package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheKV implements KV on top of an in-process go-cache instance.
// It is the default backend and loses all state on restart.
type CacheKV[T any] struct {
	cache *cache.Cache
}

// NewCacheKV creates an in-process store. A ttl of zero keeps entries until
// they are deleted explicitly.
func NewCacheKV[T any](ttl time.Duration) *CacheKV[T] {
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, ttl/2
	}
	return &CacheKV[T]{cache: cache.New(expiration, cleanup)}
}

func (c *CacheKV[T]) Get(_ context.Context, id string) (T, bool, error) {
	var zero T
	raw, found := c.cache.Get(id)
	if !found {
		return zero, false, nil
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false, nil
	}
	return value, true, nil
}

func (c *CacheKV[T]) Set(_ context.Context, id string, value T) error {
	c.cache.SetDefault(id, value)
	return nil
}

func (c *CacheKV[T]) Delete(_ context.Context, id string) error {
	c.cache.Delete(id)
	return nil
}

func (c *CacheKV[T]) Count(_ context.Context) (int, error) {
	return c.cache.ItemCount(), nil
}

// NewMemoryBackend wires the four per-user stores to go-cache.
func NewMemoryBackend(ttl time.Duration) Backend {
	return Backend{
		Messages: NewCacheKV[[]Message](ttl),
		Meta:     NewCacheKV[Meta](ttl),
		History:  NewCacheKV[[]Turn](ttl),
		Context:  NewCacheKV[ContextMemory](ttl),
	}
}
