// Package memcache is an in-process stand-in for the Redis cache, for
// single-node deployments and the CLI.
package memcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"app_reviews/internal/adapters/observability"
)

// Cache keeps JSON-encoded values in a size-bounded LRU. Entries expire after
// the cache-wide TTL; a shorter per-call TTL is honoured on read.
type Cache struct {
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

type entry struct {
	value   []byte
	expires time.Time // zero means no per-entry deadline
}

func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 128
	}
	return &Cache{
		lru: expirable.NewLRU[string, entry](size, nil, ttl),
		now: time.Now,
	}
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	e, ok := c.lru.Get(key)
	if ok && !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.lru.Remove(key)
		ok = false
	}
	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(e.value, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	e := entry{value: b}
	if ttlSec > 0 {
		e.expires = c.now().Add(time.Duration(ttlSec) * time.Second)
	}
	c.lru.Add(key, e)
	observability.ObserveCache("memory", "set")
	return nil
}

func (c *Cache) Del(ctx context.Context, key string) error {
	c.lru.Remove(key)
	observability.ObserveCache("memory", "del")
	return nil
}

func (c *Cache) Len() int { return c.lru.Len() }
