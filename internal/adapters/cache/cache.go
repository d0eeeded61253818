// Package cache provides the TTL-bounded response cache consumed by the
// caching pipeline stage, backed by an expirable LRU so memory stays
// bounded under arbitrary key cardinality.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jsamuelsen11/go-mediate/internal/ports"
)

// Cache is an LRU with per-entry TTL expiry.
type Cache struct {
	lru *expirable.LRU[string, any]
}

var _ ports.Cache = (*Cache)(nil)

// New creates a cache holding at most size entries, each expiring ttl after
// being set.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Get implements ports.Cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Set implements ports.Cache.
func (c *Cache) Set(key string, value any) {
	c.lru.Add(key, value)
}
