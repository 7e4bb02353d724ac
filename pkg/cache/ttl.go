// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package cache provides a small bounded TTL cache used for read-through
// caching of store lookups.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a bounded map cache whose entries expire after a fixed TTL.
// When full, an insert evicts an arbitrary expired entry, or an arbitrary
// live one if none has expired. Safe for concurrent use.
type TTLCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]entry[V]
	now     func() time.Time
}

// NewTTLCache creates a cache holding at most maxSize entries for ttl each.
func NewTTLCache[V any](ttl time.Duration, maxSize int) *TTLCache[V] {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &TTLCache[V]{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Delete removes key from the cache.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries currently held, expired ones included.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTLCache[V]) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			return
		}
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}
