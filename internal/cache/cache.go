// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a bounded, insertion-ordered cache for expensive
// derived results (paper analyses, citation lookups). Keys are content
// fingerprints; values are whatever the caller derived. When an insert
// would exceed capacity the oldest tenth of entries is evicted in one
// batch rather than one entry per insert, so a full cache does not pay
// an eviction on every Put.
package cache

import (
	"sort"
	"sync"
)

// DefaultCapacity is the entry bound used when a non-positive capacity is given.
const DefaultCapacity = 1000

type entry[V any] struct {
	key   string
	value V
	seq   uint64
}

// Cache is a capacity-bounded key-value cache with batched oldest-first
// eviction. Writes are serialized by a single lock; reads share it, which
// keeps the structure safe for concurrent request handling.
type Cache[V any] struct {
	mu       sync.RWMutex
	capacity int
	seq      uint64
	entries  map[string]*entry[V]
}

// New returns a cache bounded to capacity entries. Non-positive capacities
// fall back to DefaultCapacity.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		entries:  make(map[string]*entry[V]),
	}
}

// Get returns the cached value for key, if present.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key. Re-putting an existing key replaces the
// value and resets its insertion recency. When the insert would exceed
// capacity, the oldest tenth of entries (at least one) is evicted first.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.seq = c.seq
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = &entry[V]{key: key, value: value, seq: c.seq}
}

// evictOldestLocked removes the oldest ~10% of entries by insertion order.
func (c *Cache[V]) evictOldestLocked() {
	n := c.capacity / 10
	if n < 1 {
		n = 1
	}

	ordered := make([]*entry[V], 0, len(c.entries))
	for _, e := range c.entries {
		ordered = append(ordered, e)
	}
	// A full sort is fine here: eviction runs once per capacity/10 inserts
	// and the entry count is bounded by capacity.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	for i := 0; i < n && i < len(ordered); i++ {
		delete(c.entries, ordered[i].key)
	}
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Capacity returns the configured entry bound.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Clear empties the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
}
