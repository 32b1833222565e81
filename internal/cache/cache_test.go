// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissing(t *testing.T) {
	c := New[string](10)
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestPutGet(t *testing.T) {
	c := New[string](10)
	c.Put("k", "v")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, c.Len())
}

func TestPutReplacesValue(t *testing.T) {
	c := New[int](10)
	c.Put("k", 1)
	c.Put("k", 2)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestCapacityDefault(t *testing.T) {
	c := New[int](0)
	assert.Equal(t, DefaultCapacity, c.Capacity())
}

func TestBatchedEviction(t *testing.T) {
	const capacity = 20
	c := New[int](capacity)

	for i := 0; i < capacity; i++ {
		c.Put(fmt.Sprintf("k%02d", i), i)
	}
	require.Equal(t, capacity, c.Len())

	// One insert past capacity evicts the oldest tenth in a batch.
	c.Put("overflow", -1)

	assert.Equal(t, capacity-capacity/10+1, c.Len())
	assert.LessOrEqual(t, c.Len(), capacity)

	// The earliest-inserted entries are the evicted ones.
	for i := 0; i < capacity/10; i++ {
		_, ok := c.Get(fmt.Sprintf("k%02d", i))
		assert.False(t, ok, "k%02d should have been evicted", i)
	}
	for i := capacity / 10; i < capacity; i++ {
		_, ok := c.Get(fmt.Sprintf("k%02d", i))
		assert.True(t, ok, "k%02d should survive", i)
	}
	_, ok := c.Get("overflow")
	assert.True(t, ok)
}

func TestNeverExceedsCapacity(t *testing.T) {
	const capacity = 30
	c := New[int](capacity)

	for i := 0; i < capacity*3; i++ {
		c.Put(fmt.Sprintf("k%03d", i), i)
		assert.LessOrEqual(t, c.Len(), capacity)
	}
}

func TestReplaceResetsRecency(t *testing.T) {
	const capacity = 10
	c := New[int](capacity)

	for i := 0; i < capacity; i++ {
		c.Put(fmt.Sprintf("k%02d", i), i)
	}
	// Refresh the oldest entry, then overflow: k00 must now survive the
	// eviction batch because its recency was reset.
	c.Put("k00", 100)
	c.Put("overflow", -1)

	got, ok := c.Get("k00")
	require.True(t, ok)
	assert.Equal(t, 100, got)
	_, ok = c.Get("k01")
	assert.False(t, ok, "k01 is now the oldest and should be evicted")
}

func TestClear(t *testing.T) {
	c := New[int](10)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](100)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-%d", g, i%50)
				c.Put(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 100)
}
