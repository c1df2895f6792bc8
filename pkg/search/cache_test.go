package search

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneCacheSoundness(t *testing.T) {
	const (
		workers = 8
		rounds  = 2000
	)

	cache := NewCloneCache[*treeState](newTreeState())
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				item := cache.Get()
				if i%3 == 0 {
					// Hold two at once every now and then
					other := cache.Get()
					cache.Put(other)
				}
				cache.Put(item)
			}
		}()
	}
	wg.Wait()

	// No item was lost or duplicated
	assert.Equal(t, int(cache.Created()), cache.Len())
	assert.LessOrEqual(t, cache.Len(), 2*workers)
}

func TestCloneCacheFollowsParent(t *testing.T) {
	parent := newTreeState()
	cache := NewCloneCache[*treeState](parent)

	a := cache.Get()
	b := cache.Get()
	cache.Put(a)
	cache.Put(b)
	require.Equal(t, 2, cache.Len())

	// Mirror a move on the parent and pooled items
	move := action{Move: 7}
	parent.Apply(move)
	cache.Each(func(s *treeState) { s.Apply(move) })

	for i := 0; i < 2; i++ {
		item := cache.Get()
		assert.Equal(t, parent.path, item.path)
		// Pooled items are independent copies
		assert.NotSame(t, parent, item)
	}

	// Empty pool, clone of the current parent position
	fresh := cache.Get()
	assert.Equal(t, []int{7}, fresh.path)
	assert.Equal(t, uint64(3), cache.Created())
}

func TestCloneCacheClear(t *testing.T) {
	cache := NewCloneCache[*treeState](newTreeState())
	for i := 0; i < 5; i++ {
		cache.Put(cache.Get())
	}
	cache.Put(cache.Get())
	require.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Zero(t, cache.Len())
	assert.Zero(t, cache.Created())

	visited := 0
	cache.Each(func(*treeState) { visited++ })
	assert.Zero(t, visited)
}

func TestCloneCacheWithoutParent(t *testing.T) {
	cache := NewCloneCache[*treeState](nil)
	assert.Panics(t, func() { cache.Get() })

	cache.SetParent(newTreeState())
	assert.NotNil(t, cache.Parent())
	assert.NotPanics(t, func() { cache.Get() })
}
