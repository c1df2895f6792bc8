package search

import (
	"sync"
	"sync/atomic"
)

// Thread safe pool of clones.
//
// The parent is a live reference to the object being cloned (the search's
// canonical state, or the evaluation function), not a snapshot. The engine
// replays every Apply/Undo made on the parent on the pooled items with Each,
// so an item taken from the pool is always at the same position as the parent.
type CloneCache[C any] struct {
	mu      sync.Mutex
	items   []C
	parent  Cloner[C]
	created atomic.Uint64
}

func NewCloneCache[C any](parent Cloner[C]) *CloneCache[C] {
	return &CloneCache[C]{parent: parent}
}

// Set the object, that will be cloned when the pool is empty
func (c *CloneCache[C]) SetParent(parent Cloner[C]) {
	c.mu.Lock()
	c.parent = parent
	c.mu.Unlock()
}

func (c *CloneCache[C]) Parent() Cloner[C] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parent
}

// Take an item from the pool, or clone the parent if the pool is empty
func (c *CloneCache[C]) Get() C {
	c.mu.Lock()
	if n := len(c.items); n > 0 {
		item := c.items[n-1]
		var zero C
		c.items[n-1] = zero
		c.items = c.items[:n-1]
		c.mu.Unlock()
		return item
	}
	parent := c.parent
	c.mu.Unlock()

	if parent == nil {
		panic("search: CloneCache.Get called without a parent")
	}

	// Cloning is done outside the lock, other workers may use the pool meanwhile
	c.created.Add(1)
	return parent.Clone()
}

// Return the item to the pool
func (c *CloneCache[C]) Put(item C) {
	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()
}

// Call f on every item currently in the pool (checked out items are skipped)
func (c *CloneCache[C]) Each(f func(C)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		f(item)
	}
}

// Remove all items from the pool, and reset the clone counter
func (c *CloneCache[C]) Clear() {
	c.mu.Lock()
	clear(c.items)
	c.items = c.items[:0]
	c.created.Store(0)
	c.mu.Unlock()
}

// Number of items in the pool
func (c *CloneCache[C]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Number of clones made from the parent since the last Clear
func (c *CloneCache[C]) Created() uint64 {
	return c.created.Load()
}
