package room

import (
	"container/list"
	"sync"
)

// lruCache is a thread-safe, generic LRU cache backed by a doubly-linked
// list and a map for O(1) lookup; front of the list is most recently
// used. Grounded on the teacher's internal/server.LRUCache, unchanged
// besides the exported-ness of the type (this package only needs it
// internally, to memoize rendered discussion message HTML).
type lruCache[V any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List
}

type lruEntry[V any] struct {
	key   string
	value V
}

// newLRUCache creates a cache holding at most maxSize entries; maxSize
// <= 0 defaults to 500.
func newLRUCache[V any](maxSize int) *lruCache[V] {
	if maxSize <= 0 {
		maxSize = 500
	}
	return &lruCache[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *lruCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(lruEntry[V]).value, true
}

func (c *lruCache[V]) Put(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value = lruEntry[V]{key, val}
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(lruEntry[V]{key, val})
	c.items[key] = elem

	if c.order.Len() > c.maxSize {
		lru := c.order.Back()
		c.order.Remove(lru)
		delete(c.items, lru.Value.(lruEntry[V]).key)
	}
}
