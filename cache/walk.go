package cache

import "iter"

// Walk calls fn for every entry from most to least recently used.
// It stops as soon as fn returns false and reports whether the walk
// visited every entry. Walk does not change recency.
func (c *Cache[V]) Walk(fn func(v V) bool) bool {
	if c.usable() != nil {
		return false
	}
	for n := c.head.next; n != &c.tail; n = n.next {
		if !fn(n.val) {
			return false
		}
	}
	return true
}

// All returns an iterator over the entries from most to least recently used.
func (c *Cache[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		c.Walk(yield)
	}
}

// Clear releases every entry (through Delete) and returns every node to
// the allocator. The cache stays usable.
func (c *Cache[V]) Clear() {
	if c.usable() != nil {
		return
	}
	c.clear()
}

func (c *Cache[V]) clear() {
	for n := c.head.next; n != &c.tail; {
		next := n.next
		c.pol.OnRemove(n)
		c.release(n.val)
		n.reset()
		c.opt.Allocator.Free(n)
		c.opt.Metrics.Evict(EvictClear)
		n = next
	}
	c.head.next = &c.tail
	c.tail.prev = &c.head
	c.root = nil
	c.size = 0
	c.opt.Metrics.Size(0)
}

// Close clears the cache and marks it closed. Later operations fail with
// ErrClosed (or report a miss). Closing twice is a no-op.
func (c *Cache[V]) Close() error {
	if c == nil {
		return ErrNilCache
	}
	if c.closed {
		return nil
	}
	c.clear()
	c.closed = true
	return nil
}
