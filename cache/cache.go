package cache

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/IvanBrykalov/splaycache/internal/util"
	"github.com/IvanBrykalov/splaycache/policy"
	"github.com/IvanBrykalov/splaycache/policy/lru"
)

// Cache is a bounded splay-tree cache. Every node sits in the tree, ordered
// by Options.Compare, and in an age list ordered by recency.
// Concurrent access must be guarded by the caller.
// Constructed by [New].
type Cache[V any] struct {
	root *Node[V]

	// Sentinels bounding the age list: head.next is MRU, tail.prev is LRU.
	head Node[V]
	tail Node[V]

	size     int
	capacity int
	closed   bool

	// Longest splay path seen during the current operation.
	deepest int

	opt Options[V]
	pol policy.Instance[V]
}

// New constructs a cache with the provided Options.
// Defaults:
//   - nil Allocator -> HeapAllocator
//   - nil Debug     -> SlogDebug(slog.Default())
//   - nil Metrics   -> NoopMetrics
//   - nil Policy    -> LRU
func New[V any](opt Options[V]) (*Cache[V], error) {
	if opt.Capacity <= 0 {
		return nil, invalidCapacityError(opt.Capacity)
	}
	if opt.Compare == nil {
		return nil, ErrNoComparator
	}
	if opt.Allocator == nil {
		opt.Allocator = HeapAllocator[V]{}
	}
	if opt.Debug == nil {
		opt.Debug = SlogDebug(nil)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New[V]()
	}

	c := &Cache[V]{
		capacity: opt.Capacity,
		opt:      opt,
	}
	c.head.next = &c.tail
	c.tail.prev = &c.head
	c.pol = opt.Policy.New(cacheHooks[V]{c: c})
	return c, nil
}

// Insert stores v under its key and makes it the most recently used entry.
// An existing entry comparing equal to v is replaced in place. When the
// cache is full the least recently used node is recycled for v.
// It returns the value as stored (the Dup copy, if a Dup hook is set).
func (c *Cache[V]) Insert(v V) (V, error) {
	var zero V
	if err := c.usable(); err != nil {
		return zero, err
	}
	val, err := c.dup(v)
	if err != nil {
		c.debugf("duplicate value: %v", err)
		return zero, fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	defer c.maybeBalance()

	cmp := 0
	if c.root != nil {
		if cmp, _ = c.splay(val); cmp == 0 {
			n := c.root
			c.release(n.val)
			n.val = val
			c.pol.OnUpdate(n)
			return n.val, nil
		}
	}

	var n *Node[V]
	if c.size < c.capacity {
		n, err = c.opt.Allocator.Alloc()
		if err == nil && n == nil {
			err = errors.New("allocator returned no node")
		}
		if err != nil {
			c.debugf("allocate node (size %d): %v", c.size, err)
			c.releaseCopy(val)
			if !errors.Is(err, ErrAlloc) {
				err = fmt.Errorf("%w: %w", ErrAlloc, err)
			}
			return zero, err
		}
		c.size++
		n.val = val
		// The root is still where the lookup splay left it.
		c.splice(n, cmp)
	} else {
		n, err = c.recycle()
		if err != nil {
			c.releaseCopy(val)
			return zero, err
		}
		n.val = val
		c.install(n)
	}
	c.pol.OnAdd(n)
	c.opt.Metrics.Size(c.size)
	return n.val, nil
}

// Find looks up the entry comparing equal to query. On a hit the entry
// becomes the most recently used one. The tree is splayed either way.
func (c *Cache[V]) Find(query V) (V, bool) {
	var zero V
	if c.usable() != nil {
		return zero, false
	}
	if c.root == nil {
		c.opt.Metrics.Miss()
		return zero, false
	}
	defer c.maybeBalance()

	if cmp, _ := c.splay(query); cmp != 0 {
		c.opt.Metrics.Miss()
		return zero, false
	}
	n := c.root
	c.pol.OnGet(n)
	c.opt.Metrics.Hit()
	return n.val, true
}

// Peek looks up query without touching recency or hit/miss metrics.
// The tree is still splayed.
func (c *Cache[V]) Peek(query V) (V, bool) {
	var zero V
	if c.usable() != nil || c.root == nil {
		return zero, false
	}
	defer c.maybeBalance()

	if cmp, _ := c.splay(query); cmp != 0 {
		return zero, false
	}
	return c.root.val, true
}

// Remove deletes the entry comparing equal to query, releasing its value
// and node. It reports whether an entry was removed.
func (c *Cache[V]) Remove(query V) bool {
	if c.usable() != nil || c.root == nil {
		return false
	}
	defer c.maybeBalance()

	if cmp, _ := c.splay(query); cmp != 0 {
		return false
	}
	n := c.root
	if err := c.detach(n); err != nil {
		return false
	}
	c.unlink(n)
	c.pol.OnRemove(n)
	c.release(n.val)
	n.reset()
	c.opt.Allocator.Free(n)
	c.size--
	c.opt.Metrics.Evict(EvictRemove)
	c.opt.Metrics.Size(c.size)
	return true
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	if c == nil {
		return 0
	}
	return c.size
}

// Cap returns the fixed capacity.
func (c *Cache[V]) Cap() int {
	if c == nil {
		return 0
	}
	return c.capacity
}

// ---- helpers ----

func (c *Cache[V]) usable() error {
	if c == nil {
		return ErrNilCache
	}
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Cache[V]) dup(v V) (V, error) {
	if c.opt.Dup == nil {
		return v, nil
	}
	return c.opt.Dup(v)
}

// release hands a value that leaves the cache to the Delete hook.
func (c *Cache[V]) release(v V) {
	if c.opt.Delete != nil {
		c.opt.Delete(v)
	}
}

// releaseCopy drops a Dup copy that never made it into the cache.
// Without a Dup hook the value is the caller's own and is left alone.
func (c *Cache[V]) releaseCopy(v V) {
	if c.opt.Dup != nil {
		c.release(v)
	}
}

// recycle detaches the policy's victim from the tree and the list and
// releases its value, leaving an empty node ready for reuse.
func (c *Cache[V]) recycle() (*Node[V], error) {
	n, ok := c.pol.Victim().(*Node[V])
	if !ok || n == nil {
		return nil, c.corrupt("no eviction victim with %d entries", c.size)
	}
	if err := c.detach(n); err != nil {
		return nil, err
	}
	c.unlink(n)
	c.pol.OnRemove(n)
	c.release(n.val)
	var zero V
	n.val = zero
	c.opt.Metrics.Evict(EvictCapacity)
	return n, nil
}

// maybeBalance runs Balance when the operation that just finished splayed
// along a path much longer than a balanced tree would have.
func (c *Cache[V]) maybeBalance() {
	deepest := c.deepest
	c.deepest = 0
	if c.opt.RebalanceFactor <= 0 || c.size < 2 {
		return
	}
	if deepest > c.opt.RebalanceFactor*util.CeilLog2(uint64(c.size)+1) {
		_ = c.Balance()
	}
}

// corrupt reports an invariant violation and returns it as ErrCorrupt.
func (c *Cache[V]) corrupt(format string, args ...any) error {
	c.report(2, format, args...)
	return fmt.Errorf("%w: "+format, append([]any{ErrCorrupt}, args...)...)
}

func (c *Cache[V]) debugf(format string, args ...any) {
	c.report(2, format, args...)
}

// report passes a diagnostic to the Debug hook, tagged with the calling
// function skip frames up.
func (c *Cache[V]) report(skip int, format string, args ...any) {
	fn, line := "unknown", 0
	if pc, _, l, ok := runtime.Caller(skip); ok {
		line = l
		if f := runtime.FuncForPC(pc); f != nil {
			fn = f.Name()
		}
	}
	c.opt.Debug(fn, line, format, args...)
}

// ---- age list ----

// pushFront links a detached n at MRU in O(1).
func (c *Cache[V]) pushFront(n *Node[V]) {
	n.prev = &c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

// unlink detaches n from the age list in O(1).
func (c *Cache[V]) unlink(n *Node[V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

// moveToFront promotes n to MRU in O(1).
func (c *Cache[V]) moveToFront(n *Node[V]) {
	if c.head.next == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// back returns the current LRU node, or nil if the list is empty.
func (c *Cache[V]) back() *Node[V] {
	if c.tail.prev == &c.head {
		return nil
	}
	return c.tail.prev
}

// -------------------- policy hooks --------------------

// cacheHooks adapts the cache's list operations to policy.Hooks.
type cacheHooks[V any] struct{ c *Cache[V] }

func (h cacheHooks[V]) MoveToFront(x policy.Node[V]) { h.c.moveToFront(x.(*Node[V])) }
func (h cacheHooks[V]) PushFront(x policy.Node[V])   { h.c.pushFront(x.(*Node[V])) }
func (h cacheHooks[V]) Back() policy.Node[V] {
	// Return an untyped nil so callers can compare against nil.
	if n := h.c.back(); n != nil {
		return n
	}
	return nil
}

var _ policy.Hooks[int] = cacheHooks[int]{}
