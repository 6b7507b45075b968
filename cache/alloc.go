package cache

import "sync"

// Allocator supplies node storage to a cache and takes it back.
// Nodes returned by Alloc must be zeroed. Free is called only for nodes
// that are no longer linked anywhere.
type Allocator[V any] interface {
	Alloc() (*Node[V], error)
	Free(*Node[V])
}

// HeapAllocator allocates every node from the Go heap and leaves freed
// nodes to the garbage collector.
type HeapAllocator[V any] struct{}

func (HeapAllocator[V]) Alloc() (*Node[V], error) { return new(Node[V]), nil }
func (HeapAllocator[V]) Free(*Node[V])            {}

// PoolAllocator recycles nodes through a sync.Pool. The zero value is ready
// to use; it must not be copied after first use.
type PoolAllocator[V any] struct {
	pool sync.Pool
}

// Alloc implements Allocator.
func (p *PoolAllocator[V]) Alloc() (*Node[V], error) {
	if n, ok := p.pool.Get().(*Node[V]); ok {
		return n, nil
	}
	return new(Node[V]), nil
}

// Free implements Allocator.
func (p *PoolAllocator[V]) Free(n *Node[V]) {
	n.reset()
	p.pool.Put(n)
}

// ArenaAllocator hands out nodes from a single preallocated slab and fails
// with ErrAlloc once the slab is exhausted. Freed nodes go back on a free
// list. Not safe for concurrent use.
type ArenaAllocator[V any] struct {
	slab []Node[V]
	free []*Node[V]
}

// NewArenaAllocator returns an arena holding exactly n nodes.
func NewArenaAllocator[V any](n int) *ArenaAllocator[V] {
	if n < 0 {
		n = 0
	}
	a := &ArenaAllocator[V]{
		slab: make([]Node[V], n),
		free: make([]*Node[V], n),
	}
	// Hand out low indices first.
	for i := range a.slab {
		a.free[n-1-i] = &a.slab[i]
	}
	return a
}

// Alloc implements Allocator.
func (a *ArenaAllocator[V]) Alloc() (*Node[V], error) {
	last := len(a.free) - 1
	if last < 0 {
		return nil, ErrAlloc
	}
	n := a.free[last]
	a.free = a.free[:last]
	return n, nil
}

// Free implements Allocator.
func (a *ArenaAllocator[V]) Free(n *Node[V]) {
	if n == nil || len(a.free) == len(a.slab) {
		return
	}
	n.reset()
	a.free = append(a.free, n)
}

// Available reports how many nodes can still be allocated.
func (a *ArenaAllocator[V]) Available() int { return len(a.free) }

var (
	_ Allocator[int] = HeapAllocator[int]{}
	_ Allocator[int] = (*PoolAllocator[int])(nil)
	_ Allocator[int] = (*ArenaAllocator[int])(nil)
)
