// Package lru implements the LRU recency policy.
package lru

import "github.com/IvanBrykalov/splaycache/policy"

// lru is a classic "move-to-front" Least-Recently-Used policy.
// It delegates list manipulation to policy.Hooks provided by the cache.
type lru[V any] struct {
	h policy.Hooks[V]
}

type lruPolicy[V any] struct{}

// New returns a Policy factory that constructs cache-local LRU instances.
func New[V any]() policy.Policy[V] { return lruPolicy[V]{} }

// New implements policy.Policy by binding the cache hooks.
func (lruPolicy[V]) New(h policy.Hooks[V]) policy.Instance[V] {
	return &lru[V]{h: h}
}

// OnAdd places the entry at MRU.
func (p *lru[V]) OnAdd(n policy.Node[V]) { p.h.PushFront(n) }

// OnGet promotes the entry to MRU.
func (p *lru[V]) OnGet(n policy.Node[V]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry to MRU (a replace counts as recent use).
func (p *lru[V]) OnUpdate(n policy.Node[V]) { p.h.MoveToFront(n) }

// OnRemove is a no-op for pure LRU.
func (p *lru[V]) OnRemove(_ policy.Node[V]) {}

// Victim is the least recently used entry.
func (p *lru[V]) Victim() policy.Node[V] { return p.h.Back() }
