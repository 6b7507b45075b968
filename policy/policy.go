// Package policy defines the contract between a cache and the recency
// policy that orders its age list.
package policy

// Node is the minimal contract a cache entry must satisfy for a policy.
// The pointer allows in-place updates without re-linking the intrusive node.
type Node[V any] interface {
	Value() *V
}

// Hooks expose O(1) age-list operations that a policy can use to manipulate
// the cache's intrusive MRU/LRU list. Implementations are provided by the cache.
//
// Important: hooks manage only the list; the cache owns the tree and the
// node storage.
type Hooks[V any] interface {
	// MoveToFront promotes the node to MRU.
	MoveToFront(Node[V])
	// PushFront links a detached node at MRU (used on admission and reuse).
	PushFront(Node[V])
	// Back returns the current LRU node (or nil if empty).
	Back() Node[V]
}

// Instance is a cache-local policy bound to that cache's hooks.
//
// Semantics:
//   - OnAdd links a freshly admitted (or recycled) node into the list.
//   - OnGet/OnUpdate typically promote the node (e.g., move to MRU).
//   - OnRemove is a notification; the cache has already unlinked the node.
//   - Victim names the node the cache should recycle once full.
type Instance[V any] interface {
	OnAdd(Node[V])
	OnGet(Node[V])
	OnUpdate(Node[V])
	OnRemove(Node[V])
	Victim() Node[V]
}

// Policy is a factory that creates cache-local policy instances.
type Policy[V any] interface {
	New(Hooks[V]) Instance[V]
}
