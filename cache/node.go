package cache

// Node is a single cache entry. It is linked into two structures at once:
// the splay tree (left/right) and the age list (prev/next, head=MRU,
// tail=LRU). Nodes are handed out by an Allocator and owned by the cache
// until they are freed.
type Node[V any] struct {
	val V

	// Tree links; the node exclusively owns its children.
	left  *Node[V]
	right *Node[V]

	// Age-list links between the cache's head and tail sentinels.
	prev *Node[V]
	next *Node[V]
}

// Value returns a pointer to the stored value (part of policy.Node interface).
func (n *Node[V]) Value() *V { return &n.val }

// reset clears all links and the payload so the node can be reused.
func (n *Node[V]) reset() {
	var zero V
	n.val = zero
	n.left, n.right = nil, nil
	n.prev, n.next = nil, nil
}
