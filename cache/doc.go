// Package cache provides a bounded, ordered in-memory cache built on a
// top-down splay tree whose nodes are also threaded into an age-ordered
// doubly linked list.
//
// Design
//
//   - Storage: every entry is one Node carrying the value plus two tree
//     links and two list links. The tree orders entries by Options.Compare;
//     the list orders them by recency (head=MRU, tail=LRU). Both structures
//     always hold exactly the same nodes.
//
//   - Access: Find and Insert splay the key to the root, so even a read
//     changes the tree shape. A hit then moves the node to the head of the
//     list through the recency policy (policy/lru by default).
//
//   - Eviction: once Len reaches Capacity, Insert of a new key recycles the
//     LRU node in place: it is splayed out of the tree under its old key,
//     its value is released, and it is reinstalled under the new key. No
//     allocation happens on this path.
//
//   - Rebalancing: sorted access can leave the tree shaped like a list.
//     Balance turns it back into a complete tree in O(n). Set
//     Options.RebalanceFactor to run it automatically after long splays.
//
//   - Capabilities: node storage (Allocator), value ownership (Dup/Delete),
//     diagnostics (Debug), observability (Metrics) and recency (Policy) are
//     injected through Options.
//
// Basic usage
//
//	c, err := cache.New[int](cache.Options[int]{
//	    Capacity: 1024,
//	    Compare:  cmp.Compare[int],
//	})
//	if err != nil {
//	    return err
//	}
//	if _, err := c.Insert(42); err != nil {
//	    return err
//	}
//	v, ok := c.Find(42) // ok == true, 42 is now MRU
//
// Key/value entries
//
// The cache stores a single value type; key/value pairs are modelled by a
// struct whose comparator only looks at the key:
//
//	type entry struct {
//	    key string
//	    val []byte
//	}
//	c, _ := cache.New[entry](cache.Options[entry]{
//	    Capacity: 256,
//	    Compare:  func(a, b entry) int { return strings.Compare(a.key, b.key) },
//	})
//	c.Insert(entry{key: "a", val: []byte("1")})
//	e, ok := c.Find(entry{key: "a"})
//
// Thread-safety & complexity
//
// A Cache is not safe for concurrent use; see package sharded for a locked
// front end. Find, Insert and Remove run in amortized O(log n); a single
// call can cost O(n). Check, Depth, Walk and Clear are O(n) and use
// explicit stacks, so they do not grow the goroutine stack with tree depth.
package cache
