package cache

import (
	"fmt"
	"slices"

	"github.com/IvanBrykalov/splaycache/internal/util"
)

// Balance rebuilds the tree into a complete binary tree in O(n) time and
// O(1) extra space (Day/Stout/Warren): the tree is first flattened into a
// sorted right-leaning vine, then the vine is compressed pass by pass.
// Resulting depth is ceil(log2(n+1)). The age list is not touched.
//
// If the vine turns out to be inconsistent with the entry count,
// ErrBrokenChain is returned and the tree is rebuilt from the age list,
// which is authoritative for membership.
func (c *Cache[V]) Balance() error {
	if err := c.usable(); err != nil {
		return err
	}
	pseudo := Node[V]{right: c.root}
	n := treeToVine(&pseudo, c.size)
	if n != c.size {
		return c.brokenChain("vine holds %d nodes, want %d", n, c.size)
	}
	if !vineToTree(&pseudo, n) {
		return c.brokenChain("vine too short for %d nodes", n)
	}
	c.root = pseudo.right
	c.opt.Metrics.Rebalance(true)
	return nil
}

func (c *Cache[V]) brokenChain(format string, args ...any) error {
	c.report(2, format, args...)
	c.rebuild()
	c.opt.Metrics.Rebalance(false)
	return fmt.Errorf("%w: "+format, append([]any{ErrBrokenChain}, args...)...)
}

// treeToVine flattens the tree hanging off pseudo.right into a vine via
// right rotations and returns the number of vine nodes. limit bounds the
// work so a cyclic tree cannot spin forever; -1 means the bound was hit.
func treeToVine[V any](pseudo *Node[V], limit int) int {
	tail, rest := pseudo, pseudo.right
	n, steps := 0, 0
	for rest != nil {
		if steps++; steps > 2*limit+2 {
			return -1
		}
		if rest.left == nil {
			tail, rest = rest, rest.right
			n++
			continue
		}
		rest = rotateRight(rest)
		tail.right = rest
	}
	return n
}

// vineToTree compresses the vine below root into a complete tree. The
// first pass turns the overflow of the bottom level into leaves; every
// later pass halves the vine.
func vineToTree[V any](root *Node[V], size int) bool {
	leaves := size + 1 - int(util.FloorPow2(uint64(size)+1))
	if !compress(root, leaves) {
		return false
	}
	size -= leaves
	for size > 1 {
		size /= 2
		if !compress(root, size) {
			return false
		}
	}
	return true
}

// compress performs count left rotations down the vine, lifting every
// second node one level.
func compress[V any](root *Node[V], count int) bool {
	scanner := root
	for i := 0; i < count; i++ {
		child := scanner.right
		if child == nil || child.right == nil {
			return false
		}
		scanner.right = child.right
		scanner = scanner.right
		child.right = scanner.left
		scanner.left = child
	}
	return true
}

// rebuild discards the tree shape and rebuilds a balanced tree from the
// nodes on the age list.
func (c *Cache[V]) rebuild() {
	nodes := make([]*Node[V], 0, c.size)
	for n := c.head.next; n != &c.tail; n = n.next {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node[V]) int {
		return c.opt.Compare(a.val, b.val)
	})
	c.root = buildBalanced(nodes)
	c.size = len(nodes)
}

func buildBalanced[V any](nodes []*Node[V]) *Node[V] {
	if len(nodes) == 0 {
		return nil
	}
	mid := len(nodes) / 2
	n := nodes[mid]
	n.left = buildBalanced(nodes[:mid])
	n.right = buildBalanced(nodes[mid+1:])
	return n
}
