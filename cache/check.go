package cache

// Check verifies the structure without changing it: the age list is well
// linked and holds exactly Len entries, an in-order walk of the tree is
// strictly increasing under Compare, and the tree and the list contain the
// same nodes. The first violation is reported through the Debug hook and
// returned wrapped in ErrCorrupt.
func (c *Cache[V]) Check() error {
	if err := c.usable(); err != nil {
		return err
	}

	listed := make(map[*Node[V]]struct{}, c.size)
	for n := c.head.next; n != &c.tail; n = n.next {
		if n == nil || n.prev.next != n {
			return c.corrupt("age list broken after %d entries", len(listed))
		}
		if _, dup := listed[n]; dup || len(listed) == c.size {
			return c.corrupt("age list longer than %d entries", c.size)
		}
		listed[n] = struct{}{}
	}
	if len(listed) != c.size {
		return c.corrupt("age list holds %d entries, want %d", len(listed), c.size)
	}

	var (
		stack []*Node[V]
		prev  *Node[V]
		seen  int
	)
	for n := c.root; n != nil || len(stack) > 0; {
		for ; n != nil; n = n.left {
			if len(stack) > c.size {
				return c.corrupt("tree deeper than %d entries", c.size)
			}
			stack = append(stack, n)
		}
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if prev != nil && c.opt.Compare(prev.val, n.val) >= 0 {
			return c.corrupt("tree out of order at in-order position %d", seen)
		}
		if _, ok := listed[n]; !ok {
			return c.corrupt("tree node at in-order position %d is not on the age list", seen)
		}
		if seen++; seen > c.size {
			return c.corrupt("tree holds more than %d entries", c.size)
		}
		prev = n
		n = n.right
	}
	if seen != c.size {
		return c.corrupt("tree holds %d entries, want %d", seen, c.size)
	}
	return nil
}

// Depth returns the number of nodes on the longest root-to-leaf path.
// It walks the tree with an explicit stack and never splays.
func (c *Cache[V]) Depth() int {
	if c == nil || c.root == nil {
		return 0
	}
	type frame struct {
		n *Node[V]
		d int
	}
	deepest := 0
	stack := []frame{{c.root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.d > deepest {
			deepest = f.d
		}
		if f.n.left != nil {
			stack = append(stack, frame{f.n.left, f.d + 1})
		}
		if f.n.right != nil {
			stack = append(stack, frame{f.n.right, f.d + 1})
		}
	}
	return deepest
}
