package cache

// Top-down splay (Sleator & Tarjan). The tree is split into three parts
// while descending: the left spine holds keys smaller than the target,
// the right spine keys greater, and the middle tree is still being searched.
// A transient header node anchors both spines; assemble puts them back
// under the final root.

// rotateRight lifts t.left above t and returns the new subtree root.
func rotateRight[V any](t *Node[V]) *Node[V] {
	y := t.left
	t.left = y.right
	y.right = t
	return y
}

// rotateLeft lifts t.right above t and returns the new subtree root.
func rotateLeft[V any](t *Node[V]) *Node[V] {
	y := t.right
	t.right = y.left
	y.left = t
	return y
}

// linkRight hangs t below r on the right spine (everything greater than
// the target) and returns the new bottom of that spine.
func linkRight[V any](r, t *Node[V]) *Node[V] {
	r.left = t
	return t
}

// linkLeft hangs t below l on the left spine (everything smaller than the
// target) and returns the new bottom of that spine.
func linkLeft[V any](l, t *Node[V]) *Node[V] {
	l.right = t
	return t
}

// assemble makes t the root again: its old subtrees go to the bottoms of
// the spines and the spines become its children.
func assemble[V any](hdr, l, r, t *Node[V]) {
	l.right = t.left
	r.left = t.right
	t.left = hdr.right
	t.right = hdr.left
}

// splay moves the node matching key, or the last node visited before a
// missing child, to the root. It returns the comparison of key against the
// new root and the number of levels descended. The tree must not be empty.
func (c *Cache[V]) splay(key V) (cmp, depth int) {
	var hdr Node[V]
	l, r := &hdr, &hdr
	t := c.root
	for {
		cmp = c.opt.Compare(key, t.val)
		if cmp < 0 {
			if t.left == nil {
				break
			}
			if c.opt.Compare(key, t.left.val) < 0 {
				t = rotateRight(t)
				depth++
				if t.left == nil {
					break
				}
			}
			r = linkRight(r, t)
			t = t.left
		} else if cmp > 0 {
			if t.right == nil {
				break
			}
			if c.opt.Compare(key, t.right.val) > 0 {
				t = rotateLeft(t)
				depth++
				if t.right == nil {
					break
				}
			}
			l = linkLeft(l, t)
			t = t.right
		} else {
			break
		}
		depth++
	}
	assemble(&hdr, l, r, t)
	c.root = t
	if depth > c.deepest {
		c.deepest = depth
	}
	return cmp, depth
}

// splice installs the detached node n as the new root. cmp is the result
// of comparing n's value against the current root, as returned by the
// splay that just ran; it must not be zero.
func (c *Cache[V]) splice(n *Node[V], cmp int) {
	t := c.root
	switch {
	case t == nil:
		n.left, n.right = nil, nil
	case cmp < 0:
		n.left = t.left
		n.right = t
		t.left = nil
	default:
		n.right = t.right
		n.left = t
		t.right = nil
	}
	c.root = n
}

// install splays to n's value and splices n in as the root.
func (c *Cache[V]) install(n *Node[V]) {
	cmp := 0
	if c.root != nil {
		cmp, _ = c.splay(n.val)
	}
	c.splice(n, cmp)
}

// detach removes n from the tree by splaying to its own value. The age
// list is left untouched.
func (c *Cache[V]) detach(n *Node[V]) error {
	if c.root == nil {
		return c.corrupt("detach from an empty tree")
	}
	if cmp, _ := c.splay(n.val); cmp != 0 || c.root != n {
		return c.corrupt("node to detach is not in the tree")
	}
	if n.left == nil {
		c.root = n.right
	} else {
		right := n.right
		c.root = n.left
		// n is greater than everything on its left, so the maximum of the
		// left subtree becomes root and has no right child.
		c.splay(n.val)
		c.root.right = right
	}
	n.left, n.right = nil, nil
	return nil
}
