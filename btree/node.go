package btree

import "slices"

// Node is an immutable B-tree node: ascending keys and, for internal nodes,
// one more child than keys. Leaves have no children.
type Node[K any] struct {
	keys     []K
	children []*Node[K]
}

// NewLeaf returns a leaf holding a copy of keys.
func NewLeaf[K any](keys ...K) *Node[K] {
	return &Node[K]{keys: slices.Clone(keys)}
}

// NewNode returns an internal node holding copies of keys and children.
// An empty children slice makes a leaf.
func NewNode[K any](keys []K, children ...*Node[K]) *Node[K] {
	return &Node[K]{keys: slices.Clone(keys), children: slices.Clone(children)}
}

// Keys returns a copy of the node's keys.
func (n *Node[K]) Keys() []K {
	return slices.Clone(n.keys)
}

// Children returns a copy of the node's child pointers.
func (n *Node[K]) Children() []*Node[K] {
	return slices.Clone(n.children)
}

// NumKeys returns the number of keys held by n.
func (n *Node[K]) NumKeys() int {
	return len(n.keys)
}

// IsLeaf reports whether n has no children.
func (n *Node[K]) IsLeaf() bool {
	return n.isLeaf()
}

func (n *Node[K]) isLeaf() bool {
	return len(n.children) == 0
}

// spliced returns a fresh slice equal to s with s[pos:pos+n] replaced by vs.
// Nodes share their slices with older snapshots, so they are never edited
// in place.
func spliced[T any](s []T, pos, n int, vs ...T) []T {
	out := make([]T, 0, len(s)-n+len(vs))
	out = append(out, s[:pos]...)
	out = append(out, vs...)
	return append(out, s[pos+n:]...)
}

// concat returns a fresh slice holding a, then vs, then b.
func concat[T any](a []T, vs []T, b []T) []T {
	out := make([]T, 0, len(a)+len(vs)+len(b))
	out = append(out, a...)
	out = append(out, vs...)
	return append(out, b...)
}

// engine holds the parameters the node-level algorithms depend on. All of
// its methods are pure: they read nodes and build new ones.
type engine[K any] struct {
	degree int
	cmp    func(a, b K) int
}

func (e *engine[K]) maxKeys() int {
	return 2*e.degree - 1
}

func (e *engine[K]) isFull(n *Node[K]) bool {
	return len(n.keys) >= e.maxKeys()
}

// isSparse reports whether n sits at the minimum key count, so taking a key
// out of it would underflow.
func (e *engine[K]) isSparse(n *Node[K]) bool {
	return len(n.keys) < e.degree
}

/*
If a key equal to key is found in node n, return the index i of its first
occurrence. Else, return the index j where the key would have resided if it
was present in the node. This is the lower bound of the key, which coincides
with the position of the child pointer to continue the traversal with.
*/
func (e *engine[K]) search(n *Node[K], key K) (int, bool) {
	low, high := 0, len(n.keys)
	for low < high {
		mid := (low + high) / 2
		if e.cmp(n.keys[mid], key) < 0 {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low, low < len(n.keys) && e.cmp(n.keys[low], key) == 0
}

// split breaks n around its median key (index t-1) and returns both halves
// and the median, so the caller can link them to the parent.
func (e *engine[K]) split(n *Node[K]) (*Node[K], K, *Node[K]) {
	mid := e.degree - 1
	left := &Node[K]{keys: slices.Clone(n.keys[:mid])}
	right := &Node[K]{keys: slices.Clone(n.keys[mid+1:])}
	if !n.isLeaf() {
		left.children = slices.Clone(n.children[:mid+1])
		right.children = slices.Clone(n.children[mid+1:])
	}
	return left, n.keys[mid], right
}

// merge joins two siblings and the separator between them into one node.
func (e *engine[K]) merge(left *Node[K], sep K, right *Node[K]) *Node[K] {
	merged := &Node[K]{keys: concat(left.keys, []K{sep}, right.keys)}
	if !left.isLeaf() {
		merged.children = concat(left.children, nil, right.children)
	}
	return merged
}

// lift turns the changes made below child pos into snapshots of n by
// splicing each rewritten child back in.
func (e *engine[K]) lift(n *Node[K], pos int, below []change[K]) []change[K] {
	out := make([]change[K], len(below))
	for i, c := range below {
		out[i] = change[K]{
			node: &Node[K]{keys: n.keys, children: spliced(n.children, pos, 1, c.node)},
			step: c.step,
		}
	}
	return out
}

/*
insert adds key to the subtree rooted at n, which must not be full. Starting
at n, we recursively descend until we reach a leaf suitable for insertion.
Full children are split before we enter them, so a leaf always has room.
*/
func (e *engine[K]) insert(n *Node[K], key K) []change[K] {
	pos, _ := e.search(n, key)

	// We reached a leaf node, which has room for the new key.
	if n.isLeaf() {
		return single(&Node[K]{keys: spliced(n.keys, pos, 0, key)}, Add, key)
	}

	var trail []change[K]
	// If the next node on the traversal path is already full, split it.
	if e.isFull(n.children[pos]) {
		left, mid, right := e.split(n.children[pos])
		n = &Node[K]{
			keys:     spliced(n.keys, pos, 0, mid),
			children: spliced(n.children, pos, 1, left, right),
		}
		trail = single(n, Split, mid)
		// The promoted median may change our direction.
		if e.cmp(key, mid) > 0 {
			pos++
		}
	}
	return append(trail, e.lift(n, pos, e.insert(n.children[pos], key))...)
}

/*
delete removes one occurrence of key from the subtree rooted at n. Every
child we descend into is first brought above the minimum key count, so the
removal at the bottom never underflows a node. A key held directly in an
internal node is first replaced by a stolen neighbour or merged down into a
child, then removed from there.
*/
func (e *engine[K]) delete(n *Node[K], key K) []change[K] {
	pos, found := e.search(n, key)

	switch {
	case found && n.isLeaf():
		return single(&Node[K]{keys: spliced(n.keys, pos, 1)}, Remove, key)
	case found:
		return e.deleteSeparator(n, pos, key)
	case n.isLeaf():
		// The key is not in the tree. Nothing to do.
		return single(n, Remove, key)
	}

	var trail []change[K]
	// A keyless node, which only degree 1 trees have, has no siblings to
	// refill its child from, so we descend as is.
	if len(n.keys) > 0 && e.isSparse(n.children[pos]) {
		var step Step[K]
		n, pos, step = e.fill(n, pos)
		trail = []change[K]{{node: n, step: step}}
	}
	return append(trail, e.lift(n, pos, e.delete(n.children[pos], key))...)
}

// deleteSeparator removes n.keys[pos], which separates two children.
func (e *engine[K]) deleteSeparator(n *Node[K], pos int, key K) []change[K] {
	left, right := n.children[pos], n.children[pos+1]

	switch {
	// Neither side can spare a key: pull the separator down between them and
	// continue the removal inside the merged node.
	case e.isSparse(left) && e.isSparse(right):
		merged := e.merge(left, n.keys[pos], right)
		n = &Node[K]{
			keys:     spliced(n.keys, pos, 1),
			children: spliced(n.children, pos, 2, merged),
		}
		return append(single(n, Merge, key), e.lift(n, pos, e.delete(merged, key))...)
	// Replace the separator with its in-order successor and remove the
	// successor from the right subtree.
	case e.isSparse(left):
		// right is not sparse, so it holds a key.
		succ, _ := e.min(right)
		n = &Node[K]{keys: spliced(n.keys, pos, 1, succ), children: n.children}
		return append(single(n, StealRight, succ), e.lift(n, pos+1, e.delete(right, succ))...)
	// Replace the separator with its in-order predecessor.
	default:
		pred, _ := e.max(left)
		n = &Node[K]{keys: spliced(n.keys, pos, 1, pred), children: n.children}
		return append(single(n, StealLeft, pred), e.lift(n, pos, e.delete(left, pred))...)
	}
}

/*
fill brings the sparse child at pos above the minimum key count before we
descend into it, trying in order:
 1. borrow from the left sibling through the parent (rotate right)
 2. borrow from the right sibling through the parent (rotate left)
 3. merge with the right sibling
 4. merge with the left sibling
It returns the rewritten node and the position of the refilled child.
*/
func (e *engine[K]) fill(n *Node[K], pos int) (*Node[K], int, Step[K]) {
	child := n.children[pos]
	last := len(n.children) - 1

	switch {
	case pos > 0 && !e.isSparse(n.children[pos-1]):
		left := n.children[pos-1]
		sep := n.keys[pos-1]
		top := len(left.keys) - 1
		// The separator moves to the front of the child and the largest key
		// of the left sibling replaces it.
		newLeft := &Node[K]{keys: left.keys[:top:top]}
		newChild := &Node[K]{keys: concat(nil, []K{sep}, child.keys)}
		// For non-leaf nodes, the right-most child of the left sibling becomes
		// the new left-most child of the refilled child.
		if !child.isLeaf() {
			newLeft.children = left.children[:len(left.keys):len(left.keys)]
			newChild.children = concat(nil, left.children[len(left.keys):], child.children)
		}
		n = &Node[K]{
			keys:     spliced(n.keys, pos-1, 1, left.keys[top]),
			children: spliced(n.children, pos-1, 2, newLeft, newChild),
		}
		return n, pos, Step[K]{Kind: RotateRight, Key: sep}

	case pos < last && !e.isSparse(n.children[pos+1]):
		right := n.children[pos+1]
		sep := n.keys[pos]
		// The separator moves to the back of the child and the smallest key
		// of the right sibling replaces it.
		newRight := &Node[K]{keys: right.keys[1:]}
		newChild := &Node[K]{keys: concat(child.keys, []K{sep}, nil)}
		// For non-leaf nodes, the left-most child of the right sibling becomes
		// the new right-most child of the refilled child.
		if !child.isLeaf() {
			newRight.children = right.children[1:]
			newChild.children = concat(child.children, right.children[:1], nil)
		}
		n = &Node[K]{
			keys:     spliced(n.keys, pos, 1, right.keys[0]),
			children: spliced(n.children, pos, 2, newChild, newRight),
		}
		return n, pos, Step[K]{Kind: RotateLeft, Key: sep}
	}

	// There are no siblings to borrow from, so merge. We prefer the right
	// sibling and fall back to the left one for the right-most child.
	if pos == last {
		pos--
	}
	sep := n.keys[pos]
	merged := e.merge(n.children[pos], sep, n.children[pos+1])
	n = &Node[K]{
		keys:     spliced(n.keys, pos, 1),
		children: spliced(n.children, pos, 2, merged),
	}
	return n, pos, Step[K]{Kind: Merge, Key: sep}
}

// min returns the first key of the subtree rooted at n in key order. Trees
// of degree 1 hold keyless nodes, so empty subtrees are skipped.
func (e *engine[K]) min(n *Node[K]) (K, bool) {
	for i, c := range n.children {
		if k, ok := e.min(c); ok {
			return k, true
		}
		if i < len(n.keys) {
			return n.keys[i], true
		}
	}
	if len(n.keys) > 0 {
		return n.keys[0], true
	}
	var zero K
	return zero, false
}

// max returns the last key of the subtree rooted at n in key order.
func (e *engine[K]) max(n *Node[K]) (K, bool) {
	for i := len(n.children) - 1; i >= 0; i-- {
		if k, ok := e.max(n.children[i]); ok {
			return k, true
		}
		if i > 0 {
			return n.keys[i-1], true
		}
	}
	if len(n.keys) > 0 {
		return n.keys[len(n.keys)-1], true
	}
	var zero K
	return zero, false
}
