package btree

// Contains searches the entire tree for key.
func (t *Tree[K]) Contains(key K) bool {
	for next := t.root; next != nil; {
		pos, found := t.eng.search(next, key)
		if found {
			return true
		}
		if next.isLeaf() {
			return false
		}
		next = next.children[pos]
	}
	return false
}

/*
splitRoot creates a new root holding only the median of the full root.
The two halves of the old root become the new root's children.
*/
func (t *Tree[K]) splitRoot() (*Node[K], K) {
	left, mid, right := t.eng.split(t.root)
	return &Node[K]{keys: []K{mid}, children: []*Node[K]{left, right}}, mid
}

// Insert returns the tree with key added and the trace of every change on
// the way. Keys already present are stored again.
func (t *Tree[K]) Insert(key K) (*Tree[K], Trace[K]) {
	// The tree is empty, so the key becomes a single leaf.
	if t.root == nil {
		nt := t.with(&Node[K]{keys: []K{key}})
		return nt, Trace[K]{{Tree: nt, Step: Step[K]{Kind: Add, Key: key}}}
	}

	var trace Trace[K]
	root := t.root
	// The tree root is full, so split it before descending.
	if t.eng.isFull(root) {
		var mid K
		root, mid = t.splitRoot()
		trace = append(trace, Snapshot[K]{Tree: t.with(root), Step: Step[K]{Kind: Split, Key: mid}})
	}

	trace = t.record(trace, t.eng.insert(root, key))
	return trace.Result(), trace
}

// Delete returns the tree with one occurrence of key removed and the trace
// of every change on the way. Deleting a key that is not in the tree is a
// single Remove step on an unchanged tree.
func (t *Tree[K]) Delete(key K) (*Tree[K], Trace[K]) {
	if !t.Contains(key) {
		return t, Trace[K]{{Tree: t, Step: Step[K]{Kind: Remove, Key: key}}}
	}
	trace := t.record(nil, t.eng.delete(t.root, key))
	return trace.Result(), trace
}

// record appends a tree snapshot for every node-level change.
func (t *Tree[K]) record(trace Trace[K], changes []change[K]) Trace[K] {
	for _, c := range changes {
		trace = append(trace, Snapshot[K]{Tree: t.with(c.node), Step: c.step})
	}
	return trace
}

// InsertAll inserts keys one after another and returns the final tree.
func (t *Tree[K]) InsertAll(keys ...K) *Tree[K] {
	for _, k := range keys {
		t, _ = t.Insert(k)
	}
	return t
}

// DeleteAll deletes keys one after another and returns the final tree.
func (t *Tree[K]) DeleteAll(keys ...K) *Tree[K] {
	for _, k := range keys {
		t, _ = t.Delete(k)
	}
	return t
}

// Len returns the number of keys stored in the tree.
func (t *Tree[K]) Len() int {
	var count func(n *Node[K]) int
	count = func(n *Node[K]) int {
		total := len(n.keys)
		for _, c := range n.children {
			total += count(c)
		}
		return total
	}
	if t.root == nil {
		return 0
	}
	return count(t.root)
}

// Height returns the number of levels, 0 for the empty tree.
func (t *Tree[K]) Height() int {
	h := 0
	for next := t.root; next != nil; h++ {
		if next.isLeaf() {
			next = nil
		} else {
			next = next.children[0]
		}
	}
	return h
}

// Keys returns every key in ascending order.
func (t *Tree[K]) Keys() []K {
	var keys []K
	var walk func(n *Node[K])
	walk = func(n *Node[K]) {
		for i, k := range n.keys {
			if !n.isLeaf() {
				walk(n.children[i])
			}
			keys = append(keys, k)
		}
		if !n.isLeaf() {
			walk(n.children[len(n.keys)])
		}
	}
	if t.root != nil {
		walk(t.root)
	}
	return keys
}
