package btree

import (
	"github.com/pingcap/errors"
)

// Validate checks the B-tree invariants on every reachable node: key counts
// within bounds, one more child than keys in internal nodes, keys in order
// inside and across nodes, and all leaves at the same depth.
func (t *Tree[K]) Validate() error {
	if t.root == nil {
		return nil
	}
	if len(t.root.keys) == 0 {
		return errors.New("root holds no keys")
	}
	_, err := t.eng.validate(t.root, true, nil, nil)
	return err
}

// validate returns the height of the subtree rooted at n. lo and hi, when
// set, bound every key of the subtree.
func (e *engine[K]) validate(n *Node[K], isRoot bool, lo, hi *K) (int, error) {
	if n == nil {
		return 0, errors.New("nil child")
	}
	if len(n.keys) > e.maxKeys() {
		return 0, errors.Errorf("node %s holds %d keys, more than %d", n, len(n.keys), e.maxKeys())
	}
	if !isRoot && len(n.keys) < e.degree-1 {
		return 0, errors.Errorf("node %s holds %d keys, fewer than %d", n, len(n.keys), e.degree-1)
	}
	for i, k := range n.keys {
		if i > 0 && e.cmp(n.keys[i-1], k) > 0 {
			return 0, errors.Errorf("node %s keys out of order at %d", n, i)
		}
		if lo != nil && e.cmp(k, *lo) < 0 || hi != nil && e.cmp(k, *hi) > 0 {
			return 0, errors.Errorf("node %s key at %d escapes its separators", n, i)
		}
	}
	if n.isLeaf() {
		return 1, nil
	}
	if len(n.children) != len(n.keys)+1 {
		return 0, errors.Errorf("node %s has %d children for %d keys", n, len(n.children), len(n.keys))
	}

	height := 0
	for i, c := range n.children {
		clo, chi := lo, hi
		if i > 0 {
			clo = &n.keys[i-1]
		}
		if i < len(n.keys) {
			chi = &n.keys[i]
		}
		h, err := e.validate(c, false, clo, chi)
		if err != nil {
			return 0, err
		}
		if i > 0 && h != height {
			return 0, errors.Errorf("node %s has leaves at different depths", n)
		}
		height = h
	}
	return height + 1, nil
}
