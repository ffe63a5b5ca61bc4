/*
Package btree implements an immutable, in-memory B-tree that records every
structural change it makes.

Insert and Delete never touch the receiver. They return the resulting tree
together with a Trace: one snapshot of the whole tree per atomic change
(ADD, SPLIT, REMOVE, MERGE, ROTATE_LEFT, ROTATE_RIGHT, STEAL_LEFT,
STEAL_RIGHT). Replaying the snapshots in order walks from the old tree to
the new one step by step.

Both walks are top-down: a full child is split before we descend into it on
insert, and a child sitting at the minimum key count is refilled by a
rotation or a merge before we descend into it on delete.
*/
package btree

import (
	"cmp"

	"github.com/pingcap/errors"
)

// Tree only keeps the engine parameters and a pointer to the root node.
// A nil root is the empty tree. Trees are values: nothing reachable from a
// Tree is modified after construction, so successive trees share every
// node that an operation did not rewrite.
type Tree[K any] struct {
	eng  *engine[K]
	root *Node[K]
}

// New returns an empty tree of the given degree t. Every node except the
// root holds between t-1 and 2t-1 keys. cmp is a three-way comparison
// returning a negative number, zero or a positive number.
func New[K any](degree int, cmp func(a, b K) int) (*Tree[K], error) {
	if degree < 1 {
		return nil, errors.Errorf("invalid degree %d, must be at least 1", degree)
	}
	if cmp == nil {
		return nil, errors.New("missing key comparison")
	}
	return &Tree[K]{eng: &engine[K]{degree: degree, cmp: cmp}}, nil
}

// NewOrdered returns an empty tree over a naturally ordered key type.
func NewOrdered[K cmp.Ordered](degree int) (*Tree[K], error) {
	return New[K](degree, cmp.Compare[K])
}

// FromNode adopts a caller-built node as the root of a new tree. The node
// must already satisfy the B-tree invariants for the given degree.
func FromNode[K any](degree int, cmp func(a, b K) int, root *Node[K]) (*Tree[K], error) {
	t, err := New(degree, cmp)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return t, nil
	}
	t = &Tree[K]{eng: t.eng, root: root}
	if err := t.Validate(); err != nil {
		return nil, errors.Annotate(err, "rejecting root node")
	}
	return t, nil
}

// Degree returns the branching parameter t.
func (t *Tree[K]) Degree() int {
	return t.eng.degree
}

// Root returns the root node, or nil for the empty tree.
func (t *Tree[K]) Root() *Node[K] {
	return t.root
}

// Empty reports whether the tree holds no keys.
func (t *Tree[K]) Empty() bool {
	return t.root == nil
}

// with wraps root into a tree sharing t's engine. A keyless root left over
// by a merge is replaced by its only child, and a keyless leaf means the
// tree became empty.
func (t *Tree[K]) with(root *Node[K]) *Tree[K] {
	for root != nil && len(root.keys) == 0 {
		if root.isLeaf() {
			root = nil
		} else {
			root = root.children[0]
		}
	}
	return &Tree[K]{eng: t.eng, root: root}
}
