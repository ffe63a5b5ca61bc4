package btree

import (
	"fmt"
	"strings"
)

// EmptyShape is the shape of the empty tree.
const EmptyShape = "{}"

/*
String returns the canonical shape of the tree:
  - a leaf is its keys comma-joined inside braces, {1,2,3}
  - an internal node is [.{keys} child child ... ]
  - the empty tree is EmptyShape

Equal shapes mean equal trees, which makes the shape the usual way to
compare trees in tests and to label rendered diagrams.
*/
func (t *Tree[K]) String() string {
	if t.root == nil {
		return EmptyShape
	}
	return t.root.String()
}

// String returns the canonical shape of the subtree rooted at n.
func (n *Node[K]) String() string {
	b := &strings.Builder{}
	n.writeShape(b)
	return b.String()
}

func (n *Node[K]) writeShape(b *strings.Builder) {
	if n.isLeaf() {
		n.writeKeys(b)
		return
	}
	b.WriteString("[.")
	n.writeKeys(b)
	for _, c := range n.children {
		b.WriteByte(' ')
		c.writeShape(b)
	}
	b.WriteString(" ]")
}

func (n *Node[K]) writeKeys(b *strings.Builder) {
	b.WriteByte('{')
	for i, k := range n.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprint(b, k)
	}
	b.WriteByte('}')
}
