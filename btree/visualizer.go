package btree

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/xlab/treeprint"
)

const (
	LeftBranch   = "┌"
	RightBranch  = "└"
	Branch       = "├"
	Limb         = "──"
	Trunk        = "│    "
	LastPosition = -1
)

var (
	ColorEven = color.New(color.FgHiYellow)
	ColorOdd  = color.New(color.FgHiCyan)
)

// Visualizer draws a tree sideways, smallest key on top, with one colour
// per level.
type Visualizer[K any] struct {
	Tree *Tree[K]
}

// Visualize returns the diagram, one line per key.
func (v *Visualizer[K]) Visualize() string {
	if v.Tree == nil || v.Tree.root == nil {
		return EmptyShape + "\n"
	}
	return v.recurse(v.Tree.root, 0, LastPosition)
}

func levelColor(level int) *color.Color {
	if level%2 == 0 {
		return ColorEven
	}
	return ColorOdd
}

func (v *Visualizer[K]) recurse(n *Node[K], level int, parentPos int) string {
	b := &strings.Builder{}
	c := levelColor(level)

	var i int
	for i = 0; i < len(n.keys); i++ {
		if !n.isLeaf() {
			b.WriteString(v.recurse(n.children[i], level+1, i))
		}
		for l := 0; l < level; l++ {
			b.WriteString(levelColor(l).Sprint(Trunk))
		}
		branch := Branch
		if i == 0 && parentPos == 0 {
			branch = LeftBranch
		} else if i == len(n.keys)-1 && parentPos == LastPosition {
			branch = RightBranch
		}
		b.WriteString(c.Sprint(branch + Limb + " "))
		b.WriteString(c.Sprint(fmt.Sprint(n.keys[i])))
		b.WriteString("\n")
	}

	if !n.isLeaf() {
		b.WriteString(v.recurse(n.children[i], level+1, LastPosition))
	}
	return b.String()
}

// Outline renders the tree as an indented outline, one line per node
// holding that node's key group.
func Outline[K any](t *Tree[K]) string {
	if t.root == nil {
		return EmptyShape + "\n"
	}
	out := treeprint.NewWithRoot(keyGroup(t.root))
	outlineChildren(out, t.root)
	return out.String()
}

func outlineChildren[K any](branch treeprint.Tree, n *Node[K]) {
	for _, c := range n.children {
		if c.isLeaf() {
			branch.AddNode(keyGroup(c))
			continue
		}
		outlineChildren(branch.AddBranch(keyGroup(c)), c)
	}
}

func keyGroup[K any](n *Node[K]) string {
	b := &strings.Builder{}
	n.writeKeys(b)
	return b.String()
}
