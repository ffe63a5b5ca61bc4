package btree

import (
	"fmt"
	"strings"
)

// StepKind names one elementary structural change.
type StepKind uint8

const (
	// Add inserts a key into a leaf.
	Add StepKind = iota
	// Split breaks a full node around its median, which moves up.
	Split
	// Remove deletes a key from a leaf. Deleting an absent key is a Remove
	// that leaves the tree unchanged.
	Remove
	// Merge joins two siblings and the separator between them.
	Merge
	// RotateLeft moves a separator down into a sparse child and the right
	// sibling's smallest key up into its place.
	RotateLeft
	// RotateRight moves a separator down into a sparse child and the left
	// sibling's largest key up into its place.
	RotateRight
	// StealLeft replaces a separator being deleted with the largest key of
	// the subtree to its left.
	StealLeft
	// StealRight replaces a separator being deleted with the smallest key of
	// the subtree to its right.
	StealRight
)

var stepKindNames = [...]string{
	Add:         "ADD",
	Split:       "SPLIT",
	Remove:      "REMOVE",
	Merge:       "MERGE",
	RotateLeft:  "ROTATE_LEFT",
	RotateRight: "ROTATE_RIGHT",
	StealLeft:   "STEAL_LEFT",
	StealRight:  "STEAL_RIGHT",
}

func (k StepKind) String() string {
	if int(k) < len(stepKindNames) {
		return stepKindNames[k]
	}
	return fmt.Sprintf("StepKind(%d)", k)
}

// ParseStepKind is the inverse of StepKind.String.
func ParseStepKind(s string) (StepKind, bool) {
	for k, name := range stepKindNames {
		if name == s {
			return StepKind(k), true
		}
	}
	return 0, false
}

/*
Step is one elementary change and the key it is about:
  - Add, Remove: the inserted or removed key
  - Split: the promoted median
  - Merge: the separator pulled down into the merged node
  - RotateLeft, RotateRight: the separator rotated down into the sparse child
  - StealLeft, StealRight: the stolen key that now sits in the separator slot
*/
type Step[K any] struct {
	Kind StepKind
	Key  K
}

func (s Step[K]) String() string {
	return fmt.Sprintf("%s %v", s.Kind, s.Key)
}

// Snapshot is the whole tree right after a step.
type Snapshot[K any] struct {
	Tree *Tree[K]
	Step Step[K]
}

// Trace is the ordered list of snapshots taken by one Insert or Delete.
// It is never empty and its last tree is the result of the operation.
type Trace[K any] []Snapshot[K]

// Result returns the tree after the final step.
func (tr Trace[K]) Result() *Tree[K] {
	return tr[len(tr)-1].Tree
}

// Steps returns the steps without their snapshots.
func (tr Trace[K]) Steps() []Step[K] {
	steps := make([]Step[K], len(tr))
	for i, s := range tr {
		steps[i] = s.Step
	}
	return steps
}

// Kinds returns the kind of every step, in order.
func (tr Trace[K]) Kinds() []StepKind {
	kinds := make([]StepKind, len(tr))
	for i, s := range tr {
		kinds[i] = s.Step.Kind
	}
	return kinds
}

// String renders one "STEP key: shape" line per snapshot.
func (tr Trace[K]) String() string {
	b := &strings.Builder{}
	for _, s := range tr {
		fmt.Fprintf(b, "%s: %s\n", s.Step, s.Tree)
	}
	return b.String()
}

// change is a node-level snapshot: the rewritten subtree root after a step
// somewhere below it.
type change[K any] struct {
	node *Node[K]
	step Step[K]
}

func single[K any](n *Node[K], kind StepKind, key K) []change[K] {
	return []change[K]{{node: n, step: Step[K]{Kind: kind, Key: key}}}
}
