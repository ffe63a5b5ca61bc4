package btree

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func newIntTree(t *testing.T, degree int, keys ...int) *Tree[int] {
	tree, err := NewOrdered[int](degree)
	require.NoError(t, err)
	return tree.InsertAll(keys...)
}

func shapes[K any](tr Trace[K]) []string {
	out := make([]string, len(tr))
	for i, s := range tr {
		out[i] = s.Tree.String()
	}
	return out
}

func TestNewRejectsDegree(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	for _, degree := range []int{0, -1, -7} {
		tree, err := NewOrdered[int](degree)
		re.Error(err)
		re.Nil(tree)
	}
	_, err := New[int](2, nil)
	re.Error(err)

	tree, err := NewOrdered[string](3)
	re.NoError(err)
	re.True(tree.Empty())
	re.Equal(3, tree.Degree())
	re.Equal(EmptyShape, tree.String())
}

func TestInsertIntoEmptyTree(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	empty := newIntTree(t, 2)
	tree, trace := empty.Insert(3)
	re.Equal("{3}", tree.String())
	re.Equal([]Step[int]{{Kind: Add, Key: 3}}, trace.Steps())
	re.Same(tree, trace.Result())
	re.True(empty.Empty())
}

func TestInsertAscending(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree := newIntTree(t, 2, 1, 2, 3, 4, 5, 6, 7, 8)
	re.Equal("[.{2,4,6} {1} {3} {5} {7,8} ]", tree.String())

	tree, trace := tree.Insert(9)
	re.Equal("[.{4} [.{2} {1} {3} ] [.{6} {5} {7,8,9} ] ]", tree.String())
	re.Equal([]Step[int]{{Kind: Split, Key: 4}, {Kind: Add, Key: 9}}, trace.Steps())
	re.Equal([]string{
		"[.{4} [.{2} {1} {3} ] [.{6} {5} {7,8} ] ]",
		"[.{4} [.{2} {1} {3} ] [.{6} {5} {7,8,9} ] ]",
	}, shapes(trace))
	re.Equal(3, tree.Height())
	re.Equal(9, tree.Len())
}

func TestInsertSplitsFullChild(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree := newIntTree(t, 2, 1, 2, 3, 4, 5)
	re.Equal("[.{2} {1} {3,4,5} ]", tree.String())

	tree, trace := tree.Insert(6)
	re.Equal([]StepKind{Split, Add}, trace.Kinds())
	re.Equal(4, trace[0].Step.Key)
	re.Equal([]string{"[.{2,4} {1} {3} {5} ]", "[.{2,4} {1} {3} {5,6} ]"}, shapes(trace))

	// The promoted median sends a smaller key back to the left half.
	tree = newIntTree(t, 2, 10, 20, 30, 40, 50)
	_, trace = tree.Insert(35)
	re.Equal("[.{20,40} {10} {30,35} {50} ]", trace.Result().String())
}

func TestDeleteMergesAroundSeparator(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree := newIntTree(t, 2, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	tree, trace := tree.Delete(4)
	re.Equal("[.{2,6} {1} {3,5} {7,8,9} ]", tree.String())
	re.Equal([]Step[int]{{Kind: Merge, Key: 4}, {Kind: Merge, Key: 4}, {Kind: Remove, Key: 4}}, trace.Steps())
	re.Equal([]string{
		"[.{2,4,6} {1} {3} {5} {7,8,9} ]",
		"[.{2,6} {1} {3,4,5} {7,8,9} ]",
		"[.{2,6} {1} {3,5} {7,8,9} ]",
	}, shapes(trace))
}

func TestDeleteRotatesFromRightSibling(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree := newIntTree(t, 2, 1, 2, 3, 4, 5, 6, 7, 8, 9).DeleteAll(4)

	tree, trace := tree.Delete(1)
	re.Equal("[.{3,6} {2} {5} {7,8,9} ]", tree.String())
	re.Equal([]Step[int]{{Kind: RotateLeft, Key: 2}, {Kind: Remove, Key: 1}}, trace.Steps())
	re.Equal("[.{3,6} {1,2} {5} {7,8,9} ]", trace[0].Tree.String())
}

func TestDeleteRotatesFromLeftSibling(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree, err := FromNode(2, func(a, b int) int { return a - b },
		NewNode([]int{3}, NewLeaf(1, 2), NewLeaf(4)))
	re.NoError(err)

	tree, trace := tree.Delete(4)
	re.Equal([]Step[int]{{Kind: RotateRight, Key: 3}, {Kind: Remove, Key: 4}}, trace.Steps())
	re.Equal([]string{"[.{2} {1} {3,4} ]", "[.{2} {1} {3} ]"}, shapes(trace))
	re.NoError(tree.Validate())
}

func TestDeleteRotatesInternalChildren(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree, err := FromNode(2, func(a, b int) int { return a - b },
		NewNode([]int{40},
			NewNode([]int{10, 20}, NewLeaf(5), NewLeaf(15), NewLeaf(25)),
			NewNode([]int{50}, NewLeaf(45), NewLeaf(55))))
	re.NoError(err)

	tree, trace := tree.Delete(55)
	re.Equal(RotateRight, trace[0].Step.Kind)
	re.Equal(40, trace[0].Step.Key)
	re.Equal("[.{20} [.{10} {5} {15} ] [.{40,50} {25} {45} {55} ] ]", trace[0].Tree.String())
	re.Equal("[.{20} [.{10} {5} {15} ] [.{40} {25} {45,50} ] ]", tree.String())
	re.NoError(tree.Validate())

	tree, err = FromNode(2, func(a, b int) int { return a - b },
		NewNode([]int{20},
			NewNode([]int{10}, NewLeaf(5), NewLeaf(15)),
			NewNode([]int{40, 60}, NewLeaf(25), NewLeaf(45), NewLeaf(65))))
	re.NoError(err)

	tree, trace = tree.Delete(5)
	re.Equal([]StepKind{RotateLeft, Merge, Remove}, trace.Kinds())
	re.Equal(20, trace[0].Step.Key)
	re.Equal("[.{40} [.{10,20} {5} {15} {25} ] [.{60} {45} {65} ] ]", trace[0].Tree.String())
	re.Equal("[.{40} [.{20} {10,15} {25} ] [.{60} {45} {65} ] ]", tree.String())
	re.NoError(tree.Validate())
}

func TestDeleteStealsFromNeighbours(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	cmp := func(a, b int) int { return a - b }

	left, err := FromNode(2, cmp, NewNode([]int{4}, NewLeaf(1, 2, 3), NewLeaf(5)))
	re.NoError(err)
	tree, trace := left.Delete(4)
	re.Equal([]Step[int]{{Kind: StealLeft, Key: 3}, {Kind: Remove, Key: 3}}, trace.Steps())
	re.Equal([]string{"[.{3} {1,2,3} {5} ]", "[.{3} {1,2} {5} ]"}, shapes(trace))
	re.NoError(tree.Validate())

	right, err := FromNode(2, cmp, NewNode([]int{2}, NewLeaf(1), NewLeaf(3, 4)))
	re.NoError(err)
	tree, trace = right.Delete(2)
	re.Equal([]Step[int]{{Kind: StealRight, Key: 3}, {Kind: Remove, Key: 3}}, trace.Steps())
	re.Equal("[.{3} {1} {4} ]", tree.String())
	re.NoError(tree.Validate())
}

func TestDeleteMergesWithLeftSibling(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree := newIntTree(t, 2, 1, 2, 3, 4).DeleteAll(4)
	re.Equal("[.{2} {1} {3} ]", tree.String())

	tree, trace := tree.Delete(3)
	re.Equal([]Step[int]{{Kind: Merge, Key: 2}, {Kind: Remove, Key: 3}}, trace.Steps())
	re.Equal([]string{"{1,2,3}", "{1,2}"}, shapes(trace))
	re.Equal(1, tree.Height())
}

func TestDeleteLastKey(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree := newIntTree(t, 2, 9)
	re.Equal("{9}", tree.String())

	tree, trace := tree.Delete(9)
	re.True(tree.Empty())
	re.Equal(EmptyShape, tree.String())
	re.Equal([]Step[int]{{Kind: Remove, Key: 9}}, trace.Steps())
}

func TestDeleteAbsentKey(t *testing.T) {
	t.Parallel()
	re := require.New(t)

	empty := newIntTree(t, 2)
	tree, trace := empty.Delete(1)
	re.Same(empty, tree)
	re.Equal([]Step[int]{{Kind: Remove, Key: 1}}, trace.Steps())

	full := newIntTree(t, 2, 1, 2, 3, 4, 5, 6, 7, 8, 9).DeleteAll(4)
	for _, key := range []int{0, 4, 10} {
		tree, trace = full.Delete(key)
		re.Equal(full.String(), tree.String())
		re.Len(trace, 1)
		re.Equal(Step[int]{Kind: Remove, Key: key}, trace[0].Step)
	}
}

func TestDuplicateKeys(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	tree := newIntTree(t, 2, 5, 5, 5, 5, 1, 9)
	re.Equal([]int{1, 5, 5, 5, 5, 9}, tree.Keys())
	re.NoError(tree.Validate())

	tree = tree.DeleteAll(5, 5)
	re.Equal([]int{1, 5, 5, 9}, tree.Keys())
	re.True(tree.Contains(5))
	re.NoError(tree.Validate())
}

func TestOldTreesAreUntouched(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	history := []*Tree[int]{newIntTree(t, 2)}
	want := []string{EmptyShape}
	for i := 1; i <= 30; i++ {
		next, _ := history[len(history)-1].Insert(i * 7 % 31)
		history = append(history, next)
		want = append(want, next.String())
	}
	for i := 1; i <= 30; i += 2 {
		next, _ := history[len(history)-1].Delete(i * 7 % 31)
		history = append(history, next)
		want = append(want, next.String())
	}
	for i, tree := range history {
		re.Equal(want[i], tree.String())
	}
}

func TestFromNodeRejectsInvalidNodes(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	cmp := func(a, b int) int { return a - b }
	for _, root := range []*Node[int]{
		NewLeaf(2, 1),
		NewLeaf(1, 2, 3, 4),
		NewNode([]int{5}, NewLeaf(6), NewLeaf(7)),
		NewNode([]int{5}, NewLeaf(1)),
		NewNode([]int{5}, NewLeaf(1), NewNode([]int{8}, NewLeaf(7), NewLeaf(9))),
		NewNode([]int{5, 9}, NewLeaf(1), NewLeaf[int](), NewLeaf(10)),
		NewNode[int](nil, NewLeaf(1)),
	} {
		_, err := FromNode(2, cmp, root)
		re.Error(err, root.String())
	}

	tree, err := FromNode[int](2, cmp, nil)
	re.NoError(err)
	re.True(tree.Empty())
}

func TestDegreeOne(t *testing.T) {
	t.Parallel()
	re := require.New(t)

	// Every node holds at most one key, so each split leaves two keyless
	// halves behind.
	tree, trace := newIntTree(t, 1, 1).Insert(2)
	re.Equal([]StepKind{Split, Add}, trace.Kinds())
	re.Equal("[.{1} {} {2} ]", tree.String())

	tree, trace = tree.Insert(3)
	re.Equal([]Step[int]{{Kind: Split, Key: 1}, {Kind: Split, Key: 2}, {Kind: Add, Key: 3}}, trace.Steps())
	re.Equal([]string{
		"[.{1} [.{} {} ] [.{} {2} ] ]",
		"[.{1} [.{} {} ] [.{2} {} {} ] ]",
		"[.{1} [.{} {} ] [.{2} {} {3} ] ]",
	}, shapes(trace))
	re.NoError(tree.Validate())

	// The successor is found past the keyless leftmost leaf.
	tree, trace = tree.Delete(1)
	re.Equal([]Step[int]{{Kind: StealRight, Key: 2}, {Kind: StealRight, Key: 3}, {Kind: Remove, Key: 3}}, trace.Steps())
	re.Equal([]string{
		"[.{2} [.{} {} ] [.{2} {} {3} ] ]",
		"[.{2} [.{} {} ] [.{3} {} {3} ] ]",
		"[.{2} [.{} {} ] [.{3} {} {} ] ]",
	}, shapes(trace))

	tree, trace = tree.Delete(2)
	re.Equal([]StepKind{StealRight, Merge, Remove}, trace.Kinds())
	re.Equal("[.{3} [.{} {} ] [.{} {} ] ]", tree.String())
	re.NoError(tree.Validate())

	// Keyless roots collapse level by level until the tree is empty.
	tree, trace = tree.Delete(3)
	re.Equal([]StepKind{Merge, Merge, Remove}, trace.Kinds())
	re.Equal([]string{"[.{3} {} {} ]", "{3}", EmptyShape}, shapes(trace))
	re.True(tree.Empty())
}

func TestDegreeOneStealsPastEmptyLeaf(t *testing.T) {
	t.Parallel()
	re := require.New(t)

	cmp := func(a, b int) int { return a - b }
	root := NewNode([]int{5},
		NewNode([]int{2}, NewLeaf(1), NewLeaf[int]()),
		NewNode([]int{8}, NewLeaf(7), NewLeaf(9)))
	tree, err := FromNode(1, cmp, root)
	re.NoError(err)

	tree, trace := tree.Delete(5)
	re.Equal([]Step[int]{{Kind: StealLeft, Key: 2}, {Kind: StealLeft, Key: 1}, {Kind: Remove, Key: 1}}, trace.Steps())
	re.Equal([]string{
		"[.{2} [.{2} {1} {} ] [.{8} {7} {9} ] ]",
		"[.{2} [.{1} {1} {} ] [.{8} {7} {9} ] ]",
		"[.{2} [.{1} {} {} ] [.{8} {7} {9} ] ]",
	}, shapes(trace))
	re.Equal([]int{1, 2, 7, 8, 9}, tree.Keys())
	re.NoError(tree.Validate())
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	t.Parallel()
	for degree := 1; degree <= 5; degree++ {
		re := require.New(t)
		rnd := rand.New(rand.NewSource(int64(degree)))
		tree := newIntTree(t, degree)
		var want []int

		// Degree 1 trees grow a level on almost every insert.
		ops := 1500
		if degree == 1 {
			ops = 400
		}
		for op := 0; op < ops; op++ {
			key := rnd.Intn(120)
			var trace Trace[int]
			var next *Tree[int]
			if rnd.Intn(2) == 0 || len(want) == 0 {
				next, trace = tree.Insert(key)
				want = append(want, key)
				slices.Sort(want)
			} else {
				if rnd.Intn(2) == 0 {
					key = want[rnd.Intn(len(want))]
				}
				present := tree.Contains(key)
				next, trace = tree.Delete(key)
				if i := slices.Index(want, key); i >= 0 {
					re.True(present)
					want = slices.Delete(want, i, i+1)
				} else {
					re.False(present)
					re.Equal(tree.String(), next.String())
					re.Len(trace, 1)
				}
			}

			re.NotEmpty(trace)
			re.Equal(next.String(), trace.Result().String())
			for _, s := range trace {
				re.NoError(s.Tree.Validate(), "degree %d after %s", degree, s.Step)
			}
			if len(want) == 0 {
				re.Nil(next.Keys())
			} else {
				re.Equal(want, next.Keys())
			}
			re.Equal(len(want), next.Len())
			tree = next
		}
	}
}
