package itree

import (
	"math/rand"

	"github.com/ar90n/eiforest/collection"
	"github.com/ar90n/eiforest/linalg"
	"github.com/cockroachdb/errors"
)

var ErrMalformedTree = errors.New("malformed isolation tree")

// Tree is an isolation tree stored as a node arena. Nodes[0] is the root and children are always
// stored after their parent, so a child index of 0 means "no child".
type Tree[T linalg.Float] struct {
	Nodes []Node[T]
}

// Node is either internal (Left and Right set, Hyperplane drawn) or external (a leaf).
// Size is the number of training samples that reached the node.
type Node[T linalg.Float] struct {
	Hyperplane Hyperplane[T]
	Size       uint
	Left       uint
	Right      uint
}

func (n Node[T]) IsLeaf() bool {
	return n.Left == 0 && n.Right == 0
}

func (t *Tree[T]) addNode(node Node[T]) uint {
	nc := uint(len(t.Nodes))
	t.Nodes = append(t.Nodes, node)

	return nc
}

func (t *Tree[T]) buildSubTree(features [][]T, indice []int, depth uint, b *Builder[T], rng *rand.Rand) uint {
	curIdx := t.addNode(Node[T]{
		Size: uint(len(indice)),
	})

	if b.MaxDepth() <= depth || len(indice) <= 1 {
		return curIdx
	}

	hp := newHyperplane(features, indice, b.ExtensionLevel(), rng)
	t.Nodes[curIdx].Hyperplane = hp

	mid := collection.Partition(indice, func(i int) bool {
		return hp.Side(features[i]) == Right
	})

	left := t.buildSubTree(features, indice[:mid], depth+1, b, rng)
	t.Nodes[curIdx].Left = left

	right := t.buildSubTree(features, indice[mid:], depth+1, b, rng)
	t.Nodes[curIdx].Right = right

	return curIdx
}

func (t Tree[T]) Root() Node[T] {
	return t.Nodes[0]
}

// PathLength returns the number of edges from the root to the leaf reached by feature plus the
// c-factor of that leaf.
func (t Tree[T]) PathLength(feature []T) float64 {
	length := 0.0
	idx := uint(0)
	for {
		node := &t.Nodes[idx]
		if node.IsLeaf() {
			return length + CFactor(node.Size)
		}

		length += 1.0
		if node.Hyperplane.Side(feature) == Left {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// Depth returns the number of edges on the longest root to leaf path.
func (t Tree[T]) Depth() uint {
	type item struct {
		idx   uint
		depth uint
	}

	maxDepth := uint(0)
	stack := []item{{idx: 0, depth: 0}}
	for 0 < len(stack) {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := t.Nodes[cur.idx]
		if node.IsLeaf() {
			maxDepth = linalg.Max(maxDepth, cur.depth)
			continue
		}
		stack = append(stack, item{idx: node.Left, depth: cur.depth + 1}, item{idx: node.Right, depth: cur.depth + 1})
	}

	return maxDepth
}

// Leaves returns the number of external nodes.
func (t Tree[T]) Leaves() uint {
	n := uint(0)
	for _, node := range t.Nodes {
		if node.IsLeaf() {
			n++
		}
	}
	return n
}

// Validate checks the structure of a tree that did not come from a Builder, e.g. a decoded one.
func (t Tree[T]) Validate(dim uint) error {
	if len(t.Nodes) == 0 {
		return errors.Wrap(ErrMalformedTree, "tree has no nodes")
	}

	nNodes := uint(len(t.Nodes))
	parented := make([]bool, nNodes)
	for i, node := range t.Nodes {
		i := uint(i)
		if node.IsLeaf() {
			continue
		}

		if node.Left <= i || node.Right <= i || nNodes <= node.Left || nNodes <= node.Right || node.Left == node.Right {
			return errors.Wrapf(ErrMalformedTree, "node %d has invalid children (%d, %d)", i, node.Left, node.Right)
		}
		for _, child := range [...]uint{node.Left, node.Right} {
			if parented[child] {
				return errors.Wrapf(ErrMalformedTree, "node %d is a child of more than one node", child)
			}
			parented[child] = true
		}
		if uint(len(node.Hyperplane.Normal)) != dim || uint(len(node.Hyperplane.Intercept)) != dim {
			return errors.Wrapf(ErrMalformedTree, "node %d hyperplane dimension differs from %d", i, dim)
		}
		if node.Size != t.Nodes[node.Left].Size+t.Nodes[node.Right].Size {
			return errors.Wrapf(ErrMalformedTree, "node %d size %d is not the sum of its children", i, node.Size)
		}
	}

	for i := uint(1); i < nNodes; i++ {
		if !parented[i] {
			return errors.Wrapf(ErrMalformedTree, "node %d is unreachable from the root", i)
		}
	}

	return nil
}
