package itree

import (
	"fmt"
	"math/rand"

	"github.com/ar90n/eiforest/linalg"
)

const defaultMaxDepth = 8

type Builder[T linalg.Float] struct {
	maxDepth       uint
	extensionLevel uint
}

func NewBuilder[T linalg.Float]() *Builder[T] {
	return &Builder[T]{
		maxDepth: defaultMaxDepth,
	}
}

func (b *Builder[T]) SetMaxDepth(maxDepth uint) *Builder[T] {
	b.maxDepth = maxDepth
	return b
}

// SetExtensionLevel sets how many coordinates beyond the first one a split normal may use.
// 0 gives axis aligned splits, dim-1 fully oblique ones.
func (b *Builder[T]) SetExtensionLevel(extensionLevel uint) *Builder[T] {
	b.extensionLevel = extensionLevel
	return b
}

func (b Builder[T]) MaxDepth() uint {
	return b.maxDepth
}

func (b Builder[T]) ExtensionLevel() uint {
	return b.extensionLevel
}

func (b Builder[T]) GetPrameterString() string {
	return fmt.Sprintf("maxDepth=%d_extensionLevel=%d", b.maxDepth, b.extensionLevel)
}

// Build grows a tree over the features selected by indice. indice is reordered in place and every
// random draw comes from rng, so a tree is reproducible from the seed of rng.
func (b *Builder[T]) Build(features [][]T, indice []int, rng *rand.Rand) Tree[T] {
	tree := Tree[T]{
		Nodes: make([]Node[T], 0, 2*len(indice)),
	}
	tree.buildSubTree(features, indice, 0, b, rng)

	return tree
}
