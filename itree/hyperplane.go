package itree

import (
	"math/rand"

	"github.com/ar90n/eiforest/linalg"
)

// Direction is the side of a hyperplane a point falls on.
type Direction uint8

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Side evaluates (sample - intercept) . normal and returns Left when it is not positive.
func Side[T linalg.Float](sample, normal, intercept []T) Direction {
	if linalg.SubDot(sample, intercept, normal) <= 0 {
		return Left
	}
	return Right
}

// Hyperplane is the split of an internal node, given by its normal vector and a point on it.
type Hyperplane[T linalg.Float] struct {
	Normal    []T
	Intercept []T
}

func (hp Hyperplane[T]) Side(feature []T) Direction {
	return Side(feature, hp.Normal, hp.Intercept)
}

// newHyperplane draws a random hyperplane through the bounding box of the selected features.
// Only extensionLevel+1 coordinates of the normal are left non-zero.
func newHyperplane[T linalg.Float](features [][]T, indice []int, extensionLevel uint, rng *rand.Rand) Hyperplane[T] {
	mins, maxs := linalg.Bounds(features, indice)
	dim := len(mins)

	intercept := make([]T, dim)
	for i := range intercept {
		lo, hi := float64(mins[i]), float64(maxs[i])
		intercept[i] = T(lo + rng.Float64()*(hi-lo))
	}

	normal := make([]T, dim)
	for i := range normal {
		normal[i] = T(rng.NormFloat64())
	}

	if zeros := dim - int(extensionLevel) - 1; 0 < zeros {
		for _, k := range rng.Perm(dim)[:zeros] {
			normal[k] = 0
		}
	}

	return Hyperplane[T]{
		Normal:    normal,
		Intercept: intercept,
	}
}
