package linalg

import (
	"reflect"

	"golang.org/x/exp/constraints"
)

// Float is the element type of every feature, normal and intercept vector.
type Float interface {
	constraints.Float
}

func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// BitSize returns the width of T in bits, 32 or 64.
func BitSize[T Float]() int {
	var zero T
	return reflect.TypeOf(zero).Bits()
}
