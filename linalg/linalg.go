package linalg

// SubDot returns (x - p) . n without allocating the difference vector.
func SubDot[T Float](x, p, n []T) T {
	dot := T(0)
	for i := 0; i < len(x); i++ {
		dot += (x[i] - p[i]) * n[i]
	}

	return dot
}

// Bounds returns the per-dimension minimum and maximum over the features selected by indice.
// indice must not be empty.
func Bounds[T Float](features [][]T, indice []int) (mins, maxs []T) {
	first := features[indice[0]]
	mins = append([]T{}, first...)
	maxs = append([]T{}, first...)
	for _, k := range indice[1:] {
		for j, v := range features[k] {
			mins[j] = Min(mins[j], v)
			maxs[j] = Max(maxs[j], v)
		}
	}

	return mins, maxs
}

// CountNonZero returns the number of coordinates of x that are not exactly zero.
func CountNonZero[T Float](x []T) int {
	n := 0
	for _, v := range x {
		if v != 0 {
			n++
		}
	}

	return n
}
