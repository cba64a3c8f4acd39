package itree

import "math"

// EulerGamma is the Euler-Mascheroni constant.
const EulerGamma = 0.5772156649

// CFactor returns the average path length of an unsuccessful search in a binary search tree
// built from n points. It is 0 for n <= 1.
func CFactor(n uint) float64 {
	if n <= 1 {
		return 0.0
	}

	fn := float64(n)
	return 2.0*(math.Log(fn-1.0)+EulerGamma) - 2.0*(fn-1.0)/fn
}
