package dataset

import "github.com/ar90n/eiforest/linalg"

// SlidingMean smooths features with the mean of every window of consecutive rows. The result
// has len(features)-window+1 rows, none if the window is longer than the input. A window of
// 0 or 1 returns features unchanged.
func SlidingMean[T linalg.Float](features [][]T, window int) [][]T {
	if window <= 1 {
		return features
	}
	if len(features) < window {
		return [][]T{}
	}

	dim := len(features[0])
	acc := make([]float64, dim)
	for _, feature := range features[:window] {
		for j, v := range feature {
			acc[j] += float64(v)
		}
	}

	inv := 1.0 / float64(window)
	ret := make([][]T, 0, len(features)-window+1)
	for i := window; ; i++ {
		mean := make([]T, dim)
		for j := range mean {
			mean[j] = T(acc[j] * inv)
		}
		ret = append(ret, mean)

		if len(features) <= i {
			break
		}
		for j := range acc {
			acc[j] += float64(features[i][j]) - float64(features[i-window][j])
		}
	}

	return ret
}
