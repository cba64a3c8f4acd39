package itree

import (
	"math/rand"
	"testing"

	"github.com/ar90n/eiforest/linalg"
	"github.com/stretchr/testify/assert"
)

func Test_Side(t *testing.T) {
	type TestCase struct {
		Name      string
		Sample    []float64
		Normal    []float64
		Intercept []float64
		Want      Direction
	}

	for _, tc := range []TestCase{
		{
			Name:      "negative side",
			Sample:    []float64{-1, 0},
			Normal:    []float64{1, 0},
			Intercept: []float64{0, 0},
			Want:      Left,
		},
		{
			Name:      "on the plane",
			Sample:    []float64{2, 5},
			Normal:    []float64{1, 0},
			Intercept: []float64{2, -3},
			Want:      Left,
		},
		{
			Name:      "positive side",
			Sample:    []float64{1, 1},
			Normal:    []float64{0.5, 0.5},
			Intercept: []float64{0, 0},
			Want:      Right,
		},
		{
			Name:      "zero normal",
			Sample:    []float64{100, -100},
			Normal:    []float64{0, 0},
			Intercept: []float64{0, 0},
			Want:      Left,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, Side(tc.Sample, tc.Normal, tc.Intercept))

			hp := Hyperplane[float64]{Normal: tc.Normal, Intercept: tc.Intercept}
			assert.Equal(t, tc.Want, hp.Side(tc.Sample))
		})
	}
}

func Test_NewHyperplane(t *testing.T) {
	features := [][]float32{
		{0, 10, 5, -1},
		{1, 20, 5, -2},
		{2, 30, 5, -3},
	}
	indice := []int{0, 1, 2}
	dim := len(features[0])

	rng := rand.New(rand.NewSource(1))
	for extensionLevel := uint(0); extensionLevel < uint(dim); extensionLevel++ {
		for i := 0; i < 100; i++ {
			hp := newHyperplane(features, indice, extensionLevel, rng)
			assert.Len(t, hp.Normal, dim)
			assert.Len(t, hp.Intercept, dim)
			assert.Equal(t, int(extensionLevel)+1, linalg.CountNonZero(hp.Normal))

			mins, maxs := linalg.Bounds(features, indice)
			for j := range hp.Intercept {
				assert.GreaterOrEqual(t, hp.Intercept[j], mins[j])
				assert.LessOrEqual(t, hp.Intercept[j], maxs[j])
			}
			// degenerate dimension
			assert.Equal(t, float32(5), hp.Intercept[2])
		}
	}
}
