package itree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CFactor(t *testing.T) {
	type TestCase struct {
		N    uint
		Want float64
	}

	for _, tc := range []TestCase{
		{N: 0, Want: 0.0},
		{N: 1, Want: 0.0},
		{N: 2, Want: 2.0*EulerGamma - 1.0},
		{N: 256, Want: 10.244770920},
	} {
		assert.InDelta(t, tc.Want, CFactor(tc.N), 1e-8, "c(%d)", tc.N)
	}
}

func Test_CFactorIsMonotonic(t *testing.T) {
	prev := CFactor(2)
	for n := uint(3); n < 5000; n++ {
		cur := CFactor(n)
		assert.Less(t, prev, cur, "c(%d) must exceed c(%d)", n, n-1)
		prev = cur
	}
}
