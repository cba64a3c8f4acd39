package eiforest

import (
	"context"
	"math/rand"
	"testing"

	"github.com/ar90n/eiforest/linalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeClusteredFeatures draws x and y from [-4, 4) and z from [10, 50).
func makeClusteredFeatures[T linalg.Float](n int, seed int64) [][]T {
	rng := rand.New(rand.NewSource(seed))
	features := make([][]T, n)
	for i := range features {
		features[i] = []T{
			T(-4.0 + 8.0*rng.Float64()),
			T(-4.0 + 8.0*rng.Float64()),
			T(10.0 + 40.0*rng.Float64()),
		}
	}
	return features
}

func makeClusteredForest[T linalg.Float](t *testing.T) *Forest[T] {
	t.Helper()

	opts := DefaultOptions()
	opts.SetTrees(150).SetSampleSize(200).SetExtensionLevel(1).SetSeed(1234)
	forest, err := Build(context.Background(), makeClusteredFeatures[T](6000, 99), opts)
	require.NoError(t, err)
	return forest
}

func assertClusteredAnomalies[T linalg.Float](t *testing.T, forest Scorer[T]) {
	t.Helper()

	for _, p := range [][]T{{1.0, 3.0, 25.0}, {1.0, 3.0, 35.0}} {
		assert.Less(t, forest.Score(p), 0.5, "%v must not be an anomaly", p)
	}
	for _, p := range [][]T{{-12.0, 6.0, 25.0}, {-1.0, 2.0, 60.0}, {-1.0, 2.0, 0.0}} {
		assert.Greater(t, forest.Score(p), 0.5, "%v must be an anomaly", p)
	}
}

func Test_ScoreClustered(t *testing.T) {
	t.Run("float64", func(t *testing.T) {
		assertClusteredAnomalies[float64](t, makeClusteredForest[float64](t))
	})
	t.Run("float32", func(t *testing.T) {
		assertClusteredAnomalies[float32](t, makeClusteredForest[float32](t))
	})
}

func Test_BuildValidation(t *testing.T) {
	features := makeClusteredFeatures[float64](10, 1)

	type TestCase struct {
		Name     string
		Features [][]float64
		Opts     Options
		Err      error
	}

	for _, tc := range []TestCase{
		{
			Name:     "sample size exceeds training data",
			Features: features,
			Opts:     Options{Trees: 1, SampleSize: 11},
			Err:      ErrInsufficientTrainingData,
		},
		{
			Name:     "no training data",
			Features: nil,
			Opts:     Options{Trees: 1, SampleSize: 1},
			Err:      ErrInsufficientTrainingData,
		},
		{
			Name:     "zero dimension",
			Features: [][]float64{{}, {}},
			Opts:     Options{Trees: 1, SampleSize: 2},
			Err:      ErrInsufficientTrainingData,
		},
		{
			Name:     "extension level exceeds dimensions",
			Features: features,
			Opts:     Options{Trees: 1, SampleSize: 5, ExtensionLevel: 3},
			Err:      ErrExtensionLevelExceedsDimensions,
		},
		{
			Name:     "ragged training data",
			Features: [][]float64{{1, 2}, {1, 2, 3}},
			Opts:     Options{Trees: 1, SampleSize: 2},
			Err:      ErrInvalidFeatureDim,
		},
		{
			Name:     "no trees",
			Features: features,
			Opts:     Options{Trees: 0, SampleSize: 5},
			Err:      ErrInvalidOptions,
		},
		{
			Name:     "zero sample size",
			Features: features,
			Opts:     Options{Trees: 1, SampleSize: 0},
			Err:      ErrInvalidOptions,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			for _, seed := range []int64{1, 2, 3} {
				tc.Opts.Seed = seed
				forest, err := Build(context.Background(), tc.Features, tc.Opts)
				assert.ErrorIs(t, err, tc.Err)
				assert.Nil(t, forest)
			}
		})
	}
}

func Test_BuildExtensionLevelBoundary(t *testing.T) {
	features := makeClusteredFeatures[float64](100, 5)
	opts := Options{Trees: 4, SampleSize: 32, ExtensionLevel: 2, Seed: 8}
	forest, err := Build(context.Background(), features, opts)
	require.NoError(t, err)
	assert.Equal(t, uint(3), forest.Dim)
}

func Test_BuildRespectsMaxTreeDepth(t *testing.T) {
	features := makeClusteredFeatures[float64](1000, 3)

	opts := Options{Trees: 20, SampleSize: 256, ExtensionLevel: 2, Seed: 77}
	forest, err := Build(context.Background(), features, opts)
	require.NoError(t, err)
	for _, tree := range forest.Trees {
		assert.LessOrEqual(t, tree.Depth(), uint(8))
	}

	opts.SetMaxTreeDepth(3)
	forest, err = Build(context.Background(), features, opts)
	require.NoError(t, err)
	for _, tree := range forest.Trees {
		assert.LessOrEqual(t, tree.Depth(), uint(3))
	}
}

func Test_BuildWholeTrainingSet(t *testing.T) {
	features := makeClusteredFeatures[float64](64, 17)

	opts := Options{Trees: 10, SampleSize: 64, Seed: 5}
	forest, err := Build(context.Background(), features, opts)
	require.NoError(t, err)
	require.Len(t, forest.Trees, 10)
	for _, tree := range forest.Trees {
		assert.Equal(t, uint(64), tree.Root().Size)
	}
}

func Test_BuildAxisAligned(t *testing.T) {
	features := makeClusteredFeatures[float64](500, 23)
	forest, err := Build(context.Background(), features, Options{Trees: 10, SampleSize: 128, Seed: 2})
	require.NoError(t, err)

	for _, tree := range forest.Trees {
		for _, node := range tree.Nodes {
			if node.IsLeaf() {
				continue
			}
			assert.Equal(t, 1, linalg.CountNonZero(node.Hyperplane.Normal))
		}
	}
}

func Test_BuildIsReproducible(t *testing.T) {
	features := makeClusteredFeatures[float64](500, 31)
	opts := Options{Trees: 16, SampleSize: 64, ExtensionLevel: 2, Seed: 4242}

	lhs, err := Build(context.Background(), features, *opts.SetMaxGoroutines(1))
	require.NoError(t, err)
	rhs, err := Build(context.Background(), features, *opts.SetMaxGoroutines(8))
	require.NoError(t, err)
	assert.Equal(t, lhs, rhs)
}

func Test_BuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	forest, err := Build(ctx, makeClusteredFeatures[float64](100, 1), Options{Trees: 4, SampleSize: 16, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, forest)
}

func Test_ScoreIsDeterministic(t *testing.T) {
	forest := makeClusteredForest[float64](t)

	points := makeClusteredFeatures[float64](50, 3)
	points = append(points, []float64{100, -100, 1000})
	for _, p := range points {
		first := forest.Score(p)
		assert.Greater(t, first, 0.0)
		assert.LessOrEqual(t, first, 1.0)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, forest.Score(p))
		}
	}
}

func Test_ScoreAll(t *testing.T) {
	forest := makeClusteredForest[float64](t)
	points := makeClusteredFeatures[float64](1000, 8)

	scores, err := forest.ScoreAll(context.Background(), points, 4)
	require.NoError(t, err)
	require.Len(t, scores, len(points))
	for i, p := range points {
		assert.Equal(t, forest.Score(p), scores[i])
	}

	_, err = forest.ScoreAll(context.Background(), [][]float64{{1, 2}}, 0)
	assert.ErrorIs(t, err, ErrInvalidFeatureDim)
}

func Test_ScoreContext(t *testing.T) {
	forest := makeClusteredForest[float64](t)
	p := []float64{-12.0, 6.0, 25.0}

	score, used := forest.ScoreContext(context.Background(), p)
	assert.Equal(t, uint(len(forest.Trees)), used)
	assert.Equal(t, forest.Score(p), score)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	score, used = forest.ScoreContext(ctx, p)
	assert.Equal(t, uint(0), used)
	assert.Equal(t, 0.0, score)
}

func Test_ScoreMismatchedDimPanics(t *testing.T) {
	forest := makeClusteredForest[float64](t)
	assert.Panics(t, func() { forest.Score([]float64{1, 2}) })
}

func Test_ScoreSingleSample(t *testing.T) {
	features := makeClusteredFeatures[float64](10, 1)
	forest, err := Build(context.Background(), features, Options{Trees: 3, SampleSize: 1, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, forest.AvgPathLengthC)
	assert.Equal(t, 1.0, forest.Score([]float64{0, 0, 0}))
}

func Test_Stats(t *testing.T) {
	features := makeClusteredFeatures[float64](300, 4)
	forest, err := Build(context.Background(), features, Options{Trees: 5, SampleSize: 100, ExtensionLevel: 1, Seed: 9})
	require.NoError(t, err)

	stats := forest.Stats()
	assert.Equal(t, uint(5), stats.Trees)
	assert.Equal(t, uint(3), stats.Dim)
	assert.LessOrEqual(t, stats.MinDepth, stats.MaxDepth)
	assert.LessOrEqual(t, stats.MaxDepth, uint(7))
	assert.Equal(t, stats.Nodes, 2*stats.Leaves-stats.Trees)
	assert.Equal(t, uint(1), stats.ExtensionLevel)
}
