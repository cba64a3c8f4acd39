package eiforest

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SaveLoad(t *testing.T) {
	forest := makeClusteredForest[float32](t)

	var buf bytes.Buffer
	require.NoError(t, forest.Save(&buf))

	loaded, err := Load[float32](&buf)
	require.NoError(t, err)
	assert.Equal(t, forest, loaded)

	for _, p := range makeClusteredFeatures[float32](100, 12) {
		assert.Equal(t, forest.Score(p), loaded.Score(p))
	}
	assertClusteredAnomalies[float32](t, loaded)
}

func Test_LoadRejectsGarbage(t *testing.T) {
	_, err := Load[float64](bytes.NewReader([]byte("not a forest")))
	assert.Error(t, err)
}

func Test_LoadRejectsEmptyForest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Forest[float64]{Dim: 3, AvgPathLengthC: 1}.Save(&buf))

	_, err := Load[float64](&buf)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func Test_LoadRejectsInvalidPathLength(t *testing.T) {
	forest := makeClusteredForest[float64](t)
	for name, c := range map[string]float64{
		"negative": -1,
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
		"zero":     0,
	} {
		t.Run(name, func(t *testing.T) {
			broken := *forest
			broken.AvgPathLengthC = c

			var buf bytes.Buffer
			require.NoError(t, broken.Save(&buf))
			_, err := Load[float64](&buf)
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func Test_SaveLoadSmallForest(t *testing.T) {
	features := makeClusteredFeatures[float64](40, 2)
	forest, err := Build(context.Background(), features, Options{Trees: 3, SampleSize: 8, ExtensionLevel: 2, Seed: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, forest.Save(&buf))
	loaded, err := Load[float64](&buf)
	require.NoError(t, err)
	for _, p := range features {
		assert.Equal(t, forest.Score(p), loaded.Score(p))
	}
}

func Test_SaveLoadSingleSampleForest(t *testing.T) {
	features := makeClusteredFeatures[float64](10, 1)
	forest, err := Build(context.Background(), features, Options{Trees: 3, SampleSize: 1, Seed: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, forest.Save(&buf))
	loaded, err := Load[float64](&buf)
	require.NoError(t, err)
	assert.Equal(t, 1.0, loaded.Score(features[0]))
}
