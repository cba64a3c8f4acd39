// Package eiforest implements the Extended Isolation Forest anomaly detector.
//
// A forest is an ensemble of randomized isolation trees. Every internal node splits the samples
// reaching it with a random hyperplane whose normal has ExtensionLevel+1 non-zero coordinates,
// so ExtensionLevel 0 is the classic axis aligned isolation forest. Points that are isolated by
// short paths receive scores close to 1.
//
//	opts := eiforest.DefaultOptions()
//	opts.SetTrees(100).SetSampleSize(256).SetExtensionLevel(1)
//	forest, err := eiforest.Build(ctx, features, opts)
//	if err != nil {
//		return err
//	}
//	score := forest.Score(point)
package eiforest

import (
	"context"

	"github.com/ar90n/eiforest/linalg"
)

type Scorer[T linalg.Float] interface {
	Score(feature []T) float64
	ScoreAll(ctx context.Context, features [][]T, maxGoroutines uint) ([]float64, error)
}
