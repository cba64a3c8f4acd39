package eiforest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/ar90n/eiforest/itree"
	"github.com/ar90n/eiforest/linalg"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

const scoreChunkSize = 256

// Forest is an Extended Isolation Forest. It is immutable once built, so it can be scored from
// any number of goroutines without locking.
type Forest[T linalg.Float] struct {
	Dim            uint
	AvgPathLengthC float64
	Trees          []itree.Tree[T]
}

var _ Scorer[float32] = (*Forest[float32])(nil)

// Build grows opts.Trees isolation trees, each from its own subsample of features.
// The options are validated against features before any random number is drawn; on failure no
// forest is returned.
func Build[T linalg.Float](ctx context.Context, features [][]T, opts Options) (*Forest[T], error) {
	dim, err := validateOptions(features, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	maxDepth := opts.ResolvedMaxTreeDepth()
	builder := itree.NewBuilder[T]().
		SetMaxDepth(maxDepth).
		SetExtensionLevel(opts.ExtensionLevel)

	log.WithFields(logrus.Fields{
		"dim":        dim,
		"seed":       seed,
		"trees":      opts.Trees,
		"sampleSize": opts.SampleSize,
		"tree":       builder.GetPrameterString(),
	}).Debug("building forest")
	begin := time.Now()

	// one generator per tree keeps the result independent of scheduling
	master := rand.New(rand.NewSource(seed))
	seeds := make([]int64, opts.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]itree.Tree[T], opts.Trees)
	p := pool.New().WithMaxGoroutines(opts.procNum()).WithContext(ctx).WithCancelOnError()
	for i := range trees {
		i := i
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(seeds[i]))
			indice := sampleIndice(len(features), int(opts.SampleSize), rng)
			trees[i] = builder.Build(features, indice, rng)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, errors.Wrap(err, "build isolation trees")
	}

	log.WithField("elapsed", time.Since(begin)).Debug("forest built")

	return &Forest[T]{
		Dim:            dim,
		AvgPathLengthC: itree.CFactor(opts.SampleSize),
		Trees:          trees,
	}, nil
}

// sampleIndice draws k distinct indices out of [0, n) with a partial Fisher-Yates shuffle.
func sampleIndice(n, k int, rng *rand.Rand) []int {
	indice := make([]int, n)
	for i := range indice {
		indice[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		indice[i], indice[j] = indice[j], indice[i]
	}

	return indice[:k]
}

// Score returns the anomaly score of feature in (0, 1]. Scores close to 1 mark anomalies,
// scores around or below 0.5 mark points consistent with the training data.
// feature must have Dim elements.
func (f Forest[T]) Score(feature []T) float64 {
	f.mustMatchDim(feature)

	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].PathLength(feature)
	}

	return f.normalize(sum, len(f.Trees))
}

// ScoreContext scores feature with as many trees as it can visit before ctx is done and returns
// the score together with the number of trees used. When no tree was used the score is 0.
func (f Forest[T]) ScoreContext(ctx context.Context, feature []T) (float64, uint) {
	f.mustMatchDim(feature)

	sum := 0.0
	used := 0
Loop:
	for i := range f.Trees {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		sum += f.Trees[i].PathLength(feature)
		used++
	}

	if used == 0 {
		return 0.0, 0
	}
	return f.normalize(sum, used), uint(used)
}

// ScoreAll scores features in parallel. The result is in the order of features.
func (f Forest[T]) ScoreAll(ctx context.Context, features [][]T, maxGoroutines uint) ([]float64, error) {
	for i, feature := range features {
		if f.Dim != 0 && uint(len(feature)) != f.Dim {
			return nil, errors.Wrapf(ErrInvalidFeatureDim, "point %d has %d dimensions, want %d", i, len(feature), f.Dim)
		}
	}

	scores := make([]float64, len(features))
	opts := Options{MaxGoroutines: maxGoroutines}
	p := pool.New().WithMaxGoroutines(opts.procNum()).WithContext(ctx)
	for begin := 0; begin < len(features); begin += scoreChunkSize {
		begin := begin
		end := linalg.Min(begin+scoreChunkSize, len(features))
		p.Go(func(ctx context.Context) error {
			for i := begin; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				scores[i] = f.Score(features[i])
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

func (f Forest[T]) normalize(sum float64, trees int) float64 {
	eh := sum / float64(trees)
	if f.AvgPathLengthC == 0.0 {
		// a sample size of one isolates every point at the root
		return 1.0
	}

	return math.Pow(2.0, -eh/f.AvgPathLengthC)
}

func (f Forest[T]) mustMatchDim(feature []T) {
	if f.Dim != 0 && uint(len(feature)) != f.Dim {
		panic(fmt.Sprintf("eiforest: point has %d dimensions, forest has %d", len(feature), f.Dim))
	}
}

// Stats summarizes the shape of a forest.
type Stats struct {
	Trees          uint
	Dim            uint
	AvgPathLengthC float64
	Nodes          uint
	Leaves         uint
	MinDepth       uint
	MaxDepth       uint
	MeanDepth      float64

	// ExtensionLevel is inferred from the split normals: one less than the largest number of
	// non-zero coordinates of any normal.
	ExtensionLevel uint
}

func (f Forest[T]) Stats() Stats {
	stats := Stats{
		Trees:          uint(len(f.Trees)),
		Dim:            f.Dim,
		AvgPathLengthC: f.AvgPathLengthC,
		MinDepth:       math.MaxUint,
	}

	for i := range f.Trees {
		depth := f.Trees[i].Depth()
		stats.Nodes += uint(len(f.Trees[i].Nodes))
		stats.Leaves += f.Trees[i].Leaves()
		stats.MinDepth = linalg.Min(stats.MinDepth, depth)
		stats.MaxDepth = linalg.Max(stats.MaxDepth, depth)
		stats.MeanDepth += float64(depth)

		for _, node := range f.Trees[i].Nodes {
			if nz := linalg.CountNonZero(node.Hyperplane.Normal); !node.IsLeaf() && 0 < nz {
				stats.ExtensionLevel = linalg.Max(stats.ExtensionLevel, uint(nz-1))
			}
		}
	}

	if len(f.Trees) == 0 {
		stats.MinDepth = 0
		return stats
	}
	stats.MeanDepth /= float64(len(f.Trees))
	return stats
}

func (f Forest[T]) validate() error {
	if len(f.Trees) == 0 {
		return errors.Wrap(ErrInvalidModel, "forest has no trees")
	}
	c := f.AvgPathLengthC
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0.0 {
		return errors.Wrapf(ErrInvalidModel, "average path length %v is not a finite non-negative number", c)
	}

	singleLeaves := true
	for i := range f.Trees {
		if err := f.Trees[i].Validate(f.Dim); err != nil {
			return errors.Mark(errors.Wrapf(err, "tree %d", i), ErrInvalidModel)
		}
		singleLeaves = singleLeaves && len(f.Trees[i].Nodes) == 1
	}

	// only a sample size of one yields c == 0, and it never splits
	if c == 0.0 && !singleLeaves {
		return errors.Wrap(ErrInvalidModel, "average path length is 0 but trees split")
	}

	return nil
}
