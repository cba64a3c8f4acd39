package eiforest

import (
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultTrees      = 20
	defaultSampleSize = 20
)

// Options controls the construction of a Forest.
type Options struct {
	// Trees is the number of isolation trees in the ensemble.
	Trees uint `yaml:"trees"`

	// SampleSize is the number of training points drawn, without replacement, for every tree.
	// It must not exceed the number of training points.
	SampleSize uint `yaml:"sampleSize"`

	// MaxTreeDepth caps the depth of every tree. When nil it is ceil(log2(SampleSize)).
	MaxTreeDepth *uint `yaml:"maxTreeDepth,omitempty"`

	// ExtensionLevel is the number of extra degrees of freedom of a split hyperplane and must be
	// less than the dimension of the training data. 0 gives the classic axis aligned forest.
	ExtensionLevel uint `yaml:"extensionLevel"`

	// Seed seeds the random source of the build. 0 picks a seed from the clock.
	Seed int64 `yaml:"seed"`

	// MaxGoroutines bounds the build and batch scoring parallelism. 0 means runtime.NumCPU().
	MaxGoroutines uint `yaml:"maxGoroutines"`
}

func DefaultOptions() Options {
	return Options{
		Trees:      defaultTrees,
		SampleSize: defaultSampleSize,
	}
}

// LoadOptions reads options from a yaml document. Fields absent from the document keep
// their default value.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.NewDecoder(r).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, errors.Wrap(err, "decode forest options")
	}

	return opts, nil
}

func (o *Options) SetTrees(trees uint) *Options {
	o.Trees = trees
	return o
}

func (o *Options) SetSampleSize(sampleSize uint) *Options {
	o.SampleSize = sampleSize
	return o
}

func (o *Options) SetMaxTreeDepth(maxTreeDepth uint) *Options {
	o.MaxTreeDepth = &maxTreeDepth
	return o
}

func (o *Options) SetExtensionLevel(extensionLevel uint) *Options {
	o.ExtensionLevel = extensionLevel
	return o
}

func (o *Options) SetSeed(seed int64) *Options {
	o.Seed = seed
	return o
}

func (o *Options) SetMaxGoroutines(maxGoroutines uint) *Options {
	o.MaxGoroutines = maxGoroutines
	return o
}

// ResolvedMaxTreeDepth returns MaxTreeDepth or its default derived from SampleSize.
func (o Options) ResolvedMaxTreeDepth() uint {
	if o.MaxTreeDepth != nil {
		return *o.MaxTreeDepth
	}
	if o.SampleSize <= 1 {
		return 0
	}

	return uint(math.Ceil(math.Log2(float64(o.SampleSize))))
}

func (o Options) GetPrameterString() string {
	return fmt.Sprintf("trees=%d_sampleSize=%d_maxTreeDepth=%d_extensionLevel=%d", o.Trees, o.SampleSize, o.ResolvedMaxTreeDepth(), o.ExtensionLevel)
}

func (o Options) procNum() int {
	if o.MaxGoroutines == 0 {
		return runtime.NumCPU()
	}

	return int(o.MaxGoroutines)
}

// validate checks the options against the training data and returns its dimension.
func validateOptions[T any](features [][]T, o Options) (uint, error) {
	if o.Trees == 0 {
		return 0, errors.Wrap(ErrInvalidOptions, "trees must be positive")
	}
	if o.SampleSize == 0 {
		return 0, errors.Wrap(ErrInvalidOptions, "sample size must be positive")
	}

	if uint(len(features)) < o.SampleSize {
		return 0, errors.Wrapf(ErrInsufficientTrainingData, "%d training points for sample size %d", len(features), o.SampleSize)
	}
	dim := uint(len(features[0]))
	if dim == 0 {
		return 0, errors.Wrap(ErrInsufficientTrainingData, "training points have no dimensions")
	}
	for i, feature := range features {
		if uint(len(feature)) != dim {
			return 0, errors.Wrapf(ErrInvalidFeatureDim, "training point %d has %d dimensions, want %d", i, len(feature), dim)
		}
	}

	if dim-1 < o.ExtensionLevel {
		return 0, errors.Wrapf(ErrExtensionLevelExceedsDimensions, "extension level %d for %d dimensions", o.ExtensionLevel, dim)
	}

	return dim, nil
}
