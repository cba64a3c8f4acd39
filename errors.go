package eiforest

import "github.com/cockroachdb/errors"

var (
	ErrInsufficientTrainingData        = errors.New("insufficient training data")
	ErrExtensionLevelExceedsDimensions = errors.New("extension level has to be less than the number of dimensions")
	ErrInvalidOptions                  = errors.New("invalid forest options")
	ErrInvalidFeatureDim               = errors.New("invalid feature dim")
	ErrInvalidModel                    = errors.New("invalid forest model")
)
