package eiforest

import (
	"encoding/gob"
	"io"

	"github.com/ar90n/eiforest/linalg"
	"github.com/cockroachdb/errors"
)

func saveModel[T any](model *T, w io.Writer) error {
	return gob.NewEncoder(w).Encode(model)
}

func loadModel[T any](r io.Reader) (ret T, _ error) {
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&ret); err != nil {
		return ret, err
	}

	return ret, nil
}

// Save writes the forest in gob encoding.
func (f Forest[T]) Save(w io.Writer) error {
	if err := saveModel(&f, w); err != nil {
		return errors.Wrap(err, "save forest")
	}
	return nil
}

// Load reads a forest written by Save. The element type T must match the saved one.
func Load[T linalg.Float](r io.Reader) (*Forest[T], error) {
	forest, err := loadModel[Forest[T]](r)
	if err != nil {
		return nil, errors.Wrap(err, "load forest")
	}
	if err := forest.validate(); err != nil {
		return nil, err
	}

	return &forest, nil
}
