package main

import (
	"github.com/ar90n/eiforest"
	"github.com/ar90n/eiforest/linalg"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func trainAction(c *cli.Context) error {
	return dispatch(c, train[float32], train[float64])
}

func train[T linalg.Float](c *cli.Context) error {
	stop, err := startProfile(c)
	if err != nil {
		return err
	}
	defer stop()

	opts, err := optionsFromFlags(c)
	if err != nil {
		return err
	}

	rows, err := readRows[T](c)
	if err != nil {
		return err
	}

	logrus.WithField("params", opts.GetPrameterString()).Info("building forest...")
	forest, err := eiforest.Build(c.Context, rows, opts)
	if err != nil {
		return err
	}
	logrus.Info("done")

	return saveForest(c.Context, c, forest)
}
