package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/ar90n/eiforest"
	"github.com/ar90n/eiforest/dataset"
	"github.com/ar90n/eiforest/linalg"
	"github.com/ar90n/eiforest/store"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var errUnknownDType = errors.New("unknown dtype")

// dispatch runs the float32 or float64 instantiation of an action according to --dtype.
func dispatch(c *cli.Context, f32 func(*cli.Context) error, f64 func(*cli.Context) error) error {
	switch dtype := c.String("dtype"); dtype {
	case "float32":
		return f32(c)
	case "float64":
		return f64(c)
	default:
		return errors.Wrapf(errUnknownDType, "%q", dtype)
	}
}

func startProfile(c *cli.Context) (func(), error) {
	name := c.String("profile-output")
	if name == "" {
		return func() {}, nil
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}

	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func readRows[T linalg.Float](c *cli.Context) ([][]T, error) {
	columns, err := dataset.ParseColumns(c.String("columns"))
	if err != nil {
		return nil, err
	}

	logrus.WithField("input", c.String("input")).Info("reading data...")
	rows, err := dataset.ReadCSVFile[T](c.String("input"), dataset.CSVOptions{
		Columns:    columns,
		SkipHeader: c.Bool("skip-header"),
	})
	if err != nil {
		return nil, err
	}

	if window := c.Int("smoothing"); 1 < window {
		rows = dataset.SlidingMean(rows, window)
		logrus.WithField("window", window).Debug("rows smoothed")
	}
	logrus.WithField("rows", len(rows)).Info("done")

	return rows, nil
}

func optionsFromFlags(c *cli.Context) (eiforest.Options, error) {
	opts := eiforest.DefaultOptions()
	if path := c.String("config"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return opts, err
		}
		defer f.Close()

		if opts, err = eiforest.LoadOptions(f); err != nil {
			return opts, errors.Wrapf(err, "load %s", path)
		}
	}

	if c.IsSet("trees") {
		opts.SetTrees(c.Uint("trees"))
	}
	if c.IsSet("sample-size") {
		opts.SetSampleSize(c.Uint("sample-size"))
	}
	if c.IsSet("max-depth") {
		opts.SetMaxTreeDepth(c.Uint("max-depth"))
	}
	if c.IsSet("extension-level") {
		opts.SetExtensionLevel(c.Uint("extension-level"))
	}
	if c.IsSet("seed") {
		opts.SetSeed(c.Int64("seed"))
	}
	if c.IsSet("max-goroutines") {
		opts.SetMaxGoroutines(c.Uint("max-goroutines"))
	}

	return opts, nil
}

func openStore(c *cli.Context) (*store.SQLiteStore, error) {
	dsn := c.String("store")
	if dsn == "" {
		return nil, errors.New("--store is required")
	}
	return store.Open(c.Context, dsn)
}

func loadForest[T linalg.Float](c *cli.Context) (*eiforest.Forest[T], error) {
	if c.String("store") != "" {
		s, err := openStore(c)
		if err != nil {
			return nil, err
		}
		defer s.Close()

		return store.Get[T](c.Context, s, c.String("name"))
	}

	path := c.String("model")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeForest[T](f, isJSON(path))
}

func decodeForest[T linalg.Float](r io.Reader, asJSON bool) (*eiforest.Forest[T], error) {
	if !asJSON {
		return eiforest.Load[T](r)
	}

	forest := &eiforest.Forest[T]{}
	if err := json.NewDecoder(r).Decode(forest); err != nil {
		return nil, err
	}
	return forest, nil
}

func saveForest[T linalg.Float](ctx context.Context, c *cli.Context, forest *eiforest.Forest[T]) error {
	if c.String("store") != "" {
		s, err := openStore(c)
		if err != nil {
			return err
		}
		defer s.Close()

		name := c.String("name")
		if err := store.Put(ctx, s, name, forest); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"store": c.String("store"), "name": name}).Info("model stored")
		return nil
	}

	path := c.String("model")
	if err := writeForestFile(path, forest); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	logrus.WithField("model", path).Info("model saved")
	return nil
}

// writeForestFile writes forest to path, as json when the path ends with .json.
func writeForestFile[T linalg.Float](path string, forest *eiforest.Forest[T]) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return encodeForest(f, forest, isJSON(path))
}

func encodeForest[T linalg.Float](w io.Writer, forest *eiforest.Forest[T], asJSON bool) error {
	if !asJSON {
		return forest.Save(w)
	}
	return json.NewEncoder(w).Encode(forest)
}

func printStats(w io.Writer, stats eiforest.Stats) {
	fmt.Fprintf(w, "trees:\t%d\n", stats.Trees)
	fmt.Fprintf(w, "dim:\t%d\n", stats.Dim)
	fmt.Fprintf(w, "c:\t%.6f\n", stats.AvgPathLengthC)
	fmt.Fprintf(w, "nodes:\t%d\n", stats.Nodes)
	fmt.Fprintf(w, "leaves:\t%d\n", stats.Leaves)
	fmt.Fprintf(w, "extension level:\t%d\n", stats.ExtensionLevel)
	fmt.Fprintf(w, "depth:\tmin=%d max=%d mean=%.2f\n", stats.MinDepth, stats.MaxDepth, stats.MeanDepth)
}
