package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ar90n/eiforest/itree"
	"github.com/ar90n/eiforest/linalg"
	"github.com/ar90n/eiforest/render"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-graphviz"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func inspectAction(c *cli.Context) error {
	return dispatch(c, inspect[float32], inspect[float64])
}

func inspect[T linalg.Float](c *cli.Context) error {
	forest, err := loadForest[T](c)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
	printStats(w, forest.Stats())
	return w.Flush()
}

func dotAction(c *cli.Context) error {
	return dispatch(c, dot[float32], dot[float64])
}

func dot[T linalg.Float](c *cli.Context) error {
	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	forest, err := loadForest[T](c)
	if err != nil {
		return err
	}

	idx := c.Uint("tree")
	if uint(len(forest.Trees)) <= idx {
		return errors.Newf("tree %d out of range, the forest has %d trees", idx, len(forest.Trees))
	}

	path := c.String("output")
	if err := renderTreeFile(path, forest.Trees[idx], format); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tree": idx, "output": path}).Info("tree rendered")
	return nil
}

func renderTreeFile[T linalg.Float](path string, tree itree.Tree[T], format graphviz.Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return render.Tree(tree, format, f)
}

func storeListAction(c *cli.Context) error {
	s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()

	infos, err := s.List(c.Context)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "NAME\tDTYPE\tDIM\tTREES\tBYTES\tCREATED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			info.Name, info.DType, info.Dim, info.Trees, info.Size, info.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func storeDeleteAction(c *cli.Context) error {
	s, err := openStore(c)
	if err != nil {
		return err
	}
	defer s.Close()

	name := c.String("name")
	if err := s.Delete(c.Context, name); err != nil {
		return err
	}
	logrus.WithField("name", name).Info("model deleted")
	return nil
}
