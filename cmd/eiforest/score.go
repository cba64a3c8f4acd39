package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ar90n/eiforest/collection"
	"github.com/ar90n/eiforest/linalg"
	"github.com/ar90n/eiforest/pipeline"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/stat"
)

type scoredRow struct {
	Index int
	Score float64
}

func scoreAction(c *cli.Context) error {
	return dispatch(c, score[float32], score[float64])
}

func score[T linalg.Float](c *cli.Context) error {
	stop, err := startProfile(c)
	if err != nil {
		return err
	}
	defer stop()

	forest, err := loadForest[T](c)
	if err != nil {
		return err
	}

	rows, err := readRows[T](c)
	if err != nil {
		return err
	}

	logrus.Info("scoring...")
	scores, err := forest.ScoreAll(c.Context, rows, c.Uint("max-goroutines"))
	if err != nil {
		return err
	}
	logrus.Info("done")

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	threshold := c.Float64("threshold")
	scored := pipeline.Map(ctx, pipeline.Seq(ctx, uint(len(scores))), func(i int) scoredRow {
		return scoredRow{Index: i, Score: scores[i]}
	})
	selected := pipeline.Filter(ctx, scored, func(r scoredRow) bool {
		return threshold <= r.Score
	})

	wtr := bufio.NewWriter(os.Stdout)
	for r := range pipeline.Take(ctx, c.Uint("limit"), selected) {
		fmt.Fprintf(wtr, "%d,%.6f\n", r.Index, r.Score)
	}
	if err := wtr.Flush(); err != nil {
		return err
	}

	logSummary(scores)
	if k := int(c.Uint("top")); 0 < k {
		for rank, r := range topK(scores, k) {
			logrus.WithFields(logrus.Fields{
				"rank":  rank + 1,
				"row":   r.Index,
				"score": r.Score,
			}).Info("anomaly")
		}
	}

	return c.Context.Err()
}

func summarize(scores []float64) logrus.Fields {
	if len(scores) == 0 {
		return logrus.Fields{"rows": 0}
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	return logrus.Fields{
		"rows": len(sorted),
		"mean": mean,
		"std":  std,
		"min":  sorted[0],
		"p50":  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		"p95":  stat.Quantile(0.95, stat.Empirical, sorted, nil),
		"p99":  stat.Quantile(0.99, stat.Empirical, sorted, nil),
		"max":  sorted[len(sorted)-1],
	}
}

func logSummary(scores []float64) {
	logrus.WithFields(summarize(scores)).Info("score summary")
}

// topK returns the k highest scoring rows, highest first.
func topK(scores []float64, k int) []scoredRow {
	pq := collection.NewPriorityQueue[int](k + 1)
	for i, s := range scores {
		pq.PushBounded(i, s, k)
	}

	items := pq.Drain()
	rows := make([]scoredRow, len(items))
	for i, item := range items {
		rows[i] = scoredRow{Index: item.Item, Score: item.Priority}
	}
	return rows
}
