// walking_stairs trains a forest on smoothed acceleration readings of a person walking stairs and
// prints the anomaly score of every row of a second recording.
//
//	go run ./example/walking_stairs walking-stairs.train.csv walking-stairs.anomaly.csv
//
// Both files are csv with a header and the x, y and z accelerations in columns 1 to 3.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ar90n/eiforest"
	"github.com/ar90n/eiforest/dataset"
	"github.com/sirupsen/logrus"
)

const smoothing = 20

func readAcceleration(path string) ([][]float64, error) {
	rows, err := dataset.ReadCSVFile[float64](path, dataset.CSVOptions{
		Columns:    []int{1, 2, 3},
		SkipHeader: true,
	})
	if err != nil {
		return nil, err
	}

	return dataset.SlidingMean(rows, smoothing), nil
}

func main() {
	if len(os.Args) != 3 {
		logrus.Fatalf("usage: %s TRAIN_CSV ANOMALY_CSV", os.Args[0])
	}

	train, err := readAcceleration(os.Args[1])
	if err != nil {
		logrus.Fatal(err)
	}

	opts := eiforest.DefaultOptions()
	opts.SetTrees(100).SetSampleSize(600).SetExtensionLevel(1)
	forest, err := eiforest.Build(context.Background(), train, opts)
	if err != nil {
		logrus.Fatal(err)
	}

	rows, err := readAcceleration(os.Args[2])
	if err != nil {
		logrus.Fatal(err)
	}

	for i, row := range rows {
		fmt.Printf("%d,%f,%f,%f,%f\n", i, row[0], row[1], row[2], forest.Score(row))
	}
}
