package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func envVars(name string) []string {
	return []string{"EIFOREST_" + name}
}

var (
	dtypeFlag = &cli.StringFlag{
		Name:    "dtype",
		Value:   "float64",
		Usage:   "element type of the model (float32 or float64)",
		EnvVars: envVars("DTYPE"),
	}
	inputFlag = &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "csv file of feature rows",
		Required: true,
	}
	columnsFlag = &cli.StringFlag{
		Name:  "columns",
		Usage: "comma separated zero based column indices, every column when empty",
	}
	skipHeaderFlag = &cli.BoolFlag{
		Name:  "skip-header",
		Usage: "skip the first csv record",
	}
	smoothingFlag = &cli.IntFlag{
		Name:  "smoothing",
		Value: 1,
		Usage: "window of the sliding mean applied to the rows, 1 disables it",
	}
	modelFlag = &cli.StringFlag{
		Name:    "model",
		Aliases: []string{"m"},
		Value:   "model.bin",
		Usage:   "model file, json encoded when it ends with .json",
		EnvVars: envVars("MODEL"),
	}
	storeFlag = &cli.StringFlag{
		Name:    "store",
		Usage:   "sqlite database holding named models, used instead of --model when set",
		EnvVars: envVars("STORE"),
	}
	nameFlag = &cli.StringFlag{
		Name:    "name",
		Value:   "default",
		Usage:   "model name in the store",
		EnvVars: envVars("NAME"),
	}
	profileOutputFlag = &cli.StringFlag{
		Name:  "profile-output",
		Usage: "cpu profile output file",
	}
	goroutinesFlag = &cli.UintFlag{
		Name:    "max-goroutines",
		Usage:   "parallelism of building and scoring, 0 uses every cpu",
		EnvVars: envVars("MAX_GOROUTINES"),
	}
)

func main() {
	app := &cli.App{
		Name:     "eiforest",
		HelpName: "eiforest",
		Usage:    "anomaly detection with extended isolation forests",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
				EnvVars: envVars("VERBOSE"),
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "train",
				Usage:     "build a forest from a csv file",
				UsageText: "eiforest train [command options]",
				Action:    trainAction,
				Flags: []cli.Flag{
					dtypeFlag,
					inputFlag,
					columnsFlag,
					skipHeaderFlag,
					smoothingFlag,
					modelFlag,
					storeFlag,
					nameFlag,
					profileOutputFlag,
					goroutinesFlag,
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "yaml file of forest options, overridden by flags",
						EnvVars: envVars("CONFIG"),
					},
					&cli.UintFlag{
						Name:    "trees",
						Usage:   "number of trees",
						EnvVars: envVars("TREES"),
					},
					&cli.UintFlag{
						Name:    "sample-size",
						Usage:   "rows drawn for every tree",
						EnvVars: envVars("SAMPLE_SIZE"),
					},
					&cli.UintFlag{
						Name:    "max-depth",
						Usage:   "maximum tree depth, ceil(log2(sample-size)) when unset",
						EnvVars: envVars("MAX_DEPTH"),
					},
					&cli.UintFlag{
						Name:    "extension-level",
						Usage:   "extension level of the split hyperplanes, 0 for axis aligned splits",
						EnvVars: envVars("EXTENSION_LEVEL"),
					},
					&cli.Int64Flag{
						Name:    "seed",
						Usage:   "random seed, 0 seeds from the clock",
						EnvVars: envVars("SEED"),
					},
				},
			},
			{
				Name:      "score",
				Usage:     "score the rows of a csv file",
				UsageText: "eiforest score [command options]",
				Action:    scoreAction,
				Flags: []cli.Flag{
					dtypeFlag,
					inputFlag,
					columnsFlag,
					skipHeaderFlag,
					smoothingFlag,
					modelFlag,
					storeFlag,
					nameFlag,
					profileOutputFlag,
					goroutinesFlag,
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "print only rows scoring at least this value",
					},
					&cli.UintFlag{
						Name:  "limit",
						Usage: "print at most this many rows, 0 prints every row",
					},
					&cli.UintFlag{
						Name:  "top",
						Usage: "log the given number of most anomalous rows",
					},
				},
			},
			{
				Name:      "inspect",
				Usage:     "summarize a forest",
				UsageText: "eiforest inspect [command options]",
				Action:    inspectAction,
				Flags: []cli.Flag{
					dtypeFlag,
					modelFlag,
					storeFlag,
					nameFlag,
				},
			},
			{
				Name:      "dot",
				Usage:     "render one tree of a forest",
				UsageText: "eiforest dot [command options]",
				Action:    dotAction,
				Flags: []cli.Flag{
					dtypeFlag,
					modelFlag,
					storeFlag,
					nameFlag,
					&cli.UintFlag{
						Name:  "tree",
						Usage: "index of the tree",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "dot",
						Usage: "dot, svg, png or jpg",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "tree.dot",
						Usage:   "output file",
					},
				},
			},
			{
				Name:  "store",
				Usage: "manage models kept in a sqlite store",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list stored models",
						Action: storeListAction,
						Flags:  []cli.Flag{storeFlag},
					},
					{
						Name:   "delete",
						Usage:  "delete a stored model",
						Action: storeDeleteAction,
						Flags:  []cli.Flag{storeFlag, nameFlag},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
