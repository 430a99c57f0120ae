package main

import (
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"
	"github.com/joncooperworks/urlfixtures"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

func configFromFlags(c *cli.Context) *urlfixtures.Config {
	return &urlfixtures.Config{
		Domains:              c.StringSlice("domain"),
		Paths:                c.StringSlice("path"),
		TrackingParams:       c.StringSlice("tracking-param"),
		Total:                c.Int("count"),
		DuplicateProbability: c.Float64("duplicate-probability"),
		DuplicateSuffix:      c.String("duplicate-suffix"),
		Seed:                 c.Int64("seed"),
		Logger:               log.Log,
	}
}

func actionGenerate(c *cli.Context) error {
	config := configFromFlags(c)
	if c.Bool("progress") {
		config.Progress = progressbar.NewOptions64(
			int64(config.Total),
			progressbar.OptionSetDescription("urls"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSetWriter(os.Stderr),
		)
	}

	generator := &urlfixtures.Generator{Config: config}
	result, err := generator.Generate(c.String("dir"))
	if err != nil {
		return err
	}

	log.Infof("wrote %d urls and %d near-duplicates (seed %d)", result.URLs, result.Duplicates, result.Seed)
	return nil
}

func actionVerify(c *cli.Context) error {
	config := configFromFlags(c)
	fixtures, err := urlfixtures.FixturesFromDirectory(c.String("dir"))
	if err != nil {
		return err
	}
	defer fixtures.Close()

	report, err := fixtures.Verify(config)
	if err != nil {
		return err
	}
	if fixtures.Duplicates == nil {
		log.Warnf("%s not found, checked %d urls only", urlfixtures.DuplicatesFileName, report.URLs)
		return nil
	}

	log.WithFields(log.Fields{
		"urls":       report.URLs,
		"lines":      report.Lines,
		"duplicates": report.Duplicates,
	}).Infof("fixtures ok, %.1f%% near-duplicates", report.DuplicateRatio()*100)
	return nil
}

func actionCount(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one fixture file is required")
	}

	for _, path := range c.Args().Slice() {
		fixture, err := urlfixtures.OpenFixture(path)
		if err != nil {
			return err
		}
		count, err := fixture.Count()
		fixture.Close()
		if err != nil {
			return errors.Wrap(err, path)
		}
		fmt.Printf("%d\t%s\n", count, path)
	}
	return nil
}

func fixtureFlags() []cli.Flag {
	defaults := urlfixtures.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Value: urlfixtures.DefaultDir,
			Usage: "directory holding the fixtures, it must already exist",
		},
		&cli.IntFlag{
			Name:  "count",
			Value: defaults.Total,
			Usage: "number of urls in the plain fixture",
		},
		&cli.StringSliceFlag{
			Name:  "domain",
			Value: cli.NewStringSlice(defaults.Domains...),
			Usage: "domains urls are drawn from",
		},
		&cli.StringSliceFlag{
			Name:  "path",
			Value: cli.NewStringSlice(defaults.Paths...),
			Usage: "path keywords urls are drawn from",
		},
		&cli.StringSliceFlag{
			Name:  "tracking-param",
			Value: cli.NewStringSlice(defaults.TrackingParams...),
			Usage: "tracking parameters urls are drawn from, an empty value means no query string",
		},
		&cli.Float64Flag{
			Name:  "duplicate-probability",
			Value: defaults.DuplicateProbability,
			Usage: "chance that a url is followed by a near-duplicate",
		},
		&cli.StringFlag{
			Name:  "duplicate-suffix",
			Value: defaults.DuplicateSuffix,
			Usage: "suffix appended to near-duplicates",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "urlfixtures",
		Usage: "generate url fixtures with injected near-duplicates",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output",
			},
		},
		Before: func(c *cli.Context) error {
			log.SetHandler(logcli.New(os.Stderr))
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "write the plain and near-duplicate fixtures",
				Action: actionGenerate,
				Flags: append(fixtureFlags(),
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "random seed, 0 picks a new one on every run",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "show a progress bar while writing urls",
					},
				),
			},
			{
				Name:   "verify",
				Usage:  "check that existing fixtures have the expected format",
				Action: actionVerify,
				Flags:  fixtureFlags(),
			},
			{
				Name:      "count",
				Usage:     "count the lines in fixture files",
				ArgsUsage: "FILE...",
				Action:    actionCount,
			},
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.WithError(err).Fatal("urlfixtures")
	}
}
