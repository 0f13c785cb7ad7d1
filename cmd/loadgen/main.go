package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/u66u/analytics-microservice/internal/loadgen"
	"github.com/u66u/analytics-microservice/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "loadgen",
		Usage: "synthetic load driver for the event gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Value:   "http://localhost:8081/event",
				Usage:   "gateway endpoint to hit",
			},
			&cli.Uint64Flag{
				Name:    "rps",
				Aliases: []string{"r"},
				Value:   10000,
				Usage:   "target aggregate requests per second",
			},
			&cli.Uint64Flag{
				Name:    "duration",
				Aliases: []string{"d"},
				Value:   10,
				Usage:   "test duration in seconds",
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Value:   100,
				Usage:   "number of independent workers",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logging.InitLogger()

	concurrency := c.Int("concurrency")
	if concurrency <= 0 {
		return cli.Exit("concurrency must be positive", 2)
	}

	report := loadgen.Run(c.Context, loadgen.Config{
		URL:         c.String("url"),
		Rate:        c.Uint64("rps"),
		Duration:    time.Duration(c.Uint64("duration")) * time.Second,
		Concurrency: concurrency,
	})

	logging.LogInfo("report", logrus.Fields{
		"elapsed":        report.Elapsed.String(),
		"total_attempts": report.Attempts,
		"measured_rps":   fmt.Sprintf("%.2f", report.Rate),
	})
	return nil
}
