// Command watch follows one project from the command line until its bids
// have clarification questions, then prints the enriched bids.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/poller"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "watch",
		Usage:     "follow a BidSmart project until questions and enrichment arrive",
		ArgsUsage: "<project-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "API base URL",
				Value:   "http://localhost:8080/api/v1",
				EnvVars: []string{"BIDSMART_API_URL"},
			},
			&cli.StringFlag{
				Name:     "token",
				Usage:    "Supabase access token of the project owner",
				EnvVars:  []string{"BIDSMART_TOKEN"},
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "delay between question checks",
				Value: poller.QuestionInterval,
			},
			&cli.IntFlag{
				Name:  "attempts",
				Usage: "maximum question checks",
				Value: poller.QuestionMaxAttempts,
			},
			&cli.DurationFlag{
				Name:  "enrichment-delay",
				Usage: "wait before the final bid refresh",
				Value: poller.EnrichmentDelay,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Action: func(c *cli.Context) error {
			projectID := c.Args().First()
			if _, err := uuid.Parse(projectID); err != nil {
				return cli.Exit("a valid project id is required", 2)
			}

			log, err := logger.New("development", c.String("log-level"))
			if err != nil {
				return err
			}
			defer log.Sync()

			w := &watcher{
				api:         newAPIClient(c.String("api"), c.String("token")),
				log:         log,
				out:         c.App.Writer,
				interval:    c.Duration("interval"),
				maxAttempts: c.Int("attempts"),
				enrichDelay: c.Duration("enrichment-delay"),
			}
			_, err = w.run(c.Context, projectID)
			return err
		},
	}
}
