package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/reelcast/cmd/app/commands"
	"github.com/allisson/reelcast/internal/app"
)

func getPipelineCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run",
			Usage: "Run a single cycle over the source and exit",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Replace every external call with a synthetic success; no ledger writes",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Ignore the posted flag and the ledger short-circuit",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Usage:   "Start at most this many candidates (0 means no limit)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					pipeline, err := container.PipelineUseCase()
					if err != nil {
						return err
					}

					opts := pipeline.DefaultOptions()
					opts.DryRun = opts.DryRun || cmd.Bool("dry-run")
					opts.Force = opts.Force || cmd.Bool("force")
					opts.Limit = int(cmd.Int("limit"))

					return commands.RunCycle(ctx, pipeline, container.Logger(), ioWriter, opts, cmd.String("format"))
				})
			},
		},
		{
			Name:  "daemon",
			Usage: "Run cycles on CYCLE_INTERVAL_MINUTES and serve the status and metrics endpoints",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Replace every external call with a synthetic success; no ledger writes",
				},
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Ignore the posted flag and the ledger short-circuit",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunDaemon(ctx, version, cmd.Bool("dry-run"), cmd.Bool("force"))
			},
		},
	}
}
