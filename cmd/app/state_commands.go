package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/reelcast/cmd/app/commands"
	"github.com/allisson/reelcast/internal/app"
)

func getStateCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "locks",
			Usage: "Inspect and sweep processing locks",
			Commands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List processing locks",
					Flags: []cli.Flag{formatFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							locks, err := container.LockUseCase()
							if err != nil {
								return err
							}
							return commands.RunListLocks(ctx, locks, ioWriter, time.Now(), cmd.String("format"))
						})
					},
				},
				{
					Name:  "sweep",
					Usage: "Delete expired processing locks",
					Flags: []cli.Flag{formatFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							locks, err := container.LockUseCase()
							if err != nil {
								return err
							}
							return commands.RunSweepLocks(ctx, locks, container.Logger(), ioWriter, cmd.String("format"))
						})
					},
				},
			},
		},
		{
			Name:  "ledger",
			Usage: "Inspect the idempotency ledger",
			Commands: []*cli.Command{
				{
					Name:  "list",
					Usage: "List processed records, newest first",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "offset", Value: 0, Usage: "Entries to skip"},
						&cli.IntFlag{Name: "limit", Value: 50, Usage: "Entries to return"},
						formatFlag(),
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							ledger, err := container.LedgerUseCase()
							if err != nil {
								return err
							}
							return commands.RunListLedger(
								ctx,
								ledger,
								ioWriter,
								int(cmd.Int("offset")),
								int(cmd.Int("limit")),
								cmd.String("format"),
							)
						})
					},
				},
				{
					Name:      "forget",
					Usage:     "Remove a record's ledger entry so the next cycle reprocesses it",
					ArgsUsage: "<record-id>",
					Flags:     []cli.Flag{formatFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							ledger, err := container.LedgerUseCase()
							if err != nil {
								return err
							}
							return commands.RunForgetLedger(
								ctx,
								ledger,
								container.Logger(),
								ioWriter,
								cmd.Args().First(),
								cmd.String("format"),
							)
						})
					},
				},
			},
		},
	}
}
