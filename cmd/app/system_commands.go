package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/reelcast/cmd/app/commands"
	"github.com/allisson/reelcast/internal/app"
)

func getSystemCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "audit",
			Usage: "Maintain the persisted audit trail",
			Commands: []*cli.Command{
				{
					Name:  "verify",
					Usage: "Verify audit event signatures in a time range",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "start-date",
							Aliases:  []string{"s"},
							Required: true,
							Usage:    "Start date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
						},
						&cli.StringFlag{
							Name:     "end-date",
							Aliases:  []string{"e"},
							Required: true,
							Usage:    "End date in YYYY-MM-DD or YYYY-MM-DD HH:MM:SS format",
						},
						formatFlag(),
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							auditUseCase, err := container.AuditUseCase()
							if err != nil {
								return err
							}
							return commands.RunVerifyAuditLogs(
								ctx,
								auditUseCase,
								container.Logger(),
								ioWriter,
								cmd.String("start-date"),
								cmd.String("end-date"),
								cmd.String("format"),
							)
						})
					},
				},
				{
					Name:  "clean",
					Usage: "Delete audit events older than specified days",
					Flags: []cli.Flag{
						&cli.IntFlag{
							Name:     "days",
							Aliases:  []string{"d"},
							Required: true,
							Usage:    "Delete audit events older than this many days",
						},
						&cli.BoolFlag{
							Name:    "dry-run",
							Aliases: []string{"n"},
							Usage:   "Show how many events would be deleted without deleting",
						},
						formatFlag(),
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withContainer(ctx, func(container *app.Container) error {
							auditUseCase, err := container.AuditUseCase()
							if err != nil {
								return err
							}
							return commands.RunCleanAuditLogs(
								ctx,
								auditUseCase,
								container.Logger(),
								ioWriter,
								int(cmd.Int("days")),
								cmd.Bool("dry-run"),
								cmd.String("format"),
							)
						})
					},
				},
			},
		},
	}
}
