package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/reelcast/cmd/app/commands"
	"github.com/allisson/reelcast/internal/app"
	"github.com/allisson/reelcast/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getPipelineCommands(version)...)
	cmds = append(cmds, getStateCommands()...)
	cmds = append(cmds, getSystemCommands()...)
	return cmds
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// withContainer loads configuration, builds a container and closes it after action returns.
func withContainer(ctx context.Context, action func(*app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() { _ = container.Shutdown(ctx) }()
	return action(container)
}

// ioWriter is the writer used by every command.
var ioWriter = commands.DefaultIO().Writer
