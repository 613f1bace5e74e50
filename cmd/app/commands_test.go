package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func TestGetCommands(t *testing.T) {
	names := map[string]bool{}
	var walk func(prefix string, cmds []*cli.Command)
	walk = func(prefix string, cmds []*cli.Command) {
		for _, cmd := range cmds {
			name := prefix + cmd.Name
			assert.False(t, names[name], "duplicate command %s", name)
			names[name] = true
			if len(cmd.Commands) == 0 {
				assert.NotNil(t, cmd.Action, name)
			}
			walk(name+" ", cmd.Commands)
		}
	}
	walk("", getCommands("test"))

	for _, name := range []string{
		"run", "daemon", "migrate",
		"locks list", "locks sweep",
		"ledger list", "ledger forget",
		"audit verify", "audit clean",
	} {
		assert.True(t, names[name], name)
	}
}
