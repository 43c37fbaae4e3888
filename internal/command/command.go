// Package command maps command-line verbs to orchestrator passes.
package command

import (
	"context"
	"sort"
)

// Runner is the part of the orchestrator a command drives.
type Runner interface {
	Create(ctx context.Context) error
	Clean(ctx context.Context) error
}

// Command is a named lifecycle operation.
type Command struct {
	Name  string
	Short string
	run   func(Runner, context.Context) error
}

// Execute runs the command's pass against r.
func (c Command) Execute(ctx context.Context, r Runner) error {
	return c.run(r, ctx)
}

var commands = map[string]Command{
	"create": {
		Name:  "create",
		Short: "Create every resource in the template",
		run:   Runner.Create,
	},
	"clean": {
		Name:  "clean",
		Short: "Destroy every resource in the template",
		run:   Runner.Clean,
	},
}

// Lookup returns the command registered under name.
func Lookup(name string) (Command, bool) {
	c, ok := commands[name]
	return c, ok
}

// Names returns the registered command names, sorted.
func Names() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
