package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jbweber/verne/internal/command"
	"github.com/jbweber/verne/internal/config"
	"github.com/jbweber/verne/internal/logging"
	"github.com/jbweber/verne/internal/parser"
	"github.com/jbweber/verne/internal/verne"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := newRootCmd(drivers, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the verne command. drivers maps driver selectors to
// their constructors; logs go to stderr.
func newRootCmd(drivers map[string]driverFactory, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "verne <command> <template> [flags]",
		Short: "Verne - provision resources described in a template",
		Long: `Verne creates and cleans the guests, networks, host interfaces and
storage pools described in a template file.

Commands:
` + commandUsage(),
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return cmd.Help()
			}
			c, ok := command.Lookup(args[0])
			if !ok {
				return cmd.Help()
			}

			opts, err := config.Load(v, cmd.Flags())
			if err != nil {
				return err
			}

			log, err := logging.New(logging.Options{
				Level:  opts.LogLevel,
				Format: opts.LogFormat,
				Out:    stderr,
			})
			if err != nil {
				return err
			}

			return run(cmd.Context(), c, args[1], opts, drivers, log)
		},
	}

	config.BindFlags(cmd.Flags())
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

// run resolves the parser and driver selectors, then executes c against
// the template. Both selectors are resolved before the backend is contacted
// or the template is read.
func run(ctx context.Context, c command.Command, template string, opts config.Options, drivers map[string]driverFactory, log logrus.FieldLogger) error {
	newParser, ok := parser.Lookup(opts.Parser)
	if !ok {
		return fmt.Errorf("unknown parser %q (available: %s)", opts.Parser, strings.Join(parser.Names(), ", "))
	}
	newDriver, ok := drivers[opts.Driver]
	if !ok {
		return fmt.Errorf("unknown driver %q (available: %s)", opts.Driver, strings.Join(driverNames(drivers), ", "))
	}

	log.WithFields(logrus.Fields{
		"command":  c.Name,
		"template": template,
		"parser":   opts.Parser,
		"driver":   opts.Driver,
		"uri":      opts.URI,
	}).Debug("Starting")

	driver, err := newDriver(ctx, opts, log)
	if err != nil {
		return err
	}

	orch := verne.New(newParser(template, log), driver, log)
	return c.Execute(ctx, orch)
}

func commandUsage() string {
	var b strings.Builder
	for _, name := range command.Names() {
		c, _ := command.Lookup(name)
		fmt.Fprintf(&b, "  %-8s %s\n", c.Name, c.Short)
	}
	return b.String()
}
