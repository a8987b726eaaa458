package main

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v3"

	shell "github.com/nathanhfoster/turbo-sub002/internal/client/cli"
	"github.com/nathanhfoster/turbo-sub002/internal/client/config"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:           "diary",
		Usage:          "a local diary kept in a SQLite file",
		Version:        buildVersion(),
		Flags:          config.Flags(),
		DefaultCommand: "shell",
		Commands: []*cli.Command{
			{
				Name:   "shell",
				Usage:  "interactive shell (default)",
				Action: withApp(runShell),
			},
			{
				Name:      "list",
				Usage:     "print entries, newest first",
				ArgsUsage: "[n]",
				Action:    withApp((*shell.App).List),
			},
			{
				Name:      "search",
				Usage:     "print entries whose title or body contains term",
				ArgsUsage: "<term>",
				Action:    withApp((*shell.App).Search),
			},
			{
				Name:      "show",
				Usage:     "print one entry",
				ArgsUsage: "<id>",
				Action:    withApp((*shell.App).Show),
			},
			{
				Name:      "import",
				Usage:     "import a JSON export",
				ArgsUsage: "<file>",
				Action:    withApp((*shell.App).Import),
			},
			{
				Name:      "export",
				Usage:     "export entries as json, csv or md",
				ArgsUsage: "[format] [dir]",
				Action:    withApp((*shell.App).Export),
			},
			{
				Name:   "info",
				Usage:  "print store statistics",
				Action: withApp((*shell.App).Info),
			},
		},
	}
}

// withApp loads the configuration, opens the diary for the duration of one
// command and closes it afterwards.
func withApp(fn func(a *shell.App, ctx context.Context, args []string) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		a, err := shell.NewApp(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open diary: %w", err)
		}

		err = fn(a, ctx, cmd.Args().Slice())
		if cerr := a.Close(ctx); err == nil {
			err = cerr
		}
		return err
	}
}

func runShell(a *shell.App, ctx context.Context, _ []string) error {
	return a.Run(ctx)
}
