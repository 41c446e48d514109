package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/rorycl/roster/app"
)

// Applicator defines the interface for the core application logic.
// This allows the CLI to be tested independently of the main app implementation.
type Applicator interface {
	Interactive(ctx context.Context, opts app.Options) error
	List(ctx context.Context, opts app.Options) error
	Archive(ctx context.Context, opts app.Options) error
	History(ctx context.Context, opts app.Options, snapshotID int64) error
}

// BuildCLI creates the full CLI command structure for the application.
// It injects the core application logic (the Applicator) into the command actions.
func BuildCLI(a Applicator) *cli.Command {
	// Flags common to every command.
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to an optional yaml configuration file",
	}
	fileFlag := &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "the roster data file (default \"employees.txt\")",
	}
	logLevelFlag := &cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "diagnostic log level: debug, info, warn or error (default \"warn\")",
	}
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "the sqlite archive database (default \"roster.db\")",
	}

	// Root flags are inherited by every subcommand.
	commonFlags := []cli.Flag{configFlag, fileFlag, logLevelFlag}

	options := func(c *cli.Command) app.Options {
		return app.Options{
			ConfigPath:   c.String("config"),
			DataFile:     c.String("file"),
			LogLevel:     c.String("log-level"),
			DatabasePath: c.String("db"),
		}
	}

	listCmd := &cli.Command{
		Name:    "list",
		Usage:   "Print the roster held in the data file",
		Aliases: []string{"ls"},
		Action: func(ctx context.Context, c *cli.Command) error {
			return a.List(ctx, options(c))
		},
	}

	archiveCmd := &cli.Command{
		Name:  "archive",
		Usage: "Save a snapshot of the data file to the archive database",
		Flags: []cli.Flag{dbFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return a.Archive(ctx, options(c))
		},
	}

	historyCmd := &cli.Command{
		Name:  "history",
		Usage: "List archived snapshots, or show one with --snapshot",
		Flags: []cli.Flag{
			dbFlag,
			&cli.Int64Flag{Name: "snapshot", Aliases: []string{"s"}, Usage: "the id of the snapshot to show"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return a.History(ctx, options(c), c.Int64("snapshot"))
		},
	}

	// Assemble the root command. Without a subcommand it runs the
	// interactive menu.
	rootCmd := &cli.Command{
		Name:     "roster",
		Usage:    "Maintain a roster of employees in a text file",
		Flags:    commonFlags,
		Commands: []*cli.Command{listCmd, archiveCmd, historyCmd},
		Action: func(ctx context.Context, c *cli.Command) error {
			return a.Interactive(ctx, options(c))
		},
	}

	return rootCmd
}
