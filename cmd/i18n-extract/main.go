package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (.json, .yaml, .toml or .kdl); default: .i18n-extract.* in the base directory",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log debug information, including skipped call sites",
		},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "base",
			Aliases: []string{"b"},
			Usage:   "Directory to scan (overrides config)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Only scan files matching glob patterns relative to base (e.g., --include 'src/**')",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Skip files matching glob patterns relative to base (e.g., --exclude '**/*.test.js')",
		},
		&cli.StringFlag{
			Name:    "functions",
			Aliases: []string{"f"},
			Usage:   "JSON or YAML function table replacing the gettext defaults",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Parallel parsers (0 = one per CPU)",
		},
		&cli.BoolFlag{
			Name:  "lenient",
			Usage: "Extract from files with syntax errors instead of skipping them",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite database to record runs in",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "json",
			Aliases: []string{"j"},
			Usage:   "Print the catalog and statistics as JSON",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus gauges to this textfile after each run",
		},
		&cli.Float64Flag{
			Name:  "similar",
			Usage: "Warn about message pairs at least this Jaro-Winkler similar (0 = off)",
		},
	}
}

func diffFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "git-diff",
			Usage: "Only scan files git reports as changed: unstaged, staged, all or branch",
		},
		&cli.StringFlag{
			Name:  "git-base",
			Usage: "Base branch for --git-diff branch",
			Value: "main",
		},
	}
}

func extractFlags() []cli.Flag {
	flags := append(selectionFlags(), diffFlags()...)
	return append(flags, outputFlags()...)
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "i18n-extract",
		Usage:                  "Extract translatable messages from source code",
		Version:                version,
		UseShortOptionHandling: true,
		Flags:                  append(globalFlags(), extractFlags()...),
		Before:                 setupLogging,
		Action:                 extractCommand,
		Commands: []*cli.Command{
			{
				Name:    "extract",
				Aliases: []string{"x"},
				Usage:   "Scan the base directory and print the catalog summary (default)",
				Flags:   extractFlags(),
				Action:  extractCommand,
			},
			{
				Name:   "functions",
				Usage:  "Print the marker function table in effect",
				Flags:  selectionFlags(),
				Action: functionsCommand,
			},
			{
				Name:  "watch",
				Usage: "Re-extract whenever source files change",
				Flags: append(append(selectionFlags(), outputFlags()...),
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Fixed poll interval (default adapts to the file count)",
					},
					&cli.BoolFlag{
						Name:  "no-notify",
						Usage: "Poll only, without file system notifications",
					},
				),
				Action: watchCommand,
			},
			{
				Name:   "serve",
				Usage:  "Start the MCP (Model Context Protocol) server on stdio",
				Flags:  selectionFlags(),
				Action: serveCommand,
			},
		},
	}
}

// setupLogging installs a text slog handler on the app's error writer.
func setupLogging(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
			}
			return a
		},
	})
	slog.SetDefault(slog.New(h))
	return nil
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "i18n-extract: %v\n", err)
		os.Exit(1)
	}
}
