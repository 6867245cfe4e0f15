// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func platformFlagDef() cli.Flag {
	return &cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Limit to one platform (youtube|yt, spotify|sp)",
	}
}

func cachedFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "cached",
		Usage: "Use the last saved catalog instead of fetching the playlists",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, csv, md, json)",
		Value:   "text",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// catalogCommand handles catalog inspection
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Inspect the merged playlist catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog items with their play counts",
				Flags: []cli.Flag{
					configFlag(),
					platformFlagDef(),
					cachedFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CatalogList,
			},
		},
	}
}

// playCommand runs one select, dispatch and count cycle.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play the next least-played track",
		Flags: []cli.Flag{
			configFlag(),
			platformFlagDef(),
			cachedFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log the track instead of opening it (still counted)",
			},
		},
		Action: r.Play,
	}
}

// nextCommand previews the least-played tier.
func nextCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "next",
		Usage: "Preview upcoming picks without playing or counting them",
		Flags: []cli.Flag{
			configFlag(),
			platformFlagDef(),
			cachedFlag(),
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of picks to show",
				Value:   10,
			},
		},
		Action: r.Next,
	}
}

// countsCommand handles the play-count file
func countsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "counts",
		Usage: "Inspect and manage play counts",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Show play counts, most played first",
				Flags:  []cli.Flag{configFlag(), formatFlag()},
				Action: r.CountsList,
			},
			{
				Name:   "min",
				Usage:  "Show the least-played count of the cached catalog",
				Flags:  []cli.Flag{configFlag(), platformFlagDef()},
				Action: r.CountsMin,
			},
			{
				Name:  "reset",
				Usage: "Set every play count back to zero",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Confirm the reset",
					},
				},
				Action: r.CountsReset,
			},
			{
				Name:   "export",
				Usage:  "Write play counts to a file",
				Flags:  []cli.Flag{configFlag(), formatFlag(), outputFlag()},
				Action: r.CountsExport,
			},
		},
	}
}

// historyCommand handles the play history table
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect counted plays",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show recent plays",
				Flags: []cli.Flag{
					configFlag(),
					formatFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Maximum number of plays to show",
						Value:   20,
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:   "export",
				Usage:  "Write the full play history to a file",
				Flags:  []cli.Flag{configFlag(), formatFlag(), outputFlag()},
				Action: r.HistoryExport,
			},
		},
	}
}

// qrCommand prints the playlist links as QR codes.
func qrCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "qr",
		Usage:  "Show QR codes for the configured playlists",
		Flags:  []cli.Flag{configFlag()},
		Action: r.QR,
	}
}

// tuiCommand returns the top-level TUI command for the interactive next-up queue.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive next-up queue",
		Flags: []cli.Flag{
			configFlag(),
			cachedFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log tracks instead of opening them (still counted)",
			},
			&cli.BoolFlag{
				Name:  "qr",
				Usage: "Show playlist QR codes above the queue",
			},
		},
		Action: r.TUI,
	}
}
