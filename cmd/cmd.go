// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// reportFlags are shared by every report subcommand.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: json, markdown or csv (default from config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default <reports.dir>/<kind>_report.<ext>)",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Skip the console summary",
		},
	}
}

// reportCommand builds reports from the Spotify library
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Build a report and write it to disk",
		Commands: []*cli.Command{
			{
				Name:   "library",
				Usage:  "Report on saved tracks, playlists and followed artists",
				Flags:  reportFlags(),
				Action: r.ReportLibrary,
			},
			{
				Name:    "history",
				Aliases: []string{"listening"},
				Usage:   "Report on top artists and tracks for a time range",
				Flags: append(reportFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of top artists and tracks to fetch",
						Value:   50,
					},
					&cli.StringFlag{
						Name:    "time-range",
						Aliases: []string{"t"},
						Usage:   "short_term, medium_term or long_term",
						Value:   "medium_term",
					},
				),
				Action: r.ReportHistory,
			},
		},
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify in the browser and save the token to the config file",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the configured auth mode and whether a token is stored",
				Action: r.AuthStatus,
			},
		},
	}
}

// cacheCommand inspects the page cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the page cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the number and size of cache files",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Delete every cache file",
				Action: r.CacheClear,
			},
		},
	}
}

// runsCommand lists the report run ledger
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Report run history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List written reports, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Only show runs of this report kind",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsList,
			},
		},
	}
}

// setupCommand handles setup operations for config and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
