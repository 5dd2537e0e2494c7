// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func userFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "External user identifier",
		Required: required,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles credential lifecycle operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify credential operations",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the Spotify authorize link for a user",
				Flags: []cli.Flag{
					userFlag(true),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the link in the system browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:   "status",
				Usage:  "Show whether a user's credential is current",
				Flags:  []cli.Flag{userFlag(true)},
				Action: r.AuthStatus,
			},
			{
				Name:   "revoke",
				Usage:  "Delete a user's stored credential",
				Flags:  []cli.Flag{userFlag(true)},
				Action: r.AuthRevoke,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the OAuth callback listener",
		Action: r.Serve,
	}
}

func createCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a playlist from a mood or theme description",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "prompt",
			},
		},
		Flags:  []cli.Flag{userFlag(true)},
		Action: r.Create,
	}
}

// eventsCommand handles audit log inspection
func eventsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Audit event log operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print audit events",
				Flags: []cli.Flag{
					userFlag(false),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.EventsList,
			},
			{
				Name:  "export",
				Usage: "Export audit events to CSV or Markdown",
				Flags: []cli.Flag{
					userFlag(false),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, md)",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.EventsExport,
			},
			{
				Name:   "tui",
				Usage:  "Browse audit events interactively",
				Flags:  []cli.Flag{userFlag(false)},
				Action: r.EventsTUI,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "history",
		Usage:  "Show a user's playlist name history",
		Flags:  []cli.Flag{userFlag(true)},
		Action: r.History,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, serveCommand, createCommand, eventsCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}
