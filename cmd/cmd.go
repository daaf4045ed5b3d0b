// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func listFlags() []cli.Flag {
	return append(outputFlags(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Text output format: txt, csv or markdown",
			Value:   "txt",
		},
	)
}

func pageFlags() []cli.Flag {
	return append(listFlags(),
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Items per page",
			Value: 10,
		},
	)
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml with default values",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles the user session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your account session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the session locally",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("FLIX_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show who is signed in",
				Flags:  outputFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("FLIX_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
		},
	}
}

// profileCommand handles the signed-in user's profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View or edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  outputFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Update your profile",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:     "email",
						Usage:    "New email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "phone",
						Usage: "Phone number",
					},
					&cli.StringFlag{
						Name:  "dob",
						Usage: "Date of birth (YYYY-MM-DD)",
					},
				),
				Action: r.ProfileUpdate,
			},
		},
	}
}

// moviesCommand handles browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse movies",
		Commands: []*cli.Command{
			{
				Name:   "home",
				Usage:  "Top five, most popular and top rated in one go",
				Flags:  listFlags(),
				Action: r.MoviesHome,
			},
			{
				Name:   "top",
				Usage:  "The five most popular movies",
				Flags:  listFlags(),
				Action: r.MoviesTop,
			},
			{
				Name:   "popular",
				Usage:  "Most popular movies",
				Flags:  pageFlags(),
				Action: r.MoviesPopular,
			},
			{
				Name:   "top-rated",
				Usage:  "Best rated movies",
				Flags:  pageFlags(),
				Action: r.MoviesTopRated,
			},
			{
				Name:  "search",
				Usage: "Search movies by title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags:  pageFlags(),
				Action: r.MoviesSearch,
			},
			{
				Name:  "show",
				Usage: "Show movie details",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  listFlags(),
				Action: r.MoviesShow,
			},
			{
				Name:  "reviews",
				Usage: "Show reviews for a movie",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(pageFlags(),
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort order: newest, oldest, highest or lowest",
						Value: "newest",
					},
				),
				Action: r.MoviesReviews,
			},
		},
	}
}

// personCommand handles cast and crew lookups
func personCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "person",
		Usage: "Cast and crew",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a person's details",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.PersonShow,
			},
		},
	}
}

// favoritesCommand handles the signed-in user's favorites
func favoritesCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "id"}}
	}

	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage your favorite movies",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your favorites",
				Flags:  listFlags(),
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to your favorites",
				Arguments: idArg(),
				Flags:     outputFlags(),
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from your favorites",
				Arguments: idArg(),
				Flags:     outputFlags(),
				Action:    r.FavoritesRemove,
			},
			{
				Name:      "toggle",
				Usage:     "Add a movie if missing, remove it otherwise",
				Arguments: idArg(),
				Flags:     outputFlags(),
				Action:    r.FavoritesToggle,
			},
			{
				Name:  "export",
				Usage: "Export the full record of every favorite to disk",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or txt (default from config)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default from config, then flix_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail requests (default from config)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Detail requests per second (default from config)",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Download posters next to Markdown exports",
					},
				},
				Action: r.FavoritesExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing and favorites",
		Action:  r.TUI,
	}
}
