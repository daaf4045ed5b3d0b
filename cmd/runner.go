package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/auth"
	"github.com/desertthunder/flix/internal/favorites"
	"github.com/desertthunder/flix/internal/repositories"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// movieAPI is everything the commands use from the movie API.
type movieAPI interface {
	services.Catalog
	services.Accounts
	services.Favorites
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	api        movieAPI
	session    *auth.Session
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// API and Session are built from Config on first use when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	API        movieAPI
	Session    *auth.Session
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}

	return &Runner{
		config:     opts.Config,
		api:        opts.API,
		session:    opts.Session,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, moviesCommand, personCommand, favoritesCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// connect opens the session database and builds the API client on first use.
func (r *Runner) connect() error {
	if r.session == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db

		store := repositories.NewSessionStore(repositories.NewSessionRepository(db))
		r.session = auth.NewSession(store, shared.WithLogger(r.logger, "component", "session"))
		if err := r.session.Load(); err != nil {
			r.logger.Warn("failed to restore session", "error", err)
		}
	}

	if r.api == nil {
		r.api = services.NewMovieClient(services.ClientOpts{
			BaseURL:    r.config.API.BaseURL,
			AppToken:   r.config.API.AppToken,
			HTTPClient: r.httpClient,
			Tokens:     r.session,
			Logger:     shared.WithLogger(r.logger, "component", "api"),
		})
	}
	return nil
}

// Close releases the session database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// favoritesController builds a controller over the API and the current session.
// Login redirects print a hint on the runner's output.
func (r *Runner) favoritesController(redirect favorites.Redirector, autoLoad bool) *favorites.Controller {
	if redirect == nil {
		redirect = auth.RedirectFunc(r.loginHint)
	}
	return favorites.New(r.api, r.session, redirect, favorites.Options{
		AutoLoad: autoLoad,
		Logger:   shared.WithLogger(r.logger, "component", "favorites"),
	})
}

func (r *Runner) feed() *tasks.Feed {
	return tasks.NewFeed(r.api, shared.WithLogger(r.logger, "component", "tasks"))
}

func (r *Runner) loginHint() {
	r.writePlain("Not signed in. Run `flix auth login` first.\n")
}

// check prints the login hint for authentication failures and returns err unchanged.
func (r *Runner) check(err error) error {
	if err == nil {
		return nil
	}
	if shared.IsUnauthorized(err) || errors.Is(err, shared.ErrNotAuthenticated) {
		r.loginHint()
	}
	return err
}

// render writes data as JSON when --json is set and text otherwise.
func (r *Runner) render(cmd *cli.Command, data any, text []byte) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}
	if _, err := r.output.Write(text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
