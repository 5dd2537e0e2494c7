package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spotifire/spotifire/internal/auth"
	"github.com/spotifire/spotifire/internal/repositories"
	"github.com/spotifire/spotifire/internal/services"
	"github.com/spotifire/spotifire/internal/shared"
	"github.com/spotifire/spotifire/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	db        *sql.DB
	music     services.MusicService
	generator services.Generator
	artwork   services.ArtworkService
	tokens    *auth.Manager
	creds     *repositories.CredentialRepository
	events    *repositories.EventRepository
	history   *repositories.PlaylistHistoryRepository
	engine    *tasks.Engine
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	DB        *sql.DB
	Music     services.MusicService
	Generator services.Generator
	Artwork   services.ArtworkService
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Repositories, the token manager, and the assembly engine are constructed
// here, once per process, and injected into every command action.
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

	r := &Runner{
		config:    opts.Config,
		db:        opts.DB,
		music:     opts.Music,
		generator: opts.Generator,
		artwork:   opts.Artwork,
		logger:    opts.Logger,
		output:    opts.Output,
	}

	if opts.DB != nil {
		r.creds = repositories.NewCredentialRepository(opts.DB)
		r.events = repositories.NewEventRepository(opts.DB)
		r.history = repositories.NewPlaylistHistoryRepository(opts.DB)
	}

	if r.creds != nil && opts.Music != nil {
		r.tokens = auth.NewManager(r.creds, opts.Music, opts.Logger)
	}

	if r.tokens != nil && opts.Generator != nil {
		r.engine = tasks.NewEngine(tasks.EngineOpts{
			Music:        opts.Music,
			Generator:    opts.Generator,
			Artwork:      opts.Artwork,
			Tokens:       r.tokens,
			Events:       r.events,
			History:      r.history,
			Logger:       opts.Logger,
			DesiredSongs: opts.Config.Playlist.DesiredSongs,
			Public:       opts.Config.Playlist.Public,
			SearchRate:   opts.Config.Playlist.SearchRate,
		})
	}

	return r
}

// requireStore fails a command early when the database is unavailable.
func (r *Runner) requireStore() error {
	if r.db == nil {
		return fmt.Errorf("%w: database not initialized, run setup first", shared.ErrMissingConfig)
	}
	return nil
}

// requireAuth fails a command early when the Spotify client is unavailable.
func (r *Runner) requireAuth() error {
	if r.tokens == nil {
		return fmt.Errorf("%w: spotify credentials not configured", shared.ErrMissingCredentials)
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

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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
