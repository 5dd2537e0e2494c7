// package tasks implements playlist assembly orchestration.
//
// The core abstraction is [Engine], which drives one run of the linear state
// machine requested → generating → resolving → creating_container →
// attaching_tracks → attaching_artwork → delivered, with explicit terminal
// failure phases. Runs emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spotifire/spotifire/internal/auth"
	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/repositories"
	"github.com/spotifire/spotifire/internal/services"
	"github.com/spotifire/spotifire/internal/shared"
)

// RunResult contains all data from one playlist assembly run.
type RunResult struct {
	Phase           Phase  // Terminal phase the run reached
	Name            string // Playlist name (the user's theme text)
	PlaylistID      string // Created playlist identifier
	PlaylistURL     string // User-facing playlist link
	RequestedCount  int    // Candidates requested from the generator
	GeneratedCount  int    // Candidates the generator returned
	ResolvedCount   int    // Candidates matched in the catalog
	ArtworkAttached bool   // Whether cover art made it onto the playlist
}

// EngineOpts contains the collaborators and settings for an [Engine].
type EngineOpts struct {
	Music        services.MusicService
	Generator    services.Generator
	Artwork      services.ArtworkService
	Tokens       *auth.Manager
	Events       *repositories.EventRepository
	History      *repositories.PlaylistHistoryRepository
	Logger       *log.Logger
	DesiredSongs int
	Public       bool
	SearchRate   float64
}

// Engine orchestrates the end-to-end playlist creation workflow.
//
// One Engine serves all users; it holds no state beyond a single run's
// working set, and no lock is held across any remote call. Runs for
// different users may execute concurrently.
type Engine struct {
	music     services.MusicService
	generator services.Generator
	artwork   services.ArtworkService
	tokens    *auth.Manager
	events    *repositories.EventRepository
	history   *repositories.PlaylistHistoryRepository
	resolver  *Resolver
	logger    *log.Logger
	desired   int
	public    bool
}

// NewEngine creates an [Engine] with the provided collaborators.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.DesiredSongs <= 0 {
		opts.DesiredSongs = 12
	}

	return &Engine{
		music:     opts.Music,
		generator: opts.Generator,
		artwork:   opts.Artwork,
		tokens:    opts.Tokens,
		events:    opts.Events,
		history:   opts.History,
		resolver:  NewResolver(opts.Music, opts.SearchRate, opts.Logger),
		logger:    opts.Logger,
		desired:   opts.DesiredSongs,
		public:    opts.Public,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never blocks a run.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// record appends an audit event, fire-and-forget: append failures are
// logged and never propagate to the run's outcome.
func (e *Engine) record(userID string, kind models.EventType, metadata map[string]string) {
	if e.events == nil {
		return
	}
	event := &models.Event{UserID: userID, Type: kind, Metadata: metadata}
	if err := e.events.Append(event); err != nil {
		e.logger.Error("failed to append audit event", "user_id", userID, "type", kind, "err", err)
	}
}

// fail marks the run's terminal failure phase and emits a FAILED event
// carrying the original prompt.
func (e *Engine) fail(result *RunResult, userID, prompt string, phase Phase, reason string) {
	result.Phase = phase
	e.record(userID, models.EventFailed, map[string]string{
		"prompt": prompt,
		"phase":  phase.String(),
		"reason": reason,
	})
}

// Run executes one playlist assembly run for a user's free-text theme.
//
// The returned RunResult always carries the terminal phase, including on
// error. No step is retried; a failed run must be re-initiated by a fresh
// user request.
func (e *Engine) Run(ctx context.Context, userID, prompt string, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{Phase: PhaseRequested, Name: prompt}

	e.record(userID, models.EventRequest, map[string]string{"prompt": prompt})

	cred, err := e.tokens.Obtain(ctx, userID)
	if err != nil {
		result.Phase = PhaseFailedNoAuth
		return result, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	// Request double the target size, anticipating resolver drop-out.
	requested := e.desired * 2
	result.RequestedCount = requested
	e.sendProgress(progress, generatingUpdate(requested))

	candidates, err := e.generator.Generate(ctx, prompt, requested)
	if err != nil {
		e.fail(result, userID, prompt, PhaseFailedUpstream, "generation failed")
		return result, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	result.GeneratedCount = len(candidates)

	total := len(candidates)
	resolved, err := e.resolver.Resolve(ctx, cred.AccessToken, candidates, func(step int, candidate models.SongCandidate) {
		e.sendProgress(progress, resolvingUpdate(step, total, candidate))
	})
	if err != nil {
		e.fail(result, userID, prompt, PhaseFailedUpstream, "catalog lookup failed")
		return result, err
	}
	result.ResolvedCount = len(resolved)

	if len(resolved) == 0 {
		e.fail(result, userID, prompt, PhaseFailedEmpty, "no candidates resolved")
		return result, fmt.Errorf("%w: %q", shared.ErrEmptyResolution, prompt)
	}

	e.sendProgress(progress, creatingContainerUpdate(prompt))

	profile, err := e.music.CurrentUser(ctx, cred.AccessToken)
	if err != nil {
		e.fail(result, userID, prompt, PhaseFailedUpstream, "profile lookup failed")
		return result, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}

	created, err := e.music.CreatePlaylist(ctx, cred.AccessToken, profile.ID, prompt, e.public)
	if err != nil {
		e.fail(result, userID, prompt, PhaseFailedUpstream, "playlist creation failed")
		return result, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	result.PlaylistID = created.ID
	result.PlaylistURL = created.URL

	e.sendProgress(progress, attachingTracksUpdate(len(resolved)))

	uris := make([]string, len(resolved))
	for i, track := range resolved {
		uris[i] = track.URI
	}
	if err := e.music.AddTracks(ctx, cred.AccessToken, created.ID, uris); err != nil {
		e.fail(result, userID, prompt, PhaseFailedUpstream, "track attachment failed")
		return result, fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}

	// Cover art is cosmetic: every failure here degrades to a playlist
	// without artwork, never a failed run.
	e.sendProgress(progress, attachingArtworkUpdate())
	result.ArtworkAttached = e.attachArtwork(ctx, cred.AccessToken, created.ID, prompt)

	if e.history != nil {
		if err := e.history.Append(userID, prompt); err != nil {
			e.logger.Error("failed to append playlist history", "user_id", userID, "err", err)
		}
	}

	e.record(userID, models.EventCreated, map[string]string{
		"prompt":      prompt,
		"playlist_id": created.ID,
		"songs_count": strconv.Itoa(len(resolved)),
	})

	result.Phase = PhaseDelivered
	e.sendProgress(progress, deliveredUpdate(result))
	return result, nil
}

// attachArtwork generates and uploads cover art, reporting success.
func (e *Engine) attachArtwork(ctx context.Context, accessToken, playlistID, prompt string) bool {
	if e.artwork == nil {
		return false
	}

	image, err := e.artwork.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("artwork generation failed, delivering without cover", "err", err)
		return false
	}

	if err := e.music.UploadCover(ctx, accessToken, playlistID, image); err != nil {
		e.logger.Warn("cover upload failed, delivering without cover", "err", err)
		return false
	}

	return true
}

// IsNoAuth reports whether a run error means the user must re-authenticate.
func IsNoAuth(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated) ||
		errors.Is(err, shared.ErrNoCredential) ||
		errors.Is(err, shared.ErrRefreshFailed)
}
