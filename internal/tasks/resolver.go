package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/services"
	"github.com/spotifire/spotifire/internal/shared"
	"golang.org/x/time/rate"
)

// Resolver maps song candidates to Spotify catalog identifiers.
//
// Resolution is best-effort and order-preserving: a candidate with no match
// is dropped from the output, never an error. Lookups are rate-limited to
// stay under the catalog API's limits.
type Resolver struct {
	music   services.MusicService
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewResolver creates a [Resolver] issuing at most searchRate lookups per second.
func NewResolver(music services.MusicService, searchRate float64, logger *log.Logger) *Resolver {
	if searchRate <= 0 {
		searchRate = 5
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		music:   music,
		limiter: rate.NewLimiter(rate.Limit(searchRate), 1),
		logger:  logger,
	}
}

// Resolve looks up each candidate and returns the matches in input order.
//
// The output may be shorter than the input; that is expected, not a defect.
// A transport error aborts resolution and is returned to the caller. The
// optional onLookup callback fires before each lookup for progress display.
func (r *Resolver) Resolve(ctx context.Context, accessToken string, candidates []models.SongCandidate, onLookup func(step int, candidate models.SongCandidate)) ([]models.ResolvedTrack, error) {
	resolved := make([]models.ResolvedTrack, 0, len(candidates))

	for i, candidate := range candidates {
		if onLookup != nil {
			onLookup(i+1, candidate)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		result, err := r.music.SearchTrack(ctx, accessToken, candidate)
		if err != nil {
			return nil, fmt.Errorf("%w: search for %q by %q: %v", shared.ErrUpstream, candidate.Song, candidate.Artist, err)
		}

		if !result.Found {
			r.logger.Info("no catalog match, dropping candidate", "song", candidate.Song, "artist", candidate.Artist)
			continue
		}

		resolved = append(resolved, result.Track)
	}

	return resolved, nil
}
