package services

import (
	"context"

	"github.com/spotifire/spotifire/internal/models"
	"golang.org/x/oauth2"
)

// MusicService defines the music-service collaborator contract.
//
// Access tokens are passed per call rather than held by the client, so one
// client instance serves every user.
type MusicService interface {
	// AuthorizeURL builds the OAuth authorize link carrying the given state.
	AuthorizeURL(state string) string

	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Refresh performs a refresh-token grant and returns the new token pair.
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	// CurrentUser retrieves the profile of the token's owner.
	CurrentUser(ctx context.Context, accessToken string) (*UserProfile, error)

	// SearchTrack looks up the single best catalog match for a candidate.
	// A missing match is a [SearchResult] with Found unset, not an error.
	SearchTrack(ctx context.Context, accessToken string, candidate models.SongCandidate) (SearchResult, error)

	// CreatePlaylist creates an empty playlist container owned by ownerID.
	CreatePlaylist(ctx context.Context, accessToken, ownerID, name string, public bool) (*CreatedPlaylist, error)

	// AddTracks attaches track URIs to an existing playlist.
	AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) error

	// UploadCover replaces a playlist's cover image with the given JPEG bytes.
	UploadCover(ctx context.Context, accessToken, playlistID string, image []byte) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Generator defines the song generation collaborator contract.
type Generator interface {
	// Generate produces count song candidates for a free-text theme.
	Generate(ctx context.Context, prompt string, count int) ([]models.SongCandidate, error)
}

// ArtworkService defines the cover art collaborator contract.
type ArtworkService interface {
	// Generate returns image bytes for a free-text prompt.
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// UserProfile identifies the authenticated user at the music service.
type UserProfile struct {
	ID          string
	DisplayName string
}

// SearchResult is the explicit outcome of a single catalog lookup.
//
// Found distinguishes "no match" from transport failure, which is returned
// as an error instead.
type SearchResult struct {
	Found bool
	Track models.ResolvedTrack
}

// CreatedPlaylist is the container returned by playlist creation.
type CreatedPlaylist struct {
	ID   string
	Name string
	URL  string
}
