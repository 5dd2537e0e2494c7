// Spotify API implementation of [MusicService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// maxCoverBytes is Spotify's documented limit for cover uploads (256 KB of base64 payload).
	maxCoverBytes = 256 * 1024
)

// spotifyUser represents a Spotify user profile.
type spotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyArtist struct {
	Name string `json:"name"`
}

// spotifyTrack represents a Spotify track in search results.
type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	URI     string          `json:"uri"`
	Artists []spotifyArtist `json:"artists"`
}

type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// spotifyPlaylist represents a playlist container returned by creation.
type spotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// SpotifyClient implements [MusicService] against the Spotify Web API.
//
// Uses [oauth2] for the authorize/exchange/refresh flows. The client holds
// no token state; callers pass the access token on every request.
type SpotifyClient struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyClient creates a new Spotify client with the given OAuth2 credentials.
func NewSpotifyClient(cfg shared.SpotifyConfig) (*SpotifyClient, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
			"ugc-image-upload",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyClient{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyClient) Name() string {
	return "Spotify"
}

// AuthorizeURL returns the OAuth2 authorization URL for user login.
//
// State carries the requesting user's ID so the callback can key the stored
// token to the right user.
func (s *SpotifyClient) AuthorizeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for a token pair.
func (s *SpotifyClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExchangeFailed, err)
	}
	return token, nil
}

// Refresh performs a single refresh-token grant.
//
// Spotify does not always rotate the refresh token; callers must fall back
// to the old one when the response omits it.
func (s *SpotifyClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", shared.ErrRefreshFailed)
	}

	source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	return token, nil
}

// doRequest performs an authenticated HTTP request against the Spotify API.
//
// A []byte body is sent verbatim as image/jpeg; any other non-nil body is
// JSON-encoded.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint, accessToken string, body any, result any) error {
	if accessToken == "" {
		return fmt.Errorf("%w: no access token", shared.ErrNotAuthenticated)
	}

	var reader io.Reader
	contentType := "application/json"

	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
		contentType = "image/jpeg"
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyClient) CurrentUser(ctx context.Context, accessToken string) (*UserProfile, error) {
	var user spotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &UserProfile{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// SearchTrack looks up the top catalog match for a candidate.
//
// The query combines track and artist fields and requests a single result.
// An empty result set returns Found=false with no error.
func (s *SpotifyClient) SearchTrack(ctx context.Context, accessToken string, candidate models.SongCandidate) (SearchResult, error) {
	query := fmt.Sprintf("track:%s artist:%s", candidate.Song, candidate.Artist)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, accessToken, nil, &response); err != nil {
		return SearchResult{}, err
	}

	if len(response.Tracks.Items) == 0 {
		return SearchResult{}, nil
	}

	top := response.Tracks.Items[0]
	return SearchResult{
		Found: true,
		Track: models.ResolvedTrack{
			Candidate: candidate,
			TrackID:   top.ID,
			URI:       top.URI,
		},
	}, nil
}

// CreatePlaylist creates an empty playlist container owned by ownerID.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, accessToken, ownerID, name string, public bool) (*CreatedPlaylist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(ownerID))
	body := map[string]any{
		"name":   name,
		"public": public,
	}

	var playlist spotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, accessToken, body, &playlist); err != nil {
		return nil, err
	}

	return &CreatedPlaylist{
		ID:   playlist.ID,
		Name: playlist.Name,
		URL:  playlist.ExternalURLs.Spotify,
	}, nil
}

// AddTracks attaches track URIs to a playlist at position 0.
func (s *SpotifyClient) AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string]any{
		"uris":     uris,
		"position": 0,
	}

	return s.doRequest(ctx, http.MethodPost, endpoint, accessToken, body, nil)
}

// UploadCover replaces a playlist's cover image.
//
// Spotify expects the JPEG bytes base64-encoded as the raw request body.
func (s *SpotifyClient) UploadCover(ctx context.Context, accessToken, playlistID string, image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: empty image", shared.ErrInvalidInput)
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	if len(encoded) > maxCoverBytes {
		return fmt.Errorf("%w: cover image exceeds %d bytes encoded", shared.ErrInvalidInput, maxCoverBytes)
	}

	endpoint := fmt.Sprintf("/playlists/%s/images", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPut, endpoint, accessToken, []byte(encoded), nil)
}
