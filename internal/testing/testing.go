// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/services"
	"golang.org/x/oauth2"
)

// MockMusicService is a configurable test double for [services.MusicService].
//
// Zero value behaves as a healthy service where every search matches.
type MockMusicService struct {
	SearchErr      error
	NotFound       map[string]bool // keyed by song name
	CreateErr      error
	AddErr         error
	CoverErr       error
	ProfileErr     error
	RefreshErr     error
	RefreshedToken *oauth2.Token

	SearchCalls  []models.SongCandidate
	RefreshCalls int
	AddedURIs    []string
	CoverUploads int
}

func (m *MockMusicService) Name() string { return "mock" }

func (m *MockMusicService) AuthorizeURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockMusicService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("missing code")
	}
	return &oauth2.Token{
		AccessToken:  "exchanged-" + code,
		RefreshToken: "refresh-" + code,
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

func (m *MockMusicService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	m.RefreshCalls++
	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	if m.RefreshedToken != nil {
		return m.RefreshedToken, nil
	}
	return &oauth2.Token{
		AccessToken:  "refreshed-access",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

func (m *MockMusicService) CurrentUser(ctx context.Context, accessToken string) (*services.UserProfile, error) {
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	return &services.UserProfile{ID: "mock-user", DisplayName: "Mock User"}, nil
}

func (m *MockMusicService) SearchTrack(ctx context.Context, accessToken string, candidate models.SongCandidate) (services.SearchResult, error) {
	m.SearchCalls = append(m.SearchCalls, candidate)
	if m.SearchErr != nil {
		return services.SearchResult{}, m.SearchErr
	}
	if m.NotFound[candidate.Song] {
		return services.SearchResult{}, nil
	}
	return services.SearchResult{
		Found: true,
		Track: models.ResolvedTrack{
			Candidate: candidate,
			TrackID:   "id-" + candidate.Song,
			URI:       "spotify:track:" + candidate.Song,
		},
	}, nil
}

func (m *MockMusicService) CreatePlaylist(ctx context.Context, accessToken, ownerID, name string, public bool) (*services.CreatedPlaylist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return &services.CreatedPlaylist{
		ID:   "playlist-1",
		Name: name,
		URL:  "https://open.spotify.com/playlist/playlist-1",
	}, nil
}

func (m *MockMusicService) AddTracks(ctx context.Context, accessToken, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedURIs = append(m.AddedURIs, uris...)
	return nil
}

func (m *MockMusicService) UploadCover(ctx context.Context, accessToken, playlistID string, image []byte) error {
	if m.CoverErr != nil {
		return m.CoverErr
	}
	m.CoverUploads++
	return nil
}

// MockGenerator is a test double for [services.Generator].
type MockGenerator struct {
	Candidates []models.SongCandidate
	Err        error
	LastCount  int
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, count int) ([]models.SongCandidate, error) {
	m.LastCount = count
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Candidates != nil {
		return m.Candidates, nil
	}
	candidates := make([]models.SongCandidate, count)
	for i := range candidates {
		candidates[i] = models.SongCandidate{
			Artist: fmt.Sprintf("Artist %d", i+1),
			Song:   fmt.Sprintf("Song %d", i+1),
		}
	}
	return candidates, nil
}

// MockArtwork is a test double for [services.ArtworkService].
type MockArtwork struct {
	Image []byte
	Err   error
}

func (m *MockArtwork) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Image != nil {
		return m.Image, nil
	}
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
