// package auth implements the token lifecycle: obtain, expiry check, refresh.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/repositories"
	"github.com/spotifire/spotifire/internal/shared"
	"golang.org/x/oauth2"
)

// Refresher performs a refresh-token grant against the music service.
//
// Implemented by [services.SpotifyClient].
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	AuthorizeURL(state string) string
}

// Manager governs validity and refresh of stored bearer credentials.
//
// It is the sole writer of the credential store's token fields. Obtains for
// the same user are serialized by a per-user mutex so two concurrent
// requests cannot trample each other's refresh.
type Manager struct {
	creds     *repositories.CredentialRepository
	refresher Refresher
	logger    *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// now is swappable for tests
	now func() time.Time
}

// NewManager creates a token lifecycle [Manager].
func NewManager(creds *repositories.CredentialRepository, refresher Refresher, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		creds:     creds,
		refresher: refresher,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// userLock returns the mutex serializing obtains for one user.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

// AuthorizeURL builds the authorize link for a user, carrying the user ID
// as the OAuth state so the callback can key the stored token correctly.
func (m *Manager) AuthorizeURL(userID string) string {
	return m.refresher.AuthorizeURL(userID)
}

// Obtain returns a credential whose access token is valid at the moment of
// return, refreshing and persisting it first when expired.
//
// Returns [shared.ErrNoCredential] when the user has no record and
// [shared.ErrRefreshFailed] when the refresh grant is rejected; both mean
// the user must re-authenticate, but they are logged distinctly. A failed
// refresh leaves the stored record untouched so a later manual re-auth can
// recover. The fast path (token still valid) performs zero store writes.
func (m *Manager) Obtain(ctx context.Context, userID string) (*models.Credential, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cred, err := m.creds.Get(userID)
	if err != nil {
		m.logger.Warn("no credential on record", "user_id", userID)
		return nil, err
	}

	if !cred.Expired(m.now()) {
		return cred, nil
	}

	token, err := m.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		m.logger.Error("refresh rejected, stored record left untouched", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: user %s", shared.ErrRefreshFailed, userID)
	}

	refreshed := &models.Credential{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	// Spotify may omit the refresh token when it does not rotate it.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	if refreshed.ExpiresAt.IsZero() {
		refreshed.ExpiresAt = m.now().Add(time.Hour)
	}

	if err := m.creds.Put(refreshed); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
	}

	m.logger.Info("access token refreshed", "user_id", userID, "expires_at", refreshed.ExpiresAt)
	return refreshed, nil
}

// Store persists a freshly exchanged token pair for a user.
//
// Used by the OAuth callback after code exchange.
func (m *Manager) Store(userID string, token *oauth2.Token) error {
	cred := &models.Credential{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = m.now().Add(time.Hour)
	}
	return m.creds.Put(cred)
}

// Revoke removes a user's stored credential.
func (m *Manager) Revoke(userID string) error {
	return m.creds.Delete(userID)
}
