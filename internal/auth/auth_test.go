package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/repositories"
	"github.com/spotifire/spotifire/internal/shared"
	tu "github.com/spotifire/spotifire/internal/testing"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func setupManager(t *testing.T, music *tu.MockMusicService) (*Manager, *repositories.CredentialRepository) {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	creds := repositories.NewCredentialRepository(db)
	return NewManager(creds, music, nil), creds
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Obtain", func(t *testing.T) {
		t.Run("No Record", func(t *testing.T) {
			manager, _ := setupManager(t, &tu.MockMusicService{})

			_, err := manager.Obtain(ctx, "stranger")
			if !errors.Is(err, shared.ErrNoCredential) {
				t.Errorf("expected ErrNoCredential, got %v", err)
			}
		})

		t.Run("Valid Token Skips Refresh", func(t *testing.T) {
			music := &tu.MockMusicService{}
			manager, creds := setupManager(t, music)

			stored := &models.Credential{
				UserID:       "42",
				AccessToken:  "still-good",
				RefreshToken: "refresh-42",
				ExpiresAt:    time.Now().Add(time.Hour),
			}
			if err := creds.Put(stored); err != nil {
				t.Fatalf("failed to seed credential: %v", err)
			}
			seeded, err := creds.Get("42")
			if err != nil {
				t.Fatalf("failed to read back seed: %v", err)
			}

			cred, err := manager.Obtain(ctx, "42")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cred.AccessToken != "still-good" {
				t.Errorf("expected stored token, got %s", cred.AccessToken)
			}
			if music.RefreshCalls != 0 {
				t.Errorf("expected no refresh calls, got %d", music.RefreshCalls)
			}

			// Fast path performs no store writes.
			after, err := creds.Get("42")
			if err != nil {
				t.Fatalf("failed to re-read credential: %v", err)
			}
			if !after.LastUpdate.Equal(seeded.LastUpdate) {
				t.Error("valid-token path should not touch the stored record")
			}
		})

		t.Run("Expired Token Refreshes Once", func(t *testing.T) {
			music := &tu.MockMusicService{
				RefreshedToken: &oauth2.Token{
					AccessToken:  "fresh-access",
					RefreshToken: "fresh-refresh",
					Expiry:       time.Now().Add(time.Hour),
				},
			}
			manager, creds := setupManager(t, music)

			expired := &models.Credential{
				UserID:       "42",
				AccessToken:  "stale",
				RefreshToken: "refresh-42",
				ExpiresAt:    time.Now().Add(-time.Minute),
			}
			if err := creds.Put(expired); err != nil {
				t.Fatalf("failed to seed credential: %v", err)
			}

			cred, err := manager.Obtain(ctx, "42")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cred.AccessToken != "fresh-access" {
				t.Errorf("expected refreshed token, got %s", cred.AccessToken)
			}
			if music.RefreshCalls != 1 {
				t.Errorf("expected exactly one refresh call, got %d", music.RefreshCalls)
			}

			// Refreshed pair must be persisted.
			stored, err := creds.Get("42")
			if err != nil {
				t.Fatalf("failed to read stored credential: %v", err)
			}
			if stored.AccessToken != "fresh-access" || stored.RefreshToken != "fresh-refresh" {
				t.Errorf("refreshed pair not persisted: %+v", stored)
			}
		})

		t.Run("Missing Rotated Refresh Token Keeps Old One", func(t *testing.T) {
			music := &tu.MockMusicService{
				RefreshedToken: &oauth2.Token{
					AccessToken: "fresh-access",
					Expiry:      time.Now().Add(time.Hour),
				},
			}
			manager, creds := setupManager(t, music)

			expired := &models.Credential{
				UserID:       "42",
				AccessToken:  "stale",
				RefreshToken: "original-refresh",
				ExpiresAt:    time.Now().Add(-time.Minute),
			}
			if err := creds.Put(expired); err != nil {
				t.Fatalf("failed to seed credential: %v", err)
			}

			cred, err := manager.Obtain(ctx, "42")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cred.RefreshToken != "original-refresh" {
				t.Errorf("expected original refresh token preserved, got %s", cred.RefreshToken)
			}
		})

		t.Run("Refresh Failure Leaves Record Untouched", func(t *testing.T) {
			music := &tu.MockMusicService{RefreshErr: errors.New("invalid_grant")}
			manager, creds := setupManager(t, music)

			expired := &models.Credential{
				UserID:       "42",
				AccessToken:  "stale",
				RefreshToken: "refresh-42",
				ExpiresAt:    time.Now().Add(-time.Minute),
			}
			if err := creds.Put(expired); err != nil {
				t.Fatalf("failed to seed credential: %v", err)
			}
			before, err := creds.Get("42")
			if err != nil {
				t.Fatalf("failed to read back seed: %v", err)
			}

			_, err = manager.Obtain(ctx, "42")
			if !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}

			after, err := creds.Get("42")
			if err != nil {
				t.Fatalf("failed to re-read credential: %v", err)
			}
			if after.AccessToken != before.AccessToken || after.RefreshToken != before.RefreshToken {
				t.Error("failed refresh must not modify the stored record")
			}
			if !after.LastUpdate.Equal(before.LastUpdate) {
				t.Error("failed refresh must not bump last_update")
			}
		})
	})

	t.Run("Store", func(t *testing.T) {
		manager, creds := setupManager(t, &tu.MockMusicService{})

		token := &oauth2.Token{
			AccessToken:  "exchanged",
			RefreshToken: "exchanged-refresh",
			Expiry:       time.Now().Add(time.Hour),
		}
		if err := manager.Store("42", token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		stored, err := creds.Get("42")
		if err != nil {
			t.Fatalf("failed to read stored credential: %v", err)
		}
		if stored.AccessToken != "exchanged" {
			t.Errorf("unexpected access token %s", stored.AccessToken)
		}
	})

	t.Run("Revoke", func(t *testing.T) {
		manager, creds := setupManager(t, &tu.MockMusicService{})

		if err := creds.Put(&models.Credential{
			UserID:       "42",
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}); err != nil {
			t.Fatalf("failed to seed credential: %v", err)
		}

		if err := manager.Revoke("42"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := creds.Get("42"); !errors.Is(err, shared.ErrNoCredential) {
			t.Errorf("expected ErrNoCredential after revoke, got %v", err)
		}

		if err := manager.Revoke("42"); !errors.Is(err, shared.ErrNoCredential) {
			t.Errorf("expected ErrNoCredential on double revoke, got %v", err)
		}
	})

	t.Run("AuthorizeURL Carries User ID As State", func(t *testing.T) {
		manager, _ := setupManager(t, &tu.MockMusicService{})

		url := manager.AuthorizeURL("42")
		if url != "https://accounts.example.com/authorize?state=42" {
			t.Errorf("unexpected authorize URL %s", url)
		}
	})
}
