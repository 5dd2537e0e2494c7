package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/shared"
)

// CredentialRepository persists [models.Credential] records keyed by user.
//
// Put is an upsert: concurrent writes for the same user are last-writer-wins
// ordered by arrival at the database. No optimistic concurrency control.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Put inserts or replaces the credential record for cred.UserID.
//
// LastUpdate is stamped at write time.
func (r *CredentialRepository) Put(cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	cred.LastUpdate = now

	query := `
		INSERT INTO credentials (user_id, access_token, refresh_token, expires_at, last_update)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			last_update = excluded.last_update
	`

	_, err := r.db.Exec(query, cred.UserID, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt.UTC(), now)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}

// Get retrieves the credential for a user.
//
// Returns [shared.ErrNoCredential] when no record exists.
func (r *CredentialRepository) Get(userID string) (*models.Credential, error) {
	query := `
		SELECT user_id, access_token, refresh_token, expires_at, last_update
		FROM credentials
		WHERE user_id = ?
	`

	var cred models.Credential
	err := r.db.QueryRow(query, userID).Scan(
		&cred.UserID,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.ExpiresAt,
		&cred.LastUpdate,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoCredential, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	return &cred, nil
}

// Delete removes a user's credential record.
func (r *CredentialRepository) Delete(userID string) error {
	result, err := r.db.Exec("DELETE FROM credentials WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNoCredential, userID)
	}

	return nil
}
