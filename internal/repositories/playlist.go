package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/shared"
)

// PlaylistHistoryRepository persists the per-user append-only playlist name history.
//
// No dedup is enforced; the same name may recur.
type PlaylistHistoryRepository struct {
	db *sql.DB
}

// NewPlaylistHistoryRepository creates a new [PlaylistHistoryRepository] with the given database connection
func NewPlaylistHistoryRepository(db *sql.DB) *PlaylistHistoryRepository {
	return &PlaylistHistoryRepository{db: db}
}

// Append records a playlist name for a user with generated ID and sequence.
func (r *PlaylistHistoryRepository) Append(userID, name string) error {
	record := &models.PlaylistRecord{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.ID = shared.GenerateID()
	record.Sequence = sequence

	query := `
		INSERT INTO playlists (id, sequence, user_id, name, created_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, record.ID, sequence, record.UserID, record.Name, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert playlist record: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's playlist history in append order.
func (r *PlaylistHistoryRepository) ListByUser(userID string) ([]*models.PlaylistRecord, error) {
	query := `
		SELECT id, sequence, user_id, name, created_at
		FROM playlists
		WHERE user_id = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist history: %w", err)
	}
	defer rows.Close()

	var records []*models.PlaylistRecord
	for rows.Next() {
		var record models.PlaylistRecord
		if err := rows.Scan(&record.ID, &record.Sequence, &record.UserID, &record.Name, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
