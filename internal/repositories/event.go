package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/shared"
)

// EventRepository persists [models.Event] records.
//
// Events are append-only and immutable once written; there is no update or
// delete path.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new [EventRepository] with the given database connection
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append inserts a new event with generated ID, sequence, and timestamp.
//
// The timestamp is stamped here unless the caller already set one.
func (r *EventRepository) Append(event *models.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "events")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	event.ID = shared.GenerateID()
	event.Sequence = sequence
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `
		INSERT INTO events (id, sequence, user_id, event_type, timestamp, metadata) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, event.ID, sequence, event.UserID, string(event.Type), event.Timestamp, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// ListByUser retrieves all events for a user in append order.
func (r *EventRepository) ListByUser(userID string) ([]*models.Event, error) {
	query := `
		SELECT id, sequence, user_id, event_type, timestamp, metadata
		FROM events
		WHERE user_id = ?
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// List retrieves all events across users in append order.
func (r *EventRepository) List() ([]*models.Event, error) {
	query := `
		SELECT id, sequence, user_id, event_type, timestamp, metadata
		FROM events
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		var (
			event    models.Event
			kind     string
			metadata string
		)

		if err := rows.Scan(&event.ID, &event.Sequence, &event.UserID, &kind, &event.Timestamp, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event.Type = models.EventType(kind)
		if err := json.Unmarshal([]byte(metadata), &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}
