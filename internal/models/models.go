package models

import (
	"fmt"
	"strings"
	"time"
)

// EventType enumerates audit event kinds.
type EventType string

const (
	EventRequest EventType = "REQUEST"
	EventCreated EventType = "CREATED"
	EventFailed  EventType = "FAILED"
)

// Valid reports whether the event type is one of the known kinds.
func (t EventType) Valid() bool {
	switch t {
	case EventRequest, EventCreated, EventFailed:
		return true
	}
	return false
}

// Credential is the durable per-user record of Spotify token material.
//
// Exactly one active record exists per UserID; writes are upserts keyed by
// UserID with last-writer-wins semantics.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	LastUpdate   time.Time
}

// Validate checks that the credential has an owner and token material.
func (c *Credential) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("credential missing user_id")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("credential missing access_token")
	}
	if c.RefreshToken == "" {
		return fmt.Errorf("credential missing refresh_token")
	}
	if c.ExpiresAt.IsZero() {
		return fmt.Errorf("credential missing expires_at")
	}
	return nil
}

// Expired reports whether the access token must not be used at the given instant.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// PlaylistRecord is one entry in a user's append-only playlist name history.
type PlaylistRecord struct {
	ID        string
	Sequence  int
	UserID    string
	Name      string
	CreatedAt time.Time
}

// Validate checks that the record has an owner and a name.
func (p *PlaylistRecord) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("playlist record missing user_id")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist record missing name")
	}
	return nil
}

// Event is an immutable audit record of a lifecycle milestone.
type Event struct {
	ID        string
	Sequence  int
	UserID    string
	Type      EventType
	Timestamp time.Time
	Metadata  map[string]string
}

// Validate checks that the event has an owner and a known type.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("event missing user_id")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("invalid event type: %q", e.Type)
	}
	return nil
}

// SongCandidate is one {artist, song} pair produced by the generation step.
//
// Candidates live for a single orchestration run and are never persisted.
type SongCandidate struct {
	Artist string `json:"artist"`
	Song   string `json:"song"`
}

// ResolvedTrack is a candidate matched to a Spotify catalog entry.
type ResolvedTrack struct {
	Candidate SongCandidate
	TrackID   string
	URI       string
}
