package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventType(t *testing.T) {
	t.Run("Known Types Are Valid", func(t *testing.T) {
		for _, kind := range []EventType{EventRequest, EventCreated, EventFailed} {
			if !kind.Valid() {
				t.Errorf("expected %s to be valid", kind)
			}
		}
	})

	t.Run("Unknown Type Is Invalid", func(t *testing.T) {
		if EventType("DELIVERED").Valid() {
			t.Error("expected unknown type to be invalid")
		}
		if EventType("").Valid() {
			t.Error("expected empty type to be invalid")
		}
	})
}

func TestCredential(t *testing.T) {
	valid := func() *Credential {
		return &Credential{
			UserID:       "42",
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		}
	}

	t.Run("Validate", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("expected valid credential, got %v", err)
		}

		cases := []struct {
			name   string
			mutate func(*Credential)
		}{
			{"Missing User ID", func(c *Credential) { c.UserID = "  " }},
			{"Missing Access Token", func(c *Credential) { c.AccessToken = "" }},
			{"Missing Refresh Token", func(c *Credential) { c.RefreshToken = "" }},
			{"Missing Expiry", func(c *Credential) { c.ExpiresAt = time.Time{} }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				cred := valid()
				tc.mutate(cred)
				if err := cred.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})

	t.Run("Expired", func(t *testing.T) {
		now := time.Now()

		cred := valid()
		cred.ExpiresAt = now.Add(time.Minute)
		if cred.Expired(now) {
			t.Error("future expiry should not be expired")
		}

		cred.ExpiresAt = now.Add(-time.Minute)
		if !cred.Expired(now) {
			t.Error("past expiry should be expired")
		}

		// An exactly-at-expiry token must not be used.
		cred.ExpiresAt = now
		if !cred.Expired(now) {
			t.Error("expiry instant should count as expired")
		}
	})
}

func TestEvent(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		event := &Event{UserID: "42", Type: EventRequest}
		if err := event.Validate(); err != nil {
			t.Errorf("expected valid event, got %v", err)
		}

		if err := (&Event{Type: EventRequest}).Validate(); err == nil {
			t.Error("expected error for missing user_id")
		}
		if err := (&Event{UserID: "42", Type: "BOGUS"}).Validate(); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}

func TestPlaylistRecord(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		record := &PlaylistRecord{UserID: "42", Name: "rainy day chill"}
		if err := record.Validate(); err != nil {
			t.Errorf("expected valid record, got %v", err)
		}

		if err := (&PlaylistRecord{Name: "x"}).Validate(); err == nil {
			t.Error("expected error for missing user_id")
		}
		if err := (&PlaylistRecord{UserID: "42"}).Validate(); err == nil {
			t.Error("expected error for missing name")
		}
	})
}

func TestSongCandidate(t *testing.T) {
	t.Run("JSON Shape", func(t *testing.T) {
		payload := `{"playlist": [{"artist": "Nina Simone", "song": "Feeling Good"}]}`

		var parsed struct {
			Playlist []SongCandidate `json:"playlist"`
		}
		if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
			t.Fatalf("expected parse, got %v", err)
		}
		if len(parsed.Playlist) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(parsed.Playlist))
		}
		if parsed.Playlist[0].Artist != "Nina Simone" || parsed.Playlist[0].Song != "Feeling Good" {
			t.Errorf("unexpected candidate %+v", parsed.Playlist[0])
		}
	})
}
