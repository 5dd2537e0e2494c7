package main

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/repositories"
	"github.com/spotifire/spotifire/internal/shared"
	tu "github.com/spotifire/spotifire/internal/testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			db := setupTestDB(t)
			music := &tu.MockMusicService{}
			generator := &tu.MockGenerator{}
			artwork := &tu.MockArtwork{}

			runner := NewRunner(RunnerOpts{
				Config:    config,
				DB:        db,
				Music:     music,
				Generator: generator,
				Artwork:   artwork,
				Logger:    logger,
				Output:    output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.creds == nil || runner.events == nil || runner.history == nil {
				t.Error("expected repositories to be constructed")
			}
			if runner.tokens == nil {
				t.Error("expected token manager to be constructed")
			}
			if runner.engine == nil {
				t.Error("expected assembly engine to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("without database skips repositories", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Music: &tu.MockMusicService{}})

			if runner.creds != nil {
				t.Error("expected no repositories without a database")
			}
			if runner.tokens != nil {
				t.Error("expected no token manager without a credential store")
			}
			if runner.engine != nil {
				t.Error("expected no engine without a token manager")
			}
		})

		t.Run("without generator skips engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				DB:    setupTestDB(t),
				Music: &tu.MockMusicService{},
			})

			if runner.tokens == nil {
				t.Error("expected token manager")
			}
			if runner.engine != nil {
				t.Error("expected no engine without a generator")
			}
		})
	})

	t.Run("requireStore", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if err := runner.requireStore(); err == nil {
			t.Error("expected error without a database")
		}

		runner = NewRunner(RunnerOpts{DB: setupTestDB(t)})
		if err := runner.requireStore(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("requireAuth", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if err := runner.requireAuth(); err == nil {
			t.Error("expected error without a music service")
		}

		runner = NewRunner(RunnerOpts{DB: setupTestDB(t), Music: &tu.MockMusicService{}})
		if err := runner.requireAuth(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "{\"key\":\"value\"}\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		t.Run("pretty", func(t *testing.T) {
			output.Reset()
			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !bytes.Contains(output.Bytes(), []byte("  \"key\": \"value\"")) {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := failing.writeJSON(map[string]string{}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("loadEvents", func(t *testing.T) {
		db := setupTestDB(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{DB: db, Output: output})

		events := repositories.NewEventRepository(db)
		for _, userID := range []string{"42", "42", "7"} {
			if err := events.Append(&models.Event{
				UserID:    userID,
				Type:      models.EventRequest,
				Timestamp: time.Now(),
				Metadata:  map[string]string{"prompt": "anything"},
			}); err != nil {
				t.Fatalf("failed to seed event: %v", err)
			}
		}

		scoped, err := runner.loadEvents("42")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(scoped) != 2 {
			t.Errorf("expected 2 events for user 42, got %d", len(scoped))
		}

		all, err := runner.loadEvents("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 events in total, got %d", len(all))
		}
	})
}
