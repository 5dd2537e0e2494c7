package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spotifire/spotifire/internal/formatter"
	"github.com/spotifire/spotifire/internal/models"
	"github.com/spotifire/spotifire/internal/shared"
	"github.com/spotifire/spotifire/internal/ui"
	"github.com/urfave/cli/v3"
)

// loadEvents fetches events for one user or all users.
func (r *Runner) loadEvents(userID string) ([]*models.Event, error) {
	if userID != "" {
		return r.events.ListByUser(userID)
	}
	return r.events.List()
}

// EventsList prints the audit event log.
func (r *Runner) EventsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	events, err := r.loadEvents(cmd.String("user"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(events, cmd.Bool("pretty"))
	}

	if len(events) == 0 {
		return r.writePlain("No events recorded\n")
	}

	for _, event := range events {
		line := fmt.Sprintf("%d  %s  %-7s  user %s", event.Sequence, event.Timestamp.Format(time.RFC3339), event.Type, event.UserID)
		if prompt := event.Metadata["prompt"]; prompt != "" {
			line += fmt.Sprintf("  %q", prompt)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// EventsExport writes the audit log to a file as CSV or Markdown.
func (r *Runner) EventsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	events, err := r.loadEvents(cmd.String("user"))
	if err != nil {
		return err
	}

	var data []byte
	format := cmd.String("format")
	switch format {
	case "csv":
		data, err = formatter.EventsToCSV(events)
		if err != nil {
			return err
		}
	case "md", "markdown":
		data = formatter.EventsToMarkdown(events)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidInput, format)
	}

	output := cmd.String("output")
	if output == "" {
		return r.writePlain("%s", string(data))
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return r.writePlain("✓ Exported %d events to %s\n", len(events), output)
}

// EventsTUI opens the interactive audit browser.
func (r *Runner) EventsTUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	events, err := r.loadEvents(cmd.String("user"))
	if err != nil {
		return err
	}

	return ui.Browse(events)
}

// History prints a user's playlist name history.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	userID := cmd.String("user")
	if userID == "" {
		return fmt.Errorf("%w: --user", shared.ErrMissingArgument)
	}

	records, err := r.history.ListByUser(userID)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return r.writePlain("No playlists recorded for %s\n", userID)
	}

	return r.writePlain("%s", string(formatter.HistoryToText(records)))
}
