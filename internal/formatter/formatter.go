// package formatter provides functions to export audit events and playlist history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/spotifire/spotifire/internal/models"
)

// EventsToCSV converts audit events to CSV with columns: Sequence, UserID, Type, Timestamp, Prompt, SongsCount
func EventsToCSV(events []*models.Event) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "UserID", "Type", "Timestamp", "Prompt", "SongsCount"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, event := range events {
		record := []string{
			fmt.Sprintf("%d", event.Sequence),
			event.UserID,
			string(event.Type),
			event.Timestamp.Format(time.RFC3339),
			event.Metadata["prompt"],
			event.Metadata["songs_count"],
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// EventsToMarkdown converts audit events to a Markdown report.
func EventsToMarkdown(events []*models.Event) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Audit Events\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", len(events)))

	counts := map[models.EventType]int{}
	for _, event := range events {
		counts[event.Type]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		buf.WriteString(fmt.Sprintf("- %s: %d\n", kind, counts[models.EventType(kind)]))
	}
	buf.WriteString("\n## Timeline\n\n")

	for _, event := range events {
		line := fmt.Sprintf("%d. `%s` **%s** user %s", event.Sequence, event.Timestamp.Format(time.RFC3339), event.Type, event.UserID)
		if prompt := event.Metadata["prompt"]; prompt != "" {
			line += fmt.Sprintf(" %q", prompt)
		}
		if count := event.Metadata["songs_count"]; count != "" {
			line += fmt.Sprintf(" (%s songs)", count)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes()
}

// HistoryToText converts a user's playlist history to plain text, one line per record.
func HistoryToText(records []*models.PlaylistRecord) []byte {
	var buf bytes.Buffer
	for i, record := range records {
		buf.WriteString(fmt.Sprintf("%d. (%s) %s\n", i+1, record.CreatedAt.Format("2006-01-02 15:04"), record.Name))
	}
	return buf.Bytes()
}
