package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// FatalEvents returns the fatal events recorded for a tag, newest first.
// The monitoring core only reads this table; events are written by
// external collaborators (or RecordFatalEvent on their behalf).
func (s *Store) FatalEvents(ctx context.Context, tagName string) ([]FatalEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tag_name, event_time, description FROM fatal_events
         WHERE tag_name = ? ORDER BY event_time DESC, id DESC`,
		tagName,
	)
	if err != nil {
		return nil, fmt.Errorf("list fatal events for %q: %w", tagName, err)
	}
	defer rows.Close()

	var events []FatalEvent
	for rows.Next() {
		var (
			event        FatalEvent
			eventTimeRaw sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.TagName, &eventTimeRaw, &event.Description); err != nil {
			return nil, err
		}
		if parsed, err := parseTimeString(eventTimeRaw.String); err == nil {
			event.EventTime = parsed
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// RecordFatalEvent appends a fatal event for a tag. This is the entry
// point external process supervisors use to report crashes.
func (s *Store) RecordFatalEvent(ctx context.Context, tagName, description string, eventTime time.Time) error {
	tagName = strings.TrimSpace(tagName)
	description = strings.TrimSpace(description)
	if tagName == "" {
		return errors.New("tag name is required")
	}
	if description == "" {
		return errors.New("description is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fatal_events (tag_name, event_time, description) VALUES (?, ?, ?)`,
		tagName,
		formatTime(eventTime),
		description,
	)
	if err != nil {
		return fmt.Errorf("record fatal event for %q: %w", tagName, err)
	}
	return nil
}
