package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ListRecipients returns the configured notification addresses in stable
// (alphabetical) order.
func (s *Store) ListRecipients(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email FROM notification_recipients ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var recipients []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		recipients = append(recipients, email)
	}
	return recipients, rows.Err()
}

// AddRecipient registers a notification address. Adding an existing
// address is a no-op (set semantics).
func (s *Store) AddRecipient(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notification_recipients (email) VALUES (?)`, email); err != nil {
		return fmt.Errorf("add recipient %q: %w", email, err)
	}
	return nil
}

// RemoveRecipient deletes a notification address.
func (s *Store) RemoveRecipient(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM notification_recipients WHERE email = ?`, email); err != nil {
		return fmt.Errorf("remove recipient %q: %w", email, err)
	}
	return nil
}
