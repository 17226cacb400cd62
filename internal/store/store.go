package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"procwatch/internal/config"
)

// timeLayout is the persisted timestamp format: local wall-clock time at
// second precision. The once-per-day scheduling rule compares calendar
// dates of values in this format.
const timeLayout = "2006-01-02 15:04:05"

// Store manages procwatch persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the monitoring database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.DBPath)
}

// OpenPath connects to the database at the given path and applies the schema.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	st := &Store{db: db, path: dbPath}
	if err := st.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return st, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(connCtx); err != nil {
		return fmt.Errorf("ping monitoring database: %w", err)
	}
	return nil
}

// ProbeQuery executes a read-only query and reports how many rows it
// returned. Callers are responsible for restricting the statement to
// SELECT; the query evaluator enforces that before reaching here.
func (s *Store) ProbeQuery(ctx context.Context, query string) (int, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	return count, rows.Err()
}

func formatTime(value time.Time) string {
	return value.Truncate(time.Second).Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.ParseInLocation(timeLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
