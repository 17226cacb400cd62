package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTag indicates a registry operation referenced a tag that was
// never registered.
var ErrUnknownTag = errors.New("unknown tag")

// ErrConfigPairing indicates a folder configuration violated the rule
// that a scheduled time and a check query are set together or not at all.
var ErrConfigPairing = errors.New("scheduled time and check query must be set together")

const processColumns = "id, tag_name, folder_path, check_uc4_file, scheduled_time, check_query"

// ListMonitoredProcesses returns all processes with a configured folder,
// ordered by tag name. Processes without a folder are registered but not
// yet monitored.
func (s *Store) ListMonitoredProcesses(ctx context.Context) ([]Process, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+processColumns+` FROM processes WHERE folder_path != '' ORDER BY tag_name`)
	if err != nil {
		return nil, fmt.Errorf("list monitored processes: %w", err)
	}
	defer rows.Close()
	return scanProcesses(rows)
}

// GetProcess fetches a single process by tag, or nil when absent.
func (s *Store) GetProcess(ctx context.Context, tagName string) (*Process, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+processColumns+` FROM processes WHERE tag_name = ?`, tagName)
	proc, err := scanProcess(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get process: %w", err)
	}
	return &proc, nil
}

// ListTags returns every registered tag name, configured or not.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag_name FROM processes ORDER BY tag_name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// AddTag registers a new tag with no folder configuration. Duplicate tags
// are rejected by the unique constraint.
func (s *Store) AddTag(ctx context.Context, tagName string) error {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return errors.New("tag name is required")
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO processes (tag_name, folder_path) VALUES (?, '')`, tagName); err != nil {
		return fmt.Errorf("add tag %q: %w", tagName, err)
	}
	return nil
}

// RemoveTag deletes a tag definition. Run history and fatal events for
// the tag are intentionally left in place.
func (s *Store) RemoveTag(ctx context.Context, tagName string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM processes WHERE tag_name = ?`, tagName)
	if err != nil {
		return fmt.Errorf("remove tag %q: %w", tagName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagName)
	}
	return nil
}

// SetFolderConfig attaches or replaces the check configuration for a
// registered tag. A scheduled time and a check query must be provided
// together or not at all.
func (s *Store) SetFolderConfig(ctx context.Context, tagName, folderPath string, checkUC4 bool, scheduledTime, checkQuery string) error {
	tagName = strings.TrimSpace(tagName)
	folderPath = strings.TrimSpace(folderPath)
	scheduledTime = strings.TrimSpace(scheduledTime)
	checkQuery = strings.TrimSpace(checkQuery)

	if tagName == "" || folderPath == "" {
		return errors.New("tag name and folder path are required")
	}
	if (scheduledTime == "") != (checkQuery == "") {
		return ErrConfigPairing
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE processes
         SET folder_path = ?, check_uc4_file = ?, scheduled_time = ?, check_query = ?
         WHERE tag_name = ?`,
		folderPath,
		boolToInt(checkUC4),
		nullableString(scheduledTime),
		nullableString(checkQuery),
		tagName,
	)
	if err != nil {
		return fmt.Errorf("set folder config for %q: %w", tagName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagName)
	}
	return nil
}

// ClearFolderConfig detaches the folder configuration from a tag,
// excluding it from future monitoring cycles.
func (s *Store) ClearFolderConfig(ctx context.Context, tagName string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE processes
         SET folder_path = '', check_uc4_file = 0, scheduled_time = NULL, check_query = NULL
         WHERE tag_name = ?`,
		tagName,
	)
	if err != nil {
		return fmt.Errorf("clear folder config for %q: %w", tagName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tagName)
	}
	return nil
}

func scanProcesses(rows *sql.Rows) ([]Process, error) {
	var procs []Process
	for rows.Next() {
		proc, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		procs = append(procs, proc)
	}
	return procs, rows.Err()
}

func scanProcess(scanner interface{ Scan(dest ...any) error }) (Process, error) {
	var (
		proc          Process
		checkUC4      sql.NullInt64
		scheduledTime sql.NullString
		checkQuery    sql.NullString
	)
	if err := scanner.Scan(&proc.ID, &proc.TagName, &proc.FolderPath, &checkUC4, &scheduledTime, &checkQuery); err != nil {
		return Process{}, err
	}
	proc.CheckUC4File = checkUC4.Valid && checkUC4.Int64 != 0
	proc.ScheduledTime = strings.TrimSpace(scheduledTime.String)
	proc.CheckQuery = strings.TrimSpace(checkQuery.String)
	return proc, nil
}
