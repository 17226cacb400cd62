package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, tag_name, run_time, status, reasons, uc4_status, check_type"

// RecordRun appends a check outcome for a tag. Outcomes are immutable
// once written.
func (s *Store) RecordRun(ctx context.Context, tagName string, status RunStatus, reasons []string, uc4Status string, checkType CheckType, runTime time.Time) error {
	if reasons == nil {
		reasons = []string{}
	}
	serialized, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO process_runs (tag_name, run_time, status, reasons, uc4_status, check_type)
         VALUES (?, ?, ?, ?, ?, ?)`,
		tagName,
		formatTime(runTime),
		string(status),
		string(serialized),
		uc4Status,
		string(checkType),
	)
	if err != nil {
		return fmt.Errorf("record run for %q: %w", tagName, err)
	}
	return nil
}

// LatestRun returns the most recent run for a tag, or nil when the tag
// has no history. Latest means greatest run time, ties broken by insert
// order.
func (s *Store) LatestRun(ctx context.Context, tagName string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM process_runs
         WHERE tag_name = ? ORDER BY run_time DESC, id DESC LIMIT 1`,
		tagName,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run for %q: %w", tagName, err)
	}
	return &run, nil
}

// LatestRuns returns the most recent run per tag in one query.
func (s *Store) LatestRuns(ctx context.Context) (map[string]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pr.id, pr.tag_name, pr.run_time, pr.status, pr.reasons, pr.uc4_status, pr.check_type
         FROM process_runs pr
         JOIN (SELECT tag_name, MAX(id) AS max_id FROM process_runs GROUP BY tag_name) latest
         ON pr.id = latest.max_id`)
	if err != nil {
		return nil, fmt.Errorf("latest runs: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]Run)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		latest[run.TagName] = run
	}
	return latest, rows.Err()
}

// RunHistory returns runs for a tag, newest first, capped at limit
// (unlimited when limit <= 0).
func (s *Store) RunHistory(ctx context.Context, tagName string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM process_runs
         WHERE tag_name = ? ORDER BY run_time DESC, id DESC`
	args := []any{tagName}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("run history for %q: %w", tagName, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		runTimeRaw sql.NullString
		statusRaw  string
		reasonsRaw sql.NullString
		uc4Status  sql.NullString
		checkType  sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.TagName, &runTimeRaw, &statusRaw, &reasonsRaw, &uc4Status, &checkType); err != nil {
		return Run{}, err
	}

	run.Status = RunStatus(statusRaw)
	run.UC4Status = uc4Status.String
	run.CheckType = CheckType(checkType.String)

	run.Reasons = []string{}
	if reasonsRaw.Valid && reasonsRaw.String != "" {
		// Malformed reason payloads decode to an empty list.
		var reasons []string
		if err := json.Unmarshal([]byte(reasonsRaw.String), &reasons); err == nil && reasons != nil {
			run.Reasons = reasons
		}
	}

	if parsed, err := parseTimeString(runTimeRaw.String); err == nil {
		run.RunTime = parsed
	}
	return run, nil
}
