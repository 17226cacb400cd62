package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"procwatch/internal/check"
	"procwatch/internal/config"
	"procwatch/internal/logging"
	"procwatch/internal/store"
)

// scheduledTimeLayout is the accepted format for a process's daily check
// time (24-hour wall clock).
const scheduledTimeLayout = "15:04"

// Engine runs one monitoring cycle over every configured process.
type Engine struct {
	store   *store.Store
	folders check.FolderChecker
	queries check.QueryChecker
	logger  *slog.Logger
}

// NewEngine constructs a cycle engine bound to the monitoring store.
func NewEngine(cfg *config.Config, st *store.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:   st,
		folders: check.NewFolderChecker(cfg.Markers),
		queries: check.NewQueryChecker(st),
		logger:  logging.NewComponentLogger(logger, "monitor"),
	}
}

// RunCycle evaluates every monitored process once at the given wall-clock
// time. Processes are handled sequentially in tag order; a failure
// recording one process's outcome is logged and does not stop the rest.
// Only a registry read failure aborts the cycle.
func (e *Engine) RunCycle(ctx context.Context, now time.Time) error {
	cycleLogger := e.logger.With(logging.String(logging.FieldCycleID, uuid.NewString()))

	processes, err := e.store.ListMonitoredProcesses(ctx)
	if err != nil {
		return fmt.Errorf("list monitored processes: %w", err)
	}

	cycleLogger.Debug("cycle started", logging.Int("processes", len(processes)))

	var firstErr error
	for _, proc := range processes {
		if err := e.evaluateProcess(ctx, cycleLogger, proc, now); err != nil {
			cycleLogger.Error("record outcome",
				logging.String(logging.FieldTag, proc.TagName),
				logging.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	cycleLogger.Debug("cycle finished")
	return firstErr
}

func (e *Engine) evaluateProcess(ctx context.Context, logger *slog.Logger, proc store.Process, now time.Time) error {
	if proc.Scheduled() {
		return e.runScheduledCheck(ctx, logger, proc, now)
	}
	return e.runFilesystemCheck(ctx, logger, proc, now)
}

// runScheduledCheck handles the query-based path. The registry prevents a
// scheduled time without a query, but a violating row still produces a
// Failed outcome rather than a crash.
func (e *Engine) runScheduledCheck(ctx context.Context, logger *slog.Logger, proc store.Process, now time.Time) error {
	if proc.CheckQuery == "" {
		return e.recordFailed(ctx, proc.TagName,
			[]string{"Scheduled time set without a database query"}, now)
	}

	scheduled, err := time.Parse(scheduledTimeLayout, proc.ScheduledTime)
	if err != nil {
		return e.recordFailed(ctx, proc.TagName,
			[]string{fmt.Sprintf("Invalid scheduled time format: %s", proc.ScheduledTime)}, now)
	}

	if beforeTimeOfDay(now, scheduled) {
		return nil
	}

	latest, err := e.store.LatestRun(ctx, proc.TagName)
	if err != nil {
		return fmt.Errorf("latest run: %w", err)
	}
	if latest != nil && !latest.RunTime.IsZero() && sameDate(latest.RunTime, now) {
		// Already fired today; at most one query outcome per calendar day.
		return nil
	}

	result := e.queries.Evaluate(ctx, proc.CheckQuery)
	reasons := []string{}
	if result.Failed {
		reason := result.Reason
		if reason == "" {
			reason = "Database query check failed"
		}
		reasons = append(reasons, reason)
	}

	status := store.StatusSuccess
	if len(reasons) > 0 {
		status = store.StatusFailed
	}

	logger.Info("scheduled check evaluated",
		logging.String(logging.FieldTag, proc.TagName),
		logging.String(logging.FieldCheckType, string(store.CheckDBQuery)),
		logging.String("status", string(status)),
	)
	return e.store.RecordRun(ctx, proc.TagName, status, reasons, store.UC4NotApplicable, store.CheckDBQuery, now)
}

// runFilesystemCheck handles the marker-file path, which fires on every
// cycle tick.
func (e *Engine) runFilesystemCheck(ctx context.Context, logger *slog.Logger, proc store.Process, now time.Time) error {
	fileCheck := e.folders.EvaluateFolder(proc.FolderPath)
	folderMissing := fileCheck.Failed && strings.HasPrefix(fileCheck.Reason, "Folder missing:")

	var uc4Check *check.Result
	if proc.CheckUC4File && !folderMissing {
		result := e.folders.EvaluateUC4File(proc.FolderPath)
		uc4Check = &result
	}

	reasons := []string{}
	if fileCheck.Failed {
		reason := fileCheck.Reason
		if reason == "" {
			reason = "Filesystem check failed"
		}
		reasons = append(reasons, reason)
	}
	if uc4Check != nil && uc4Check.Failed {
		reason := uc4Check.Reason
		if reason == "" {
			reason = "UC4 file check failed"
		}
		reasons = append(reasons, reason)
	}

	var uc4Status string
	switch {
	case !proc.CheckUC4File:
		uc4Status = store.UC4NotEnabled
	case folderMissing:
		uc4Status = store.UC4FolderMissing
	case uc4Check != nil && uc4Check.Failed:
		uc4Status = uc4Check.Reason
		if uc4Status == "" {
			uc4Status = "Failed"
		}
	default:
		uc4Status = store.UC4OK
	}

	status := store.StatusSuccess
	if len(reasons) > 0 {
		status = store.StatusFailed
	}

	logger.Info("filesystem check evaluated",
		logging.String(logging.FieldTag, proc.TagName),
		logging.String(logging.FieldCheckType, string(store.CheckFilesystem)),
		logging.String("status", string(status)),
	)
	return e.store.RecordRun(ctx, proc.TagName, status, reasons, uc4Status, store.CheckFilesystem, now)
}

func (e *Engine) recordFailed(ctx context.Context, tagName string, reasons []string, now time.Time) error {
	return e.store.RecordRun(ctx, tagName, store.StatusFailed, reasons, store.UC4NotApplicable, store.CheckDBQuery, now)
}

// beforeTimeOfDay reports whether now's wall-clock time of day is earlier
// than the scheduled time of day.
func beforeTimeOfDay(now, scheduled time.Time) bool {
	nowMinutes := now.Hour()*60 + now.Minute()
	schedMinutes := scheduled.Hour()*60 + scheduled.Minute()
	if nowMinutes != schedMinutes {
		return nowMinutes < schedMinutes
	}
	return now.Second() < scheduled.Second()
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
