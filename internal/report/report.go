package report

import (
	"context"
	"fmt"
	"time"

	"procwatch/internal/store"
)

// Row is the aggregated status of one registered tag.
type Row struct {
	TagName     string             `json:"tag_name"`
	FolderPath  string             `json:"folder_path"`
	Status      store.RunStatus    `json:"status"`
	UC4Status   string             `json:"uc4_status"`
	Reasons     []string           `json:"reasons"`
	RunTime     time.Time          `json:"run_time,omitzero"`
	CheckType   store.CheckType    `json:"check_type,omitempty"`
	FatalEvents []store.FatalEvent `json:"fatal_events,omitempty"`
}

// Aggregator builds status rows from the monitoring store.
type Aggregator struct {
	store *store.Store
}

// NewAggregator binds an aggregator to the monitoring store.
func NewAggregator(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// BuildReports returns one row per configured process, in tag-name order.
// Tags without a folder are registered but not monitored, so they never
// appear here. Processes without any recorded run report Pending. Any
// fatal event on a process forces its status to Failed, whatever its
// latest run says.
func (a *Aggregator) BuildReports(ctx context.Context) ([]Row, error) {
	procs, err := a.store.ListMonitoredProcesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list monitored processes: %w", err)
	}
	latest, err := a.store.LatestRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest runs: %w", err)
	}

	rows := make([]Row, 0, len(procs))
	for _, proc := range procs {
		events, err := a.store.FatalEvents(ctx, proc.TagName)
		if err != nil {
			return nil, fmt.Errorf("fatal events for %q: %w", proc.TagName, err)
		}

		row := Row{
			TagName:     proc.TagName,
			FolderPath:  proc.FolderPath,
			Status:      store.StatusPending,
			UC4Status:   store.UC4NotYetRun,
			Reasons:     []string{},
			FatalEvents: events,
		}
		if run, ok := latest[proc.TagName]; ok {
			row.Status = run.Status
			row.UC4Status = run.UC4Status
			row.Reasons = append(row.Reasons, run.Reasons...)
			row.RunTime = run.RunTime
			row.CheckType = run.CheckType
		}
		if len(events) > 0 {
			row.Reasons = append(row.Reasons, "Fatal event(s) recorded")
			row.Status = store.StatusFailed
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Failed returns only the rows whose aggregated status is Failed.
func (a *Aggregator) Failed(ctx context.Context) ([]Row, error) {
	rows, err := a.BuildReports(ctx)
	if err != nil {
		return nil, err
	}
	return FilterFailed(rows), nil
}

// FilterFailed keeps the rows whose status is exactly Failed.
func FilterFailed(rows []Row) []Row {
	failed := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Status == store.StatusFailed {
			failed = append(failed, row)
		}
	}
	return failed
}
