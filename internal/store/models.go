package store

import "time"

// RunStatus is the persisted outcome status of a single check run.
type RunStatus string

const (
	StatusSuccess RunStatus = "Success"
	StatusFailed  RunStatus = "Failed"
	// StatusPending is never stored; the report layer uses it for tags
	// that have no run history yet.
	StatusPending RunStatus = "Pending"
)

// CheckType identifies which evaluator produced a run.
type CheckType string

const (
	CheckFilesystem CheckType = "filesystem"
	CheckDBQuery    CheckType = "db_query"
)

// UC4 status strings recorded alongside filesystem check runs.
const (
	UC4NotEnabled    = "Not enabled"
	UC4OK            = "OK"
	UC4FolderMissing = "Folder missing"
	UC4NotApplicable = "Not applicable"
	UC4NotYetRun     = "Not yet run"
)

// Process is a monitored-process definition from the registry. A process
// with an empty FolderPath is registered but not yet configured and is
// excluded from monitoring cycles.
type Process struct {
	ID            int64  `json:"id"`
	TagName       string `json:"tag_name"`
	FolderPath    string `json:"folder_path"`
	CheckUC4File  bool   `json:"check_uc4_file"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
	CheckQuery    string `json:"check_query,omitempty"`
}

// Scheduled reports whether the process uses a time-scheduled query check.
func (p Process) Scheduled() bool {
	return p.ScheduledTime != ""
}

// Run is one persisted check outcome for a tag. Immutable once written.
type Run struct {
	ID        int64     `json:"id"`
	TagName   string    `json:"tag_name"`
	RunTime   time.Time `json:"run_time"`
	Status    RunStatus `json:"status"`
	Reasons   []string  `json:"reasons"`
	UC4Status string    `json:"uc4_status"`
	CheckType CheckType `json:"check_type"`
}

// FatalEvent is an externally recorded crash associated with a tag.
type FatalEvent struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	EventTime   time.Time `json:"event_time"`
	Description string    `json:"description"`
}
