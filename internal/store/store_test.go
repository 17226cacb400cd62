package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"procwatch/internal/store"
	"procwatch/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	tags, err := st.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected empty registry, got %v", tags)
	}
}

func TestAddTagRejectsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := st.AddTag(ctx, "billing-job"); err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	if err := st.AddTag(ctx, "billing-job"); err == nil {
		t.Fatal("expected duplicate tag error")
	}
}

func TestMonitoredProcessesExcludeUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.RegisterProcess(t, st, "unconfigured", "", false, "", "")
	testsupport.RegisterProcess(t, st, "configured", "/data/in", false, "", "")

	procs, err := st.ListMonitoredProcesses(ctx)
	if err != nil {
		t.Fatalf("ListMonitoredProcesses failed: %v", err)
	}
	if len(procs) != 1 || procs[0].TagName != "configured" {
		t.Fatalf("unexpected processes: %#v", procs)
	}

	tags, err := st.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected both tags registered, got %v", tags)
	}
}

func TestMonitoredProcessesOrderedByTag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.RegisterProcess(t, st, "zeta", "/data/z", false, "", "")
	testsupport.RegisterProcess(t, st, "alpha", "/data/a", false, "", "")
	testsupport.RegisterProcess(t, st, "mid", "/data/m", false, "", "")

	procs, err := st.ListMonitoredProcesses(context.Background())
	if err != nil {
		t.Fatalf("ListMonitoredProcesses failed: %v", err)
	}
	got := make([]string, len(procs))
	for i, p := range procs {
		got[i] = p.TagName
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}
}

func TestSetFolderConfigEnforcesPairing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if err := st.AddTag(ctx, "nightly"); err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}

	err := st.SetFolderConfig(ctx, "nightly", "/data/n", false, "08:00", "")
	if !errors.Is(err, store.ErrConfigPairing) {
		t.Fatalf("expected pairing error, got %v", err)
	}
	err = st.SetFolderConfig(ctx, "nightly", "/data/n", false, "", "SELECT 1")
	if !errors.Is(err, store.ErrConfigPairing) {
		t.Fatalf("expected pairing error, got %v", err)
	}
	if err := st.SetFolderConfig(ctx, "nightly", "/data/n", true, "08:00", "SELECT 1"); err != nil {
		t.Fatalf("SetFolderConfig failed: %v", err)
	}

	proc, err := st.GetProcess(ctx, "nightly")
	if err != nil {
		t.Fatalf("GetProcess failed: %v", err)
	}
	if proc == nil || !proc.Scheduled() || proc.CheckQuery != "SELECT 1" || !proc.CheckUC4File {
		t.Fatalf("unexpected process: %#v", proc)
	}
}

func TestSetFolderConfigUnknownTag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.SetFolderConfig(context.Background(), "ghost", "/data/g", false, "", "")
	if !errors.Is(err, store.ErrUnknownTag) {
		t.Fatalf("expected unknown tag error, got %v", err)
	}
}

func TestClearFolderConfigExcludesFromCycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.RegisterProcess(t, st, "drop-me", "/data/d", true, "08:00", "SELECT 1")
	if err := st.ClearFolderConfig(ctx, "drop-me"); err != nil {
		t.Fatalf("ClearFolderConfig failed: %v", err)
	}

	procs, err := st.ListMonitoredProcesses(ctx)
	if err != nil {
		t.Fatalf("ListMonitoredProcesses failed: %v", err)
	}
	if len(procs) != 0 {
		t.Fatalf("expected no monitored processes, got %#v", procs)
	}
	proc, err := st.GetProcess(ctx, "drop-me")
	if err != nil {
		t.Fatalf("GetProcess failed: %v", err)
	}
	if proc == nil || proc.ScheduledTime != "" || proc.CheckQuery != "" || proc.CheckUC4File {
		t.Fatalf("expected config cleared, got %#v", proc)
	}
}

func TestRemoveTagKeepsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.RegisterProcess(t, st, "orphan", "/data/o", false, "", "")
	testsupport.RecordRun(t, st, "orphan", store.StatusFailed, []string{"Missing success marker: success.flag"}, store.UC4NotEnabled, store.CheckFilesystem, time.Now())

	if err := st.RemoveTag(ctx, "orphan"); err != nil {
		t.Fatalf("RemoveTag failed: %v", err)
	}
	run, err := st.LatestRun(ctx, "orphan")
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run == nil {
		t.Fatal("expected run history to survive tag removal")
	}
}

func TestLatestRunTieBreaksByInsertOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	same := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	testsupport.RecordRun(t, st, "tie", store.StatusSuccess, nil, store.UC4OK, store.CheckFilesystem, same)
	testsupport.RecordRun(t, st, "tie", store.StatusFailed, []string{"Failure marker found: failure.flag"}, store.UC4OK, store.CheckFilesystem, same)

	run, err := st.LatestRun(ctx, "tie")
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run == nil || run.Status != store.StatusFailed {
		t.Fatalf("expected later insert to win, got %#v", run)
	}
}

func TestLatestRunsPerTag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	base := time.Date(2026, 3, 14, 6, 0, 0, 0, time.Local)
	testsupport.RecordRun(t, st, "a", store.StatusFailed, []string{"Folder missing: /data/a"}, store.UC4FolderMissing, store.CheckFilesystem, base)
	testsupport.RecordRun(t, st, "a", store.StatusSuccess, nil, store.UC4OK, store.CheckFilesystem, base.Add(time.Hour))
	testsupport.RecordRun(t, st, "b", store.StatusSuccess, nil, store.UC4NotApplicable, store.CheckDBQuery, base)

	latest, err := st.LatestRuns(context.Background())
	if err != nil {
		t.Fatalf("LatestRuns failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected two tags, got %d", len(latest))
	}
	if latest["a"].Status != store.StatusSuccess {
		t.Fatalf("expected newest run for a, got %#v", latest["a"])
	}
	if latest["b"].CheckType != store.CheckDBQuery {
		t.Fatalf("unexpected run for b: %#v", latest["b"])
	}
}

func TestRunReasonsRoundTripAndMalformedDecode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	reasons := []string{"Failure marker found: failure.flag", "Missing UC4 file: uc4.flag"}
	testsupport.RecordRun(t, st, "multi", store.StatusFailed, reasons, "Missing UC4 file: uc4.flag", store.CheckFilesystem, time.Now())

	run, err := st.LatestRun(ctx, "multi")
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if len(run.Reasons) != 2 || run.Reasons[0] != reasons[0] || run.Reasons[1] != reasons[1] {
		t.Fatalf("unexpected reasons: %#v", run.Reasons)
	}

	// A run recorded with no reasons decodes to an empty, non-nil list.
	testsupport.RecordRun(t, st, "empty", store.StatusSuccess, nil, store.UC4OK, store.CheckFilesystem, time.Now())
	run, err = st.LatestRun(ctx, "empty")
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run.Reasons == nil || len(run.Reasons) != 0 {
		t.Fatalf("expected empty reasons, got %#v", run.Reasons)
	}
}

func TestRunHistoryNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		testsupport.RecordRun(t, st, "hist", store.StatusSuccess, nil, store.UC4OK, store.CheckFilesystem, base.Add(time.Duration(i)*time.Hour))
	}

	runs, err := st.RunHistory(context.Background(), "hist", 2)
	if err != nil {
		t.Fatalf("RunHistory failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].RunTime.After(runs[1].RunTime) {
		t.Fatalf("expected newest first: %v then %v", runs[0].RunTime, runs[1].RunTime)
	}
}

func TestFatalEventsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.Local)
	if err := st.RecordFatalEvent(ctx, "billing-job", "Billing run failed with exit code 2", base); err != nil {
		t.Fatalf("RecordFatalEvent failed: %v", err)
	}
	if err := st.RecordFatalEvent(ctx, "billing-job", "Billing run segfault", base.Add(time.Hour)); err != nil {
		t.Fatalf("RecordFatalEvent failed: %v", err)
	}

	events, err := st.FatalEvents(ctx, "billing-job")
	if err != nil {
		t.Fatalf("FatalEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Description != "Billing run segfault" {
		t.Fatalf("expected newest first, got %#v", events)
	}
}

func TestRecipientsSetSemantics(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for _, email := range []string{"ops@example.com", "dev@example.com", "ops@example.com"} {
		if err := st.AddRecipient(ctx, email); err != nil {
			t.Fatalf("AddRecipient failed: %v", err)
		}
	}

	recipients, err := st.ListRecipients(ctx)
	if err != nil {
		t.Fatalf("ListRecipients failed: %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("expected set semantics, got %v", recipients)
	}
	if recipients[0] != "dev@example.com" || recipients[1] != "ops@example.com" {
		t.Fatalf("expected stable alphabetical order, got %v", recipients)
	}

	if err := st.RemoveRecipient(ctx, "ops@example.com"); err != nil {
		t.Fatalf("RemoveRecipient failed: %v", err)
	}
	recipients, err = st.ListRecipients(ctx)
	if err != nil {
		t.Fatalf("ListRecipients failed: %v", err)
	}
	if len(recipients) != 1 || recipients[0] != "dev@example.com" {
		t.Fatalf("unexpected recipients after removal: %v", recipients)
	}
}

func TestProbeQueryCountsRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.RegisterProcess(t, st, "one", "/data/1", false, "", "")
	testsupport.RegisterProcess(t, st, "two", "/data/2", false, "", "")

	count, err := st.ProbeQuery(ctx, "SELECT tag_name FROM processes")
	if err != nil {
		t.Fatalf("ProbeQuery failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	count, err = st.ProbeQuery(ctx, "SELECT tag_name FROM processes WHERE tag_name = 'absent'")
	if err != nil {
		t.Fatalf("ProbeQuery failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 rows, got %d", count)
	}

	if _, err := st.ProbeQuery(ctx, "SELECT nope FROM missing_table"); err == nil {
		t.Fatal("expected query error")
	}
}
