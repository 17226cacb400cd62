package testsupport

import (
	"context"
	"testing"
	"time"

	"procwatch/internal/config"
	"procwatch/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// RegisterProcess adds a tag and attaches a folder configuration in one step.
func RegisterProcess(t testing.TB, st *store.Store, tag, folder string, uc4 bool, scheduledTime, checkQuery string) {
	t.Helper()

	ctx := context.Background()
	if err := st.AddTag(ctx, tag); err != nil {
		t.Fatalf("store.AddTag: %v", err)
	}
	if folder == "" {
		return
	}
	if err := st.SetFolderConfig(ctx, tag, folder, uc4, scheduledTime, checkQuery); err != nil {
		t.Fatalf("store.SetFolderConfig: %v", err)
	}
}

// RecordRun appends a run for tests, failing the test on error.
func RecordRun(t testing.TB, st *store.Store, tag string, status store.RunStatus, reasons []string, uc4Status string, checkType store.CheckType, runTime time.Time) {
	t.Helper()

	if err := st.RecordRun(context.Background(), tag, status, reasons, uc4Status, checkType, runTime); err != nil {
		t.Fatalf("store.RecordRun: %v", err)
	}
}
