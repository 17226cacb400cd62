package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"procwatch/internal/config"
	"procwatch/internal/daemon"
	"procwatch/internal/logging"
	"procwatch/internal/store"
	"procwatch/internal/testsupport"
)

func startDaemon(t *testing.T, opts ...testsupport.ConfigOption) (*daemon.Daemon, *store.Store, string) {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)

	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("api listener did not bind")
	}
	return d, st, "http://" + addr
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewBuffer(encoded)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestAPIStatus(t *testing.T) {
	_, _, base := startDaemon(t)

	resp := doJSON(t, http.MethodGet, base+"/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}

	var status daemon.Status
	decode(t, resp, &status)
	if !status.Running {
		t.Fatal("expected running status")
	}
	if !status.SchedulerRunning {
		t.Fatal("expected scheduler to be running")
	}
}

func TestAPITagLifecycle(t *testing.T) {
	_, _, base := startDaemon(t)

	resp := doJSON(t, http.MethodPost, base+"/api/tags", map[string]string{"tag_name": "etl-load"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, base+"/api/tags", map[string]string{"tag_name": "etl-load"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate create status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, base+"/api/tags", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var listing struct {
		Tags []string `json:"tags"`
	}
	decode(t, resp, &listing)
	if len(listing.Tags) != 1 || listing.Tags[0] != "etl-load" {
		t.Fatalf("tags = %v", listing.Tags)
	}

	resp = doJSON(t, http.MethodDelete, base+"/api/tags/etl-load", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, base+"/api/tags/etl-load", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestAPIFolderConfig(t *testing.T) {
	_, _, base := startDaemon(t)

	doJSON(t, http.MethodPost, base+"/api/tags", map[string]string{"tag_name": "etl-load"})

	resp := doJSON(t, http.MethodPost, base+"/api/folders", map[string]any{
		"tag_name":       "etl-load",
		"folder_path":    "/data/etl",
		"scheduled_time": "08:00",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unpaired config status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, base+"/api/folders", map[string]any{
		"tag_name":       "missing",
		"folder_path":    "/data/etl",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown tag status = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, base+"/api/folders", map[string]any{
		"tag_name":       "etl-load",
		"folder_path":    "/data/etl",
		"check_uc4_file": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set folder status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, base+"/api/folders", nil)
	var listing struct {
		Folders []store.Process `json:"folders"`
	}
	decode(t, resp, &listing)
	if len(listing.Folders) != 1 || listing.Folders[0].FolderPath != "/data/etl" {
		t.Fatalf("folders = %+v", listing.Folders)
	}

	resp = doJSON(t, http.MethodDelete, base+"/api/folders/etl-load", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear folder status = %d", resp.StatusCode)
	}
}

func TestAPIReportsAndEvents(t *testing.T) {
	_, st, base := startDaemon(t)
	ctx := context.Background()

	testsupport.RegisterProcess(t, st, "etl-load", "/data/etl", false, "", "")
	testsupport.RecordRun(t, st, "etl-load", store.StatusFailed,
		[]string{"Missing success marker: success.flag"}, store.UC4NotEnabled, store.CheckFilesystem, time.Now())
	if err := st.RecordFatalEvent(ctx, "etl-load", "worker crashed", time.Now()); err != nil {
		t.Fatalf("RecordFatalEvent: %v", err)
	}

	resp := doJSON(t, http.MethodGet, base+"/api/reports", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reports status = %d", resp.StatusCode)
	}
	var reports struct {
		Reports []struct {
			TagName string   `json:"tag_name"`
			Status  string   `json:"status"`
			Reasons []string `json:"reasons"`
		} `json:"reports"`
	}
	decode(t, resp, &reports)
	if len(reports.Reports) != 1 {
		t.Fatalf("reports = %+v", reports.Reports)
	}
	row := reports.Reports[0]
	if row.Status != string(store.StatusFailed) {
		t.Fatalf("status = %q", row.Status)
	}
	if len(row.Reasons) != 2 || row.Reasons[1] != "Fatal event(s) recorded" {
		t.Fatalf("reasons = %v", row.Reasons)
	}

	resp = doJSON(t, http.MethodGet, base+"/api/reports/failed", nil)
	decode(t, resp, &reports)
	if len(reports.Reports) != 1 {
		t.Fatalf("failed reports = %+v", reports.Reports)
	}

	resp = doJSON(t, http.MethodGet, base+"/api/events?tag=etl-load", nil)
	var events struct {
		Events []store.FatalEvent `json:"events"`
	}
	decode(t, resp, &events)
	if len(events.Events) != 1 || events.Events[0].Description != "worker crashed" {
		t.Fatalf("events = %+v", events.Events)
	}
}

func TestAPINotifyRequiresMessageAndRecipients(t *testing.T) {
	_, st, base := startDaemon(t)

	resp := doJSON(t, http.MethodPost, base+"/api/notify", map[string]string{"message": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty message status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, base+"/api/notify", map[string]string{"message": "checks degraded"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("no recipients status = %d, want 400", resp.StatusCode)
	}

	// With a recipient configured and no SMTP host, the noop transport
	// reports success.
	if err := st.AddRecipient(context.Background(), "ops@example.com"); err != nil {
		t.Fatalf("AddRecipient: %v", err)
	}
	resp = doJSON(t, http.MethodPost, base+"/api/notify", map[string]string{"message": "checks degraded"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("notify status = %d", resp.StatusCode)
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	_, _, base := startDaemon(t, func(c *config.Config) {
		c.Paths.APIToken = "secret"
	})

	resp := doJSON(t, http.MethodGet, base+"/api/status", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	wrong, err := http.NewRequest(http.MethodGet, base+"/api/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	wrong.Header.Set("Authorization", "Bearer nope")
	denied, err := http.DefaultClient.Do(wrong)
	if err != nil {
		t.Fatalf("wrong-token request: %v", err)
	}
	denied.Body.Close()
	if denied.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong-token status = %d, want 401", denied.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, base+"/api/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authorized request: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("authorized status = %d", authed.StatusCode)
	}
}
