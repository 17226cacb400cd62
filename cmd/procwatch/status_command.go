package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"procwatch/internal/daemon"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			bind := strings.TrimSpace(cfg.Paths.APIBind)
			out := cmd.OutOrStdout()
			if bind == "" {
				fmt.Fprintln(out, "API disabled in configuration; daemon status unavailable")
				return nil
			}

			status, err := fetchDaemonStatus(bind, cfg.Paths.APIToken)
			if err != nil {
				fmt.Fprintln(out, "Daemon: not running")
				fmt.Fprintf(out, "  (%v)\n", err)
				return nil
			}

			fmt.Fprintf(out, "Daemon: running (pid %d)\n", status.PID)
			fmt.Fprintf(out, "Scheduler: %s\n", runningLabel(status.SchedulerRunning))
			if status.LastCycle.IsZero() {
				fmt.Fprintln(out, "Last cycle: never")
			} else {
				fmt.Fprintf(out, "Last cycle: %s\n", status.LastCycle.Format(time.RFC3339))
			}
			if status.LastCycleError != "" {
				fmt.Fprintf(out, "Last cycle error: %s\n", status.LastCycleError)
			}
			fmt.Fprintf(out, "Database: %s\n", status.DBPath)
			fmt.Fprintf(out, "Lock file: %s\n", status.LockFilePath)
			return nil
		},
	}
}

func fetchDaemonStatus(bind, token string) (*daemon.Status, error) {
	req, err := http.NewRequest(http.MethodGet, "http://"+bind+"/api/status", nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon API at %s: %w", bind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon API returned %d", resp.StatusCode)
	}
	var status daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &status, nil
}

func runningLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
