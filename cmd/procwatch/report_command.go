package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"procwatch/internal/config"
	"procwatch/internal/report"
	"procwatch/internal/store"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show aggregated process status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				agg := report.NewAggregator(st)
				rows, err := agg.BuildReports(cmd.Context())
				if err != nil {
					return err
				}
				if failedOnly {
					rows = report.FilterFailed(rows)
				}

				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					if failedOnly {
						fmt.Fprintln(out, "No failed processes.")
					} else {
						fmt.Fprintln(out, "No processes registered.")
					}
					return nil
				}

				fmt.Fprintln(out, renderReportTable(rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed processes")
	return cmd
}

func renderReportTable(rows []report.Row) string {
	headers := []string{"Tag", "Folder", "Status", "UC4", "Last Run", "Reasons"}
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		lastRun := "never"
		if !row.RunTime.IsZero() {
			lastRun = row.RunTime.Format(time.DateTime)
		}
		body = append(body, []string{
			row.TagName,
			row.FolderPath,
			string(row.Status),
			row.UC4Status,
			lastRun,
			strings.Join(row.Reasons, "; "),
		})
	}
	return renderTable(headers, body)
}
