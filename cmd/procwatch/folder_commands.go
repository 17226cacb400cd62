package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"procwatch/internal/config"
	"procwatch/internal/store"
)

func newFolderCommand(ctx *commandContext) *cobra.Command {
	folderCmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folder check configuration",
	}

	folderCmd.AddCommand(newFolderSetCommand(ctx))

	folderCmd.AddCommand(&cobra.Command{
		Use:   "clear <tag>",
		Short: "Detach the folder configuration from a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.ClearFolderConfig(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Folder configuration cleared for %q\n", args[0])
				return nil
			})
		},
	})

	folderCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List monitored folder configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				processes, err := st.ListMonitoredProcesses(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(processes) == 0 {
					fmt.Fprintln(out, "No folder configurations.")
					return nil
				}

				headers := []string{"Tag", "Folder", "UC4", "Scheduled", "Query"}
				rows := make([][]string, 0, len(processes))
				for _, proc := range processes {
					rows = append(rows, []string{
						proc.TagName,
						proc.FolderPath,
						yesNo(proc.CheckUC4File),
						proc.ScheduledTime,
						proc.CheckQuery,
					})
				}
				fmt.Fprintln(out, renderTable(headers, rows))
				return nil
			})
		},
	})

	return folderCmd
}

func newFolderSetCommand(ctx *commandContext) *cobra.Command {
	var (
		folderPath    string
		checkUC4      bool
		scheduledTime string
		checkQuery    string
	)

	cmd := &cobra.Command{
		Use:   "set <tag>",
		Short: "Attach or replace the folder configuration for a tag",
		Long: `Attach or replace the folder configuration for a registered tag.

A scheduled time and a check query must be provided together; with them
the process is checked once per day by running the query instead of
inspecting marker files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				err := st.SetFolderConfig(cmd.Context(), args[0], folderPath, checkUC4, scheduledTime, checkQuery)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Folder configuration saved for %q\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&folderPath, "folder", "", "Folder to monitor for marker files")
	cmd.Flags().BoolVar(&checkUC4, "uc4", false, "Also require the UC4 marker file")
	cmd.Flags().StringVar(&scheduledTime, "scheduled-time", "", "Daily check time (HH:MM, 24-hour)")
	cmd.Flags().StringVar(&checkQuery, "query", "", "SELECT query evaluated at the scheduled time")
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}
