package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"procwatch/internal/config"
	"procwatch/internal/store"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:   "events <tag>",
		Short: "List fatal events recorded for a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				events, err := st.FatalEvents(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(events) == 0 {
					fmt.Fprintf(out, "No fatal events for %q.\n", args[0])
					return nil
				}

				headers := []string{"Time", "Description"}
				rows := make([][]string, 0, len(events))
				for _, event := range events {
					rows = append(rows, []string{
						event.EventTime.Format(time.DateTime),
						event.Description,
					})
				}
				fmt.Fprintln(out, renderTable(headers, rows))
				return nil
			})
		},
	}

	eventsCmd.AddCommand(newEventsAddCommand(ctx))
	return eventsCmd
}

// newEventsAddCommand is the external writer's entry point into the
// fatal-event log, mostly useful for seeding and integration scripts.
func newEventsAddCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <tag>",
		Short: "Record a fatal event for a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.RecordFatalEvent(cmd.Context(), args[0], description, time.Now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fatal event recorded for %q\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Event description")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}
