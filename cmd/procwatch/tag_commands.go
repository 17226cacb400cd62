package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"procwatch/internal/config"
	"procwatch/internal/store"
)

func newTagCommand(ctx *commandContext) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage registered process tags",
	}

	tagCmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Register a new process tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.AddTag(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tag %q registered\n", args[0])
				return nil
			})
		},
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a process tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.RemoveTag(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tag %q removed\n", args[0])
				return nil
			})
		},
	})

	tagCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				tags, err := st.ListTags(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(tags) == 0 {
					fmt.Fprintln(out, "No tags registered.")
					return nil
				}
				for _, tag := range tags {
					fmt.Fprintln(out, tag)
				}
				return nil
			})
		},
	})

	return tagCmd
}
