package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"procwatch/internal/config"
	"procwatch/internal/store"
)

func newRecipientCommand(ctx *commandContext) *cobra.Command {
	recipientCmd := &cobra.Command{
		Use:   "recipient",
		Short: "Manage notification recipients",
	}

	recipientCmd.AddCommand(&cobra.Command{
		Use:   "add <email>",
		Short: "Add a notification recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.AddRecipient(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recipient %q added\n", args[0])
				return nil
			})
		},
	})

	recipientCmd.AddCommand(&cobra.Command{
		Use:   "remove <email>",
		Short: "Remove a notification recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.RemoveRecipient(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recipient %q removed\n", args[0])
				return nil
			})
		},
	})

	recipientCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notification recipients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				recipients, err := st.ListRecipients(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(recipients) == 0 {
					fmt.Fprintln(out, "No recipients configured.")
					return nil
				}
				for _, email := range recipients {
					fmt.Fprintln(out, email)
				}
				return nil
			})
		},
	})

	return recipientCmd
}
