package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"procwatch/internal/config"
	"procwatch/internal/notify"
	"procwatch/internal/report"
	"procwatch/internal/store"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	var (
		message string
		to      []string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Email the failure digest to configured recipients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return errors.New("a message is required (--message)")
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				recipients := to
				if len(recipients) == 0 {
					stored, err := st.ListRecipients(cmd.Context())
					if err != nil {
						return err
					}
					recipients = stored
				}
				if len(recipients) == 0 {
					return errors.New("no recipients configured; add one with `procwatch recipient add`")
				}

				failed, err := report.NewAggregator(st).Failed(cmd.Context())
				if err != nil {
					return err
				}

				svc := notify.NewService(cfg)
				if err := svc.SendFailureReport(cmd.Context(), recipients, message, failed); err != nil {
					return fmt.Errorf("send notification: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Notification sent to %d recipient(s)\n", len(recipients))
				if len(failed) == 0 {
					fmt.Fprintln(out, "All monitored processes are healthy.")
				} else {
					fmt.Fprintf(out, "%d failed process(es) included in the digest\n", len(failed))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Message placed above the failure digest")
	cmd.Flags().StringArrayVar(&to, "to", nil, "Send only to these recipients (repeatable; defaults to all configured)")
	return cmd
}
