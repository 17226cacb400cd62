package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"procwatch/internal/daemon"
	"procwatch/internal/logging"
	"procwatch/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			st, err := store.Open(cfg)
			if err != nil {
				logger.Error("open monitoring store", logging.Error(err))
				return err
			}

			d, err := daemon.New(cfg, st, logger)
			if err != nil {
				st.Close()
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}

			<-signalCtx.Done()
			logger.Info("shutdown signal received")
			d.Stop()
			return nil
		},
	}
}
