package cmd

import (
	"os/signal"
	"syscall"

	"github.com/ortelius/pdvd-cvelookup/internal/kafka"
	"github.com/spf13/cobra"
)

func createWorkerCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run only the Kafka component event worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, store, err := openEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := kafka.RunEventProcessor(ctx, cfg.Kafka, engine, logger); err != nil {
				return err
			}
			<-ctx.Done()
			logger.Info("Worker stopped")
			return nil
		},
	}
}
