package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ortelius/pdvd-cvelookup/internal/api"
	"github.com/ortelius/pdvd-cvelookup/internal/kafka"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func createServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST and GraphQL lookup API",
		Long: `
Serve the lookup API:

  POST /api/v1/lookup     resolve components (?format=map|detailed|osv)
  GET  /api/v1/cve/:id    one CVE as an OSV record
  POST /api/v1/graphql    cveLookup and cveDetails queries (GET also accepted)
  GET  /metrics           prometheus metrics

When kafka.enabled is set the component event worker runs alongside.
`,
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

			if cfg.Kafka.Enabled {
				if err := kafka.RunEventProcessor(ctx, cfg.Kafka, engine, logger); err != nil {
					return fmt.Errorf("failed to start kafka worker: %w", err)
				}
			}

			app, err := api.NewFiberApp(engine, cfg.Server, logger)
			if err != nil {
				return err
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := app.ShutdownWithContext(shutdownCtx); err != nil {
					logger.Warn("Server shutdown failed", zap.Error(err))
				}
			}()

			logger.Info("Starting server", zap.Int("port", cfg.Server.Port))
			logger.Info("GraphQL endpoint available at /api/v1/graphql")
			if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return nil
		},
	}
}
