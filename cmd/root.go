// Package cmd implements the cvelookup command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/database"
	"github.com/ortelius/pdvd-cvelookup/lookup"
	"github.com/ortelius/pdvd-cvelookup/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configFile string
	dbPath     string
	verbose    bool
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "cvelookup",
		Short:         "Match software components against a CPE/CVE reference store",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `
Match software component labels against a CPE dictionary and CVE tables.

Configurable Options:

Options may be supplied in a yaml configuration file or via environment
variables. You only need to define the configuration values for which you
wish to override the default value.

Available Configurations:

  database:
      backend            (string)   (CVELOOKUP_DATABASE_BACKEND)
      path               (string)   (CVELOOKUP_DATABASE_PATH)
      page_size          (int)      (CVELOOKUP_DATABASE_PAGE_SIZE)
      queries_file       (string)   (CVELOOKUP_DATABASE_QUERIES_FILE)
  match:
      threshold          (int)      (CVELOOKUP_MATCH_THRESHOLD)
      summary_window     (int)      (CVELOOKUP_MATCH_SUMMARY_WINDOW)
      na_matches_any     (bool)     (CVELOOKUP_MATCH_NA_MATCHES_ANY)
      version_ranges     (bool)     (CVELOOKUP_MATCH_VERSION_RANGES)
      summary_search     (bool)     (CVELOOKUP_MATCH_SUMMARY_SEARCH)
  lookup:
      workers            (int)      (CVELOOKUP_LOOKUP_WORKERS)
      timeout            (duration) (CVELOOKUP_LOOKUP_TIMEOUT)
  server:
      port               (int)      (CVELOOKUP_SERVER_PORT)
  kafka:
      enabled            (bool)     (CVELOOKUP_KAFKA_ENABLED)
      input_topic        (string)   (CVELOOKUP_KAFKA_INPUT_TOPIC)
      output_topic       (string)   (CVELOOKUP_KAFKA_OUTPUT_TOPIC)
  log:
      level              (string)   (CVELOOKUP_LOG_LEVEL)
      encoding           (string)   (CVELOOKUP_LOG_ENCODING)
`,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the SQLite reference store (overrides database.path)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		createLookupCmd(opts),
		createServeCmd(opts),
		createWorkerCmd(opts),
	)
	return rootCmd
}

// load resolves the configuration and logger shared by every subcommand.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, util.InitLogger(cfg.Log.Level, cfg.Log.Encoding), nil
}

func openEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*lookup.Engine, database.Store, error) {
	store, err := database.Open(ctx, cfg.Database, cfg.Queries, logger)
	if err != nil {
		return nil, nil, err
	}
	return lookup.NewEngine(store, lookup.OptionsFromConfig(cfg), logger), store, nil
}
