// Package cli is the landscaper command line: profitability reports from a terminal.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/landscaper/internal/bootstrap"
	"github.com/mamadbah2/landscaper/internal/config"
	"github.com/mamadbah2/landscaper/internal/service/reporting"
	"github.com/mamadbah2/landscaper/pkg/logger"
)

type application struct {
	reporting *reporting.Service
	backends  *bootstrap.Backends
	logger    *zap.Logger
}

var app application

// Global flags
var (
	envFile  string
	demoMode bool
	asJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "landscaper",
	Short: "Client cost projections and visit anomaly reports",
	Long: `landscaper projects what each landscaping client costs per year, proposes a
monthly rate that covers it, and flags visits that ran far longer than usual.

Storage is selected with the same environment variables as the server. Use --demo
to explore the reports against built-in sample data.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load configuration from this .env file")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "Use built-in sample data instead of the configured store")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print results as JSON")
}

func setup(cmd *cobra.Command, _ []string) error {
	if demoMode {
		log := zap.NewNop()
		app = application{
			reporting: reporting.NewService(demoStore(), nil, reporting.Options{}, log),
			logger:    log,
		}
		return nil
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}

	backends, err := bootstrap.Open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	opts, err := bootstrap.ReportingOptions(cfg)
	if err != nil {
		_ = backends.Close(cmd.Context())
		return err
	}

	app = application{
		reporting: reporting.NewService(backends.Store, backends.Snapshots, opts, log.Named("svc.reporting")),
		backends:  backends,
		logger:    log,
	}
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	defer func() { _ = app.logger.Sync() }()
	if app.backends == nil {
		return nil
	}
	return app.backends.Close(context.WithoutCancel(cmd.Context()))
}
