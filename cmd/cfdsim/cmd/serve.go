package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cfdsim/journal"
	"github.com/rustyeddy/cfdsim/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulator as a JSON API",
	Long: `Start an HTTP server exposing:

  GET  /healthz        liveness probe
  GET  /api/defaults   the configured parameters and rules
  POST /api/simulate   run a sweep from form-style string inputs

Every successful simulation is recorded to the configured journal.

Example:
  cfdsim serve --addr :9090 --journal sqlite --db runs.sqlite`,
	Args: cobra.NoArgs,
	PreRunE: bindFlags(map[string]string{
		"server.addr":     "addr",
		"journal.type":    "journal",
		"journal.db_path": "db",
		"journal.dsn":     "dsn",
	}),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.String("addr", "", "listen address (default from config, :8080)")
	f.String("journal", "", "journal type: none, csv, sqlite or postgres")
	f.String("db", "", "SQLite journal path")
	f.String("dsn", "", "PostgreSQL journal connection string")

}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	j, err := journal.Open(ctx, cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("journal", cfg.Journal.Type))
	return server.New(cfg, j, logger).Run(ctx, cfg.Server.Addr)
}
