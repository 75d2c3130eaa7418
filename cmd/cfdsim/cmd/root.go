package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cfdsim/config"
)

var rootCmd = &cobra.Command{
	Use:   "cfdsim",
	Short: "What-if simulator for cost-averaged CFD positions",
	Long: `cfdsim sweeps a price range, adds position at every price matched by a
sizing rule and reports the average entry price and unrealized P/L along
the way.

It provides tools for:
  - Running a sweep from a config file, flags or CFDSIM_* variables
  - Journaling runs to CSV, SQLite or PostgreSQL
  - Serving the simulator as a JSON API`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
	v       = config.NewViper()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every RunE.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON), defaults to the built-in sample ladder")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setupLogger(cmd *cobra.Command, args []string) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = l
	return nil
}

// loadConfig reads --config (or the defaults) and applies flag and
// environment overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyOverrides(v)
	return cfg, nil
}

// bindFlags returns a PreRunE binding each config key to the named flag of
// the command being run. Binding happens late because run and serve share
// keys such as journal.type.
func bindFlags(keys map[string]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for key, flag := range keys {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("bind %s: %w", flag, err)
			}
		}
		return nil
	}
}
