package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cfdsim/id"
	"github.com/rustyeddy/cfdsim/journal"
	"github.com/rustyeddy/cfdsim/report"
	"github.com/rustyeddy/cfdsim/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sweep a price range and report position, average and P/L",
	Long: `Run a cost-averaging sweep using the built-in sample ladder, a config
file, or any mix of flags and CFDSIM_* environment variables.

Rules given with --rule replace the configured ones and use the form
start:end:size.

Examples:
  cfdsim run
  cfdsim run --direction sell --display-interval 200
  cfdsim run -c ladder.yaml --journal sqlite --db runs.sqlite
  cfdsim run --rule 100:200:0.5 --rule 250:300:1 --start-price 100 --add-interval 10 --display-interval 50`,
	Args: cobra.NoArgs,
	PreRunE: bindFlags(map[string]string{
		"simulation.start_price":      "start-price",
		"simulation.add_interval":     "add-interval",
		"simulation.display_interval": "display-interval",
		"simulation.direction":        "direction",
		"simulation.sampling":         "sampling",
		"simulation.rule_mode":        "rule-mode",
		"simulation.max_steps":        "max-steps",
		"journal.type":                "journal",
		"journal.db_path":             "db",
		"journal.dsn":                 "dsn",
		"journal.runs_file":           "runs-file",
		"journal.rows_file":           "rows-file",
	}),
	RunE: runRun,
}

var (
	runRules     []string
	runChartPath string
	runOrg       bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.Float64("start-price", 0, "first price of the sweep")
	f.Float64("add-interval", 0, "price step between evaluated prices")
	f.Float64("display-interval", 0, "price spacing between reported rows")
	f.String("direction", "", "trade direction: buy or sell")
	f.String("sampling", "", "row sampling: stride or modulo")
	f.String("rule-mode", "", "rule parsing: lenient or strict")
	f.Int("max-steps", 0, "upper bound on evaluated prices (0 uses the default)")
	f.String("journal", "", "journal type: none, csv, sqlite or postgres")
	f.String("db", "", "SQLite journal path")
	f.String("dsn", "", "PostgreSQL journal connection string")
	f.String("runs-file", "", "CSV journal runs file")
	f.String("rows-file", "", "CSV journal rows file")
	f.StringArrayVar(&runRules, "rule", nil, "sizing rule start:end:size (repeatable)")
	f.StringVar(&runChartPath, "chart", "", "write the chart series as JSON to this file")
	f.BoolVar(&runOrg, "org", false, "also print the run as an org-mode entry")

}

// parseRuleFlag splits "start:end:size". Missing parts stay empty so the
// rule parser can treat the row as partial.
func parseRuleFlag(s string) sim.RawRule {
	parts := strings.SplitN(s, ":", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return sim.RawRule{Start: parts[0], End: parts[1], Size: parts[2]}
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := cfg.Parameters()
	if err != nil {
		return fmt.Errorf("parameters: %w", err)
	}

	raw := cfg.RawRules()
	if len(runRules) > 0 {
		raw = make([]sim.RawRule, 0, len(runRules))
		for _, r := range runRules {
			raw = append(raw, parseRuleFlag(r))
		}
	}
	rules, err := sim.ParseRules(raw, sim.ParseModeFromString(cfg.Simulation.RuleMode))
	if err != nil {
		return fmt.Errorf("rules: %w", err)
	}

	logger.Info("running simulation",
		zap.Float64("start_price", p.StartPrice),
		zap.Float64("add_interval", p.AddInterval),
		zap.Float64("display_interval", p.DisplayInterval),
		zap.String("direction", string(p.Direction)),
		zap.Int("rules", rules.Len()),
	)

	rs, err := sim.Simulate(ctx, p, rules, sim.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	j, err := journal.Open(ctx, cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	runID := id.New()
	created, err := id.Created(runID)
	if err != nil {
		return err
	}
	run, rows := journal.NewRun(runID, created, p, rules, rs)
	if err := j.RecordRun(ctx, run, rows); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	out := cmd.OutOrStdout()
	rep := report.Build(rs, report.Japanese())
	report.WriteSummary(out, rep.Summary)
	fmt.Fprintf(out, "Run ID:          %s\n\n", runID)
	if err := report.WriteTable(out, rep.Table); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	if runChartPath != "" {
		data, err := json.MarshalIndent(rep.Chart, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal chart: %w", err)
		}
		if err := os.WriteFile(runChartPath, data, 0644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}

	if runOrg {
		fmt.Fprintln(out)
		fmt.Fprintln(out, journal.FormatRunOrg(run, rows))
	}
	return nil
}
