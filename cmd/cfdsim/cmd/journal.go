package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cfdsim/id"
	"github.com/rustyeddy/cfdsim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled runs",
	Long: `Query and display recorded runs from a SQLite or PostgreSQL journal.

Subcommands:
  show  - Print one run and its rows as an org-mode entry
  list  - List the most recent runs

Examples:
  cfdsim journal show 01HQZ8X3N4 --db runs.sqlite
  cfdsim journal list --limit 5 --dsn postgres://localhost/cfdsim`,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Get details of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var (
	journalDBPath string
	journalDSN    string
	journalLimit  int
)

type journalReader interface {
	journal.Reader
	Close() error
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalListCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./cfdsim.sqlite", "path to SQLite journal DB")
	journalCmd.PersistentFlags().StringVar(&journalDSN, "dsn", "", "PostgreSQL connection string, used instead of --db")
	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum runs to list (-1 for all)")
}

func openReader(ctx context.Context) (journalReader, error) {
	if journalDSN != "" {
		return journal.NewPostgres(ctx, journalDSN)
	}
	return journal.NewSQLite(journalDBPath)
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if _, err := id.Created(args[0]); err != nil {
		return err
	}
	j, err := openReader(ctx)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	run, err := j.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	rows, err := j.ListRows(ctx, run.RunID)
	if err != nil {
		return fmt.Errorf("get rows: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRunOrg(run, rows))
	return nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	j, err := openReader(ctx)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(ctx, journalLimit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRunsOrg(runs))
	return nil
}
