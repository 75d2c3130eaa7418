package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores the run and all of its rows in one transaction.
func (j *SQLite) RecordRun(ctx context.Context, run RunRecord, rows []RowRecord) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, created, start_price, add_interval, display_interval, direction, sampling,
		 rule_count, steps, final_price, final_position, final_average, final_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Created, run.StartPrice, run.AddInterval, run.DisplayInterval,
		run.Direction, run.Sampling, run.RuleCount, run.Steps,
		run.FinalPrice, run.FinalPosition.String(), run.FinalAverage, run.FinalPL,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO result_rows
		(run_id, seq, price, total_position, average_price, profit_loss)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, run.RunID, r.Seq, r.Price, r.TotalPosition.String(), r.AveragePrice, r.ProfitLoss); err != nil {
			return fmt.Errorf("insert row %d: %w", r.Seq, err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
