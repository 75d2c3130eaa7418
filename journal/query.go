package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrRunNotFound is returned when a run id is not in the journal.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `run_id, created, start_price, add_interval, display_interval, direction, sampling,
	rule_count, steps, final_price, final_position, final_average, final_pl`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var (
		rec RunRecord
		pos string
	)
	err := s.Scan(
		&rec.RunID,
		&rec.Created,
		&rec.StartPrice,
		&rec.AddInterval,
		&rec.DisplayInterval,
		&rec.Direction,
		&rec.Sampling,
		&rec.RuleCount,
		&rec.Steps,
		&rec.FinalPrice,
		&pos,
		&rec.FinalAverage,
		&rec.FinalPL,
	)
	if err != nil {
		return RunRecord{}, err
	}
	if rec.FinalPosition, err = decimal.NewFromString(pos); err != nil {
		return RunRecord{}, fmt.Errorf("final_position: %w", err)
	}
	return rec, nil
}

func scanRow(s scanner) (RowRecord, error) {
	var (
		rec RowRecord
		pos string
	)
	if err := s.Scan(&rec.RunID, &rec.Seq, &rec.Price, &pos, &rec.AveragePrice, &rec.ProfitLoss); err != nil {
		return RowRecord{}, err
	}
	var err error
	if rec.TotalPosition, err = decimal.NewFromString(pos); err != nil {
		return RowRecord{}, fmt.Errorf("total_position: %w", err)
	}
	return rec, nil
}

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListRows returns the rows of a run in sampling order.
func (j *SQLite) ListRows(ctx context.Context, runID string) ([]RowRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, price, total_position, average_price, profit_loss
		FROM result_rows
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RowRecord
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
