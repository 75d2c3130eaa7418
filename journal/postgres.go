package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres journals runs into a shared PostgreSQL database.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects to dsn and creates the schema if needed.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

const pgRunColumns = `run_id, created, start_price, add_interval, display_interval, direction, sampling,
	rule_count, steps, final_price, final_position::text, final_average, final_pl`

func (j *Postgres) RecordRun(ctx context.Context, run RunRecord, rows []RowRecord) error {
	tx, err := j.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO runs
		(run_id, created, start_price, add_interval, display_interval, direction, sampling,
		 rule_count, steps, final_price, final_position, final_average, final_pl)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.RunID, run.Created, run.StartPrice, run.AddInterval, run.DisplayInterval,
		run.Direction, run.Sampling, run.RuleCount, run.Steps,
		run.FinalPrice, run.FinalPosition.String(), run.FinalAverage, run.FinalPL,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO result_rows
			(run_id, seq, price, total_position, average_price, profit_loss)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			run.RunID, r.Seq, r.Price, r.TotalPosition.String(), r.AveragePrice, r.ProfitLoss)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}

	return tx.Commit(ctx)
}

func (j *Postgres) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.Pool.QueryRow(ctx, `SELECT `+pgRunColumns+` FROM runs WHERE run_id = $1`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
		}
		return RunRecord{}, err
	}
	rec.Created = rec.Created.UTC()
	return rec, nil
}

func (j *Postgres) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT ` + pgRunColumns + ` FROM runs ORDER BY run_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := j.Pool.Query(ctx, query, args...)
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
		rec.Created = rec.Created.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (j *Postgres) ListRows(ctx context.Context, runID string) ([]RowRecord, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT run_id, seq, price, total_position::text, average_price, profit_loss
		FROM result_rows
		WHERE run_id = $1
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

func (j *Postgres) Close() error {
	j.Pool.Close()
	return nil
}
