package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	runsHeader = []string{"run_id", "created", "start_price", "add_interval", "display_interval", "direction", "sampling", "rule_count", "steps", "final_price", "final_position", "final_average", "final_pl"}
	rowsHeader = []string{"run_id", "seq", "price", "total_position", "average_price", "profit_loss"}
)

type CSV struct {
	runs   *csv.Writer
	rows   *csv.Writer
	rf, wf *os.File
}

func NewCSV(runsPath, rowsPath string) (*CSV, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	wf, err := os.Create(rowsPath)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	ww := csv.NewWriter(wf)

	if err := rw.Write(runsHeader); err != nil {
		return nil, err
	}
	if err := ww.Write(rowsHeader); err != nil {
		return nil, err
	}

	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}
	ww.Flush()
	if err := ww.Error(); err != nil {
		return nil, err
	}

	return &CSV{runs: rw, rows: ww, rf: rf, wf: wf}, nil
}

func (j *CSV) RecordRun(_ context.Context, run RunRecord, rows []RowRecord) error {
	err := j.runs.Write([]string{
		run.RunID,
		run.Created.Format(time.RFC3339),
		f(run.StartPrice),
		f(run.AddInterval),
		f(run.DisplayInterval),
		run.Direction,
		run.Sampling,
		strconv.Itoa(run.RuleCount),
		strconv.Itoa(run.Steps),
		strconv.FormatInt(run.FinalPrice, 10),
		run.FinalPosition.StringFixed(1),
		f(run.FinalAverage),
		f(run.FinalPL),
	})
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}

	for _, r := range rows {
		err := j.rows.Write([]string{
			run.RunID,
			strconv.Itoa(r.Seq),
			strconv.FormatInt(r.Price, 10),
			r.TotalPosition.StringFixed(1),
			f(r.AveragePrice),
			f(r.ProfitLoss),
		})
		if err != nil {
			return fmt.Errorf("write row %d: %w", r.Seq, err)
		}
	}
	j.rows.Flush()
	return j.rows.Error()
}

func (j *CSV) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.rows.Flush()
	if err := j.rows.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	if err := j.wf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
