package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/cfdsim/sim"
)

// RunRecord summarizes one simulation run. The rules themselves are not
// stored, only how many were used.
type RunRecord struct {
	RunID           string
	Created         time.Time
	StartPrice      float64
	AddInterval     float64
	DisplayInterval float64
	Direction       string
	Sampling        string
	RuleCount       int
	Steps           int

	FinalPrice    int64
	FinalPosition decimal.Decimal
	FinalAverage  float64
	FinalPL       float64
}

// RowRecord is one sampled result row of a run.
type RowRecord struct {
	RunID         string
	Seq           int
	Price         int64
	TotalPosition decimal.Decimal
	AveragePrice  float64
	ProfitLoss    float64
}

// Journal stores simulation runs and their rows.
type Journal interface {
	RecordRun(ctx context.Context, run RunRecord, rows []RowRecord) error
	Close() error
}

// Reader is implemented by journals that can be queried.
type Reader interface {
	GetRun(ctx context.Context, runID string) (RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	ListRows(ctx context.Context, runID string) ([]RowRecord, error)
}

// NewRun builds the records of a finished sweep.
func NewRun(runID string, created time.Time, p sim.Parameters, rules sim.RuleSet, rs sim.ResultSet) (RunRecord, []RowRecord) {
	final := rs.Final()
	sampling := p.Sampling
	if sampling == "" {
		sampling = sim.SampleStride
	}
	run := RunRecord{
		RunID:           runID,
		Created:         created.UTC(),
		StartPrice:      p.StartPrice,
		AddInterval:     p.AddInterval,
		DisplayInterval: p.DisplayInterval,
		Direction:       string(p.Direction),
		Sampling:        string(sampling),
		RuleCount:       rules.Len(),
		Steps:           rs.Steps,
		FinalPrice:      final.Price,
		FinalPosition:   final.TotalPosition,
		FinalAverage:    final.AveragePrice,
		FinalPL:         final.ProfitLoss,
	}

	rows := make([]RowRecord, 0, rs.Len())
	for i, r := range rs.Rows {
		rows = append(rows, RowRecord{
			RunID:         runID,
			Seq:           i,
			Price:         r.Price,
			TotalPosition: r.TotalPosition,
			AveragePrice:  r.AveragePrice,
			ProfitLoss:    r.ProfitLoss,
		})
	}
	return run, rows
}

// Discard is a Journal that drops everything.
type Discard struct{}

func (Discard) RecordRun(context.Context, RunRecord, []RowRecord) error { return nil }
func (Discard) Close() error                                             { return nil }
