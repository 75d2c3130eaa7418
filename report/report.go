package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rustyeddy/cfdsim/sim"
)

// Summary describes the final row of a run.
type Summary struct {
	FinalPosition string `json:"final_position"`
	FinalAverage  string `json:"final_average"`
	FinalPL       string `json:"final_profit_loss"`
	Negative      bool   `json:"negative"`
}

// TableRow is one formatted result row.
type TableRow struct {
	Price      string `json:"price"`
	Position   string `json:"position"`
	Average    string `json:"average"`
	ProfitLoss string `json:"profit_loss"`
	Class      string `json:"class"`
}

// Chart holds the P/L line and position bar series sharing one label axis.
type Chart struct {
	Labels     []string  `json:"labels"`
	ProfitLoss []int64   `json:"profit_loss"`
	Position   []float64 `json:"position"`
}

// Report is everything the presentation layer shows for a run.
type Report struct {
	Summary Summary    `json:"summary"`
	Table   []TableRow `json:"table"`
	Chart   Chart      `json:"chart"`
}

// Build formats rs with f.
func Build(rs sim.ResultSet, f *Formatter) Report {
	return Report{
		Summary: BuildSummary(rs, f),
		Table:   BuildTable(rs, f),
		Chart:   BuildChart(rs, f),
	}
}

func BuildSummary(rs sim.ResultSet, f *Formatter) Summary {
	final := rs.Final()
	return Summary{
		FinalPosition: f.Position(final.TotalPosition),
		FinalAverage:  f.Money(final.AveragePrice),
		FinalPL:       f.Money(final.ProfitLoss),
		Negative:      final.ProfitLoss < 0,
	}
}

func BuildTable(rs sim.ResultSet, f *Formatter) []TableRow {
	out := make([]TableRow, 0, rs.Len())
	for _, r := range rs.Rows {
		out = append(out, TableRow{
			Price:      f.Money(float64(r.Price)),
			Position:   f.Position(r.TotalPosition),
			Average:    f.Money(r.AveragePrice),
			ProfitLoss: f.Money(r.ProfitLoss),
			Class:      ProfitClass(r.ProfitLoss),
		})
	}
	return out
}

func BuildChart(rs sim.ResultSet, f *Formatter) Chart {
	c := Chart{
		Labels:     make([]string, 0, rs.Len()),
		ProfitLoss: make([]int64, 0, rs.Len()),
		Position:   make([]float64, 0, rs.Len()),
	}
	for _, r := range rs.Rows {
		c.Labels = append(c.Labels, f.Number(float64(r.Price)))
		c.ProfitLoss = append(c.ProfitLoss, roundHalfUp(r.ProfitLoss))
		c.Position = append(c.Position, r.TotalPosition.Round(1).InexactFloat64())
	}
	return c
}

// WriteSummary prints the summary block.
func WriteSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Simulation Summary")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Final Position:  %s\n", s.FinalPosition)
	fmt.Fprintf(w, "Final Average:   %s\n", s.FinalAverage)
	fmt.Fprintf(w, "Final P/L:       %s\n", s.FinalPL)
}

// WriteTable prints rows as aligned columns.
func WriteTable(w io.Writer, rows []TableRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Price\tPosition\tAverage\tP/L\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Price, r.Position, r.Average, r.ProfitLoss)
	}
	return tw.Flush()
}
