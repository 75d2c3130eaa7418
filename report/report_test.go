package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/rustyeddy/cfdsim/sim"
)

func simulate(t *testing.T, dir sim.Direction) sim.ResultSet {
	t.Helper()
	rules, err := sim.ParseRules([]sim.RawRule{{Start: "41150", End: "41950", Size: "0.1"}, {Start: "42150", End: "42950", Size: "0.2"}, {Start: "43150", End: "43950", Size: "0.3"}}, sim.Lenient)
	require.NoError(t, err)
	rs, err := sim.Simulate(context.Background(), sim.Parameters{StartPrice: 41150, AddInterval: 50, DisplayInterval: 400, Direction: dir}, rules)
	require.NoError(t, err)
	return rs
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	f := Japanese()
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"grouped", f.Number(1234567), "1,234,567"},
		{"small", f.Number(999), "999"},
		{"rounds_half_up", f.Number(2.5), "3"},
		{"negative_half_up", f.Number(-2.5), "-2"},
		{"money", f.Money(41150), "41,150円"},
		{"negative_money", f.Money(-10932.5), "-10,932円"},
		{"position", f.Position(decimal.RequireFromString("10.2")), "10.2"},
		{"whole_position", f.Position(decimal.NewFromInt(3)), "3.0"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
		})
	}

	us := NewFormatter(language.AmericanEnglish, " USD")
	assert.Equal(t, "1,500 USD", us.Money(1500))
}

func TestProfitClass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "profit-positive", ProfitClass(0))
	assert.Equal(t, "profit-positive", ProfitClass(12))
	assert.Equal(t, "profit-negative", ProfitClass(-0.1))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	rep := Build(simulate(t, sim.Buy), Japanese())

	assert.Equal(t, "10.2", rep.Summary.FinalPosition)
	assert.Equal(t, "42,878円", rep.Summary.FinalAverage)
	assert.Regexp(t, `^10,93[23]円$`, rep.Summary.FinalPL)
	assert.False(t, rep.Summary.Negative)

	require.Len(t, rep.Table, 8)
	assert.Equal(t, TableRow{Price: "41,150円", Position: "0.1", Average: "41,150円", ProfitLoss: "0円", Class: "profit-positive"}, rep.Table[0])

	assert.Equal(t, []string{"41,150", "41,550", "41,950", "42,350", "42,750", "43,150", "43,550", "43,950"}, rep.Chart.Labels)
	assert.Equal(t, []float64{0.1, 0.9, 1.7, 2.7, 4.3, 5.4, 7.8, 10.2}, rep.Chart.Position)
	assert.Len(t, rep.Chart.ProfitLoss, 8)
	assert.InDelta(t, 10932.5, float64(rep.Chart.ProfitLoss[7]), 1)
}

func TestBuildSellIsNegative(t *testing.T) {
	t.Parallel()

	rep := Build(simulate(t, sim.Sell), Japanese())
	assert.True(t, rep.Summary.Negative)
	assert.Regexp(t, `^-10,93[23]円$`, rep.Summary.FinalPL)
	assert.Equal(t, "profit-negative", rep.Table[7].Class)
}

func TestWriteSummaryAndTable(t *testing.T) {
	t.Parallel()

	rep := Build(simulate(t, sim.Buy), Japanese())

	var buf bytes.Buffer
	WriteSummary(&buf, rep.Summary)
	require.NoError(t, WriteTable(&buf, rep.Table))

	out := buf.String()
	assert.Contains(t, out, "Final Position:  10.2")
	assert.Contains(t, out, "Final Average:   42,878円")
	assert.Contains(t, out, "43,950円")
	assert.Equal(t, 1+8, strings.Count(out, "\n")-6, "summary lines plus header and rows")
}
