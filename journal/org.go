package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRunOrg renders a run as an Org-mode block: the parameters and final
// summary in a PROPERTIES drawer, followed by a table of the sampled rows.
func FormatRunOrg(run RunRecord, rows []RowRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Run: %s %s (%s)\n", strings.ToUpper(run.Direction), run.Created.UTC().Format("2006-01-02"), shortID(run.RunID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID: %s\n", run.RunID)
	fmt.Fprintf(&b, ":CREATED: %s\n", run.Created.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":DIRECTION: %s\n", run.Direction)
	fmt.Fprintf(&b, ":SAMPLING: %s\n", run.Sampling)
	fmt.Fprintf(&b, ":START_PRICE: %g\n", run.StartPrice)
	fmt.Fprintf(&b, ":ADD_INTERVAL: %g\n", run.AddInterval)
	fmt.Fprintf(&b, ":DISPLAY_INTERVAL: %g\n", run.DisplayInterval)
	fmt.Fprintf(&b, ":RULES: %d\n", run.RuleCount)
	fmt.Fprintf(&b, ":STEPS: %d\n", run.Steps)
	fmt.Fprintf(&b, ":FINAL_PRICE: %d\n", run.FinalPrice)
	fmt.Fprintf(&b, ":FINAL_POSITION: %s\n", run.FinalPosition.StringFixed(1))
	fmt.Fprintf(&b, ":FINAL_AVERAGE: %.2f\n", run.FinalAverage)
	fmt.Fprintf(&b, ":FINAL_PL: %.2f\n", run.FinalPL)
	b.WriteString(":END:\n")

	if len(rows) > 0 {
		b.WriteString("\n| Price | Position | Average | P/L |\n")
		b.WriteString("|-------+----------+---------+-----|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %d | %s | %.0f | %.0f |\n", r.Price, r.TotalPosition.StringFixed(1), r.AveragePrice, r.ProfitLoss)
		}
	}

	b.WriteString("\n*** Notes\n- \n")
	return b.String()
}

// FormatRunsOrg renders run summaries separated by blank lines.
func FormatRunsOrg(runs []RunRecord) string {
	var b strings.Builder
	for i, r := range runs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatRunOrg(r, nil))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
