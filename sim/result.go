package sim

import "github.com/shopspring/decimal"

// ResultRow is a snapshot of the position at one sampled price.
type ResultRow struct {
	Price         int64           `json:"price"`
	TotalPosition decimal.Decimal `json:"total_position"`
	AveragePrice  float64         `json:"average_price"`
	ProfitLoss    float64         `json:"profit_loss"`
}

// ResultSet holds the sampled rows of one sweep in ascending price order.
type ResultSet struct {
	Direction Direction   `json:"direction"`
	Steps     int         `json:"steps"`
	Rows      []ResultRow `json:"rows"`
}

// Len returns the number of sampled rows.
func (rs ResultSet) Len() int { return len(rs.Rows) }

// Final returns the last sampled row, the summary of the run.
func (rs ResultSet) Final() ResultRow {
	if len(rs.Rows) == 0 {
		return ResultRow{}
	}
	return rs.Rows[len(rs.Rows)-1]
}
