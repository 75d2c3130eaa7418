package sim

import "github.com/shopspring/decimal"

// UpdateAverage folds a fill of size at price into a weighted average entry
// price. It returns 0 when the combined position is zero.
func UpdateAverage(oldAverage float64, oldPosition decimal.Decimal, price int64, size decimal.Decimal) float64 {
	total := oldPosition.Add(size)
	if total.IsZero() {
		return 0
	}
	weighted := oldAverage*oldPosition.InexactFloat64() + float64(price)*size.InexactFloat64()
	return weighted / total.InexactFloat64()
}

// ProfitLoss is the unrealized P/L of position units held at average when the
// market trades at current. Buy profits when price rises, sell when it falls.
func ProfitLoss(current int64, average float64, position decimal.Decimal, d Direction) float64 {
	if position.IsZero() {
		return 0
	}
	units := position.InexactFloat64()
	if d == Sell {
		return (average - float64(current)) * units
	}
	return (float64(current) - average) * units
}

// quantize rounds a position to the nearest 0.1 unit.
func quantize(position decimal.Decimal) decimal.Decimal {
	return position.Round(1)
}
