package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// cancelCheckEvery is how many swept steps pass between context checks.
const cancelCheckEvery = 4096

type options struct {
	log *zap.Logger
}

// Option configures Simulate.
type Option func(*options)

// WithLogger sets the logger used for sweep diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// state is the accumulator folded over the swept prices.
type state struct {
	position decimal.Decimal
	average  float64
}

func (s state) apply(price int64, size decimal.Decimal) state {
	if !size.IsPositive() {
		return s
	}
	return state{
		average:  UpdateAverage(s.average, s.position, price, size),
		position: quantize(s.position.Add(size)),
	}
}

func (s state) row(price int64, d Direction) ResultRow {
	return ResultRow{
		Price:         price,
		TotalPosition: s.position,
		AveragePrice:  s.average,
		ProfitLoss:    ProfitLoss(price, s.average, s.position, d),
	}
}

// Simulate sweeps prices from p.StartPrice up to the highest rule end,
// adding the matching rule size at every swept price and sampling rows
// according to p.Sampling. Inputs are validated before anything is swept;
// on error no rows are returned.
func Simulate(ctx context.Context, p Parameters, rules RuleSet, opts ...Option) (ResultSet, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := p.Validate(); err != nil {
		return ResultSet{}, err
	}
	if rules.Len() == 0 {
		return ResultSet{}, &ValidationError{Err: ErrMissingRule}
	}

	maxPrice := rules.MaxEnd()
	if start := math.Round(p.StartPrice); start > float64(maxPrice) {
		return ResultSet{}, paramError("start_price",
			fmt.Sprintf("%.0f is above the highest rule end %d", start, maxPrice))
	}
	origin := p.origin()
	if err := checkSteps(p, origin, maxPrice); err != nil {
		return ResultSet{}, err
	}

	var (
		rs  ResultSet
		err error
	)
	switch p.sampling() {
	case SampleModulo:
		rs, err = sweepModulo(ctx, p, rules, origin, maxPrice)
	default:
		rs, err = sweepStride(ctx, p, rules, origin, maxPrice)
	}
	if err != nil {
		return ResultSet{}, err
	}

	final := rs.Final()
	o.log.Debug("sweep complete",
		zap.String("sampling", string(p.sampling())),
		zap.Int("steps", rs.Steps),
		zap.Int("rows", rs.Len()),
		zap.String("final_position", final.TotalPosition.StringFixed(1)),
		zap.Float64("final_average", final.AveragePrice),
	)
	return rs, nil
}

// checkSteps rejects sweeps that would exceed the step limit or never end.
func checkSteps(p Parameters, origin, maxPrice int64) error {
	step := p.AddInterval
	if p.sampling() == SampleModulo {
		// Rounding in place makes the effective step round(add).
		step = math.Round(p.AddInterval)
		if step == 0 {
			return &ValidationError{Err: ErrTooManySteps, Field: "add_interval",
				Detail: "steps below 0.5 never advance a rounded price in modulo sampling"}
		}
	}
	est := math.Floor(float64(maxPrice-origin)/step) + 1
	if limit := p.stepLimit(); est > float64(limit) {
		return &ValidationError{Err: ErrTooManySteps, Field: "add_interval",
			Detail: fmt.Sprintf("%.0f steps, limit %d", est, limit)}
	}
	return nil
}

func tooManySteps(limit int) error {
	return &ValidationError{Err: ErrTooManySteps, Field: "add_interval",
		Detail: fmt.Sprintf("limit %d", limit)}
}

// sweepStride computes the i-th price as round(origin + i*add) and keeps
// every stride-th step.
func sweepStride(ctx context.Context, p Parameters, rules RuleSet, origin, maxPrice int64) (ResultSet, error) {
	rs := ResultSet{Direction: p.Direction}
	stride := p.stride()
	limit := p.stepLimit()

	var st state
	for i := 0; ; i++ {
		x := float64(origin) + float64(i)*p.AddInterval
		if x > float64(maxPrice) {
			break
		}
		if i >= limit {
			return ResultSet{}, tooManySteps(limit)
		}
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return ResultSet{}, err
			}
		}

		price := int64(math.Round(x))
		st = st.apply(price, rules.Lookup(price))
		if i%stride == 0 {
			rs.Rows = append(rs.Rows, st.row(price, p.Direction))
		}
		rs.Steps++
	}
	return rs, nil
}

// sweepModulo rounds the swept price in place every step and keeps prices
// whose distance from the origin is an exact multiple of the display
// interval, plus the origin itself.
func sweepModulo(ctx context.Context, p Parameters, rules RuleSet, origin, maxPrice int64) (ResultSet, error) {
	rs := ResultSet{Direction: p.Direction}
	limit := p.stepLimit()

	var st state
	for x := float64(origin); x <= float64(maxPrice); x += p.AddInterval {
		if rs.Steps >= limit {
			return ResultSet{}, tooManySteps(limit)
		}
		if rs.Steps%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return ResultSet{}, err
			}
		}

		x = math.Round(x)
		price := int64(x)
		st = st.apply(price, rules.Lookup(price))
		if price == origin || math.Mod(float64(price-origin), p.DisplayInterval) == 0 {
			rs.Rows = append(rs.Rows, st.row(price, p.Direction))
		}
		rs.Steps++
	}
	return rs, nil
}

// SimulateRaw validates form input and runs Simulate. Parameters are checked
// before rules so the first reported error follows the form layout.
func SimulateRaw(ctx context.Context, raw RawParameters, rows []RawRule, mode ParseMode, opts ...Option) (ResultSet, error) {
	p, err := ParseParameters(raw)
	if err != nil {
		return ResultSet{}, err
	}
	rules, err := ParseRules(rows, mode)
	if err != nil {
		return ResultSet{}, err
	}
	return Simulate(ctx, p, rules, opts...)
}
