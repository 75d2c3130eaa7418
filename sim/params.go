package sim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMaxSteps bounds a sweep when Parameters.MaxSteps is zero.
const DefaultMaxSteps = 1_000_000

// MaxPrice is the largest start price or rule bound accepted. Every whole
// price up to it is exact as a float64.
const MaxPrice = 1 << 53

// Direction decides the profit/loss sign convention.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// ParseDirection accepts "buy" or "sell" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", paramError("direction", fmt.Sprintf("%q is not buy or sell", s))
}

// Sampling selects which swept prices become result rows.
type Sampling string

const (
	// SampleStride keeps every Nth swept step, N = round(display/add).
	SampleStride Sampling = "stride"
	// SampleModulo keeps prices where (price-start) mod display == 0. Prices
	// are rounded in place each step, so fractional steps can drift.
	SampleModulo Sampling = "modulo"
)

// ParseSampling maps a blank string to SampleStride.
func ParseSampling(s string) (Sampling, error) {
	switch Sampling(strings.ToLower(strings.TrimSpace(s))) {
	case "", SampleStride:
		return SampleStride, nil
	case SampleModulo:
		return SampleModulo, nil
	}
	return "", paramError("sampling", fmt.Sprintf("%q is not stride or modulo", s))
}

// Parameters are the scalar inputs of a sweep.
type Parameters struct {
	StartPrice      float64   `json:"start_price"`
	AddInterval     float64   `json:"add_interval"`
	DisplayInterval float64   `json:"display_interval"`
	Direction       Direction `json:"direction"`
	Sampling        Sampling  `json:"sampling"`
	MaxSteps        int       `json:"max_steps,omitempty"`
}

// RawParameters hold the scalar inputs as typed into a form.
type RawParameters struct {
	StartPrice      string `json:"start_price"`
	AddInterval     string `json:"add_interval"`
	DisplayInterval string `json:"display_interval"`
	Direction       string `json:"direction"`
	Sampling        string `json:"sampling"`
}

// ParseParameters converts form input into validated Parameters.
func ParseParameters(raw RawParameters) (Parameters, error) {
	var p Parameters
	var err error

	if p.StartPrice, err = parsePositive("start_price", raw.StartPrice); err != nil {
		return Parameters{}, err
	}
	if p.StartPrice > MaxPrice {
		return Parameters{}, paramError("start_price", fmt.Sprintf("exceeds %d", int64(MaxPrice)))
	}
	if p.AddInterval, err = parsePositive("add_interval", raw.AddInterval); err != nil {
		return Parameters{}, err
	}
	if p.DisplayInterval, err = parsePositive("display_interval", raw.DisplayInterval); err != nil {
		return Parameters{}, err
	}
	if p.Direction, err = ParseDirection(raw.Direction); err != nil {
		return Parameters{}, err
	}
	if p.Sampling, err = ParseSampling(raw.Sampling); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

func parsePositive(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, paramError(field, "missing")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, paramError(field, fmt.Sprintf("%q is not a number", s))
	}
	if v <= 0 {
		return 0, paramError(field, "must be positive")
	}
	return v, nil
}

// Validate checks Parameters built without ParseParameters.
func (p Parameters) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"start_price", p.StartPrice},
		{"add_interval", p.AddInterval},
		{"display_interval", p.DisplayInterval},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return paramError(c.field, "is not a number")
		}
		if c.v <= 0 {
			return paramError(c.field, "must be positive")
		}
	}
	if p.StartPrice > MaxPrice {
		return paramError("start_price", fmt.Sprintf("exceeds %d", int64(MaxPrice)))
	}
	if p.Direction != Buy && p.Direction != Sell {
		return paramError("direction", fmt.Sprintf("%q is not buy or sell", p.Direction))
	}
	if p.Sampling != "" && p.Sampling != SampleStride && p.Sampling != SampleModulo {
		return paramError("sampling", fmt.Sprintf("%q is not stride or modulo", p.Sampling))
	}
	if p.MaxSteps < 0 {
		return paramError("max_steps", "must not be negative")
	}
	return nil
}

func (p Parameters) stepLimit() int {
	if p.MaxSteps > 0 {
		return p.MaxSteps
	}
	return DefaultMaxSteps
}

func (p Parameters) sampling() Sampling {
	if p.Sampling == "" {
		return SampleStride
	}
	return p.Sampling
}

// origin is the first swept price. Prices are whole currency units, so a
// fractional start price is rounded before the sweep begins. Validate
// bounds StartPrice by MaxPrice, so the conversion is exact.
func (p Parameters) origin() int64 {
	return int64(math.Round(p.StartPrice))
}

// stride is the number of swept steps between two sampled rows.
func (p Parameters) stride() int {
	r := math.Round(p.DisplayInterval / p.AddInterval)
	switch {
	case r >= float64(math.MaxInt):
		return math.MaxInt
	case r < 1:
		return 1
	}
	return int(r)
}
