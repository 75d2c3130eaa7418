package sim

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMode controls how rule rows that do not parse are treated.
type ParseMode int

const (
	// Lenient skips rows where any field is blank or not numeric.
	Lenient ParseMode = iota
	// Strict skips fully blank rows and rejects every other bad row.
	Strict
)

func (m ParseMode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// ParseModeFromString maps "strict" to Strict and anything else to Lenient.
func ParseModeFromString(s string) ParseMode {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return Strict
	}
	return Lenient
}

var tenth = decimal.New(1, -1)

// RawRule is a rule row as entered by a user. Any field may be blank.
type RawRule struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Size  string `json:"size" yaml:"size"`
}

func (r RawRule) blank() bool {
	return strings.TrimSpace(r.Start) == "" &&
		strings.TrimSpace(r.End) == "" &&
		strings.TrimSpace(r.Size) == ""
}

// SizingRule adds Size to the position at every swept price in [Start, End].
type SizingRule struct {
	Start int64
	End   int64
	Size  decimal.Decimal
}

// Contains reports whether price lies in the inclusive range of the rule.
func (r SizingRule) Contains(price int64) bool {
	return price >= r.Start && price <= r.End
}

// RuleSet is an ordered, validated, non-empty list of sizing rules.
type RuleSet struct {
	rules []SizingRule
}

// NewRuleSet validates already-typed rules and returns them as a RuleSet.
func NewRuleSet(rules ...SizingRule) (RuleSet, error) {
	if len(rules) == 0 {
		return RuleSet{}, &ValidationError{Err: ErrMissingRule}
	}
	for i, r := range rules {
		if err := validateRule(r, i+1); err != nil {
			return RuleSet{}, err
		}
	}
	out := make([]SizingRule, len(rules))
	copy(out, rules)
	return RuleSet{rules: out}, nil
}

// ParseRules converts raw rule rows into a RuleSet. Rows are numbered from 1
// in error messages using their position in raw.
func ParseRules(raw []RawRule, mode ParseMode) (RuleSet, error) {
	rules := make([]SizingRule, 0, len(raw))
	for i, row := range raw {
		n := i + 1
		if row.blank() {
			continue
		}
		r, field, err := parseRow(row, n)
		if err != nil {
			return RuleSet{}, err
		}
		if field != "" {
			if mode == Strict {
				return RuleSet{}, ruleError(ErrMalformedRule, n, field, "")
			}
			continue
		}
		if err := validateRule(r, n); err != nil {
			return RuleSet{}, err
		}
		rules = append(rules, r)
	}
	if len(rules) == 0 {
		return RuleSet{}, &ValidationError{Err: ErrMissingRule}
	}
	return RuleSet{rules: rules}, nil
}

// parseRow returns the name of the first field that is not numeric, or an
// error when a numeric price is not a whole currency unit.
func parseRow(row RawRule, n int) (SizingRule, string, error) {
	start, ok := parsePrice(row.Start)
	if !ok {
		return SizingRule{}, "start", nil
	}
	end, ok := parsePrice(row.End)
	if !ok {
		return SizingRule{}, "end", nil
	}
	size, err := decimal.NewFromString(strings.TrimSpace(row.Size))
	if err != nil {
		return SizingRule{}, "size", nil
	}
	if err := checkPrice(start, n, "start"); err != nil {
		return SizingRule{}, "", err
	}
	if err := checkPrice(end, n, "end"); err != nil {
		return SizingRule{}, "", err
	}
	return SizingRule{Start: int64(start), End: int64(end), Size: size}, "", nil
}

// checkPrice rejects rule bounds that cannot be swept as exact whole prices.
func checkPrice(v float64, n int, field string) error {
	if math.Abs(v) > MaxPrice {
		return ruleError(ErrInvalidRuleRange, n, field, fmt.Sprintf("%g exceeds %d", v, int64(MaxPrice)))
	}
	if v != math.Trunc(v) {
		return ruleError(ErrInvalidRuleRange, n, field, "prices must be whole currency units")
	}
	return nil
}

func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func validateRule(r SizingRule, row int) error {
	for _, b := range []struct {
		field string
		v     int64
	}{{"start", r.Start}, {"end", r.End}} {
		if b.v > MaxPrice || b.v < -MaxPrice {
			return ruleError(ErrInvalidRuleRange, row, b.field, fmt.Sprintf("%d exceeds %d", b.v, int64(MaxPrice)))
		}
	}
	if r.Start >= r.End {
		return ruleError(ErrInvalidRuleRange, row, "", fmt.Sprintf("start %d must be less than end %d", r.Start, r.End))
	}
	if !r.Size.IsPositive() {
		return ruleError(ErrInvalidRuleSize, row, "size", r.Size.String()+" is not positive")
	}
	if !r.Size.Mod(tenth).IsZero() {
		return ruleError(ErrInvalidRuleSize, row, "size", r.Size.String()+" is not a multiple of 0.1")
	}
	return nil
}

// Len returns the number of rules.
func (rs RuleSet) Len() int { return len(rs.rules) }

// Rules returns a copy of the rules in input order.
func (rs RuleSet) Rules() []SizingRule {
	out := make([]SizingRule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// MaxEnd is the highest rule end price, the upper bound of a sweep. It is
// zero for an empty RuleSet.
func (rs RuleSet) MaxEnd() int64 {
	if len(rs.rules) == 0 {
		return 0
	}
	hi := rs.rules[0].End
	for _, r := range rs.rules[1:] {
		if r.End > hi {
			hi = r.End
		}
	}
	return hi
}

// Lookup returns the size of the first rule, in input order, whose inclusive
// range contains price, or zero when no rule matches. Overlapping rules are
// resolved strictly by input order; neither the narrowest nor the largest
// range is preferred.
func (rs RuleSet) Lookup(price int64) decimal.Decimal {
	for _, r := range rs.rules {
		if r.Contains(price) {
			return r.Size
		}
	}
	return decimal.Zero
}
