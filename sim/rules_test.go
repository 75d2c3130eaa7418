package sim

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     []RawRule
		mode    ParseMode
		wantLen int
		wantErr error
		errMsg  string
	}{
		{
			name:    "defaults",
			raw:     []RawRule{{"41150", "41950", "0.1"}, {"42150", "42950", "0.2"}, {"43150", "43950", "0.3"}},
			wantLen: 3,
		},
		{
			name:    "lenient_skips_partial_rows",
			raw:     []RawRule{{"100", "200", "0.1"}, {"300", "", "0.2"}, {"abc", "400", "0.1"}},
			wantLen: 1,
		},
		{
			name:    "strict_rejects_partial_rows",
			raw:     []RawRule{{"100", "200", "0.1"}, {"300", "", "0.2"}},
			mode:    Strict,
			wantErr: ErrMalformedRule,
			errMsg:  "rule 2: end",
		},
		{
			name:    "strict_skips_blank_rows",
			raw:     []RawRule{{"", " ", ""}, {"100", "200", "0.1"}},
			mode:    Strict,
			wantLen: 1,
		},
		{
			name:    "no_rules",
			raw:     nil,
			wantErr: ErrMissingRule,
		},
		{
			name:    "only_partial_rows",
			raw:     []RawRule{{"100", "", ""}},
			wantErr: ErrMissingRule,
		},
		{
			name:    "start_after_end",
			raw:     []RawRule{{"100", "50", "1"}},
			wantErr: ErrInvalidRuleRange,
			errMsg:  "rule 1: invalid rule price range (start 100 must be less than end 50)",
		},
		{
			name:    "start_equals_end",
			raw:     []RawRule{{"100", "100", "1"}},
			wantErr: ErrInvalidRuleRange,
		},
		{
			name:    "fractional_price",
			raw:     []RawRule{{"100.5", "200", "1"}},
			wantErr: ErrInvalidRuleRange,
			errMsg:  "whole currency units",
		},
		{
			name:    "zero_start_price",
			raw:     []RawRule{{"0", "200", "1"}},
			wantLen: 1,
		},
		{
			name:    "huge_end_price",
			raw:     []RawRule{{"100", "1e300", "1"}},
			wantErr: ErrInvalidRuleRange,
			errMsg:  "rule 1: end: invalid rule price range (1e+300 exceeds 9007199254740992)",
		},
		{
			name:    "huge_negative_start_price",
			raw:     []RawRule{{"-1e19", "100", "1"}},
			wantErr: ErrInvalidRuleRange,
			errMsg:  "rule 1: start:",
		},
		{
			name:    "largest_exact_price",
			raw:     []RawRule{{"9007199254740991", "9007199254740992", "0.1"}},
			wantLen: 1,
		},
		{
			name:    "non_tenth_size",
			raw:     []RawRule{{"100", "200", "0.15"}},
			wantErr: ErrInvalidRuleSize,
			errMsg:  "0.15 is not a multiple of 0.1",
		},
		{
			name:    "zero_size",
			raw:     []RawRule{{"100", "200", "0"}},
			wantErr: ErrInvalidRuleSize,
		},
		{
			name:    "negative_size",
			raw:     []RawRule{{"100", "200", "-0.1"}},
			wantErr: ErrInvalidRuleSize,
		},
		{
			name:    "first_violation_wins",
			raw:     []RawRule{{"100", "200", "0.15"}, {"300", "200", "1"}},
			wantErr: ErrInvalidRuleSize,
			errMsg:  "rule 1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rs, err := ParseRules(tt.raw, tt.mode)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				assert.Equal(t, 0, rs.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, rs.Len())
		})
	}
}

func TestParseRulesKeepsOrder(t *testing.T) {
	t.Parallel()

	rs, err := ParseRules([]RawRule{{"300", "400", "0.3"}, {" 100 ", "200", "1.0"}}, Lenient)
	require.NoError(t, err)

	rules := rs.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, int64(300), rules[0].Start)
	assert.Equal(t, int64(100), rules[1].Start)
	assert.True(t, decimal.NewFromInt(1).Equal(rules[1].Size))
	assert.Equal(t, int64(400), rs.MaxEnd())
}

func TestNewRuleSet(t *testing.T) {
	t.Parallel()

	_, err := NewRuleSet()
	assert.ErrorIs(t, err, ErrMissingRule)

	_, err = NewRuleSet(SizingRule{Start: 10, End: 20, Size: decimal.RequireFromString("0.25")})
	assert.ErrorIs(t, err, ErrInvalidRuleSize)

	_, err = NewRuleSet(SizingRule{Start: 10, End: 1 << 62, Size: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidRuleRange)
	assert.Contains(t, err.Error(), "rule 1: end:")

	rs, err := NewRuleSet(SizingRule{Start: 10, End: 20, Size: decimal.RequireFromString("0.5")})
	require.NoError(t, err)
	assert.Equal(t, int64(20), rs.MaxEnd())

	rs, err = NewRuleSet(SizingRule{Start: -50, End: -10, Size: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(-10), rs.MaxEnd())
	assert.Equal(t, 0, RuleSet{}.Len())
	assert.Equal(t, int64(0), RuleSet{}.MaxEnd())
}

func TestLookupFirstMatchWins(t *testing.T) {
	t.Parallel()

	rs, err := NewRuleSet(
		SizingRule{Start: 10, End: 20, Size: decimal.NewFromInt(1)},
		SizingRule{Start: 15, End: 25, Size: decimal.NewFromInt(2)},
	)
	require.NoError(t, err)

	tests := []struct {
		price int64
		want  string
	}{
		{9, "0"},
		{10, "1"},
		{17, "1"},
		{20, "1"},
		{21, "2"},
		{25, "2"},
		{26, "0"},
	}
	for _, tt := range tests {
		got := rs.Lookup(tt.price)
		assert.Equal(t, tt.want, got.String(), "price %d", tt.price)
	}
}

func TestParseModeFromString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Strict, ParseModeFromString(" STRICT "))
	assert.Equal(t, Lenient, ParseModeFromString("lenient"))
	assert.Equal(t, Lenient, ParseModeFromString(""))
	assert.Equal(t, "strict", Strict.String())
}
