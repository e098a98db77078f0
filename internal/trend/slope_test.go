package trend

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decs(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestSlope(t *testing.T) {
	tests := []struct {
		name string
		xs   []decimal.Decimal
		ys   []decimal.Decimal
		want string
	}{
		{"rising line", decs("1", "2", "3"), decs("10", "12", "14"), "2"},
		{"falling line", decs("1", "2", "3"), decs("14", "12", "10"), "-2"},
		{"flat", decs("1", "2", "3", "4"), decs("5", "5", "5", "5"), "0"},
		{"noisy", decs("1", "2", "3", "4"), decs("1", "3", "2", "4"), "0.8"},
		{"single point", decs("1"), decs("42"), "0"},
		{"empty", nil, nil, "0"},
		{"identical xs", decs("2", "2"), decs("1", "9"), "0"},
	}

	calc := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Slope(tt.xs, tt.ys)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestSlope_LengthMismatch(t *testing.T) {
	_, err := New().Slope(decs("1", "2"), decs("1"))
	assert.Error(t, err)
}

func TestSlope_Deterministic(t *testing.T) {
	xs := decs("1", "2", "3", "4", "5", "6", "7")
	ys := decs("33.3333", "31.1", "29.87", "35.02", "40.5", "38.25", "36.6")

	a, err := New().Slope(xs, ys)
	require.NoError(t, err)
	b, err := New().Slope(xs, ys)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		slope string
		want  int64
	}{
		{"0", 1},
		{"-0.99", 1},
		{"0.5", 1},
		{"-1", 2},
		{"4.99", 2},
		{"-5", 3},
		{"12", 3},
	}

	for _, tt := range tests {
		t.Run(tt.slope, func(t *testing.T) {
			got := New().Multiplier(decimal.RequireFromString(tt.slope))
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}
