package shortinterest

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/internal/trend"
	"github.com/wonny/shortscore/pkg/logger"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// risingSeries is XYZ at 10%, 12%, 14% short interest oldest to newest, most recent first
func risingSeries() contracts.ShortInterestSeries {
	return contracts.ShortInterestSeries{
		rec(day(2024, 1, 17), "XYZ", 140, 0, 1000),
		rec(day(2024, 1, 16), "XYZ", 120, 0, 1000),
		rec(day(2024, 1, 12), "XYZ", 100, 0, 1000),
	}
}

func TestScore_WithStubSlope(t *testing.T) {
	stub := &stubSlope{slope: d("0.3"), multiplier: d("1")}
	engine := NewEngine(stub, logger.Nop())

	result, err := engine.Score("XYZ", risingSeries())
	require.NoError(t, err)

	assert.Equal(t, "XYZ", result.Symbol)
	assert.Equal(t, day(2024, 1, 17), result.AsOf)
	assert.Equal(t, 3, result.Days)
	assertDecimal(t, "3000", result.TotalVolume)
	assertDecimal(t, "360", result.TotalVolumeShort)
	assertDecimal(t, "14", result.ShortInterestPercentToday)
	assertDecimal(t, "12", result.ShortInterestPercentAverage)
	assertDecimal(t, "0.3", result.ShortInterestSlope)
	// 100 - 12 - 5 + 15 (slightly bearish)
	assertDecimal(t, "98", result.ShortInterestCompositeScore)

	// x = 1 is the oldest day
	require.Len(t, stub.xs, 3)
	for i, want := range []string{"1", "2", "3"} {
		assertDecimal(t, want, stub.xs[i])
	}
	for i, want := range []string{"10", "12", "14"} {
		assertDecimal(t, want, stub.ys[i])
	}
}

func TestScore_WithLeastSquaresSlope(t *testing.T) {
	result, err := NewEngine(trend.New(), logger.Nop()).Score("XYZ", risingSeries())
	require.NoError(t, err)

	assert.True(t, result.ShortInterestSlope.IsPositive(), "rising short interest has an upward slope")
	assertDecimal(t, "2", result.ShortInterestSlope)
	// 100 - 12 - 5, slope above both bands
	assertDecimal(t, "83", result.ShortInterestCompositeScore)
}

func TestScore_FallingShortInterest(t *testing.T) {
	series := contracts.ShortInterestSeries{
		rec(day(2024, 1, 17), "XYZ", 100, 0, 1000),
		rec(day(2024, 1, 16), "XYZ", 120, 0, 1000),
		rec(day(2024, 1, 12), "XYZ", 140, 0, 1000),
	}

	result, err := NewEngine(trend.New(), logger.Nop()).Score("XYZ", series)
	require.NoError(t, err)

	assertDecimal(t, "-2", result.ShortInterestSlope)
	// 100 - 12 + (-2 * 2) + 20
	assertDecimal(t, "104", result.ShortInterestCompositeScore)
}

func TestScore_SingleRecord(t *testing.T) {
	series := contracts.ShortInterestSeries{rec(day(2024, 1, 17), "XYZ", 300, 50, 1000)}

	result, err := NewEngine(trend.New(), logger.Nop()).Score("XYZ", series)
	require.NoError(t, err)

	assertDecimal(t, "35", result.ShortInterestPercentToday)
	assertDecimal(t, "35", result.ShortInterestPercentAverage)
	assertDecimal(t, "0", result.ShortInterestSlope)
	assertDecimal(t, "60", result.ShortInterestCompositeScore)
}

func TestScore_EmptySeries(t *testing.T) {
	_, err := NewEngine(trend.New(), logger.Nop()).Score("XYZ", contracts.ShortInterestSeries{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrPrecondition))
}

func TestScore_ZeroTotalVolume(t *testing.T) {
	series := contracts.ShortInterestSeries{
		rec(day(2024, 1, 17), "XYZ", 10, 0, 100),
		rec(day(2024, 1, 16), "XYZ", 0, 0, 0),
	}
	stub := &stubSlope{slope: d("0"), multiplier: d("1")}

	result, err := NewEngine(stub, logger.Nop()).Score("XYZ", series)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, contracts.ErrDivisionHazard))
	assert.Nil(t, stub.xs, "slope must not be computed")
}

func TestScore_FullPrecision(t *testing.T) {
	series := contracts.ShortInterestSeries{rec(day(2024, 1, 17), "XYZ", 1, 0, 3)}

	result, err := NewEngine(trend.New(), logger.Nop()).Score("XYZ", series)
	require.NoError(t, err)

	assertDecimal(t, "33.33333333333333333333333333", result.ShortInterestPercentToday)
	assertDecimal(t, "33.33333333333333333333333333", result.ShortInterestPercentAverage)
	assertDecimal(t, "61.66666666666666666666666667", result.ShortInterestCompositeScore)
}

func TestScore_SlopeError(t *testing.T) {
	stub := &stubSlope{err: errors.New("boom")}
	_, err := NewEngine(stub, logger.Nop()).Score("XYZ", risingSeries())
	assert.Error(t, err)
}

func TestScore_Idempotent(t *testing.T) {
	engine := NewEngine(trend.New(), logger.Nop())
	series := contracts.ShortInterestSeries{
		rec(day(2024, 1, 17), "XYZ", 1234567, 8910, 3333333),
		rec(day(2024, 1, 16), "XYZ", 777, 1, 2999),
		rec(day(2024, 1, 12), "XYZ", 5, 0, 7),
		rec(day(2024, 1, 11), "XYZ", 1, 1, 3),
	}

	a, err := engine.Score("XYZ", series)
	require.NoError(t, err)
	b, err := engine.Score("XYZ", series)
	require.NoError(t, err)

	aj, err := json.Marshal(a)
	require.NoError(t, err)
	bj, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(aj), string(bj))

	assert.True(t, a.TotalVolumeShort.LessThanOrEqual(a.TotalVolume))
	assert.False(t, a.ShortInterestPercentAverage.IsNegative())
	assert.True(t, a.ShortInterestPercentAverage.LessThanOrEqual(d("100")))
}

func TestCompositeScore(t *testing.T) {
	tests := []struct {
		name       string
		slope      string
		multiplier string
		want       string
	}{
		{"steep fall", "-2", "2", "104"},
		{"gentle fall", "-0.5", "1", "107.5"},
		{"flat", "0", "1", "83"},
		{"slightly bearish", "0.3", "1", "98"},
		{"both bands at 0.5", "0.5", "1", "108"},
		{"moderately bearish", "0.7", "1", "93"},
		{"moderately bearish upper edge", "1", "1", "93"},
		{"steep rise", "1.01", "2", "83"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompositeScore(d("12"), d(tt.slope), d(tt.multiplier))
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestCompositeScore_Unclamped(t *testing.T) {
	assertDecimal(t, "-5", CompositeScore(d("100"), d("0"), d("1")))
	assertDecimal(t, "-80", CompositeScore(d("100"), d("-50"), d("2")))
}
