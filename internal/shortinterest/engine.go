package shortinterest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/pkg/logger"
)

// Composite score weights
var (
	hundred         = decimal.NewFromInt(100)
	fallingBonus    = decimal.NewFromInt(20)
	risingPenalty   = decimal.NewFromInt(5)
	slightlyBearish = decimal.NewFromInt(15)
	moderateBearish = decimal.NewFromInt(10)
	bandLow         = decimal.Zero
	bandMid         = decimal.RequireFromString("0.5")
	bandHigh        = decimal.NewFromInt(1)
)

// Engine reduces a short interest series to volume totals, a trend slope
// and the composite score.
// ⭐ SSOT: composite score formula lives here only
type Engine struct {
	slope  contracts.SlopeCalculator
	logger *logger.Logger
}

// NewEngine creates a scoring engine
func NewEngine(slope contracts.SlopeCalculator, log *logger.Logger) *Engine {
	return &Engine{
		slope:  slope,
		logger: log.WithComponent("score_engine"),
	}
}

// Score computes the result for a series ordered most recent first.
// An empty series is ErrPrecondition; a non-positive total volume is ErrDivisionHazard.
func (e *Engine) Score(symbol string, series contracts.ShortInterestSeries) (*contracts.ShortInterestResult, error) {
	latest, ok := series.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: no short volume records for %s", contracts.ErrPrecondition, symbol)
	}

	n := len(series)
	percents := make([]decimal.Decimal, n)
	totalVolume := decimal.Zero
	totalVolumeShort := decimal.Zero

	for i, rec := range series {
		pct, err := rec.ShortInterestPercent()
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", rec.Symbol, rec.Date.Format("2006-01-02"), err)
		}
		percents[i] = pct
		totalVolume = totalVolume.Add(rec.TotalVolume)
		totalVolumeShort = totalVolumeShort.Add(rec.CombinedShortVolume())
	}

	// x = 1 is the oldest day, so a rising short interest has a positive slope
	xs := make([]decimal.Decimal, n)
	ys := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		xs[i] = decimal.NewFromInt(int64(i + 1))
		ys[i] = percents[n-1-i]
	}

	slope, err := e.slope.Slope(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("slope for %s: %w", symbol, err)
	}
	multiplier := e.slope.Multiplier(slope)

	average := contracts.Quotient(totalVolumeShort, totalVolume).Mul(hundred)
	score := CompositeScore(average, slope, multiplier)

	e.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"days":       n,
		"average":    average.String(),
		"slope":      slope.String(),
		"multiplier": multiplier.String(),
		"score":      score.String(),
	}).Debug("Calculated short interest score")

	return &contracts.ShortInterestResult{
		Symbol:                      symbol,
		AsOf:                        latest.Date,
		Days:                        n,
		TotalVolume:                 totalVolume,
		TotalVolumeShort:            totalVolumeShort,
		ShortInterestPercentToday:   percents[0],
		ShortInterestPercentAverage: average,
		ShortInterestSlope:          slope,
		ShortInterestCompositeScore: score,
	}, nil
}

// CompositeScore applies the heuristic. The two bearish bands overlap at
// exactly 0.5, where both bonuses apply. The result is not clamped.
func CompositeScore(average, slope, multiplier decimal.Decimal) decimal.Decimal {
	score := hundred.Sub(average)

	if slope.IsNegative() {
		score = score.Add(slope.Mul(multiplier).Add(fallingBonus))
	} else {
		score = score.Sub(risingPenalty)
	}

	if slope.IsPositive() && within(slope, bandLow, bandMid) {
		score = score.Add(slightlyBearish)
	}
	if slope.IsPositive() && within(slope, bandMid, bandHigh) {
		score = score.Add(moderateBearish)
	}

	return score
}

func within(v, lo, hi decimal.Decimal) bool {
	return lo.LessThanOrEqual(v) && v.LessThanOrEqual(hi)
}
