// Package trend provides the default least-squares slope used to weigh
// short interest trends.
package trend

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/shortscore/internal/contracts"
)

var (
	one  = decimal.NewFromInt(1)
	two  = decimal.NewFromInt(2)
	five = decimal.NewFromInt(5)
)

// Calculator implements contracts.SlopeCalculator with exact decimal arithmetic
type Calculator struct{}

// New creates a slope calculator
func New() Calculator {
	return Calculator{}
}

// Slope returns the ordinary least-squares slope of ys over xs.
// Fewer than two points, or identical xs, have no trend and yield zero.
func (Calculator) Slope(xs, ys []decimal.Decimal) (decimal.Decimal, error) {
	if len(xs) != len(ys) {
		return decimal.Zero, fmt.Errorf("slope: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return decimal.Zero, nil
	}

	n := decimal.NewFromInt(int64(len(xs)))
	var sumX, sumY, sumXY, sumXX decimal.Decimal
	for i := range xs {
		sumX = sumX.Add(xs[i])
		sumY = sumY.Add(ys[i])
		sumXY = sumXY.Add(xs[i].Mul(ys[i]))
		sumXX = sumXX.Add(xs[i].Mul(xs[i]))
	}

	denominator := n.Mul(sumXX).Sub(sumX.Mul(sumX))
	if denominator.IsZero() {
		return decimal.Zero, nil
	}

	numerator := n.Mul(sumXY).Sub(sumX.Mul(sumY))
	return contracts.Quotient(numerator, denominator), nil
}

// Multiplier weighs a slope by its steepness: 1 below |1|, 2 below |5|, 3 otherwise
func (Calculator) Multiplier(slope decimal.Decimal) decimal.Decimal {
	abs := slope.Abs()
	switch {
	case abs.LessThan(one):
		return one
	case abs.LessThan(five):
		return two
	default:
		return decimal.NewFromInt(3)
	}
}
