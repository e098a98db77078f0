package contracts

import "github.com/shopspring/decimal"

// QuotientScale is the largest number of fractional digits a quotient keeps
const QuotientScale = 28

// mantissaLimit is 2^96, the coefficient bound of a 96-bit decimal
var mantissaLimit = decimal.RequireFromString("79228162514264337593543950336")

var two = decimal.NewFromInt(2)

// Quotient divides a by b the way a 96-bit decimal does: the result keeps as
// many fractional digits (at most 28) as fit a coefficient below 2^96, and the
// last digit is rounded half to even. b must not be zero.
func Quotient(a, b decimal.Decimal) decimal.Decimal {
	for scale := int32(QuotientScale); scale > 0; scale-- {
		q := quotientHalfEven(a, b, scale)
		if q.Abs().Shift(scale).LessThan(mantissaLimit) {
			return q
		}
	}
	return quotientHalfEven(a, b, 0)
}

func quotientHalfEven(a, b decimal.Decimal, scale int32) decimal.Decimal {
	q, r := a.QuoRem(b, scale)
	if r.IsZero() {
		return q
	}

	unit := decimal.New(1, -scale)
	cmp := r.Abs().Mul(two).Cmp(b.Abs().Mul(unit))
	odd := !q.Shift(scale).Mod(two).IsZero()
	if cmp < 0 || (cmp == 0 && !odd) {
		return q
	}

	if a.Sign()*b.Sign() < 0 {
		return q.Sub(unit)
	}
	return q.Add(unit)
}
