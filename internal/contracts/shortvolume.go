package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShortVolumeRecord is one row of one day's Reg SHO short sale volume file
// ⭐ SSOT: short volume row shared by the parser, the series builder and the engine
type ShortVolumeRecord struct {
	Date              time.Time       `json:"date"` // trading day, UTC midnight
	Symbol            string          `json:"symbol"`
	ShortVolume       decimal.Decimal `json:"short_volume"`
	ShortExemptVolume decimal.Decimal `json:"short_exempt_volume"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	Market            string          `json:"market"` // informational only
}

var hundred = decimal.NewFromInt(100)

// CombinedShortVolume returns ShortVolume + ShortExemptVolume
func (r ShortVolumeRecord) CombinedShortVolume() decimal.Decimal {
	return r.ShortVolume.Add(r.ShortExemptVolume)
}

// ShortInterestPercent returns (short + short exempt) / total * 100.
// A non-positive total volume yields ErrDivisionHazard.
func (r ShortVolumeRecord) ShortInterestPercent() (decimal.Decimal, error) {
	if !r.TotalVolume.IsPositive() {
		return decimal.Zero, ErrDivisionHazard
	}
	return Quotient(r.CombinedShortVolume(), r.TotalVolume).Mul(hundred), nil
}

// ShortInterestSeries holds one symbol's records, most recent trading day first,
// at most one record per date.
type ShortInterestSeries []ShortVolumeRecord

// Latest returns the most recent record
func (s ShortInterestSeries) Latest() (ShortVolumeRecord, bool) {
	if len(s) == 0 {
		return ShortVolumeRecord{}, false
	}
	return s[0], true
}

// ShortInterestResult is the scoring output for one symbol
type ShortInterestResult struct {
	Symbol string    `json:"symbol"`
	AsOf   time.Time `json:"as_of"` // date of the most recent record scored
	Days   int       `json:"days"`  // number of records scored

	TotalVolume                 decimal.Decimal `json:"total_volume"`
	TotalVolumeShort            decimal.Decimal `json:"total_volume_short"`
	ShortInterestPercentToday   decimal.Decimal `json:"short_interest_percent_today"`
	ShortInterestPercentAverage decimal.Decimal `json:"short_interest_percent_average"`
	ShortInterestSlope          decimal.Decimal `json:"short_interest_slope"`
	ShortInterestCompositeScore decimal.Decimal `json:"short_interest_composite_score"`
}
