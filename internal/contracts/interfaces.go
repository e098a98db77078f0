package contracts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CalendarSource supplies recent trading dates for a symbol, most recent first
// ⭐ SSOT: the only source of candidate dates for the series builder
type CalendarSource interface {
	TradingDates(ctx context.Context, symbol string) ([]time.Time, error)
}

// DailyFetcher retrieves and parses one day's short volume file for all symbols
type DailyFetcher interface {
	FetchDaily(ctx context.Context, date time.Time) ([]ShortVolumeRecord, error)
}

// SlopeCalculator fits a trend slope to (x, y) pairs and maps a slope to a weight.
// Both methods must be pure.
type SlopeCalculator interface {
	Slope(xs, ys []decimal.Decimal) (decimal.Decimal, error)
	Multiplier(slope decimal.Decimal) decimal.Decimal
}

// ScoreRepository persists computed results. Never read by the scoring path.
type ScoreRepository interface {
	Save(ctx context.Context, result *ShortInterestResult) error
	Latest(ctx context.Context, symbol string) (*ShortInterestResult, error)
	History(ctx context.Context, symbol string, limit int) ([]ShortInterestResult, error)
}
