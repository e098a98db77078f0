package shortinterest

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/pkg/logger"
)

// SeriesBuilder aligns calendar trading dates with daily short volume files
// to build one symbol's series.
type SeriesBuilder struct {
	calendar  contracts.CalendarSource
	fetcher   contracts.DailyFetcher
	firstDate time.Time
	logger    *logger.Logger
}

// NewSeriesBuilder creates a series builder. Dates before firstDate are never fetched.
func NewSeriesBuilder(calendar contracts.CalendarSource, fetcher contracts.DailyFetcher, firstDate time.Time, log *logger.Logger) *SeriesBuilder {
	return &SeriesBuilder{
		calendar:  calendar,
		fetcher:   fetcher,
		firstDate: dateOnly(firstDate),
		logger:    log.WithComponent("series_builder"),
	}
}

// Build returns up to days records for symbol, most recent first.
// Candidate dates are walked in calendar order and fetched one at a time;
// dates without a matching row do not count toward days. Any fetch or
// parse failure aborts the build.
func (b *SeriesBuilder) Build(ctx context.Context, symbol string, days int) (contracts.ShortInterestSeries, error) {
	series := contracts.ShortInterestSeries{}
	if days <= 0 {
		return series, nil
	}

	candidates, err := b.calendar.TradingDates(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("trading dates for %s: %w", symbol, err)
	}

	log := b.logger.WithField("symbol", symbol)
	seen := make(map[time.Time]struct{}, len(candidates))
	fetched := 0

	for _, candidate := range candidates {
		if len(series) >= days {
			break
		}

		date := dateOnly(candidate)
		if date.Before(b.firstDate) {
			log.WithField("date", date.Format("2006-01-02")).Debug("Skipping date before first available feed")
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}

		records, err := b.fetcher.FetchDaily(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("short volume for %s on %s: %w", symbol, date.Format("2006-01-02"), err)
		}
		fetched++

		rec, ok := findSymbol(records, symbol)
		if !ok {
			log.WithField("date", date.Format("2006-01-02")).Debug("Symbol not in daily file")
			continue
		}
		series = append(series, rec)
	}

	log.WithFields(map[string]interface{}{
		"requested":  days,
		"candidates": len(candidates),
		"fetched":    fetched,
		"matched":    len(series),
	}).Debug("Built short interest series")

	return series, nil
}

// findSymbol returns the first record whose symbol matches exactly
func findSymbol(records []contracts.ShortVolumeRecord, symbol string) (contracts.ShortVolumeRecord, bool) {
	for _, r := range records {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return contracts.ShortVolumeRecord{}, false
}

// dateOnly drops the time of day, keeping the calendar date as UTC midnight
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
