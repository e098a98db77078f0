package shortinterest

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/shortscore/internal/contracts"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, symbol string, short, exempt, total int64) contracts.ShortVolumeRecord {
	return contracts.ShortVolumeRecord{
		Date:              date,
		Symbol:            symbol,
		ShortVolume:       decimal.NewFromInt(short),
		ShortExemptVolume: decimal.NewFromInt(exempt),
		TotalVolume:       decimal.NewFromInt(total),
		Market:            "N",
	}
}

type fixedCalendar struct {
	dates []time.Time
	err   error

	mu    sync.Mutex
	calls int
}

func (c *fixedCalendar) TradingDates(_ context.Context, _ string) ([]time.Time, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.dates, nil
}

// countingFetcher serves canned daily files and records every date requested
type countingFetcher struct {
	days map[time.Time][]contracts.ShortVolumeRecord
	errs map[time.Time]error

	mu      sync.Mutex
	fetched []time.Time
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		days: map[time.Time][]contracts.ShortVolumeRecord{},
		errs: map[time.Time]error{},
	}
}

func (f *countingFetcher) add(records ...contracts.ShortVolumeRecord) *countingFetcher {
	for _, r := range records {
		f.days[r.Date] = append(f.days[r.Date], r)
	}
	return f
}

func (f *countingFetcher) FetchDaily(_ context.Context, date time.Time) ([]contracts.ShortVolumeRecord, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, date)
	f.mu.Unlock()
	if err := f.errs[date]; err != nil {
		return nil, err
	}
	return f.days[date], nil
}

func (f *countingFetcher) fetchedDates() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.fetched...)
}

// stubSlope returns fixed values and captures its inputs
type stubSlope struct {
	slope      decimal.Decimal
	multiplier decimal.Decimal
	err        error

	xs, ys []decimal.Decimal
}

func (s *stubSlope) Slope(xs, ys []decimal.Decimal) (decimal.Decimal, error) {
	s.xs, s.ys = xs, ys
	return s.slope, s.err
}

func (s *stubSlope) Multiplier(decimal.Decimal) decimal.Decimal {
	return s.multiplier
}
