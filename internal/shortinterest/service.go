package shortinterest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/pkg/logger"
)

// Service exposes the short interest operations
// ⭐ SSOT: entry point for scoring, series and daily lookups
//
// A Service holds no per-call state and may be used concurrently.
type Service struct {
	builder *SeriesBuilder
	fetcher contracts.DailyFetcher
	engine  *Engine
	logger  *logger.Logger
}

// NewService wires the pipeline from its collaborators
func NewService(
	calendar contracts.CalendarSource,
	fetcher contracts.DailyFetcher,
	slope contracts.SlopeCalculator,
	firstDate time.Time,
	log *logger.Logger,
) *Service {
	return &Service{
		builder: NewSeriesBuilder(calendar, fetcher, firstDate, log),
		fetcher: fetcher,
		engine:  NewEngine(slope, log),
		logger:  log.WithComponent("shortinterest"),
	}
}

// GetShortInterest scores symbol over its most recent daysToCalculate matching days
func (s *Service) GetShortInterest(ctx context.Context, symbol string, daysToCalculate int) (*contracts.ShortInterestResult, error) {
	series, err := s.builder.Build(ctx, symbol, daysToCalculate)
	if err != nil {
		return nil, err
	}
	return s.engine.Score(symbol, series)
}

// GetShortVolume returns symbol's series, most recent first, at most days long
func (s *Service) GetShortVolume(ctx context.Context, symbol string, days int) (contracts.ShortInterestSeries, error) {
	return s.builder.Build(ctx, symbol, days)
}

// GetAllShortVolume returns every symbol's record for one date
func (s *Service) GetAllShortVolume(ctx context.Context, date time.Time) ([]contracts.ShortVolumeRecord, error) {
	return s.fetcher.FetchDaily(ctx, dateOnly(date))
}

// Ranked is one symbol's entry in a ranking
type Ranked struct {
	Symbol string                         `json:"symbol"`
	Result *contracts.ShortInterestResult `json:"result,omitempty"`
	Error  string                         `json:"error,omitempty"`
}

// Ranking orders scored symbols by composite score, highest first
type Ranking struct {
	Ranked  []Ranked `json:"ranked"`
	Omitted []string `json:"omitted"` // symbols with no short volume in the window
	Failed  []Ranked `json:"failed"`
}

// Rank scores each symbol as an independent invocation, at most parallel at a time.
// Repeated symbols are scored once. Symbols without data are omitted; other
// failures are reported per symbol. Only context cancellation fails the whole ranking.
func (s *Service) Rank(ctx context.Context, symbols []string, days, parallel int) (*Ranking, error) {
	if parallel <= 0 {
		parallel = 1
	}

	var mu sync.Mutex
	ranking := &Ranking{Ranked: []Ranked{}, Omitted: []string{}, Failed: []Ranked{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	seen := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		g.Go(func() error {
			result, err := s.GetShortInterest(gctx, symbol, days)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				ranking.Ranked = append(ranking.Ranked, Ranked{Symbol: symbol, Result: result})
			case errors.Is(err, contracts.ErrPrecondition):
				ranking.Omitted = append(ranking.Omitted, symbol)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				s.logger.WithError(err).WithField("symbol", symbol).Warn("Scoring failed")
				ranking.Failed = append(ranking.Failed, Ranked{Symbol: symbol, Error: err.Error()})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	sort.SliceStable(ranking.Ranked, func(i, j int) bool {
		a := ranking.Ranked[i].Result.ShortInterestCompositeScore
		b := ranking.Ranked[j].Result.ShortInterestCompositeScore
		if a.Equal(b) {
			return ranking.Ranked[i].Symbol < ranking.Ranked[j].Symbol
		}
		return a.GreaterThan(b)
	})
	sort.Strings(ranking.Omitted)
	sort.Slice(ranking.Failed, func(i, j int) bool { return ranking.Failed[i].Symbol < ranking.Failed[j].Symbol })

	return ranking, nil
}
