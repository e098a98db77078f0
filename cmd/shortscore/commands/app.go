package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/shortscore/internal/external/finra"
	"github.com/wonny/shortscore/internal/external/twelvedata"
	"github.com/wonny/shortscore/internal/shortinterest"
	"github.com/wonny/shortscore/internal/trend"
	"github.com/wonny/shortscore/pkg/config"
	"github.com/wonny/shortscore/pkg/database"
	"github.com/wonny/shortscore/pkg/httputil"
	"github.com/wonny/shortscore/pkg/logger"
	"github.com/wonny/shortscore/pkg/redis"
)

// app holds the wired pipeline shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	service *shortinterest.Service

	// optional
	redis *redis.Client
	db    *database.DB
	repo  *shortinterest.Repository
}

// newApp wires config → logger → feeds → service. When needDB is set a
// configured DATABASE_URL is required; otherwise persistence is opened only if configured.
func newApp(ctx context.Context, needDB bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger (stderr keeps command output clean)
	log := logger.NewWithWriter(cfg, os.Stderr)

	a := &app{cfg: cfg, log: log}

	// 3. Optional raw feed cache
	a.redis, err = redis.New(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 4. External feeds, one HTTP client each
	finraHTTP := httputil.New(log, cfg.FINRA.FetchTimeout).
		DisableRetry().
		WithRateLimit(cfg.FINRA.RateLimit)
	fetcher := finra.NewClient(finraHTTP, log, cfg.FINRA.BaseURL)
	if a.redis.Enabled() {
		fetcher.WithCache(redis.NewCache(a.redis, "shortscore"), cfg.FINRA.CacheTTL)
		log.Info("FINRA feed cache enabled")
	}

	calendarHTTP := httputil.New(log, cfg.TwelveData.Timeout).
		WithRetry(cfg.TwelveData.MaxRetries, cfg.TwelveData.RetryDelay).
		WithRateLimit(cfg.TwelveData.RateLimit)
	calendar := twelvedata.NewClient(calendarHTTP, log, twelvedata.Options{
		BaseURL:    cfg.TwelveData.BaseURL,
		APIKey:     cfg.TwelveData.APIKey,
		Interval:   cfg.TwelveData.Interval,
		OutputSize: cfg.TwelveData.OutputSize,
	})

	// 5. Service
	a.service = shortinterest.NewService(calendar, fetcher, trend.New(), finra.FirstAvailableDate, log)

	// 6. Optional persistence
	if !cfg.Database.Enabled() {
		if needDB {
			a.Close()
			return nil, database.ErrDisabled
		}
		return a, nil
	}

	a.db, err = database.New(ctx, cfg.Database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.repo = shortinterest.NewRepository(a.db.Pool)
	if err := a.repo.EnsureSchema(ctx); err != nil {
		a.Close()
		return nil, err
	}
	log.Info("Connected to database")

	return a, nil
}

// Close releases optional connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
