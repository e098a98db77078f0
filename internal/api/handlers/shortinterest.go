package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/internal/external/finra"
	"github.com/wonny/shortscore/internal/shortinterest"
	"github.com/wonny/shortscore/pkg/logger"
)

const (
	defaultDays  = 10
	maxDays      = 250
	defaultLimit = 30
	maxSymbols   = 50
	rankParallel = 4
)

// ShortInterestService is the subset of shortinterest.Service the handlers need
type ShortInterestService interface {
	GetShortInterest(ctx context.Context, symbol string, days int) (*contracts.ShortInterestResult, error)
	GetShortVolume(ctx context.Context, symbol string, days int) (contracts.ShortInterestSeries, error)
	GetAllShortVolume(ctx context.Context, date time.Time) ([]contracts.ShortVolumeRecord, error)
	Rank(ctx context.Context, symbols []string, days, parallel int) (*shortinterest.Ranking, error)
}

// ShortInterestHandler handles short interest API endpoints
// ⭐ SSOT: short interest API handlers live in this struct only
type ShortInterestHandler struct {
	service ShortInterestService
	history contracts.ScoreRepository // nil when persistence is disabled
	logger  *logger.Logger
}

// NewShortInterestHandler creates a new handler; history may be nil
func NewShortInterestHandler(service ShortInterestService, history contracts.ScoreRepository, log *logger.Logger) *ShortInterestHandler {
	return &ShortInterestHandler{
		service: service,
		history: history,
		logger:  log.WithComponent("api"),
	}
}

// HasHistory reports whether snapshot history routes can be served
func (h *ShortInterestHandler) HasHistory() bool {
	return h.history != nil
}

// GetScore returns the composite score for one symbol
// GET /api/short-interest/{symbol}?days=10
func (h *ShortInterestHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetShortInterest(r.Context(), symbol, days)
	if err != nil {
		h.fail(w, err, "Failed to compute short interest", map[string]interface{}{
			"symbol": symbol,
			"days":   days,
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetVolume returns the short volume series for one symbol, most recent first
// GET /api/short-volume/{symbol}?days=10
func (h *ShortInterestHandler) GetVolume(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	series, err := h.service.GetShortVolume(r.Context(), symbol, days)
	if err != nil {
		h.fail(w, err, "Failed to build short volume series", map[string]interface{}{
			"symbol": symbol,
			"days":   days,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"days":    days,
		"records": series,
	})
}

// GetDaily returns every symbol's short volume for one trading date
// GET /api/short-volume/daily/{date}  (date as YYYYMMDD)
func (h *ShortInterestHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["date"]
	date, err := finra.ParseDate(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYYMMDD")
		return
	}
	if date.Before(finra.FirstAvailableDate) {
		respondError(w, http.StatusBadRequest, "date is before the first available daily file (20181105)")
		return
	}

	records, err := h.service.GetAllShortVolume(r.Context(), date)
	if err != nil {
		h.fail(w, err, "Failed to fetch daily short volume", map[string]interface{}{
			"date": raw,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    raw,
		"count":   len(records),
		"records": records,
	})
}

// GetRanking scores several symbols and orders them by composite score
// GET /api/short-interest?symbols=AAPL,MSFT&days=10
func (h *ShortInterestHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	symbols := splitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		respondError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	if len(symbols) > maxSymbols {
		respondError(w, http.StatusBadRequest, "too many symbols (max 50)")
		return
	}
	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	ranking, err := h.service.Rank(r.Context(), symbols, days, rankParallel)
	if err != nil {
		h.fail(w, err, "Failed to rank symbols", map[string]interface{}{
			"symbols": len(symbols),
			"days":    days,
		})
		return
	}

	respondJSON(w, http.StatusOK, ranking)
}

// GetHistory returns stored score snapshots for one symbol, newest first
// GET /api/short-interest/{symbol}/history?limit=30
func (h *ShortInterestHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "score persistence is disabled")
		return
	}

	symbol := mux.Vars(r)["symbol"]
	limit := defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	snapshots, err := h.history.History(r.Context(), symbol, limit)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load score history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve score history")
		return
	}
	if snapshots == nil {
		snapshots = []contracts.ShortInterestResult{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":    symbol,
		"snapshots": snapshots,
	})
}

func (h *ShortInterestHandler) fail(w http.ResponseWriter, err error, msg string, fields map[string]interface{}) {
	status := statusFor(err)
	entry := h.logger.WithError(err).WithFields(fields)
	if status == http.StatusInternalServerError {
		entry.Error(msg)
	} else {
		entry.Warn(msg)
	}
	respondError(w, status, err.Error())
}

// parseDays reads ?days=, defaulting to 10; invalid values are answered with 400
func parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	daysStr := r.URL.Query().Get("days")
	if daysStr == "" {
		return defaultDays, true
	}

	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 || days > maxDays {
		respondError(w, http.StatusBadRequest, "days must be an integer between 1 and 250")
		return 0, false
	}
	return days, true
}

func splitSymbols(raw string) []string {
	var symbols []string
	seen := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	return symbols
}
