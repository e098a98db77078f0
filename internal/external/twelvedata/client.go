package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/pkg/httputil"
	"github.com/wonny/shortscore/pkg/logger"
)

// DefaultBaseURL is the public REST endpoint
const DefaultBaseURL = "https://api.twelvedata.com"

// Client is the trading calendar source backed by the time_series endpoint.
// Only the datetime of each bar is consumed.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	interval   string
	outputSize int
}

// Options configure the candidate window requested per symbol
type Options struct {
	BaseURL    string
	APIKey     string
	Interval   string
	OutputSize int
}

// NewClient creates a new calendar client. The API key is sent as an
// Authorization header on httpClient so it never appears in URLs or logs.
func NewClient(httpClient *httputil.Client, log *logger.Logger, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Interval == "" {
		opts.Interval = "1day"
	}
	if opts.OutputSize <= 0 {
		opts.OutputSize = 30
	}
	if opts.APIKey != "" {
		httpClient.WithHeader("Authorization", "apikey "+opts.APIKey)
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("twelvedata"),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		interval:   opts.Interval,
		outputSize: opts.OutputSize,
	}
}

// TimeSeriesResponse is the subset of the time_series payload we read
type TimeSeriesResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Values  []struct {
		Datetime string `json:"datetime"`
	} `json:"values"`
}

// TradingDates returns the candidate trading dates for symbol, most recent first
func (c *Client) TradingDates(ctx context.Context, symbol string) ([]time.Time, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", c.interval)
	params.Set("outputsize", strconv.Itoa(c.outputSize))
	fullURL := fmt.Sprintf("%s/time_series?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		re := &contracts.RetrievalError{Source: "twelvedata", URL: fullURL, Err: err}
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) {
			re.StatusCode = statusErr.StatusCode
		}
		return nil, re
	}

	dates, err := ParseTimeSeries(body)
	if err != nil {
		return nil, &contracts.RetrievalError{Source: "twelvedata", URL: fullURL, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(dates),
	}).Debug("Fetched trading dates")

	return dates, nil
}

// ParseTimeSeries extracts values[].datetime as UTC dates, preserving order
func ParseTimeSeries(body []byte) ([]time.Time, error) {
	var resp TimeSeriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode time_series response: %w", err)
	}

	if resp.Status == "error" {
		return nil, fmt.Errorf("time_series error %d: %s", resp.Code, resp.Message)
	}

	dates := make([]time.Time, 0, len(resp.Values))
	for i, v := range resp.Values {
		d, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("values[%d].datetime: %w", i, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// parseDatetime accepts daily ("2006-01-02") and intraday ("2006-01-02 15:04:05")
// datetimes and keeps the calendar date only
func parseDatetime(s string) (time.Time, error) {
	if len(s) < len("2006-01-02") {
		return time.Time{}, fmt.Errorf("invalid datetime %q", s)
	}
	return time.Parse("2006-01-02", s[:len("2006-01-02")])
}
