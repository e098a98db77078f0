package finra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/pkg/httputil"
	"github.com/wonny/shortscore/pkg/logger"
	"github.com/wonny/shortscore/pkg/redis"
)

const (
	// DefaultBaseURL hosts the consolidated NMS daily short sale volume files
	DefaultBaseURL = "http://regsho.finra.org"

	// FileNameTemplate is formatted with a yyyyMMdd date
	FileNameTemplate = "CNMSshvol%s.txt"
)

// FirstAvailableDate is the first date the consolidated feed was published
var FirstAvailableDate = time.Date(2018, 11, 5, 0, 0, 0, 0, time.UTC)

// RawCache stores raw daily file bodies by key
type RawCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Client retrieves daily short sale volume files
// ⭐ SSOT: the only network call to the Reg SHO feed
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cache      RawCache
	cacheTTL   time.Duration
}

// NewClient creates a new feed client. The http client must not retry.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("finra"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// WithCache caches raw bodies; parsing always runs on the cached bytes so
// results are identical to an uncached fetch.
func (c *Client) WithCache(cache RawCache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

// URLFor returns the file URL for a date
func (c *Client) URLFor(date time.Time) string {
	return fmt.Sprintf("%s/"+FileNameTemplate, c.baseURL, FormatDate(date))
}

// FetchDaily returns all records of one day's file.
// A cached body that no longer parses is evicted and fetched again.
func (c *Client) FetchDaily(ctx context.Context, date time.Time) ([]contracts.ShortVolumeRecord, error) {
	dateStr := FormatDate(date)
	url := c.URLFor(date)
	log := c.logger.WithFields(map[string]interface{}{
		"date": dateStr,
		"url":  url,
	})

	body, cached := c.readCache(ctx, dateStr)
	if cached {
		records, err := ParseDaily(string(body))
		if err == nil {
			log.WithField("rows", len(records)).Debug("Parsed cached daily short volume")
			return records, nil
		}
		log.WithError(err).Warn("Evicting unparseable cached daily file")
		c.evictCache(ctx, dateStr)
	}

	start := time.Now()
	body, err := c.httpClient.GetBody(ctx, url)
	if err != nil {
		return nil, retrievalError(date, url, err)
	}

	records, err := ParseDaily(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", dateStr, err)
	}
	c.writeCache(ctx, dateStr, body)

	log.WithFields(map[string]interface{}{
		"rows":     len(records),
		"duration": time.Since(start),
	}).Debug("Fetched daily short volume")

	return records, nil
}

func (c *Client) readCache(ctx context.Context, dateStr string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, found, err := c.cache.GetBytes(ctx, redis.DailyFeedKey(dateStr))
	if err != nil {
		c.logger.WithError(err).WithField("date", dateStr).Warn("Feed cache read failed")
		return nil, false
	}
	return body, found
}

func (c *Client) writeCache(ctx context.Context, dateStr string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetBytes(ctx, redis.DailyFeedKey(dateStr), body, c.cacheTTL); err != nil {
		c.logger.WithError(err).WithField("date", dateStr).Warn("Feed cache write failed")
	}
}

func (c *Client) evictCache(ctx context.Context, dateStr string) {
	if err := c.cache.Delete(ctx, redis.DailyFeedKey(dateStr)); err != nil {
		c.logger.WithError(err).WithField("date", dateStr).Warn("Feed cache delete failed")
	}
}

func retrievalError(date time.Time, url string, err error) error {
	re := &contracts.RetrievalError{
		Source: "finra",
		Date:   date,
		URL:    url,
		Err:    err,
	}
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		re.StatusCode = statusErr.StatusCode
	}
	return re
}
