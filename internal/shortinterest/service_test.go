package shortinterest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/shortscore/internal/contracts"
	"github.com/wonny/shortscore/internal/external/finra"
	"github.com/wonny/shortscore/internal/trend"
	"github.com/wonny/shortscore/pkg/httputil"
	"github.com/wonny/shortscore/pkg/logger"
)

func dailyFile(rows ...string) string {
	lines := append([]string{"Date|Symbol|ShortVolume|ShortExemptVolume|TotalVolume|Market"}, rows...)
	lines = append(lines, "trailer", "")
	return strings.Join(lines, "\r\n")
}

// feedServer serves three fabricated days for XYZ at 10%, 12%, 14% (oldest to newest)
func feedServer(t *testing.T, hits *int32) *httptest.Server {
	files := map[string]string{
		"/CNMSshvol20240112.txt": dailyFile("20240112|AAA|5|0|10|Q", "20240112|XYZ|100|0|1000|N"),
		"/CNMSshvol20240116.txt": dailyFile("20240116|XYZ|120|0|1000|N"),
		"/CNMSshvol20240117.txt": dailyFile("20240117|XYZ|100|40|1000|N", "20240117|ZZZ|1|0|2|N"),
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		body, ok := files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestGetShortInterest_EndToEnd(t *testing.T) {
	var hits int32
	server := feedServer(t, &hits)
	defer server.Close()

	fetcher := finra.NewClient(httputil.New(logger.Nop(), time.Second), logger.Nop(), server.URL)
	cal := &fixedCalendar{dates: []time.Time{day(2024, 1, 17), day(2024, 1, 16), day(2024, 1, 12)}}
	svc := NewService(cal, fetcher, trend.New(), finra.FirstAvailableDate, logger.Nop())

	result, err := svc.GetShortInterest(context.Background(), "XYZ", 3)
	require.NoError(t, err)

	assertDecimal(t, "14", result.ShortInterestPercentToday)
	assertDecimal(t, "12", result.ShortInterestPercentAverage)
	assertDecimal(t, "3000", result.TotalVolume)
	assertDecimal(t, "360", result.TotalVolumeShort)
	assert.True(t, result.ShortInterestSlope.IsPositive())
	assertDecimal(t, "83", result.ShortInterestCompositeScore)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	// stubbed slope in the slightly bearish band
	stubbed := NewService(cal, fetcher, &stubSlope{slope: d("0.3"), multiplier: d("1")}, finra.FirstAvailableDate, logger.Nop())
	result, err = stubbed.GetShortInterest(context.Background(), "XYZ", 3)
	require.NoError(t, err)
	assertDecimal(t, "98", result.ShortInterestCompositeScore)
}

func TestGetShortInterest_MissingDayFailsRequest(t *testing.T) {
	var hits int32
	server := feedServer(t, &hits)
	defer server.Close()

	fetcher := finra.NewClient(httputil.New(logger.Nop(), time.Second), logger.Nop(), server.URL)
	cal := &fixedCalendar{dates: []time.Time{day(2024, 1, 17), day(2024, 1, 15), day(2024, 1, 12)}}
	svc := NewService(cal, fetcher, trend.New(), finra.FirstAvailableDate, logger.Nop())

	_, err := svc.GetShortInterest(context.Background(), "XYZ", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrRetrieval))
}

func TestGetShortInterest_ZeroDays(t *testing.T) {
	svc := NewService(&fixedCalendar{}, newCountingFetcher(), trend.New(), firstAvailable, logger.Nop())

	_, err := svc.GetShortInterest(context.Background(), "XYZ", 0)
	assert.True(t, errors.Is(err, contracts.ErrPrecondition))

	series, err := svc.GetShortVolume(context.Background(), "XYZ", 0)
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestGetShortInterest_NoMatchingRows(t *testing.T) {
	cal := &fixedCalendar{dates: []time.Time{day(2024, 1, 17)}}
	fetcher := newCountingFetcher().add(rec(day(2024, 1, 17), "AAA", 1, 0, 10))
	svc := NewService(cal, fetcher, trend.New(), firstAvailable, logger.Nop())

	_, err := svc.GetShortInterest(context.Background(), "XYZ", 5)
	assert.True(t, errors.Is(err, contracts.ErrPrecondition))
}

func TestGetAllShortVolume(t *testing.T) {
	fetcher := newCountingFetcher().add(
		rec(day(2024, 1, 17), "AAA", 1, 0, 10),
		rec(day(2024, 1, 17), "XYZ", 2, 0, 10),
	)
	svc := NewService(&fixedCalendar{}, fetcher, trend.New(), firstAvailable, logger.Nop())

	records, err := svc.GetAllShortVolume(context.Background(), time.Date(2024, 1, 17, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []time.Time{day(2024, 1, 17)}, fetcher.fetchedDates())
}

func TestRank(t *testing.T) {
	dates := []time.Time{day(2024, 1, 17), day(2024, 1, 16)}
	fetcher := newCountingFetcher().add(
		rec(day(2024, 1, 17), "LOW", 600, 0, 1000),
		rec(day(2024, 1, 16), "LOW", 600, 0, 1000),
		rec(day(2024, 1, 17), "HIGH", 100, 0, 1000),
		rec(day(2024, 1, 16), "HIGH", 100, 0, 1000),
		rec(day(2024, 1, 17), "ZERO", 0, 0, 0),
	)
	svc := NewService(&fixedCalendar{dates: dates}, fetcher, trend.New(), firstAvailable, logger.Nop())

	ranking, err := svc.Rank(context.Background(), []string{"LOW", "NONE", "HIGH", "ZERO"}, 2, 2)
	require.NoError(t, err)

	require.Len(t, ranking.Ranked, 2)
	assert.Equal(t, "HIGH", ranking.Ranked[0].Symbol)
	assert.Equal(t, "LOW", ranking.Ranked[1].Symbol)
	assert.Equal(t, []string{"NONE"}, ranking.Omitted)
	require.Len(t, ranking.Failed, 1)
	assert.Equal(t, "ZERO", ranking.Failed[0].Symbol)
	assert.Contains(t, ranking.Failed[0].Error, "division hazard")
}

func TestRank_RepeatedSymbolsScoredOnce(t *testing.T) {
	dates := []time.Time{day(2024, 1, 17), day(2024, 1, 16)}
	fetcher := newCountingFetcher().add(
		rec(day(2024, 1, 17), "LOW", 600, 0, 1000),
		rec(day(2024, 1, 16), "LOW", 600, 0, 1000),
		rec(day(2024, 1, 17), "HIGH", 100, 0, 1000),
		rec(day(2024, 1, 16), "HIGH", 100, 0, 1000),
	)
	svc := NewService(&fixedCalendar{dates: dates}, fetcher, trend.New(), firstAvailable, logger.Nop())

	ranking, err := svc.Rank(context.Background(), []string{"HIGH", "HIGH", "LOW", "NONE", "NONE", "HIGH"}, 2, 1)
	require.NoError(t, err)

	require.Len(t, ranking.Ranked, 2)
	assert.Equal(t, "HIGH", ranking.Ranked[0].Symbol)
	assert.Equal(t, "LOW", ranking.Ranked[1].Symbol)
	assert.Equal(t, []string{"NONE"}, ranking.Omitted)
	assert.Empty(t, ranking.Failed)
	// two days per distinct symbol
	assert.Len(t, fetcher.fetchedDates(), 6)
}

func TestRank_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cal := &fixedCalendar{err: context.Canceled}
	svc := NewService(cal, newCountingFetcher(), trend.New(), firstAvailable, logger.Nop())

	_, err := svc.Rank(ctx, []string{"A", "B"}, 2, 1)
	assert.Error(t, err)
}
