package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/frostline/coldsnap/internal/adapter/http"
	"github.com/frostline/coldsnap/internal/analysis"
	"github.com/frostline/coldsnap/internal/archive"
	"github.com/frostline/coldsnap/internal/charts"
	"github.com/frostline/coldsnap/internal/observability"
	"github.com/frostline/coldsnap/internal/report"
)

func newTestServer(t *testing.T) *httpadapter.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	// Two winters, the 2021 snap colder than the 2020 one.
	var series archive.Series
	for _, yr := range []struct {
		year int
		cold float64
	}{
		{2020, 25}, {2021, 15},
	} {
		start := time.Date(yr.year, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 60; i++ {
			high := 48.0
			if i >= 20 && i < 34 {
				high = yr.cold
			}
			series = append(series, archive.DailyRecord{
				Date:          start.AddDate(0, 0, i),
				HighTemp:      high,
				LowTemp:       high - 12,
				FeelsLikeHigh: high - 6,
				FeelsLikeLow:  high - 18,
			})
		}
	}

	rep, err := report.Build(series, analysis.MetricHigh, 14, 5, logger, metrics)
	require.NoError(t, err)

	return httpadapter.NewServer(":0", rep, charts.NewRenderer(metrics, logger), 5, logger)
}

func get(t *testing.T, srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRankings(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/rankings?limit=3")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Metric  string `json:"metric"`
		Count   int    `json:"count"`
		Windows []struct {
			Date  string  `json:"date"`
			Value float64 `json:"value"`
		} `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "high", body.Metric)
	assert.Equal(t, 3, body.Count)
	require.Len(t, body.Windows, 3)
	assert.Equal(t, 15.0, body.Windows[0].Value)
	assert.LessOrEqual(t, body.Windows[0].Value, body.Windows[1].Value)
}

func TestRankings_MetricParam(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/rankings?metric=feels_like_high&limit=1")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Metric  string `json:"metric"`
		Windows []struct {
			Value float64 `json:"value"`
		} `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "feels_like_high", body.Metric)
	require.Len(t, body.Windows, 1)
	assert.Equal(t, 9.0, body.Windows[0].Value)
}

func TestRankings_BadParams(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/rankings?metric=wind_chill").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/rankings?limit=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/rankings?limit=abc").Code)
}

func TestColdest(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/coldest")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int `json:"count"`
		Windows []struct {
			Year       int       `json:"year"`
			Rank       int       `json:"rank"`
			Start      string    `json:"start"`
			DailyHighs []float64 `json:"daily_highs"`
		} `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Windows, 2)
	assert.Equal(t, 2021, body.Windows[0].Year)
	assert.Equal(t, 0, body.Windows[0].Rank)
	assert.Equal(t, "2021-01-21", body.Windows[0].Start)
	assert.Len(t, body.Windows[0].DailyHighs, 14)
}

func TestColdest_YearsParam(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/coldest?years=1")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Windows []struct {
			Year int `json:"year"`
		} `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Windows, 1)
	assert.Equal(t, 2021, body.Windows[0].Year)
}

func TestColdest_BadYears(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, get(t, newTestServer(t), "/api/coldest?years=0").Code)
}

func TestCharts(t *testing.T) {
	srv := newTestServer(t)

	for _, target := range []string{"/charts/timeseries.png", "/charts/coldest.png"} {
		rec := get(t, srv, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"), target)
		assert.True(t, len(rec.Body.Bytes()) > 4 && rec.Body.Bytes()[1] == 'P', target)
	}
}

func TestUnknownRoute(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, newTestServer(t), "/api/unknown").Code)
}
