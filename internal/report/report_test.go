package report_test

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostline/coldsnap/internal/analysis"
	"github.com/frostline/coldsnap/internal/archive"
	"github.com/frostline/coldsnap/internal/observability"
	"github.com/frostline/coldsnap/internal/report"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// twoWinters builds two years of daily data with a distinct cold snap each:
// 2021 colder than 2020.
func twoWinters() archive.Series {
	var s archive.Series
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
			s = append(s, archive.DailyRecord{
				Date:          start.AddDate(0, 0, i),
				HighTemp:      high,
				LowTemp:       high - 12,
				FeelsLikeHigh: high - 6,
				FeelsLikeLow:  high - 18,
				Sunrise:       start.AddDate(0, 0, i).Add(7 * time.Hour),
				Sunset:        start.AddDate(0, 0, i).Add(17 * time.Hour),
			})
		}
	}
	return s
}

func TestBuild(t *testing.T) {
	series := twoWinters()

	rep, err := report.Build(series, analysis.MetricHigh, 14, 5, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	assert.Len(t, rep.RankedHigh, len(series)-14)
	assert.Len(t, rep.RankedFeels, len(series)-14)

	require.Len(t, rep.Coldest, 2)
	assert.Equal(t, 2021, rep.Coldest[0].Year)
	assert.Equal(t, 2020, rep.Coldest[1].Year)
	assert.Equal(t, 0, rep.Coldest[0].Rank)

	// The coldest ranked window and the coldest year's trigger agree.
	assert.Equal(t, rep.RankedHigh[0].Value, rep.Coldest[0].TriggerValue)
}

func TestBuild_Idempotent(t *testing.T) {
	series := twoWinters()

	first, err := report.Build(series, analysis.MetricHigh, 14, 5, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	second, err := report.Build(series, analysis.MetricHigh, 14, 5, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	if diff := cmp.Diff(first.RankedHigh, second.RankedHigh); diff != "" {
		t.Errorf("rankings differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Coldest, second.Coldest); diff != "" {
		t.Errorf("coldest windows differ between runs (-first +second):\n%s", diff)
	}
}

func TestBuild_Ranking(t *testing.T) {
	rep, err := report.Build(twoWinters(), analysis.MetricFeelsLikeHigh, 14, 5, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	assert.Equal(t, rep.RankedFeels, rep.Ranking(analysis.MetricFeelsLikeHigh))
	assert.Equal(t, rep.RankedHigh, rep.Ranking(analysis.MetricHigh))
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()

	rep, err := report.Build(twoWinters(), analysis.MetricHigh, 14, 5, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NoError(t, rep.WriteCSV(dir))

	daily := readCSV(t, filepath.Join(dir, "daily.csv"))
	require.Len(t, daily, 1+len(rep.Series))
	assert.Equal(t, "date", daily[0][0])
	assert.Equal(t, "w14_high_avg_F", daily[0][7])

	// First window rows have empty derived cells; later rows do not.
	assert.Empty(t, daily[1][7])
	assert.NotEmpty(t, daily[15][7])

	ranked := readCSV(t, filepath.Join(dir, "ranked_high.csv"))
	require.Len(t, ranked, 1+len(rep.RankedHigh))
	assert.Equal(t, []string{"date", "w14_high_avg_F"}, ranked[0])
	assert.Equal(t, rep.RankedHigh[0].Date.Format("2006-01-02"), ranked[1][0])

	feels := readCSV(t, filepath.Join(dir, "ranked_feels_like_high.csv"))
	require.Len(t, feels, 1+len(rep.RankedFeels))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
