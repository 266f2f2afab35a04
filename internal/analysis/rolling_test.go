package analysis

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostline/coldsnap/internal/archive"
)

const window = 14

// consecutiveDays builds a gap-free series starting at start with the given
// highs. Feels-like runs 5 degrees below the measured high.
func consecutiveDays(start time.Time, highs []float64) archive.Series {
	s := make(archive.Series, len(highs))
	for i, h := range highs {
		s[i] = archive.DailyRecord{
			Date:          start.AddDate(0, 0, i),
			HighTemp:      h,
			LowTemp:       h - 10,
			FeelsLikeHigh: h - 5,
			FeelsLikeLow:  h - 15,
		}
	}
	return s
}

// descending returns n values starting at from, decreasing by 1 per day.
func descending(from float64, n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = from - float64(i)
	}
	return vals
}

func TestAddRollingMeans(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	// Highs 50, 49, ..., 31 over 20 days.
	series := consecutiveDays(start, descending(50, 20))

	agg := AddRollingMeans(series, window)
	require.Len(t, agg.Rows, 20)

	for i := 0; i < window; i++ {
		assert.False(t, agg.Rows[i].HighAvg.Valid, "position %d must be absent", i)
		assert.False(t, agg.Rows[i].FeelsHighAvg.Valid, "position %d must be absent", i)
	}

	// 2020-01-15 (position 14): mean of the highs on days 1-14,
	// 50 down to 37, which averages 43.5.
	row := agg.Rows[14]
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), row.Date)
	require.True(t, row.HighAvg.Valid)
	assert.Equal(t, 43.5, row.HighAvg.Value)
	require.True(t, row.FeelsHighAvg.Valid)
	assert.Equal(t, 38.5, row.FeelsHighAvg.Value)

	// Every remaining position is a full window back, so the mean slides
	// down by exactly 1 per day.
	for i := window; i < len(agg.Rows); i++ {
		require.True(t, agg.Rows[i].HighAvg.Valid)
		assert.Equal(t, 43.5-float64(i-window), agg.Rows[i].HighAvg.Value)
	}
}

func TestAddRollingMeans_ExcludesCurrentDay(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	highs := make([]float64, 15)
	for i := range highs {
		highs[i] = 10
	}
	highs[14] = 1000 // an outlier "today" must not leak into its own window

	agg := AddRollingMeans(consecutiveDays(start, highs), window)

	require.True(t, agg.Rows[14].HighAvg.Valid)
	assert.Equal(t, 10.0, agg.Rows[14].HighAvg.Value)
}

func TestAddRollingMeans_ExactWindowLength(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := consecutiveDays(start, descending(40, window))

	agg := AddRollingMeans(series, window)

	for i, row := range agg.Rows {
		assert.False(t, row.HighAvg.Valid, "position %d", i)
	}
	assert.Empty(t, RankColdest(agg, MetricHigh))

	windows, err := ColdestYearWindows(agg, MetricHigh, 5)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestAddRollingMeans_PositionalOverGaps(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	series := consecutiveDays(start, descending(40, 20))
	// Remove one record in the middle; the window counts records, not days.
	series = append(series[:5:5], series[6:]...)

	agg := AddRollingMeans(series, window)

	require.Len(t, agg.Rows, 19)
	assert.False(t, agg.Rows[13].HighAvg.Valid)
	assert.True(t, agg.Rows[14].HighAvg.Valid)

	// Mean over the 14 preceding records, skipping the removed day's value.
	var sum float64
	for _, rec := range series[:14] {
		sum += rec.HighTemp
	}
	assert.Equal(t, sum/14, agg.Rows[14].HighAvg.Value)
}

func TestAddRollingMeans_Deterministic(t *testing.T) {
	start := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	series := consecutiveDays(start, descending(90.3, 40))

	first := AddRollingMeans(series, window)
	second := AddRollingMeans(series, window)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated aggregation differs (-first +second):\n%s", diff)
	}
}
