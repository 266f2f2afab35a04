// Package report runs the full load-aggregate-rank-extract pass and holds
// its immutable result for the CLI, the CSV export, and the serve mode.
package report

import (
	"log/slog"
	"time"

	"github.com/frostline/coldsnap/internal/analysis"
	"github.com/frostline/coldsnap/internal/archive"
	"github.com/frostline/coldsnap/internal/observability"
)

// Report is the outcome of one analysis run. All fields are read-only after
// Build returns; handlers and writers share it freely.
type Report struct {
	Series     archive.Series
	Aggregated analysis.Aggregated

	// Full rankings for both derived columns, coldest first.
	RankedHigh  []analysis.RankedWindow
	RankedFeels []analysis.RankedWindow

	// Coldest per-year windows for Metric, in selection order.
	Coldest []analysis.YearWindow
	Metric  analysis.Metric
}

// Build aggregates the series, ranks both derived columns, and extracts the
// coldestYears coldest per-year windows for the selected metric.
//
// Window reconstruction failures are non-fatal: the returned Report carries
// every year that succeeded and the error joins the ones that did not.
func Build(series archive.Series, metric analysis.Metric, window, coldestYears int, logger *slog.Logger, metrics *observability.Metrics) (*Report, error) {
	start := time.Now()

	agg := analysis.AddRollingMeans(series, window)

	r := &Report{
		Series:      series,
		Aggregated:  agg,
		RankedHigh:  analysis.RankColdest(agg, analysis.MetricHigh),
		RankedFeels: analysis.RankColdest(agg, analysis.MetricFeelsLikeHigh),
		Metric:      metric,
	}

	coldest, err := analysis.ColdestYearWindows(agg, metric, coldestYears)
	r.Coldest = coldest

	metrics.RecordsLoaded.Add(float64(len(series)))
	metrics.AnalysisRuns.Inc()
	metrics.WindowsRanked.WithLabelValues(analysis.MetricHigh.String()).Add(float64(len(r.RankedHigh)))
	metrics.WindowsRanked.WithLabelValues(analysis.MetricFeelsLikeHigh.String()).Add(float64(len(r.RankedFeels)))
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.WindowErrors.Inc()
		logger.Warn("some yearly windows could not be reconstructed", "error", err)
	}

	logger.Info("analysis complete",
		"records", len(series),
		"window_days", window,
		"ranked", len(r.RankedHigh),
		"coldest_years", len(r.Coldest),
		"metric", metric.String(),
	)

	return r, err
}

// Ranking returns the precomputed ranking for m.
func (r *Report) Ranking(m analysis.Metric) []analysis.RankedWindow {
	if m == analysis.MetricFeelsLikeHigh {
		return r.RankedFeels
	}
	return r.RankedHigh
}
