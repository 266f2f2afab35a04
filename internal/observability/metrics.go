package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the analysis
// pipeline, exposed by the serve mode's /metrics endpoint.
type Metrics struct {
	RecordsLoaded    prometheus.Counter
	AnalysisRuns     prometheus.Counter
	WindowsRanked    *prometheus.CounterVec // labels: metric={high,feels_like_high}
	WindowErrors     prometheus.Counter
	AnalysisDuration prometheus.Histogram

	// Archive fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram

	// Chart rendering metrics.
	ChartRenderDuration *prometheus.HistogramVec // labels: chart={timeseries,coldest}
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coldsnap",
			Name:      "records_loaded_total",
			Help:      "Total daily records parsed from archive documents.",
		}),
		AnalysisRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coldsnap",
			Name:      "analysis_runs_total",
			Help:      "Total complete aggregate-rank-extract runs.",
		}),
		WindowsRanked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coldsnap",
			Name:      "windows_ranked_total",
			Help:      "Ranked trailing windows produced, by metric.",
		}, []string{"metric"}),
		WindowErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coldsnap",
			Name:      "window_errors_total",
			Help:      "Per-year window reconstructions that came up short.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coldsnap",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete analysis run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coldsnap",
			Name:      "fetch_requests_total",
			Help:      "Open-Meteo archive fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coldsnap",
			Name:      "fetch_duration_seconds",
			Help:      "Open-Meteo archive request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coldsnap",
			Name:      "chart_render_duration_seconds",
			Help:      "PNG render duration in seconds, by chart.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"chart"}),
	}

	prometheus.MustRegister(
		m.RecordsLoaded,
		m.AnalysisRuns,
		m.WindowsRanked,
		m.WindowErrors,
		m.AnalysisDuration,
		m.FetchRequests,
		m.FetchDuration,
		m.ChartRenderDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsLoaded:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coldsnap", Name: "records_loaded_total"}),
		AnalysisRuns:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coldsnap", Name: "analysis_runs_total"}),
		WindowsRanked:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "coldsnap", Name: "windows_ranked_total"}, []string{"metric"}),
		WindowErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "coldsnap", Name: "window_errors_total"}),
		AnalysisDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "coldsnap", Name: "analysis_duration_seconds"}),
		FetchRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "coldsnap", Name: "fetch_requests_total"}, []string{"outcome"}),
		FetchDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "coldsnap", Name: "fetch_duration_seconds"}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "coldsnap", Name: "chart_render_duration_seconds"}, []string{"chart"}),
	}
}
