package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frostline/coldsnap/internal/analysis"
	"github.com/frostline/coldsnap/internal/charts"
	"github.com/frostline/coldsnap/internal/report"
)

const dateLayout = "2006-01-02"

// Server exposes a finished analysis over HTTP: rankings and coldest-year
// windows as JSON, the two charts as PNG, plus health and metrics routes.
// The report is immutable, so every handler is a pure read.
type Server struct {
	httpServer *http.Server
	report     *report.Report
	renderer   *charts.Renderer
	years      int // default window count for /api/coldest
	logger     *slog.Logger
}

// NewServer creates the report server. years is the default number of
// coldest years returned when the request does not specify one.
func NewServer(addr string, rep *report.Report, renderer *charts.Renderer, years int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		report:   rep,
		renderer: renderer,
		years:    years,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/rankings", s.handleRankings)
	mux.HandleFunc("GET /api/coldest", s.handleColdest)
	mux.HandleFunc("GET /charts/timeseries.png", s.handleTimeseriesChart)
	mux.HandleFunc("GET /charts/coldest.png", s.handleColdestChart)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// rankedEntry is the wire form of one ranking entry.
type rankedEntry struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	metric, ok := parseMetricParam(w, r)
	if !ok {
		return
	}

	ranked := s.report.Ranking(metric)

	limit := len(ranked)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	entries := make([]rankedEntry, limit)
	for i := 0; i < limit; i++ {
		entries[i] = rankedEntry{
			Date:  ranked[i].Date.Format(dateLayout),
			Value: ranked[i].Value,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"metric":  metric.String(),
		"count":   limit,
		"windows": entries,
	})
}

// windowEntry is the wire form of one coldest-year window.
type windowEntry struct {
	Year          int       `json:"year"`
	Rank          int       `json:"rank"`
	Start         string    `json:"start"`
	EndInclusive  string    `json:"end_inclusive"`
	TriggerValue  float64   `json:"trigger_value"`
	MeanHigh      float64   `json:"mean_high_f"`
	MeanFeelsHigh float64   `json:"mean_feels_like_high_f"`
	Highs         []float64 `json:"daily_highs"`
	FeelsHighs    []float64 `json:"daily_feels_like_highs"`
}

func (s *Server) handleColdest(w http.ResponseWriter, r *http.Request) {
	metric, ok := parseMetricParam(w, r)
	if !ok {
		return
	}

	years := s.years
	if v := r.URL.Query().Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "years must be a positive integer"})
			return
		}
		years = n
	}

	// Recomputed per request: the extractor is a pure function over the
	// immutable aggregated series.
	windows, err := analysis.ColdestYearWindows(s.report.Aggregated, metric, years)
	if err != nil {
		s.logger.Warn("partial coldest-year extraction", "error", err)
	}

	entries := make([]windowEntry, len(windows))
	for i, win := range windows {
		e := windowEntry{
			Year:          win.Year,
			Rank:          win.Rank,
			Start:         win.Start.Format(dateLayout),
			EndInclusive:  win.EndInclusive.Format(dateLayout),
			TriggerValue:  win.TriggerValue,
			MeanHigh:      win.MeanHigh,
			MeanFeelsHigh: win.MeanFeelsHigh,
			Highs:         make([]float64, len(win.Days)),
			FeelsHighs:    make([]float64, len(win.Days)),
		}
		for j, d := range win.Days {
			e.Highs[j] = d.High
			e.FeelsHighs[j] = d.FeelsLikeHigh
		}
		entries[i] = e
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"metric":  metric.String(),
		"count":   len(entries),
		"windows": entries,
	})
}

func (s *Server) handleTimeseriesChart(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := s.renderer.Timeseries(s.report.Series, w); err != nil {
		s.logger.Error("timeseries chart render failed", "error", err)
	}
}

func (s *Server) handleColdestChart(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := s.renderer.ColdestWindows(s.report.Coldest, w); err != nil {
		s.logger.Error("coldest chart render failed", "error", err)
	}
}

// parseMetricParam resolves the optional ?metric= parameter, defaulting to
// the high-temperature column. Writes a 400 and returns false on an
// unknown metric.
func parseMetricParam(w http.ResponseWriter, r *http.Request) (analysis.Metric, bool) {
	v := r.URL.Query().Get("metric")
	if v == "" {
		return analysis.MetricHigh, true
	}
	metric, err := analysis.ParseMetric(v)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return 0, false
	}
	return metric, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
