// Command coldsnap fetches historical daily weather for a configured
// location, ranks trailing 14-day windows by coldness, and renders
// comparison charts.
//
// Usage:
//
//	coldsnap fetch   [-out data/archive.json]
//	coldsnap analyze [-archive data/archive.json] [-metric high] [-top 10] [-csv-dir out]
//	coldsnap chart   [-archive data/archive.json] [-metric high] [-out out]
//	coldsnap serve   [-archive data/archive.json] [-metric high] [-addr :8080]
//
// Configuration comes from COLDSNAP_* environment variables (optionally via
// a .env file); flags override the per-command paths.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/frostline/coldsnap/internal/adapter/http"
	"github.com/frostline/coldsnap/internal/analysis"
	"github.com/frostline/coldsnap/internal/archive"
	"github.com/frostline/coldsnap/internal/charts"
	"github.com/frostline/coldsnap/internal/config"
	"github.com/frostline/coldsnap/internal/observability"
	"github.com/frostline/coldsnap/internal/openmeteo"
	"github.com/frostline/coldsnap/internal/report"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	metrics := observability.NewMetrics()

	switch os.Args[1] {
	case "fetch":
		err = runFetch(cfg, logger, metrics, os.Args[2:])
	case "analyze":
		err = runAnalyze(cfg, logger, metrics, os.Args[2:])
	case "chart":
		err = runChart(cfg, logger, metrics, os.Args[2:])
	case "serve":
		err = runServe(cfg, logger, metrics, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: coldsnap <fetch|analyze|chart|serve> [flags]")
}

func runFetch(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	out := fs.String("out", cfg.ArchivePath, "path to write the archive document to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := openmeteo.NewClient(cfg.FetchTimeout, metrics, logger)
	body, err := client.FetchArchive(ctx, openmeteo.Params{
		Latitude:        cfg.Latitude,
		Longitude:       cfg.Longitude,
		StartDate:       cfg.Start,
		EndDate:         cfg.End,
		TemperatureUnit: cfg.TemperatureUnit,
		Timezone:        cfg.Timezone,
	})
	if err != nil {
		return err
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive dir: %w", err)
		}
	}
	if err := os.WriteFile(*out, body, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	logger.Info("archive written", "path", *out, "bytes", len(body))
	return nil
}

// buildReport loads the archive at path and runs the full analysis.
func buildReport(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, path string, metric analysis.Metric) (*report.Report, error) {
	series, err := archive.LoadFile(path, cfg.Location)
	if err != nil {
		return nil, err
	}

	rep, err := report.Build(series, metric, cfg.WindowDays, cfg.ColdestYears, logger, metrics)
	if rep == nil {
		return nil, err
	}
	// Per-year window failures are already logged; the report is usable.
	return rep, nil
}

func runAnalyze(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	archivePath := fs.String("archive", cfg.ArchivePath, "path to the archive document")
	metricName := fs.String("metric", analysis.MetricHigh.String(), "ranking metric: high or feels_like_high")
	top := fs.Int("top", 10, "number of ranked windows to print")
	csvDir := fs.String("csv-dir", "", "write daily.csv and ranked lists into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	metric, err := analysis.ParseMetric(*metricName)
	if err != nil {
		return err
	}

	rep, err := buildReport(cfg, logger, metrics, *archivePath, metric)
	if err != nil {
		return err
	}

	ranked := rep.Ranking(metric)
	n := *top
	if n > len(ranked) {
		n = len(ranked)
	}

	fmt.Printf("coldest %d-day windows by %s:\n", cfg.WindowDays, metric)
	for i := 0; i < n; i++ {
		fmt.Printf("%3d. %s  %6.2f\n", i+1, ranked[i].Date.Format("2006-01-02"), ranked[i].Value)
	}

	fmt.Printf("\ncoldest years (%d-day window ending date, coldest first):\n", cfg.WindowDays)
	for _, win := range rep.Coldest {
		fmt.Printf("%3d. %d  %s to %s  avg high %.1f  avg feels %.1f\n",
			win.Rank+1, win.Year,
			win.Start.Format("2006-01-02"), win.EndInclusive.Format("2006-01-02"),
			win.MeanHigh, win.MeanFeelsHigh)
	}

	if *csvDir != "" {
		if err := rep.WriteCSV(*csvDir); err != nil {
			return err
		}
		logger.Info("csv export written", "dir", *csvDir)
	}
	return nil
}

func runChart(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	archivePath := fs.String("archive", cfg.ArchivePath, "path to the archive document")
	metricName := fs.String("metric", analysis.MetricHigh.String(), "metric selecting the coldest years")
	outDir := fs.String("out", cfg.ChartDir, "directory to write PNG charts into")
	if err := fs.Parse(args); err != nil {
		return err
	}

	metric, err := analysis.ParseMetric(*metricName)
	if err != nil {
		return err
	}

	rep, err := buildReport(cfg, logger, metrics, *archivePath, metric)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	renderer := charts.NewRenderer(metrics, logger)

	if err := renderToFile(filepath.Join(*outDir, "timeseries.png"), func(f *os.File) error {
		return renderer.Timeseries(rep.Series, f)
	}); err != nil {
		return err
	}
	if err := renderToFile(filepath.Join(*outDir, "coldest.png"), func(f *os.File) error {
		return renderer.ColdestWindows(rep.Coldest, f)
	}); err != nil {
		return err
	}

	logger.Info("charts written", "dir", *outDir)
	return nil
}

func renderToFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runServe(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	archivePath := fs.String("archive", cfg.ArchivePath, "path to the archive document")
	metricName := fs.String("metric", analysis.MetricHigh.String(), "metric selecting the coldest years")
	addr := fs.String("addr", cfg.HTTPAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	metric, err := analysis.ParseMetric(*metricName)
	if err != nil {
		return err
	}

	rep, err := buildReport(cfg, logger, metrics, *archivePath, metric)
	if err != nil {
		return err
	}

	srv := httpadapter.NewServer(*addr, rep, charts.NewRenderer(metrics, logger), cfg.ColdestYears, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
