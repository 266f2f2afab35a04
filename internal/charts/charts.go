// Package charts renders the comparison plots: the full temperature time
// series and the stacked coldest-windows chart.
package charts

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart"

	"github.com/frostline/coldsnap/internal/analysis"
	"github.com/frostline/coldsnap/internal/archive"
	"github.com/frostline/coldsnap/internal/observability"
)

// offsetStep is the vertical gap, in degrees, between stacked windows.
const offsetStep = 45.0

// Renderer draws PNG charts from analysis output.
type Renderer struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRenderer creates a chart renderer.
func NewRenderer(metrics *observability.Metrics, logger *slog.Logger) *Renderer {
	return &Renderer{metrics: metrics, logger: logger}
}

// Timeseries renders the four raw temperature series over the full date
// range as a PNG.
func (r *Renderer) Timeseries(s archive.Series, w io.Writer) error {
	if len(s) == 0 {
		return errors.New("no records to render")
	}
	start := time.Now()

	dates := make([]time.Time, len(s))
	lows := make([]float64, len(s))
	highs := make([]float64, len(s))
	feelsLows := make([]float64, len(s))
	feelsHighs := make([]float64, len(s))
	for i, rec := range s {
		dates[i] = rec.Date
		lows[i] = rec.LowTemp
		highs[i] = rec.HighTemp
		feelsLows[i] = rec.FeelsLikeLow
		feelsHighs[i] = rec.FeelsLikeHigh
	}

	graph := chart.Chart{
		Title:      "Daily Temperatures",
		TitleStyle: chart.Style{Show: true},
		Width:      1200,
		Height:     600,
		XAxis: chart.XAxis{
			Style: chart.Style{Show: true},
		},
		YAxis: chart.YAxis{
			Name:  "Temperature (F)",
			Style: chart.Style{Show: true},
		},
		Series: []chart.Series{
			timeSeries("low", dates, lows, 0),
			timeSeries("high", dates, highs, 1),
			timeSeries("feels-like low", dates, feelsLows, 2),
			timeSeries("feels-like high", dates, feelsHighs, 3),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	err := graph.Render(chart.PNG, w)
	r.metrics.ChartRenderDuration.WithLabelValues("timeseries").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("render timeseries chart: %w", err)
	}
	return nil
}

// ColdestWindows renders the stacked comparison of the selected years'
// windows: each year's high and feels-like-high over day index, centered on
// its own window mean and offset vertically so the shapes can be compared.
//
// Windows arrive in selection order (coldest first); the chart re-sorts its
// own copy by year for display, leaving the input untouched.
func (r *Renderer) ColdestWindows(windows []analysis.YearWindow, w io.Writer) error {
	if len(windows) == 0 {
		return errors.New("no windows to render")
	}
	start := time.Now()

	display := make([]analysis.YearWindow, len(windows))
	copy(display, windows)
	sort.SliceStable(display, func(i, j int) bool {
		return display[i].Year < display[j].Year
	})

	series := make([]chart.Series, 0, 3*len(display))
	labels := make([]chart.Value2, 0, 2*len(display))

	for i, win := range display {
		offset := float64(i) * offsetStep

		idx := make([]float64, len(win.Days))
		centeredHigh := make([]float64, len(win.Days))
		centeredFeels := make([]float64, len(win.Days))
		for j, d := range win.Days {
			idx[j] = float64(d.DayIndex)
			centeredHigh[j] = d.High - win.MeanHigh + offset
			centeredFeels[j] = d.FeelsLikeHigh - win.MeanFeelsHigh + offset
		}

		series = append(series,
			chart.ContinuousSeries{
				Name: fmt.Sprintf("%d high", win.Year),
				Style: chart.Style{
					Show:        true,
					StrokeColor: chart.GetDefaultColor(i),
					StrokeWidth: 2.0,
				},
				XValues: idx,
				YValues: centeredHigh,
			},
			chart.ContinuousSeries{
				Name: fmt.Sprintf("%d feels-like high", win.Year),
				Style: chart.Style{
					Show:        true,
					StrokeColor: chart.GetDefaultColor(i),
					StrokeWidth: 1.0,
				},
				XValues: idx,
				YValues: centeredFeels,
			},
		)

		labels = append(labels,
			chart.Value2{
				XValue: 0,
				YValue: offset,
				Label:  spanLabel(win),
			},
			chart.Value2{
				XValue: float64(len(win.Days)) / 2,
				YValue: offset,
				Label:  fmt.Sprintf("%.1fF avg high / %.1fF avg feels", win.MeanHigh, win.MeanFeelsHigh),
			},
		)
	}

	series = append(series, chart.AnnotationSeries{
		Annotations: labels,
		Style:       chart.Style{Show: true},
	})

	graph := chart.Chart{
		Title:      "High Temp vs Feels-Like High, Coldest Years",
		TitleStyle: chart.Style{Show: true},
		Width:      1200,
		Height:     120 + 130*len(display),
		XAxis: chart.XAxis{
			Name:  "Day within window",
			Style: chart.Style{Show: true},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{Show: false},
		},
		Series: series,
	}

	err := graph.Render(chart.PNG, w)
	r.metrics.ChartRenderDuration.WithLabelValues("coldest").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("render coldest-windows chart: %w", err)
	}
	return nil
}

func timeSeries(name string, xs []time.Time, ys []float64, colorIndex int) chart.TimeSeries {
	return chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			Show:        true,
			StrokeColor: chart.GetDefaultColor(colorIndex),
		},
		XValues: xs,
		YValues: ys,
	}
}

// spanLabel formats the inclusive date span of a window, e.g.
// "Jan 21, 2020 - Feb 3, 2020".
func spanLabel(win analysis.YearWindow) string {
	return win.Start.Format("Jan 2, 2006") + " - " + win.EndInclusive.Format("Jan 2, 2006")
}
