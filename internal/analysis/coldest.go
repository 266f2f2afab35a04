package analysis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/frostline/coldsnap/internal/archive"
)

// ErrInsufficientWindow indicates a reconstructed window span contained
// fewer raw records than the window length. It is reported per affected
// year; other years are still processed.
var ErrInsufficientWindow = errors.New("insufficient window")

// WindowDay is one raw record inside a reconstructed window, labelled with
// its 0-based position for relative plotting.
type WindowDay struct {
	DayIndex      int       `json:"day_index"`
	Date          time.Time `json:"date"`
	High          float64   `json:"high_f"`
	FeelsLikeHigh float64   `json:"feels_like_high_f"`
}

// YearWindow is the coldest trailing window of one calendar year.
//
// TriggerValue is the rolling average that selected the window; MeanHigh
// and MeanFeelsHigh are re-derived from the raw records in the span. The
// two can differ by floating-point rounding and are deliberately kept
// separate.
type YearWindow struct {
	Year         int       `json:"year"`
	Rank         int       `json:"rank"` // 0-based selection rank, coldest first
	Start        time.Time `json:"start"`
	EndInclusive time.Time `json:"end_inclusive"`
	EndExclusive time.Time `json:"end_exclusive"`

	TriggerValue  float64 `json:"trigger_value"`
	MeanHigh      float64 `json:"mean_high_f"`
	MeanFeelsHigh float64 `json:"mean_feels_like_high_f"`

	Days []WindowDay `json:"days"`
}

// yearMin is a year's representative row: the first occurrence of that
// year's minimum for the selected metric.
type yearMin struct {
	year  int
	row   Row
	value float64
}

// ColdestYearWindows finds, for each calendar year, the date whose trailing
// window average is lowest, takes the k coldest such years, and
// reconstructs each year's window from the raw records.
//
// The result is in selection order: ascending by metric value, coldest
// first, with Rank recording the position. Callers that want display order
// re-sort their own copy (by Year, typically) rather than re-deriving rank.
//
// Years where every value of the metric is absent contribute nothing. A
// year whose reconstructed span has fewer than Window raw records yields an
// ErrInsufficientWindow for that year; the remaining years are unaffected
// and the partial result is returned alongside the joined errors.
func ColdestYearWindows(a Aggregated, m Metric, k int) ([]YearWindow, error) {
	if k <= 0 {
		return nil, nil
	}

	selected := selectColdestYears(a, m, k)

	windows := make([]YearWindow, 0, len(selected))
	var errs []error
	for rank, min := range selected {
		w, err := buildWindow(a, min, rank)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		windows = append(windows, w)
	}
	return windows, errors.Join(errs...)
}

// selectColdestYears groups rows by calendar year, picks each year's
// minimum (first occurrence wins on ties), and returns the k smallest
// minima ascending.
func selectColdestYears(a Aggregated, m Metric, k int) []yearMin {
	minByYear := make(map[int]yearMin)
	years := make([]int, 0)
	for _, row := range a.Rows {
		v := row.metricValue(m)
		if !v.Valid {
			continue
		}
		year := row.Date.Year()
		cur, ok := minByYear[year]
		if !ok {
			minByYear[year] = yearMin{year: year, row: row, value: v.Value}
			years = append(years, year)
			continue
		}
		// Strict less-than: rows are visited in ascending date order, so
		// the earliest date holding the minimum is kept.
		if v.Value < cur.value {
			minByYear[year] = yearMin{year: year, row: row, value: v.Value}
		}
	}

	sort.Ints(years)
	minima := make([]yearMin, 0, len(years))
	for _, y := range years {
		minima = append(minima, minByYear[y])
	}
	// Stable over the ascending-year base order, so equal minima rank the
	// earlier year first.
	sort.SliceStable(minima, func(i, j int) bool {
		return minima[i].value < minima[j].value
	})

	if k < len(minima) {
		minima = minima[:k]
	}
	return minima
}

// buildWindow reconstructs the [end-window, end) span for a year's
// representative date and re-derives the raw means over it.
func buildWindow(a Aggregated, min yearMin, rank int) (YearWindow, error) {
	end := min.row.Date
	start := end.AddDate(0, 0, -a.Window)

	span := make([]archive.DailyRecord, 0, a.Window)
	for _, row := range a.Rows {
		if row.Date.Before(start) || !row.Date.Before(end) {
			continue
		}
		span = append(span, row.DailyRecord)
	}

	// The aggregator guarantees window preceding records positionally, but
	// the calendar span can come up short when the series has date gaps.
	if len(span) != a.Window {
		return YearWindow{}, fmt.Errorf("%w: year %d has %d records in [%s, %s), want %d",
			ErrInsufficientWindow, min.year, len(span),
			start.Format("2006-01-02"), end.Format("2006-01-02"), a.Window)
	}

	w := YearWindow{
		Year:         min.year,
		Rank:         rank,
		Start:        start,
		EndInclusive: end.AddDate(0, 0, -1),
		EndExclusive: end,
		TriggerValue: min.value,
		Days:         make([]WindowDay, len(span)),
	}

	var sumHigh, sumFeels float64
	for i, rec := range span {
		sumHigh += rec.HighTemp
		sumFeels += rec.FeelsLikeHigh
		w.Days[i] = WindowDay{
			DayIndex:      i,
			Date:          rec.Date,
			High:          rec.HighTemp,
			FeelsLikeHigh: rec.FeelsLikeHigh,
		}
	}
	w.MeanHigh = sumHigh / float64(len(span))
	w.MeanFeelsHigh = sumFeels / float64(len(span))

	return w, nil
}
