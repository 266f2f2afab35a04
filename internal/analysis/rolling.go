// Package analysis computes trailing rolling averages over a daily
// temperature series, ranks dates by the coldness of the window preceding
// them, and extracts per-year coldest windows for comparison.
//
// Every function here is a pure transform: inputs are never mutated, and
// the same input always produces the same output. Means are accumulated
// left to right in date order so results are bit-reproducible.
package analysis

import (
	"github.com/frostline/coldsnap/internal/archive"
)

// RollingValue is a derived column entry. Valid is false for positions that
// do not have a full trailing window; there is no partial-window fallback.
type RollingValue struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Row is one daily record augmented with the two derived columns.
type Row struct {
	archive.DailyRecord
	HighAvg      RollingValue `json:"w14_high_avg_f"`
	FeelsHighAvg RollingValue `json:"w14_feels_like_high_avg_f"`
}

// Aggregated is a daily series with trailing-window means attached.
// Like archive.Series it is sorted ascending by date and read-only after
// construction.
type Aggregated struct {
	Window int
	Rows   []Row
}

// AddRollingMeans computes the trailing window-record means of the high and
// feels-like-high columns, excluding the current record: the value at
// position i is the mean over positions i-window .. i-1. The first window
// positions have no value.
//
// The window is positional over the sorted sequence, not calendar-aware: if
// the series has date gaps, "the window preceding records" means exactly
// that, not the preceding calendar days.
func AddRollingMeans(s archive.Series, window int) Aggregated {
	agg := Aggregated{Window: window, Rows: make([]Row, len(s))}
	for i, rec := range s {
		row := Row{DailyRecord: rec}
		if window >= 1 && i >= window {
			row.HighAvg = RollingValue{Value: meanOver(s[i-window:i], highTemp), Valid: true}
			row.FeelsHighAvg = RollingValue{Value: meanOver(s[i-window:i], feelsLikeHigh), Valid: true}
		}
		agg.Rows[i] = row
	}
	return agg
}

// metricValue returns the derived column selected by m for a row.
func (r Row) metricValue(m Metric) RollingValue {
	if m == MetricFeelsLikeHigh {
		return r.FeelsHighAvg
	}
	return r.HighAvg
}

func highTemp(rec archive.DailyRecord) float64 { return rec.HighTemp }
func feelsLikeHigh(rec archive.DailyRecord) float64 { return rec.FeelsLikeHigh }

// meanOver accumulates left to right. Callers guarantee len(recs) > 0.
func meanOver(recs []archive.DailyRecord, col func(archive.DailyRecord) float64) float64 {
	var sum float64
	for _, rec := range recs {
		sum += col(rec)
	}
	return sum / float64(len(recs))
}
