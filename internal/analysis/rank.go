package analysis

import (
	"sort"
	"time"
)

// RankedWindow is one entry of a coldness ranking: the window's end date
// (exclusive) and the trailing-average value that ends there.
type RankedWindow struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RankColdest returns every date with a present value for the selected
// metric, sorted ascending by that value (coldest first). Equal values keep
// their ascending date order. The full ranking is returned; callers slice a
// top-K prefix themselves.
func RankColdest(a Aggregated, m Metric) []RankedWindow {
	ranked := make([]RankedWindow, 0, len(a.Rows))
	for _, row := range a.Rows {
		v := row.metricValue(m)
		if !v.Valid {
			continue
		}
		ranked = append(ranked, RankedWindow{Date: row.Date, Value: v.Value})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value < ranked[j].Value
	})
	return ranked
}
