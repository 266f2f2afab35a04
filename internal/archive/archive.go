package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// ErrMalformedArchive indicates the input document does not match the
// Open-Meteo archive schema. It is terminal: no partial series is returned.
var ErrMalformedArchive = errors.New("malformed archive")

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02T15:04"
)

// Document mirrors the wire format of an Open-Meteo archive response.
type Document struct {
	Daily *Daily `json:"daily"`
}

// Daily holds the seven positionally aligned arrays of the "daily" block.
type Daily struct {
	Time            []string  `json:"time"`
	TemperatureMin  []float64 `json:"temperature_2m_min"`
	TemperatureMax  []float64 `json:"temperature_2m_max"`
	ApparentTempMin []float64 `json:"apparent_temperature_min"`
	ApparentTempMax []float64 `json:"apparent_temperature_max"`
	Sunrise         []string  `json:"sunrise"`
	Sunset          []string  `json:"sunset"`
}

// DailyRecord is one calendar day of observations. Temperatures are in the
// unit the archive was requested with (Fahrenheit by default).
type DailyRecord struct {
	Date          time.Time `json:"date"`
	LowTemp       float64   `json:"low_temp_f"`
	HighTemp      float64   `json:"high_temp_f"`
	FeelsLikeLow  float64   `json:"feels_like_low_f"`
	FeelsLikeHigh float64   `json:"feels_like_high_f"`
	Sunrise       time.Time `json:"sunrise"`
	Sunset        time.Time `json:"sunset"`
}

// Series is a daily series sorted ascending by date, one record per date.
// It is immutable once constructed; downstream packages derive new slices
// and never mutate the original.
type Series []DailyRecord

// Parse decodes and validates an archive document, returning the sorted
// daily series. Timestamps without an offset are interpreted in loc.
func Parse(data []byte, loc *time.Location) (Series, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedArchive, err)
	}
	return doc.Series(loc)
}

// Load reads a full archive document from r and parses it.
func Load(r io.Reader, loc *time.Location) (Series, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Parse(data, loc)
}

// LoadFile parses the archive document at path.
func LoadFile(path string, loc *time.Location) (Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Parse(data, loc)
}

// Series validates the document's arrays and converts them into a Series
// sorted ascending by date, regardless of input order.
func (d *Document) Series(loc *time.Location) (Series, error) {
	if d.Daily == nil {
		return nil, fmt.Errorf("%w: missing \"daily\" key", ErrMalformedArchive)
	}
	if loc == nil {
		loc = time.Local
	}

	daily := d.Daily
	n := len(daily.Time)
	lengths := []struct {
		name string
		len  int
	}{
		{"temperature_2m_min", len(daily.TemperatureMin)},
		{"temperature_2m_max", len(daily.TemperatureMax)},
		{"apparent_temperature_min", len(daily.ApparentTempMin)},
		{"apparent_temperature_max", len(daily.ApparentTempMax)},
		{"sunrise", len(daily.Sunrise)},
		{"sunset", len(daily.Sunset)},
	}
	for _, col := range lengths {
		if col.len != n {
			return nil, fmt.Errorf("%w: %s has %d entries, time has %d", ErrMalformedArchive, col.name, col.len, n)
		}
	}

	series := make(Series, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.ParseInLocation(dateLayout, daily.Time[i], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: time[%d] %q: %v", ErrMalformedArchive, i, daily.Time[i], err)
		}
		sunrise, err := time.ParseInLocation(datetimeLayout, daily.Sunrise[i], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: sunrise[%d] %q: %v", ErrMalformedArchive, i, daily.Sunrise[i], err)
		}
		sunset, err := time.ParseInLocation(datetimeLayout, daily.Sunset[i], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: sunset[%d] %q: %v", ErrMalformedArchive, i, daily.Sunset[i], err)
		}

		series = append(series, DailyRecord{
			Date:          date,
			LowTemp:       daily.TemperatureMin[i],
			HighTemp:      daily.TemperatureMax[i],
			FeelsLikeLow:  daily.ApparentTempMin[i],
			FeelsLikeHigh: daily.ApparentTempMax[i],
			Sunrise:       sunrise,
			Sunset:        sunset,
		})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series, nil
}

// Span returns the records whose date falls in [start, end), preserving
// order. It allocates a new slice and leaves the receiver untouched.
func (s Series) Span(start, end time.Time) Series {
	out := make(Series, 0, 16)
	for _, rec := range s {
		if rec.Date.Before(start) || !rec.Date.Before(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
