package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/frostline/coldsnap/internal/analysis"
)

const csvDateLayout = "2006-01-02"

// WriteCSV writes the reconstructed daily dataset and the two ranked lists
// into dir: daily.csv, ranked_high.csv, ranked_feels_like_high.csv.
func (r *Report) WriteCSV(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}

	if err := r.writeDaily(filepath.Join(dir, "daily.csv")); err != nil {
		return err
	}
	if err := writeRanking(filepath.Join(dir, "ranked_high.csv"), "w14_high_avg_F", r.RankedHigh); err != nil {
		return err
	}
	return writeRanking(filepath.Join(dir, "ranked_feels_like_high.csv"), "w14_feels_like_high_avg_F", r.RankedFeels)
}

func (r *Report) writeDaily(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"date", "low_temp_F", "high_temp_F", "feels_like_low_F", "feels_like_high_F",
		"sunrise", "sunset", "w14_high_avg_F", "w14_feels_like_high_avg_F",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	for _, row := range r.Aggregated.Rows {
		rec := []string{
			row.Date.Format(csvDateLayout),
			formatTemp(row.LowTemp),
			formatTemp(row.HighTemp),
			formatTemp(row.FeelsLikeLow),
			formatTemp(row.FeelsLikeHigh),
			row.Sunrise.Format("2006-01-02T15:04"),
			row.Sunset.Format("2006-01-02T15:04"),
			formatRolling(row.HighAvg),
			formatRolling(row.FeelsHighAvg),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func writeRanking(path, column string, ranked []analysis.RankedWindow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", column}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, rw := range ranked {
		if err := w.Write([]string{rw.Date.Format(csvDateLayout), formatTemp(rw.Value)}); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatRolling renders an absent derived value as an empty cell.
func formatRolling(v analysis.RollingValue) string {
	if !v.Valid {
		return ""
	}
	return formatTemp(v.Value)
}
