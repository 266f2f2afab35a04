package analysis

import "fmt"

// Metric selects which derived rolling-average column an operation reads.
type Metric int

const (
	// MetricHigh is the trailing mean of the measured daily high.
	MetricHigh Metric = iota
	// MetricFeelsLikeHigh is the trailing mean of the apparent daily high.
	MetricFeelsLikeHigh
)

func (m Metric) String() string {
	switch m {
	case MetricHigh:
		return "high"
	case MetricFeelsLikeHigh:
		return "feels_like_high"
	default:
		return fmt.Sprintf("metric(%d)", int(m))
	}
}

// ParseMetric maps the CLI/API spelling of a metric to its value.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "high":
		return MetricHigh, nil
	case "feels_like_high":
		return MetricFeelsLikeHigh, nil
	default:
		return 0, fmt.Errorf("unknown metric %q (want \"high\" or \"feels_like_high\")", s)
	}
}
