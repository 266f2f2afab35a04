package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/frostline/coldsnap/internal/observability"
)

// ErrNoArchive indicates the archive API returned a non-success status.
// There is no retry: a failed fetch simply produces no archive.
var ErrNoArchive = errors.New("no archive produced")

// dailyFields is the field list the analysis needs, in the order the
// original request used.
const dailyFields = "temperature_2m_max,temperature_2m_min,apparent_temperature_max,apparent_temperature_min,sunrise,sunset"

// Params describes one historical archive request.
type Params struct {
	Latitude        float64
	Longitude       float64
	StartDate       time.Time
	EndDate         time.Time // zero means yesterday
	TemperatureUnit string    // "fahrenheit" or "celsius"
	Timezone        string    // IANA name, e.g. "America/New_York"
}

// Client fetches historical daily observations from the Open-Meteo
// archive API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive API client with the given request timeout.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		metrics: metrics,
		logger:  logger,
	}
}

// FetchArchive requests the daily archive described by p and returns the
// raw JSON document. Non-2xx responses are reported as ErrNoArchive and
// never retried.
func (c *Client) FetchArchive(ctx context.Context, p Params) ([]byte, error) {
	end := p.EndDate
	if end.IsZero() {
		end = DefaultEndDate(p.Timezone)
	}

	params := url.Values{
		"latitude":         {strconv.FormatFloat(p.Latitude, 'f', 4, 64)},
		"longitude":        {strconv.FormatFloat(p.Longitude, 'f', 4, 64)},
		"start_date":       {p.StartDate.Format("2006-01-02")},
		"end_date":         {end.Format("2006-01-02")},
		"daily":            {dailyFields},
		"temperature_unit": {p.TemperatureUnit},
		"timezone":         {p.Timezone},
	}

	fullURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.logger.Debug("fetching archive",
		"start_date", params.Get("start_date"),
		"end_date", params.Get("end_date"),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read archive response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: status %d: %s", ErrNoArchive, resp.StatusCode, body)
	}

	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	return body, nil
}
