package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const dateLayout = "2006-01-02"

// Config holds all settings, populated from COLDSNAP_* environment
// variables with defaults matching the original NYC exploration.
type Config struct {
	// Geographic point the archive is fetched for.
	Latitude  float64 `envconfig:"LATITUDE" default:"40.7128"`
	Longitude float64 `envconfig:"LONGITUDE" default:"-74.0060"`

	// Inclusive fetch range, YYYY-MM-DD. An empty end date means
	// "yesterday" at fetch time.
	StartDate string `envconfig:"START_DATE" default:"2016-02-15"`
	EndDate   string `envconfig:"END_DATE" default:""`

	TemperatureUnit string `envconfig:"TEMPERATURE_UNIT" default:"fahrenheit"`
	Timezone        string `envconfig:"TIMEZONE" default:"America/New_York"`

	// WindowDays is the trailing-window length; ColdestYears is how many
	// coldest years the extractor keeps.
	WindowDays   int `envconfig:"WINDOW_DAYS" default:"14"`
	ColdestYears int `envconfig:"COLDEST_YEARS" default:"5"`

	ArchivePath  string        `envconfig:"ARCHIVE_PATH" default:"data/archive.json"`
	ChartDir     string        `envconfig:"CHART_DIR" default:"out"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Derived fields, resolved by Load.
	Location *time.Location `ignored:"true"`
	Start    time.Time      `ignored:"true"`
	End      time.Time      `ignored:"true"` // zero when EndDate is empty
}

// Load reads configuration from the environment, applies defaults, resolves
// the time zone and date range, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("COLDSNAP", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid COLDSNAP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	cfg.Start, err = time.ParseInLocation(dateLayout, cfg.StartDate, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid COLDSNAP_START_DATE %q: %w", cfg.StartDate, err)
	}
	if cfg.EndDate != "" {
		cfg.End, err = time.ParseInLocation(dateLayout, cfg.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid COLDSNAP_END_DATE %q: %w", cfg.EndDate, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return errors.New("COLDSNAP_LATITUDE must be in [-90, 90]")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return errors.New("COLDSNAP_LONGITUDE must be in [-180, 180]")
	}
	if c.WindowDays < 1 {
		return errors.New("COLDSNAP_WINDOW_DAYS must be at least 1")
	}
	if c.ColdestYears < 1 {
		return errors.New("COLDSNAP_COLDEST_YEARS must be at least 1")
	}
	if c.TemperatureUnit != "fahrenheit" && c.TemperatureUnit != "celsius" {
		return errors.New("COLDSNAP_TEMPERATURE_UNIT must be \"fahrenheit\" or \"celsius\"")
	}
	if !c.End.IsZero() && c.End.Before(c.Start) {
		return errors.New("COLDSNAP_END_DATE is before COLDSNAP_START_DATE")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("COLDSNAP_FETCH_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("COLDSNAP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
