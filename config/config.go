package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"bookfeed/models"
)

type Config struct {
	Bookfeed   BookfeedConfig      `yaml:"bookfeed"`
	Refresh    RefreshConfig       `yaml:"refresh"`
	HTTP       HTTPConfig          `yaml:"http"`
	Relays     []RelayConfig       `yaml:"relays"`
	Feeds      []models.ConnConfig `yaml:"feeds"`
	Ticker     TickerConfig        `yaml:"ticker"`
	Logging    LoggingConfig       `yaml:"logging"`
	CloudWatch CloudWatchConfig    `yaml:"cloudwatch"`
}

type BookfeedConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type RefreshConfig struct {
	Interval         time.Duration `yaml:"interval"`
	FailureThreshold int           `yaml:"failure_threshold"`
	ThrottleWindow   time.Duration `yaml:"throttle_window"`
}

type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size"`
	UserAgent         string        `yaml:"user_agent"`
	Retry             RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// RelayConfig describes one CORS relay. EnvelopeField names the JSON field that
// wraps the original body as a string ("contents" for allorigins); empty means
// the relay returns the upstream body verbatim.
type RelayConfig struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	EnvelopeField string `yaml:"envelope_field"`
}

type TickerConfig struct {
	Enabled        bool     `yaml:"enabled"`
	BinanceSymbols []string `yaml:"binance_symbols"`
	OKXInstruments []string `yaml:"okx_instruments"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type CloudWatchConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Region        string        `yaml:"region"`
	Namespace     string        `yaml:"namespace"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DefaultRelays mirror the public relays the dashboard shipped with, in the
// order they are tried.
func DefaultRelays() []RelayConfig {
	return []RelayConfig{
		{Name: "allorigins", URL: "https://api.allorigins.win/get?url=", EnvelopeField: "contents"},
		{Name: "corsproxy", URL: "https://corsproxy.io/?"},
		{Name: "codetabs", URL: "https://api.codetabs.com/v1/proxy?quest="},
	}
}

func Default() *Config {
	return &Config{
		Bookfeed: BookfeedConfig{Name: "bookfeed", Version: "dev"},
		Refresh: RefreshConfig{
			Interval:         2 * time.Second,
			FailureThreshold: 3,
			ThrottleWindow:   10 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			BurstSize:         5,
			UserAgent:         "bookfeed/1.0",
			Retry: RetryConfig{
				MaxAttempts: 2,
				BaseDelay:   200 * time.Millisecond,
				MaxDelay:    2 * time.Second,
			},
		},
		Relays: DefaultRelays(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		CloudWatch: CloudWatchConfig{
			Namespace:     "Bookfeed",
			FlushInterval: time.Minute,
		},
	}
}

// Load reads the yaml config at path on top of defaults. A .env file, when
// present, is loaded first so AWS and LOG_LEVEL variables are visible.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.applyDefaults()

	if region := os.Getenv("AWS_REGION"); region != "" && cfg.CloudWatch.Region == "" {
		cfg.CloudWatch.Region = region
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Refresh.Interval <= 0 {
		c.Refresh.Interval = d.Refresh.Interval
	}
	if c.Refresh.FailureThreshold <= 0 {
		c.Refresh.FailureThreshold = d.Refresh.FailureThreshold
	}
	if c.Refresh.ThrottleWindow <= 0 {
		c.Refresh.ThrottleWindow = d.Refresh.ThrottleWindow
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = d.HTTP.Timeout
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		c.HTTP.RequestsPerSecond = d.HTTP.RequestsPerSecond
	}
	if c.HTTP.BurstSize <= 0 {
		c.HTTP.BurstSize = d.HTTP.BurstSize
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = d.HTTP.UserAgent
	}
	if c.HTTP.Retry.MaxAttempts <= 0 {
		c.HTTP.Retry.MaxAttempts = d.HTTP.Retry.MaxAttempts
	}
	if c.HTTP.Retry.BaseDelay <= 0 {
		c.HTTP.Retry.BaseDelay = d.HTTP.Retry.BaseDelay
	}
	if c.HTTP.Retry.MaxDelay <= 0 {
		c.HTTP.Retry.MaxDelay = d.HTTP.Retry.MaxDelay
	}
	if len(c.Relays) == 0 {
		c.Relays = DefaultRelays()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = d.Logging.Output
	}
	if c.CloudWatch.Namespace == "" {
		c.CloudWatch.Namespace = d.CloudWatch.Namespace
	}
	if c.CloudWatch.FlushInterval <= 0 {
		c.CloudWatch.FlushInterval = d.CloudWatch.FlushInterval
	}
}
