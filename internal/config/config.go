package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Kind     string `yaml:"kind"` // "http", "csv" or "mock"
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		CSVDir   string `yaml:"csv_dir"`
		Lookback int    `yaml:"lookback_months"`
	} `yaml:"data_source"`
	Webhook struct {
		URL    string `yaml:"url"`
		Secret string `yaml:"secret"`
	} `yaml:"webhook"`
	ImageHost struct {
		BaseURL     string `yaml:"base_url"`
		Owner       string `yaml:"owner"`
		Repo        string `yaml:"repo"`
		AccessToken string `yaml:"access_token"`
	} `yaml:"image_host"`
	Strategy struct {
		DecayLambda    float64 `yaml:"decay_lambda"`
		WinsorizePct   float64 `yaml:"winsorize_pct"`
		Curve          string  `yaml:"curve"`
		Aggressiveness float64 `yaml:"aggressiveness"`
		TopN           int     `yaml:"top_n"`
	} `yaml:"strategy"`
	Screener struct {
		MinValuationPercentile float64 `yaml:"min_valuation_percentile"`
		MaxDecliningMonths     int     `yaml:"max_declining_months"`
		MaxPricePercentile     float64 `yaml:"max_price_percentile"`
		UniverseCap            int     `yaml:"universe_cap"`
		UniverseFloor          int     `yaml:"universe_floor"`
	} `yaml:"screener"`
	Charts struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"charts"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Defaults are filled in before parsing so that explicit zero
// values in the file (winsorize_pct: 0, min_valuation_percentile: 0)
// survive instead of being mistaken for unset fields.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATASOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATASOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}
	if v := os.Getenv("IMAGE_HOST_TOKEN"); v != "" {
		cfg.ImageHost.AccessToken = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DECAY_LAMBDA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Strategy.DecayLambda = f
		}
	}

	return cfg, nil
}

// defaultConfig returns a Config pre-filled with production defaults.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.DataSource.Kind = "mock"
	cfg.DataSource.Lookback = 120
	cfg.Strategy.DecayLambda = 0.95
	cfg.Strategy.WinsorizePct = 0.05
	cfg.Strategy.Curve = "sigmoid"
	cfg.Strategy.Aggressiveness = 1.2
	cfg.Strategy.TopN = 3
	cfg.Screener.MinValuationPercentile = 10
	cfg.Screener.MaxDecliningMonths = 3
	cfg.Screener.MaxPricePercentile = 70
	cfg.Screener.UniverseCap = 8
	cfg.Screener.UniverseFloor = 5
	cfg.Charts.Dir = "data/charts"
	cfg.Schedule.Cron = "0 0 9 1 * *"
	cfg.Logging.Level = "info"
	return cfg
}

// Validate checks that the configured mode has what it needs.
func (c *Config) Validate() error {
	switch c.DataSource.Kind {
	case "http":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the http source")
		}
	case "csv":
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv source")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown data_source.kind %q", c.DataSource.Kind)
	}
	if c.Strategy.DecayLambda <= 0 || c.Strategy.DecayLambda > 1 {
		return fmt.Errorf("strategy.decay_lambda must be in (0, 1]")
	}
	if c.Strategy.WinsorizePct < 0 || c.Strategy.WinsorizePct >= 0.5 {
		return fmt.Errorf("strategy.winsorize_pct must be in [0, 0.5)")
	}
	if c.Strategy.TopN <= 0 {
		return fmt.Errorf("strategy.top_n must be positive")
	}
	if c.ImageHost.BaseURL != "" && c.ImageHost.AccessToken == "" {
		return fmt.Errorf("image_host.access_token is required when image_host is configured")
	}
	return nil
}
