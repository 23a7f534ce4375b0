package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Chart struct {
		Instrument         string        `yaml:"instrument"`
		Exchange           string        `yaml:"exchange"`
		BaseURL            string        `yaml:"base_url"`
		DefaultGranularity string        `yaml:"default_granularity"`
		WindowSize         int           `yaml:"window_size"`
		RequestTimeout     time.Duration `yaml:"request_timeout"`
	} `yaml:"chart"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CHART_INSTRUMENT"); v != "" {
		c.Chart.Instrument = v
	}
	if v := os.Getenv("CHART_EXCHANGE"); v != "" {
		c.Chart.Exchange = v
	}
	if v := os.Getenv("CHART_BASE_URL"); v != "" {
		c.Chart.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Chart.BaseURL == "" {
		c.Chart.BaseURL = "https://chart.stockscan.io/candle/v3"
	}
	if c.Chart.DefaultGranularity == "" {
		c.Chart.DefaultGranularity = "daily"
	}
	if c.Chart.WindowSize <= 0 {
		c.Chart.WindowSize = 50
	}
	if c.Chart.RequestTimeout <= 0 {
		c.Chart.RequestTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Chart.Instrument == "" {
		return fmt.Errorf("chart.instrument is required")
	}
	if c.Chart.Exchange == "" {
		return fmt.Errorf("chart.exchange is required")
	}
	switch c.Chart.DefaultGranularity {
	case "hourly", "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("chart.default_granularity must be one of hourly, daily, weekly, monthly, got '%s'", c.Chart.DefaultGranularity)
	}
	return nil
}
