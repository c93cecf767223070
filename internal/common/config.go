// Package common provides shared utilities for Coindeck
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Coindeck
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Refresh     RefreshConfig `toml:"refresh"`
	Alerts      AlertsConfig  `toml:"alerts"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the local store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	CoinGecko CoinGeckoConfig `toml:"coingecko"`
	Binance   BinanceConfig   `toml:"binance"`
}

// CoinGeckoConfig holds CoinGecko API configuration
type CoinGeckoConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *CoinGeckoConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// BinanceConfig holds Binance API configuration
type BinanceConfig struct {
	BaseURL   string `toml:"base_url"`
	StreamURL string `toml:"stream_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BinanceConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// RefreshConfig holds market data refresh intervals.
type RefreshConfig struct {
	PriceInterval string `toml:"price_interval"` // watchlist/price map refresh
	AlertInterval string `toml:"alert_interval"` // full alert check cycle
	TopCoins      int    `toml:"top_coins"`      // markets page size for the refresh task
}

// GetPriceInterval parses the price refresh interval (default 30s).
func (c *RefreshConfig) GetPriceInterval() time.Duration {
	d, err := time.ParseDuration(c.PriceInterval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetAlertInterval parses the alert check interval (default 60s).
func (c *RefreshConfig) GetAlertInterval() time.Duration {
	d, err := time.ParseDuration(c.AlertInterval)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// AlertsConfig holds alert evaluation policy.
type AlertsConfig struct {
	// RearmOnEnable clears the triggered flag when a user re-enables an alert.
	// When false (default) a triggered alert stays terminal until an explicit
	// reset, matching the fire-once-ever behavior.
	RearmOnEnable bool `toml:"rearm_on_enable"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/coindeck",
		},
		Clients: ClientsConfig{
			CoinGecko: CoinGeckoConfig{
				BaseURL:   "https://api.coingecko.com/api/v3",
				RateLimit: 10,
				Timeout:   "10s",
			},
			Binance: BinanceConfig{
				BaseURL:   "https://api.binance.com",
				StreamURL: "wss://stream.binance.com:9443",
				RateLimit: 10,
				Timeout:   "10s",
			},
		},
		Refresh: RefreshConfig{
			PriceInterval: "30s",
			AlertInterval: "60s",
			TopCoins:      100,
		},
		Alerts: AlertsConfig{
			RearmOnEnable: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("COINDECK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("COINDECK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("COINDECK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("COINDECK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("COINDECK_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if key := os.Getenv("COINGECKO_API_KEY"); key != "" {
		config.Clients.CoinGecko.APIKey = key
	}

	if v := os.Getenv("COINDECK_PRICE_INTERVAL"); v != "" {
		config.Refresh.PriceInterval = v
	}
	if v := os.Getenv("COINDECK_ALERT_INTERVAL"); v != "" {
		config.Refresh.AlertInterval = v
	}
	if v := os.Getenv("COINDECK_ALERT_REARM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Alerts.RearmOnEnable = b
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
