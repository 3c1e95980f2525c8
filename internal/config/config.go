// Package config loads and validates bookdex configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Notion   NotionConfig   `mapstructure:"notion"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// NotionConfig identifies the destination databases and the integration token.
type NotionConfig struct {
	Token            string `mapstructure:"token"`
	BooksDatabaseID  string `mapstructure:"books_database_id"`
	SeriesDatabaseID string `mapstructure:"series_database_id"`
	GenresDatabaseID string `mapstructure:"genres_database_id"`
}

// ScraperConfig governs detail-page fetching behavior.
type ScraperConfig struct {
	UserAgent         string  `mapstructure:"user_agent"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// HeadlessConfig configures the shelf-page rendering subsystem.
type HeadlessConfig struct {
	NavTimeoutSec  int `mapstructure:"nav_timeout_seconds"`
	SettleDelaySec int `mapstructure:"settle_delay_seconds"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36")
	v.SetDefault("scraper.timeout_seconds", 15)
	v.SetDefault("scraper.requests_per_second", 1)
	v.SetDefault("headless.nav_timeout_seconds", 15)
	v.SetDefault("headless.settle_delay_seconds", 3)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Notion.Token == "" {
		return fmt.Errorf("notion.token must be set")
	}
	if c.Notion.BooksDatabaseID == "" {
		return fmt.Errorf("notion.books_database_id must be set")
	}
	if c.Notion.SeriesDatabaseID == "" {
		return fmt.Errorf("notion.series_database_id must be set")
	}
	if c.Notion.GenresDatabaseID == "" {
		return fmt.Errorf("notion.genres_database_id must be set")
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds must be > 0")
	}
	if c.Headless.NavTimeoutSec <= 0 {
		return fmt.Errorf("headless.nav_timeout_seconds must be > 0")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// ScrapeTimeout converts the scraper timeout config into a duration.
func (c Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// NavTimeout converts the headless navigation timeout into a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Headless.NavTimeoutSec) * time.Second
}

// SettleDelay converts the headless settle delay into a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Headless.SettleDelaySec) * time.Second
}
