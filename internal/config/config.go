package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Output     OutputConfig     `mapstructure:"output"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PolymarketConfig holds Polymarket API configuration
type PolymarketConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	MarketsPath     string        `mapstructure:"markets_path"`
	HistoryTemplate string        `mapstructure:"history_template"` // must contain {market_id}
	Search          string        `mapstructure:"search"`
	PageSize        int           `mapstructure:"page_size"`
	MaxPages        int           `mapstructure:"max_pages"` // 0 = all pages
	ResolvedOnly    bool          `mapstructure:"resolved_only"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelayBase  time.Duration `mapstructure:"retry_delay_base"`
}

// FetchConfig holds per-market processing configuration
type FetchConfig struct {
	Interval int           `mapstructure:"interval"` // resample interval in seconds
	Delay    time.Duration `mapstructure:"delay"`    // pause after each history request
	Workers  int           `mapstructure:"workers"`
}

// OutputConfig holds artifact configuration
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	SVG        bool   `mapstructure:"svg"`
	HTML       bool   `mapstructure:"html"`
	SQLitePath string `mapstructure:"sqlite_path"` // empty disables the SQLite export
}

// TelegramConfig holds Telegram run-report configuration
type TelegramConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds the configuration from, in increasing priority: defaults, the
// config file at path (skipped when empty), POLYODDS_* environment variables
// and flags explicitly set on flags (may be nil).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("POLYODDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if flags != nil {
		applyToggles(&cfg, flags)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Polymarket defaults
	v.SetDefault("polymarket.base_url", DefaultBaseURL)
	v.SetDefault("polymarket.markets_path", DefaultMarketsPath)
	v.SetDefault("polymarket.history_template", DefaultHistoryTemplate)
	v.SetDefault("polymarket.search", DefaultSearch)
	v.SetDefault("polymarket.page_size", DefaultPageSize)
	v.SetDefault("polymarket.max_pages", 0)
	v.SetDefault("polymarket.resolved_only", true)
	v.SetDefault("polymarket.timeout", DefaultTimeout)
	v.SetDefault("polymarket.max_retries", 0) // single attempt
	v.SetDefault("polymarket.retry_delay_base", time.Second)

	// Fetch defaults
	v.SetDefault("fetch.interval", DefaultInterval)
	v.SetDefault("fetch.delay", DefaultDelay)
	v.SetDefault("fetch.workers", 1)

	// Output defaults
	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("output.svg", true)
	v.SetDefault("output.html", true)
	v.SetDefault("output.sqlite_path", "")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Polymarket config
	u, err := url.Parse(c.Polymarket.BaseURL)
	if c.Polymarket.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("polymarket.base_url must be an absolute URL")
	}
	if c.Polymarket.MarketsPath == "" {
		return fmt.Errorf("polymarket.markets_path is required")
	}
	if !strings.Contains(c.Polymarket.HistoryTemplate, "{market_id}") {
		return fmt.Errorf("polymarket.history_template must contain {market_id}")
	}
	if c.Polymarket.PageSize < 1 || c.Polymarket.PageSize > 1000 {
		return fmt.Errorf("polymarket.page_size must be between 1 and 1000")
	}
	if c.Polymarket.MaxPages < 0 {
		return fmt.Errorf("polymarket.max_pages must not be negative")
	}
	if c.Polymarket.Timeout <= 0 {
		return fmt.Errorf("polymarket.timeout must be positive")
	}
	if c.Polymarket.MaxRetries < 0 {
		return fmt.Errorf("polymarket.max_retries must not be negative")
	}

	// Validate Fetch config
	if c.Fetch.Interval < 1 {
		return fmt.Errorf("fetch.interval must be at least 1 second")
	}
	if c.Fetch.Delay < 0 {
		return fmt.Errorf("fetch.delay must not be negative")
	}
	if c.Fetch.Workers < 1 || c.Fetch.Workers > 64 {
		return fmt.Errorf("fetch.workers must be between 1 and 64")
	}

	// Validate Output config
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
