package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults shared by the flag set and viper.
const (
	DefaultBaseURL         = "https://gamma-api.polymarket.com"
	DefaultMarketsPath     = "/markets"
	DefaultHistoryTemplate = "/markets/{market_id}/history"
	DefaultSearch          = "Lakers"
	DefaultPageSize        = 100
	DefaultInterval        = 10
	DefaultDelay           = 250 * time.Millisecond
	DefaultTimeout         = 30 * time.Second
	DefaultOutputDir       = "output"
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"base-url":         "polymarket.base_url",
	"markets-path":     "polymarket.markets_path",
	"history-template": "polymarket.history_template",
	"search":           "polymarket.search",
	"page-size":        "polymarket.page_size",
	"max-pages":        "polymarket.max_pages",
	"resolved-only":    "polymarket.resolved_only",
	"timeout":          "polymarket.timeout",
	"max-retries":      "polymarket.max_retries",
	"interval":         "fetch.interval",
	"delay":            "fetch.delay",
	"workers":          "fetch.workers",
	"output-dir":       "output.dir",
	"sqlite-path":      "output.sqlite_path",
	"log-level":        "logging.level",
	"log-format":       "logging.format",
}

// NewFlagSet returns the command-line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.String("config", "", "Path to an optional YAML configuration file")
	fs.String("base-url", DefaultBaseURL, "Polymarket API base URL")
	fs.String("markets-path", DefaultMarketsPath, "Markets endpoint path")
	fs.String("history-template", DefaultHistoryTemplate, "History endpoint template (use {market_id})")
	fs.String("search", DefaultSearch, "Search query for markets")
	fs.Int("page-size", DefaultPageSize, "Markets page size")
	fs.Int("max-pages", 0, "Max pages to fetch (0=all)")
	fs.Bool("resolved-only", true, "Only fetch resolved/closed markets")
	fs.Duration("timeout", DefaultTimeout, "HTTP request timeout")
	fs.Int("max-retries", 0, "Retries for 5xx/429 responses (0=no retries)")
	fs.Int("interval", DefaultInterval, "Resample interval in seconds")
	fs.Duration("delay", DefaultDelay, "Delay between history requests")
	fs.Int("workers", 1, "Markets processed concurrently")
	fs.String("output-dir", DefaultOutputDir, "Output directory for CSV and chart files")
	fs.Bool("no-svg", false, "Disable SVG chart output")
	fs.Bool("no-html", false, "Disable HTML chart output with hover tooltips")
	fs.String("sqlite-path", "", "Also export the run to this SQLite database")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-format", "text", "Log format: json, text")

	return fs
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// applyToggles handles the negative --no-* flags, which only ever switch an
// output off.
func applyToggles(cfg *Config, fs *pflag.FlagSet) {
	if off, err := fs.GetBool("no-svg"); err == nil && off {
		cfg.Output.SVG = false
	}
	if off, err := fs.GetBool("no-html"); err == nil && off {
		cfg.Output.HTML = false
	}
}
