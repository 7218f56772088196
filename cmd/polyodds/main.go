package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/rewired-gh/polyodds/internal/config"
	"github.com/rewired-gh/polyodds/internal/fetcher"
	"github.com/rewired-gh/polyodds/internal/logger"
	"github.com/rewired-gh/polyodds/internal/models"
	"github.com/rewired-gh/polyodds/internal/polymarket"
	"github.com/rewired-gh/polyodds/internal/storage"
	"github.com/rewired-gh/polyodds/internal/telegram"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := config.NewFlagSet("polyodds")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Fetch resolved Polymarket markets and resample their odds history.")
		fmt.Fprintln(os.Stderr)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if configPath != "" {
		logger.Info("Configuration loaded from %s", configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	polyClient, err := polymarket.NewClient(cfg.Polymarket.BaseURL, polymarket.ClientConfig{
		MarketsPath:     cfg.Polymarket.MarketsPath,
		HistoryTemplate: cfg.Polymarket.HistoryTemplate,
		Timeout:         cfg.Polymarket.Timeout,
		MaxRetries:      cfg.Polymarket.MaxRetries,
		RetryDelayBase:  cfg.Polymarket.RetryDelayBase,
	})
	if err != nil {
		logger.Error("Failed to create Polymarket client: %v", err)
		return 1
	}

	logger.Debug("Discovering markets (search: %q, resolved_only: %v, page_size: %d, max_pages: %d)",
		cfg.Polymarket.Search, cfg.Polymarket.ResolvedOnly, cfg.Polymarket.PageSize, cfg.Polymarket.MaxPages)
	markets, err := polyClient.DiscoverMarkets(ctx, polymarket.DiscoverOptions{
		Search:       cfg.Polymarket.Search,
		ResolvedOnly: cfg.Polymarket.ResolvedOnly,
		PageSize:     cfg.Polymarket.PageSize,
		MaxPages:     cfg.Polymarket.MaxPages,
	})
	if err != nil {
		logger.Error("Market discovery failed: %v", err)
		return 1
	}
	if len(markets) == 0 {
		logger.Error("No markets found. Try adjusting --search or endpoint settings.")
		return 1
	}

	runInfo := models.Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Search:    cfg.Polymarket.Search,
		Interval:  cfg.Fetch.Interval,
	}
	logger.Info("Found %d markets. Fetching history (run %s)...", len(markets), runInfo.ID)

	var exporter fetcher.Exporter
	if cfg.Output.SQLitePath != "" {
		store, err := storage.New(cfg.Output.SQLitePath)
		if err != nil {
			logger.Error("Failed to open SQLite export: %v", err)
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close storage: %v", err)
			}
		}()
		if err := store.StartRun(runInfo); err != nil {
			logger.Error("Failed to record run: %v", err)
			return 1
		}
		exporter = store
		logger.Info("Exporting run to %s", cfg.Output.SQLitePath)
	}

	f := fetcher.New(polyClient, exporter, runInfo.ID, fetcher.Options{
		Interval:  cfg.Fetch.Interval,
		Delay:     cfg.Fetch.Delay,
		Workers:   cfg.Fetch.Workers,
		OutputDir: cfg.Output.Dir,
		WriteSVG:  cfg.Output.SVG,
		WriteHTML: cfg.Output.HTML,
	})
	results, err := f.Run(ctx, markets)
	if err != nil {
		logger.Warn("Run interrupted: %v", err)
	}

	skipped := 0
	for _, r := range results {
		if r.Skipped() {
			skipped++
		}
	}
	logger.Info("Run %s completed in %v: %d processed, %d skipped",
		runInfo.ID, time.Since(runInfo.StartedAt).Round(time.Millisecond), len(results)-skipped, skipped)

	if cfg.Telegram.Enabled {
		tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Warn("Failed to initialize Telegram client: %v", err)
		} else if err := tg.SendReport(runInfo, results); err != nil {
			logger.Warn("Failed to send Telegram report: %v", err)
		} else {
			logger.Info("Sent Telegram run report")
		}
	}

	return 0
}
