// Package fetcher drives the per-market work of a run: fetch the raw history,
// normalize it onto the interval grid and write the artifacts.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rewired-gh/polyodds/internal/history"
	"github.com/rewired-gh/polyodds/internal/logger"
	"github.com/rewired-gh/polyodds/internal/models"
	"github.com/rewired-gh/polyodds/internal/render"
	"github.com/rewired-gh/polyodds/internal/summary"
)

// HistorySource returns the raw price-history payload of a market.
type HistorySource interface {
	FetchHistory(ctx context.Context, marketID string) (any, error)
}

// Exporter receives every processed market.
type Exporter interface {
	SaveMarket(runID string, market models.Market, samples []models.PriceSample, summary models.SeriesSummary) error
}

// errNotProcessed marks markets left over when a run is cancelled.
var errNotProcessed = errors.New("market not processed")

// Options controls processing and output.
type Options struct {
	Interval  int
	Delay     time.Duration
	Workers   int
	OutputDir string
	WriteSVG  bool
	WriteHTML bool
}

// Fetcher processes markets for one run.
type Fetcher struct {
	source   HistorySource
	exporter Exporter
	runID    string
	opts     Options
}

// New creates a Fetcher. exporter may be nil.
func New(source HistorySource, exporter Exporter, runID string, opts Options) *Fetcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Fetcher{
		source:   source,
		exporter: exporter,
		runID:    runID,
		opts:     opts,
	}
}

// Run processes markets with at most Options.Workers in flight. With one
// worker markets are processed strictly in order. Results are returned in
// the order of markets. A failed market is recorded in its result and does
// not stop the run; only cancellation of ctx does.
func (f *Fetcher) Run(ctx context.Context, markets []models.Market) ([]models.MarketResult, error) {
	results := make([]models.MarketResult, len(markets))
	for i, m := range markets {
		results[i] = models.MarketResult{Market: m, Err: errNotProcessed}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Workers)
	for i, m := range markets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = f.ProcessMarket(gctx, m)
			return f.pause(gctx)
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, err
}

// pause waits for the politeness delay unless ctx ends first. Cancellation is
// reported through Run, not as a worker failure.
func (f *Fetcher) pause(ctx context.Context) error {
	if f.opts.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(f.opts.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	return nil
}

// ProcessMarket fetches, normalizes and writes one market.
func (f *Fetcher) ProcessMarket(ctx context.Context, market models.Market) models.MarketResult {
	result := models.MarketResult{Market: market}

	payload, err := f.source.FetchHistory(ctx, market.ID)
	if err != nil {
		logger.Warn("Failed to fetch history for %s (%s): %v", market.Title, market.ID, err)
		result.Err = err
		return result
	}

	samples := history.Normalize(payload, f.opts.Interval)
	result.Summary = summary.Summarize(samples)

	files, err := f.writeArtifacts(market, samples)
	result.Files = files
	if err != nil {
		logger.Warn("Failed to write output for %s (%s): %v", market.Title, market.ID, err)
		result.Err = err
		return result
	}

	if f.exporter != nil {
		if err := f.exporter.SaveMarket(f.runID, market, samples, result.Summary); err != nil {
			logger.Warn("Failed to export %s (%s): %v", market.Title, market.ID, err)
		}
	}

	if result.Summary.Count > 0 {
		logger.With("run_id", f.runID, "market_id", market.ID).Debug("series summary",
			"points", result.Summary.Count,
			"first", result.Summary.First,
			"last", result.Summary.Last,
			"min", result.Summary.Min,
			"max", result.Summary.Max,
			"stddev", result.Summary.StdDev)
	}
	return result
}

func (f *Fetcher) writeArtifacts(market models.Market, samples []models.PriceSample) ([]string, error) {
	stem := filepath.Join(f.opts.OutputDir, market.FileStem())
	var files []string

	csvPath := stem + ".csv"
	if err := render.WriteCSV(csvPath, samples); err != nil {
		return files, fmt.Errorf("failed to write CSV: %w", err)
	}
	files = append(files, csvPath)
	logger.Info("Saved %d samples to %s", len(samples), csvPath)

	if f.opts.WriteSVG && len(samples) > 0 {
		svgPath := stem + ".svg"
		if err := render.WriteSVG(svgPath, samples, market.Title); err != nil {
			return files, fmt.Errorf("failed to write SVG: %w", err)
		}
		files = append(files, svgPath)
		logger.Info("Saved SVG chart to %s", svgPath)
	}

	if f.opts.WriteHTML && len(samples) > 0 {
		htmlPath := stem + ".html"
		if err := render.WriteHTML(htmlPath, samples, market.Title); err != nil {
			return files, fmt.Errorf("failed to write HTML: %w", err)
		}
		files = append(files, htmlPath)
		logger.Info("Saved HTML chart to %s", htmlPath)
	}

	return files, nil
}
