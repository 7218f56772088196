package models

import "time"

// Run identifies one invocation of the fetcher.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Search    string    `json:"search"`
	Interval  int       `json:"interval"`
}

// MarketResult is the outcome of processing one market within a run.
type MarketResult struct {
	Market  Market        `json:"market"`
	Summary SeriesSummary `json:"summary"`
	// Files lists the artifacts written for the market.
	Files []string `json:"files,omitempty"`
	// Err is set when the market was skipped.
	Err error `json:"-"`
}

// Skipped reports whether the market was skipped because of an error.
func (r MarketResult) Skipped() bool {
	return r.Err != nil
}
