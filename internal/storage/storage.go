// Package storage exports fetched runs to a SQLite database: markets, their
// resampled series and series summaries, keyed by run.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rewired-gh/polyodds/internal/models"
	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database for the run export.
type Storage struct {
	db *sql.DB
}

// New opens or creates the SQLite database at dbPath. ":memory:" opens a
// private in-memory database.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; workers queue on the connection
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &Storage{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			search      TEXT NOT NULL,
			interval_s  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS markets (
			run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			id          TEXT NOT NULL,
			slug        TEXT,
			title       TEXT NOT NULL,
			status      TEXT,
			close_time  TEXT,
			raw         TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (run_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id      TEXT NOT NULL,
			market_id   TEXT NOT NULL,
			ts          INTEGER NOT NULL,
			price       REAL NOT NULL,
			PRIMARY KEY (run_id, market_id, ts),
			FOREIGN KEY (run_id, market_id) REFERENCES markets(run_id, id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS summaries (
			run_id      TEXT NOT NULL,
			market_id   TEXT NOT NULL,
			count       INTEGER NOT NULL,
			first_price REAL NOT NULL,
			last_price  REAL NOT NULL,
			min_price   REAL NOT NULL,
			max_price   REAL NOT NULL,
			mean_price  REAL NOT NULL,
			std_dev     REAL NOT NULL,
			start_ts    INTEGER,
			end_ts      INTEGER,
			PRIMARY KEY (run_id, market_id),
			FOREIGN KEY (run_id, market_id) REFERENCES markets(run_id, id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_market ON samples(market_id, ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// StartRun records a run. It must be called before SaveMarket for that run.
func (s *Storage) StartRun(run models.Run) error {
	_, err := s.db.Exec(`INSERT INTO runs (id, started_at, search, interval_s) VALUES (?,?,?,?)`,
		run.ID, run.StartedAt.UnixNano(), run.Search, run.Interval)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// SaveMarket stores a market with its resampled series and summary in one
// transaction. Saving the same market twice within a run replaces it.
func (s *Storage) SaveMarket(runID string, market models.Market, samples []models.PriceSample, summary models.SeriesSummary) error {
	if err := market.Validate(); err != nil {
		return fmt.Errorf("invalid market: %w", err)
	}
	raw, err := json.Marshal(market.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw market: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM markets WHERE run_id = ? AND id = ?`, runID, market.ID); err != nil {
		return fmt.Errorf("failed to replace market: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO markets (run_id, id, slug, title, status, close_time, raw)
		VALUES (?,?,?,?,?,?,?)`,
		runID, market.ID, market.Slug, market.Title, market.Status, market.CloseTime, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to insert market: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO samples (run_id, market_id, ts, price) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()
	for _, sample := range samples {
		if _, err := stmt.Exec(runID, market.ID, int64(sample.Timestamp), sample.Price); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	var startTs, endTs sql.NullInt64
	if summary.Count > 0 {
		startTs = sql.NullInt64{Int64: summary.Start.Unix(), Valid: true}
		endTs = sql.NullInt64{Int64: summary.End.Unix(), Valid: true}
	}
	_, err = tx.Exec(`
		INSERT INTO summaries
			(run_id, market_id, count, first_price, last_price, min_price, max_price,
			 mean_price, std_dev, start_ts, end_ts)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		runID, market.ID, summary.Count, summary.First, summary.Last, summary.Min, summary.Max,
		summary.Mean, summary.StdDev, startTs, endTs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	return tx.Commit()
}

// GetRun loads a run by ID.
func (s *Storage) GetRun(id string) (*models.Run, error) {
	var run models.Run
	var startedAtNano int64
	err := s.db.QueryRow(`SELECT id, started_at, search, interval_s FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &startedAtNano, &run.Search, &run.Interval)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.StartedAt = time.Unix(0, startedAtNano)
	return &run, nil
}

// GetMarkets returns the markets exported for a run, ordered by ID.
func (s *Storage) GetMarkets(runID string) ([]models.Market, error) {
	rows, err := s.db.Query(`
		SELECT id, slug, title, status, close_time, raw
		FROM markets WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query markets: %w", err)
	}
	defer rows.Close()

	markets := []models.Market{}
	for rows.Next() {
		var m models.Market
		var closeTime sql.NullString
		var raw string
		if err := rows.Scan(&m.ID, &m.Slug, &m.Title, &m.Status, &closeTime, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		if closeTime.Valid {
			m.CloseTime = &closeTime.String
		}
		if err := json.Unmarshal([]byte(raw), &m.Raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw market: %w", err)
		}
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

// GetSamples returns the stored series of a market in time order.
func (s *Storage) GetSamples(runID, marketID string) ([]models.PriceSample, error) {
	rows, err := s.db.Query(`
		SELECT ts, price FROM samples
		WHERE run_id = ? AND market_id = ? ORDER BY ts`, runID, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples := []models.PriceSample{}
	for rows.Next() {
		var ts int64
		var sample models.PriceSample
		if err := rows.Scan(&ts, &sample.Price); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		sample.Timestamp = float64(ts)
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// GetSummary returns the stored summary of a market.
func (s *Storage) GetSummary(runID, marketID string) (*models.SeriesSummary, error) {
	var sum models.SeriesSummary
	var startTs, endTs sql.NullInt64
	err := s.db.QueryRow(`
		SELECT count, first_price, last_price, min_price, max_price, mean_price, std_dev, start_ts, end_ts
		FROM summaries WHERE run_id = ? AND market_id = ?`, runID, marketID).
		Scan(&sum.Count, &sum.First, &sum.Last, &sum.Min, &sum.Max, &sum.Mean, &sum.StdDev, &startTs, &endTs)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("summary not found: %s/%s", runID, marketID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	if startTs.Valid {
		sum.Start = time.Unix(startTs.Int64, 0).UTC()
	}
	if endTs.Valid {
		sum.End = time.Unix(endTs.Int64, 0).UTC()
	}
	return &sum, nil
}
