package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewired-gh/polyodds/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRun(t *testing.T, s *Storage, id string) models.Run {
	t.Helper()
	run := models.Run{ID: id, StartedAt: time.Now(), Search: "Lakers", Interval: 10}
	if err := s.StartRun(run); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	return run
}

func testMarket(id string) models.Market {
	closeTime := "2024-03-01T00:00:00Z"
	return models.Market{
		ID:        id,
		Slug:      "lakers-" + id,
		Title:     "Lakers game " + id,
		Status:    "closed",
		CloseTime: &closeTime,
		Raw:       map[string]any{"id": id, "volume": json.Number("1200.5")},
	}
}

var testSamples = []models.PriceSample{
	{Timestamp: 1704164640, Price: 0.25},
	{Timestamp: 1704164650, Price: 0.5},
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNew_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestStorage_StartAndGetRun(t *testing.T) {
	s := newTestStorage(t)
	run := testRun(t, s, "run-1")

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Search != run.Search || got.Interval != run.Interval {
		t.Errorf("got %+v, want %+v", got, run)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if _, err := s.GetRun("missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestStorage_SaveMarket(t *testing.T) {
	s := newTestStorage(t)
	testRun(t, s, "run-1")
	m := testMarket("m1")
	sum := models.SeriesSummary{
		Count: 2, First: 0.25, Last: 0.5, Min: 0.25, Max: 0.5, Mean: 0.375, StdDev: 0.17,
		Start: time.Unix(1704164640, 0).UTC(), End: time.Unix(1704164650, 0).UTC(),
	}

	if err := s.SaveMarket("run-1", m, testSamples, sum); err != nil {
		t.Fatalf("SaveMarket: %v", err)
	}

	markets, err := s.GetMarkets("run-1")
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
	if len(markets) != 1 {
		t.Fatalf("got %d markets, want 1", len(markets))
	}
	got := markets[0]
	if got.Title != m.Title || got.Slug != m.Slug || got.Status != m.Status {
		t.Errorf("got %+v, want %+v", got, m)
	}
	if got.CloseTime == nil || *got.CloseTime != *m.CloseTime {
		t.Errorf("close time not stored: %v", got.CloseTime)
	}
	if got.Raw["volume"] != 1200.5 {
		t.Errorf("raw record not stored: %v", got.Raw)
	}

	samples, err := s.GetSamples("run-1", "m1")
	if err != nil {
		t.Fatalf("GetSamples: %v", err)
	}
	if len(samples) != 2 || samples[0] != testSamples[0] || samples[1] != testSamples[1] {
		t.Errorf("samples = %v, want %v", samples, testSamples)
	}

	gotSum, err := s.GetSummary("run-1", "m1")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if *gotSum != sum {
		t.Errorf("summary = %+v, want %+v", *gotSum, sum)
	}
}

func TestStorage_SaveMarketReplaces(t *testing.T) {
	s := newTestStorage(t)
	testRun(t, s, "run-1")
	m := testMarket("m1")

	if err := s.SaveMarket("run-1", m, testSamples, models.SeriesSummary{Count: 2}); err != nil {
		t.Fatalf("SaveMarket: %v", err)
	}
	if err := s.SaveMarket("run-1", m, testSamples[:1], models.SeriesSummary{Count: 1}); err != nil {
		t.Fatalf("SaveMarket again: %v", err)
	}

	samples, err := s.GetSamples("run-1", "m1")
	if err != nil {
		t.Fatalf("GetSamples: %v", err)
	}
	if len(samples) != 1 {
		t.Errorf("got %d samples after replace, want 1", len(samples))
	}
}

func TestStorage_SaveMarketEmptySeries(t *testing.T) {
	s := newTestStorage(t)
	testRun(t, s, "run-1")

	if err := s.SaveMarket("run-1", testMarket("m1"), nil, models.SeriesSummary{}); err != nil {
		t.Fatalf("SaveMarket: %v", err)
	}
	sum, err := s.GetSummary("run-1", "m1")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum.Count != 0 || !sum.Start.IsZero() {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestStorage_SaveMarketValidation(t *testing.T) {
	s := newTestStorage(t)
	testRun(t, s, "run-1")

	if err := s.SaveMarket("run-1", models.Market{ID: "m1"}, nil, models.SeriesSummary{}); err == nil {
		t.Error("expected error for market without title")
	}
	if err := s.SaveMarket("unknown-run", testMarket("m1"), nil, models.SeriesSummary{}); err == nil {
		t.Error("expected foreign key error for unknown run")
	}
}

func TestStorage_RunsAreIsolated(t *testing.T) {
	s := newTestStorage(t)
	testRun(t, s, "run-1")
	testRun(t, s, "run-2")

	if err := s.SaveMarket("run-1", testMarket("m1"), testSamples, models.SeriesSummary{}); err != nil {
		t.Fatalf("SaveMarket: %v", err)
	}
	markets, err := s.GetMarkets("run-2")
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
	if len(markets) != 0 {
		t.Errorf("run-2 should be empty, got %d markets", len(markets))
	}
}
