package models

import (
	"testing"
	"time"
)

func TestMarketValidate(t *testing.T) {
	tests := []struct {
		name    string
		market  Market
		wantErr bool
	}{
		{
			name:    "valid market",
			market:  Market{ID: "512", Title: "Lakers vs. Celtics"},
			wantErr: false,
		},
		{
			name:    "empty ID",
			market:  Market{Title: "Lakers vs. Celtics"},
			wantErr: true,
		},
		{
			name:    "empty title",
			market:  Market{ID: "512"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.market.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Market.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Lakers vs. Celtics-512", "lakers-vs--celtics-512"},
		{"already_clean-1", "already_clean-1"},
		{"  Spaces  ", "spaces"},
		{"???", "market"},
		{"", "market"},
		{"Über/Path\\Name", "über-path-name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMarketFileStem(t *testing.T) {
	m := Market{ID: "0xAB", Title: "Will the Lakers win?"}
	if got, want := m.FileStem(), "will-the-lakers-win--0xab"; got != want {
		t.Errorf("FileStem() = %q, want %q", got, want)
	}
}

func TestPriceSampleTime(t *testing.T) {
	s := PriceSample{Timestamp: 1704164645.5}
	want := time.Date(2024, 1, 2, 3, 4, 5, 500_000_000, time.UTC)
	if got := s.Time(); !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}
