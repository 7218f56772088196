package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestJSONOutputAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", "json")
	t.Cleanup(func() { defaultLogger = nil })

	Info("dropped %d", 1)
	Warn("saved %d samples to %s", 3, "out.csv")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "saved 3 samples to out.csv" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["level"] != "WARN" {
		t.Errorf("level = %v", rec["level"])
	}
}

func TestTextOutputHasSource(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "text")
	t.Cleanup(func() { defaultLogger = nil })

	Debug("hello")
	out := buf.String()
	if !strings.Contains(out, "msg=hello") {
		t.Errorf("missing message: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("source should point at the caller: %q", out)
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { defaultLogger = nil })

	With("market_id", "m1").Debug("series summary", "points", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["market_id"] != "m1" {
		t.Errorf("market_id = %v", rec["market_id"])
	}
	if rec["points"] != float64(3) {
		t.Errorf("points = %v", rec["points"])
	}
	if rec["msg"] != "series summary" {
		t.Errorf("msg = %v", rec["msg"])
	}
}

func TestNoopBeforeInit(t *testing.T) {
	defaultLogger = nil
	Info("nothing happens")
	Error("still nothing")
}
