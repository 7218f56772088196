package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func newGammaServer(t *testing.T, marketsBody string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/markets":
			fmt.Fprint(w, marketsBody)
		case "/markets/m1/history":
			fmt.Fprint(w, `{"data":[{"timestamp":"2024-01-02T03:04:05Z","price":"0.4"},{"timestamp":1704164651,"price":0.6},{"time":1704164662,"p":0.7}]}`)
		case "/markets/m2/history":
			fmt.Fprint(w, "<html>rate limited</html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_EndToEnd(t *testing.T) {
	srv := newGammaServer(t, `{"data":[{"id":"m1","title":"Lakers vs Heat"},{"id":"m2","title":"Lakers vs Suns"}]}`)
	out := t.TempDir()
	dbPath := filepath.Join(out, "export.db")

	code := run([]string{
		"--base-url", srv.URL,
		"--output-dir", out,
		"--delay", "0s",
		"--no-html",
		"--sqlite-path", dbPath,
		"--log-level", "error",
	})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	want := []string{"export.db", "lakers-vs-heat-m1.csv", "lakers-vs-heat-m1.svg"}
	for _, w := range want {
		i := sort.SearchStrings(names, w)
		if i >= len(names) || names[i] != w {
			t.Errorf("missing %s in %v", w, names)
		}
	}
	for _, n := range names {
		if filepath.Ext(n) == ".html" {
			t.Errorf("--no-html ignored: %s written", n)
		}
		if n == "lakers-vs-suns-m2.csv" {
			t.Error("failed market should not produce output")
		}
	}

	csv, err := os.ReadFile(filepath.Join(out, "lakers-vs-heat-m1.csv"))
	if err != nil {
		t.Fatal(err)
	}
	wantCSV := "timestamp,iso_time,price\n" +
		"1704164640,2024-01-02T03:04:00+00:00,0.400000\n" +
		"1704164650,2024-01-02T03:04:10+00:00,0.600000\n" +
		"1704164660,2024-01-02T03:04:20+00:00,0.700000\n"
	if string(csv) != wantCSV {
		t.Errorf("csv = %q, want %q", csv, wantCSV)
	}
}

func TestRun_NoMarkets(t *testing.T) {
	srv := newGammaServer(t, `{"data":[]}`)
	code := run([]string{"--base-url", srv.URL, "--output-dir", t.TempDir(), "--log-level", "error"})
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	code := run([]string{"--interval", "0", "--output-dir", t.TempDir()})
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestRun_BadFlag(t *testing.T) {
	if code := run([]string{"--no-such-flag"}); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}
