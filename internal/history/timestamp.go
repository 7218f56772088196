package history

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampFormats are tried in order. Every layout is interpreted as UTC.
// The patterns keep time.Parse from accepting inputs the layout does not
// literally describe, e.g. a fraction on the second layout.
var timestampFormats = []struct {
	pattern *regexp.Regexp
	layout  string
}{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{1,6}Z$`), "2006-01-02T15:04:05.999999Z"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`), "2006-01-02T15:04:05Z"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`), "2006-01-02 15:04:05"},
}

// ParseTimestamp converts v into Unix epoch seconds. The second result is
// false when v is nil or cannot be interpreted as a timestamp.
//
// Numbers are taken verbatim. Strings are first parsed as numbers and then
// matched against the ISO-8601 and "YYYY-MM-DD HH:MM:SS" layouts.
func ParseTimestamp(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case string:
		return parseTimestampString(val)
	default:
		f, ok := numericValue(v)
		if !ok || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
}

func parseTimestampString(s string) (float64, bool) {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	for _, format := range timestampFormats {
		if !format.pattern.MatchString(s) {
			continue
		}
		t, err := time.ParseInLocation(format.layout, s, time.UTC)
		if err != nil {
			continue
		}
		return epochSeconds(t), true
	}
	return 0, false
}

func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// numericValue reports the float64 value of Go's numeric kinds and json.Number.
// Booleans are not numbers here.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
