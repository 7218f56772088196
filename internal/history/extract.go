package history

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rewired-gh/polyodds/internal/models"
)

var (
	timestampKeys = []string{"timestamp", "time", "createdAt", "blockTimestamp"}
	priceKeys     = []string{"price", "probability", "p", "value"}
)

// ExtractSamples returns the valid samples of payload sorted by timestamp.
//
// payload is either a bare list of records or an object holding that list
// under "data". Any other shape yields no samples. A record is dropped when
// it is not an object, its timestamp does not parse, it has no price, or the
// price is not a finite number. A price of 0 is a valid observation.
func ExtractSamples(payload any) []models.PriceSample {
	records := recordsOf(payload)
	samples := make([]models.PriceSample, 0, len(records))
	for _, rec := range records {
		item, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		ts, ok := ParseTimestamp(firstPresent(item, timestampKeys))
		if !ok {
			continue
		}
		raw := firstPresent(item, priceKeys)
		if raw == nil {
			continue
		}
		price, ok := priceValue(raw)
		if !ok {
			continue
		}
		samples = append(samples, models.PriceSample{Timestamp: ts, Price: price})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp < samples[j].Timestamp
	})
	return samples
}

func recordsOf(payload any) []any {
	switch p := payload.(type) {
	case []any:
		return p
	case []map[string]any:
		return mapsToAny(p)
	case map[string]any:
		switch data := p["data"].(type) {
		case []any:
			return data
		case []map[string]any:
			return mapsToAny(data)
		}
	}
	return nil
}

func mapsToAny(in []map[string]any) []any {
	out := make([]any, len(in))
	for i, m := range in {
		out[i] = m
	}
	return out
}

// firstPresent probes keys in order and returns the first value that is
// present and not null.
func firstPresent(item map[string]any, keys []string) any {
	for _, key := range keys {
		if v, ok := item[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func priceValue(v any) (float64, bool) {
	var f float64
	if s, ok := v.(string); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	} else {
		n, ok := numericValue(v)
		if !ok {
			return 0, false
		}
		f = n
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
