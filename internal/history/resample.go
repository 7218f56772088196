package history

import (
	"math"
	"slices"

	"github.com/rewired-gh/polyodds/internal/models"
)

// Resample reduces samples to one point per interval-second bucket. Bucket
// keys are floor(ts/interval)*interval; the last sample seen in a bucket
// wins. The result is ordered by bucket start and each point carries the
// bucket start as its timestamp. samples must already be sorted by time.
func Resample(samples []models.PriceSample, interval int) []models.PriceSample {
	if len(samples) == 0 {
		return []models.PriceSample{}
	}
	if interval < 1 {
		interval = 1
	}

	// Keys stay in float64: timestamps past the int64 range are still
	// finite and must land on their own aligned bucket.
	width := float64(interval)
	buckets := make(map[float64]float64, len(samples))
	for _, s := range samples {
		key := math.Floor(s.Timestamp/width) * width
		buckets[key] = s.Price
	}

	keys := make([]float64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]models.PriceSample, len(keys))
	for i, k := range keys {
		out[i] = models.PriceSample{Timestamp: k, Price: buckets[k]}
	}
	return out
}

// Normalize extracts the samples of payload and resamples them onto the
// interval grid.
func Normalize(payload any, interval int) []models.PriceSample {
	return Resample(ExtractSamples(payload), interval)
}
