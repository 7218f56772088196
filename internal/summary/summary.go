// Package summary computes descriptive statistics of resampled price series.
package summary

import (
	"github.com/rewired-gh/polyodds/internal/models"
)

// Summarize describes samples, which must be sorted by timestamp. An empty
// series yields the zero summary.
func Summarize(samples []models.PriceSample) models.SeriesSummary {
	if len(samples) == 0 {
		return models.SeriesSummary{}
	}

	first, last := samples[0], samples[len(samples)-1]
	s := models.SeriesSummary{
		Count: len(samples),
		First: first.Price,
		Last:  last.Price,
		Min:   first.Price,
		Max:   first.Price,
		Start: first.Time(),
		End:   last.Time(),
	}

	var w welford
	for _, sample := range samples {
		w.update(sample.Price)
		if sample.Price < s.Min {
			s.Min = sample.Price
		}
		if sample.Price > s.Max {
			s.Max = sample.Price
		}
	}
	s.Mean = w.mean
	s.StdDev = w.stdDev()
	return s
}

// Change is the probability move from the first to the last sample.
func Change(s models.SeriesSummary) float64 {
	return s.Last - s.First
}
