package summary

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rewired-gh/polyodds/internal/models"
)

func TestSummarize(t *testing.T) {
	samples := []models.PriceSample{
		{Timestamp: 0, Price: 0.2},
		{Timestamp: 10, Price: 0.4},
		{Timestamp: 20, Price: 0.9},
		{Timestamp: 30, Price: 0.5},
	}

	s := Summarize(samples)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 0.2, s.First)
	assert.Equal(t, 0.5, s.Last)
	assert.Equal(t, 0.2, s.Min)
	assert.Equal(t, 0.9, s.Max)
	assert.InDelta(t, 0.5, s.Mean, 1e-12)
	// sample variance of {0.2,0.4,0.9,0.5} = 0.26/3
	assert.InDelta(t, math.Sqrt(0.26/3), s.StdDev, 1e-12)
	assert.Equal(t, time.Unix(0, 0).UTC(), s.Start)
	assert.Equal(t, time.Unix(30, 0).UTC(), s.End)
	assert.InDelta(t, 0.3, Change(s), 1e-12)
}

func TestSummarizeSingleAndEmpty(t *testing.T) {
	one := Summarize([]models.PriceSample{{Timestamp: 5, Price: 0.7}})
	assert.Equal(t, 1, one.Count)
	assert.Zero(t, one.StdDev)
	assert.Equal(t, 0.7, one.Mean)

	assert.Equal(t, models.SeriesSummary{}, Summarize(nil))
}

func TestWelfordMatchesTwoPass(t *testing.T) {
	values := []float64{0.11, 0.52, 0.33, 0.98, 0.04, 0.61}
	var w welford
	var sum float64
	for _, v := range values {
		w.update(v)
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}

	assert.InDelta(t, mean, w.mean, 1e-12)
	assert.InDelta(t, math.Sqrt(ss/float64(len(values)-1)), w.stdDev(), 1e-12)
}
