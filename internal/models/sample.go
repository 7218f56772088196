package models

import "time"

// PriceSample is one (timestamp, price) observation. Timestamp is Unix epoch
// seconds and may carry sub-second precision. Price is an implied probability;
// it is not range-checked here.
type PriceSample struct {
	Timestamp float64 `json:"timestamp"`
	Price     float64 `json:"price"`
}

// Time returns the sample timestamp as a UTC time.Time.
func (s PriceSample) Time() time.Time {
	sec := int64(s.Timestamp)
	nsec := int64((s.Timestamp - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// SeriesSummary describes a resampled price series.
type SeriesSummary struct {
	Count  int       `json:"count"`
	First  float64   `json:"first"`
	Last   float64   `json:"last"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std_dev"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}
