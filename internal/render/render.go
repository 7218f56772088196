// Package render writes resampled price series as CSV, a static SVG chart and
// an interactive HTML chart.
package render

import (
	"embed"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rewired-gh/polyodds/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Chart dimensions shared by the SVG and HTML renderings.
const (
	chartWidth   = 960
	chartHeight  = 320
	chartPadding = 50
)

// geometry maps samples linearly into the plot area. Time runs left to right;
// the clamped price runs bottom to top.
type geometry struct {
	minTs, maxTs float64
}

func newGeometry(samples []models.PriceSample) geometry {
	g := geometry{minTs: samples[0].Timestamp, maxTs: samples[len(samples)-1].Timestamp}
	if g.maxTs == g.minTs {
		g.maxTs++
	}
	return g
}

func (g geometry) x(ts float64) float64 {
	return chartPadding + (ts-g.minTs)/(g.maxTs-g.minTs)*(chartWidth-2*chartPadding)
}

func (g geometry) y(price float64) float64 {
	clamped := math.Max(0, math.Min(1, price))
	return chartHeight - chartPadding - clamped*(chartHeight-2*chartPadding)
}

// frame carries the fixed chart layout into the templates.
type frame struct {
	Title      string
	Width      int
	Height     int
	Padding    int
	Right      int
	Bottom     int
	LabelY     int
	AxisLabelX int
}

func newFrame(title string) frame {
	return frame{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Padding:    chartPadding,
		Right:      chartWidth - chartPadding,
		Bottom:     chartHeight - chartPadding,
		LabelY:     chartHeight - chartPadding + 24,
		AxisLabelX: chartPadding - 8,
	}
}

// createFile creates path and any missing parent directories.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
