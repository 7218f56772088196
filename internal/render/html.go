package render

import (
	"fmt"
	"html/template"

	"github.com/rewired-gh/polyodds/internal/models"
)

var htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/chart.html.tmpl"))

type htmlData struct {
	frame
	// Data rows are [timestamp, price, x, y].
	Data [][4]float64
}

// WriteHTML writes a self-contained interactive chart of samples to path with
// a nearest-point hover tooltip. Nothing is written when samples is empty.
func WriteHTML(path string, samples []models.PriceSample, title string) (err error) {
	if len(samples) == 0 {
		return nil
	}

	g := newGeometry(samples)
	rows := make([][4]float64, len(samples))
	for i, s := range samples {
		rows[i] = [4]float64{
			float64(int64(s.Timestamp)),
			round(s.Price, 6),
			round(g.x(s.Timestamp), 2),
			round(g.y(s.Price), 2),
		}
	}

	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := htmlTemplate.Execute(f, htmlData{frame: newFrame(title), Data: rows}); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}
