package render

import (
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/rewired-gh/polyodds/internal/models"
)

var svgTemplate = template.Must(
	template.New("chart.svg.tmpl").
		Funcs(template.FuncMap{"xml": html.EscapeString}).
		ParseFS(templateFS, "templates/chart.svg.tmpl"),
)

type svgData struct {
	frame
	Points string
}

// WriteSVG writes a static line chart of samples to path. Nothing is written
// when samples is empty.
func WriteSVG(path string, samples []models.PriceSample, title string) (err error) {
	if len(samples) == 0 {
		return nil
	}

	g := newGeometry(samples)
	points := make([]string, len(samples))
	for i, s := range samples {
		points[i] = fmt.Sprintf("%.2f,%.2f", g.x(s.Timestamp), g.y(s.Price))
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

	data := svgData{frame: newFrame(title), Points: strings.Join(points, " ")}
	if err := svgTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render SVG: %w", err)
	}
	return nil
}
