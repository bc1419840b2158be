// Package charts renders valuation history charts for the report.
package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"AllocAdvisor/internal/model"
)

// Renderer writes PNG charts into a working directory.
type Renderer struct {
	Dir string
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir}
}

// ValuationHistory plots the valuation series with a horizontal marker at
// the current value and returns the path of the written PNG.
func (r *Renderer) ValuationHistory(series model.ValuationSeries, percentile float64) (string, error) {
	if series.Len() == 0 {
		return "", fmt.Errorf("series %s has no observations", series.Code)
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s valuation (percentile %.1f)", series.Code, series.Name, percentile)
	p.X.Label.Text = "date"
	p.Y.Label.Text = "pe"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}

	pts := make(plotter.XYs, series.Len())
	for i, obs := range series.Observations {
		pts[i].X = float64(obs.Date.Unix())
		pts[i].Y = obs.Valuation
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", fmt.Errorf("build valuation line: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)

	current, _ := series.Latest()
	marker, err := plotter.NewLine(plotter.XYs{
		{X: pts[0].X, Y: current.Valuation},
		{X: pts[len(pts)-1].X, Y: current.Valuation},
	})
	if err != nil {
		return "", fmt.Errorf("build marker line: %w", err)
	}
	marker.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	marker.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(marker)
	p.Legend.Add("pe", line)
	p.Legend.Add("current", marker)
	p.Legend.Top = true

	path := filepath.Join(r.Dir, fmt.Sprintf("%s_valuation.png", series.Code))
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}
