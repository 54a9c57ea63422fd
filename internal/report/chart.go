package report

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// renderBarChart draws the series as an SVG bar chart.
func renderBarChart(w io.Writer, title string, points []Point) error {
	bars := make([]chart.Value, 0, len(points))
	for i, p := range points {
		label := p.Label
		// thin out the x labels on dense series so they stay readable
		if len(points) > 16 && i%2 == 1 {
			label = ""
		}
		bars = append(bars, chart.Value{Label: label, Value: float64(p.Value)})
	}

	graph := chart.BarChart{
		Title:    title,
		Height:   512,
		BarWidth: 26,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxValue(points))},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("drawing %q: %w", title, err)
	}
	return nil
}
