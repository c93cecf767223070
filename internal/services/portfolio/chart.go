package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/coindeck/coindeck/internal/models"
)

// assetPalette assigns each asset a stable color keyed off its symbol, so the
// same coin renders the same color across charts.
var assetPalette = []string{
	"3b82f6", // blue
	"10b981", // green
	"f59e0b", // amber
	"ef4444", // red
	"8b5cf6", // violet
	"ec4899", // pink
	"14b8a6", // teal
	"f97316", // orange
	"6366f1", // indigo
	"84cc16", // lime
}

func assetColor(symbol string) drawing.Color {
	sum := 0
	for _, c := range symbol {
		sum += int(c)
	}
	return drawing.ColorFromHex(assetPalette[sum%len(assetPalette)])
}

// RenderAllocationChart renders the portfolio allocation donut as PNG bytes.
// Zero-value assets are left out: a slice of zero width renders as noise.
func RenderAllocationChart(snapshot *models.PortfolioSnapshot) ([]byte, error) {
	if snapshot == nil || len(snapshot.Assets) == 0 {
		return nil, fmt.Errorf("no assets to chart")
	}

	var values []chart.Value
	for _, a := range snapshot.Assets {
		if a.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: a.Value,
			Label: fmt.Sprintf("%s %.1f%%", a.Symbol, a.Allocation),
			Style: chart.Style{
				FillColor: assetColor(a.Symbol),
			},
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no assets with value to chart")
	}

	graph := chart.DonutChart{
		Title:  "Portfolio Allocation",
		Width:  600,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
