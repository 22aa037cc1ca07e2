package portfolio

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/portfoliology/internal/models"
)

var chartBlue = drawing.ColorFromHex("4285f4")

// RenderConcentrationChart renders a PNG bar chart of concentration per
// position, largest first. Returns raw PNG bytes.
func RenderConcentrationChart(rows []models.Row) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("need at least 1 position")
	}

	sorted := make([]models.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ConcentrationPct.Or(0) > sorted[j].ConcentrationPct.Or(0)
	})

	bars := make([]chart.Value, len(sorted))
	for i, r := range sorted {
		bars[i] = chart.Value{
			Label: r.Symbol,
			Value: r.ConcentrationPct.Or(0),
			Style: chart.Style{FillColor: chartBlue, StrokeColor: chartBlue},
		}
	}

	graph := chart.BarChart{
		Title:  "Portfolio Concentration By Position",
		Width:  1200,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		BarWidth: 30,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// CumulativeConcentration returns the running total of concentration with
// positions taken smallest first, starting from zero positions.
func CumulativeConcentration(rows []models.Row) []float64 {
	conc := make([]float64, len(rows))
	for i, r := range rows {
		conc[i] = r.ConcentrationPct.Or(0)
	}
	sort.Float64s(conc)

	out := make([]float64, len(conc)+1)
	for i, c := range conc {
		out[i+1] = out[i] + c
	}
	return out
}

// RenderCumulativeConcentrationChart renders a PNG area chart of cumulative
// concentration against the number of positions.
func RenderCumulativeConcentrationChart(rows []models.Row) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("need at least 1 position")
	}

	yValues := CumulativeConcentration(rows)
	xValues := make([]float64, len(yValues))
	for i := range xValues {
		xValues[i] = float64(i)
	}

	graph := chart.Chart{
		Title:  "Cumulative Portfolio Concentration",
		Width:  1200,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  "Number of Positions",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(rows))},
		},
		YAxis: chart.YAxis{
			Name:  "% of Total Value",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "Concentration",
				Style: chart.Style{
					StrokeColor: chartBlue,
					StrokeWidth: 2,
					FillColor:   chartBlue.WithAlpha(96),
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
