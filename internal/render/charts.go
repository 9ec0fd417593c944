package render

import (
	"errors"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
	"github.com/KaramelBytes/defectlens-cli/internal/stats"
)

// ErrNothingToChart is returned for empty chart input.
var ErrNothingToChart = errors.New("nothing to chart")

var (
	barColor     = drawing.ColorFromHex("4C72B0")
	savingsColor = drawing.ColorFromHex("55A868")
)

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

// yRange pins the y axis at zero so single-bar and equal-height charts
// still have a non-empty range.
func yRange(bars []chart.Value) *chart.ContinuousRange {
	hi := 0.0
	for _, b := range bars {
		hi = max(hi, b.Value)
	}
	if hi <= 0 {
		hi = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: hi * 1.1}
}

func renderBars(w io.Writer, title string, bars []chart.Value, format chart.ValueFormatter) error {
	if len(bars) == 0 {
		return ErrNothingToChart
	}
	width := max(640, 90*len(bars))
	bc := chart.BarChart{
		Title:        title,
		Width:        width,
		Height:       480,
		BarWidth:     max(20, (width-160)/len(bars)-12),
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		XAxis:        chart.Shown(),
		YAxis: chart.YAxis{
			Style:          chart.Shown(),
			Range:          yRange(bars),
			ValueFormatter: format,
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// HistogramPNG draws the repair cost histogram.
func HistogramPNG(w io.Writer, bins []stats.HistogramBin) error {
	bars := make([]chart.Value, 0, len(bins))
	for _, b := range bins {
		bars = append(bars, chart.Value{Label: b.Label, Value: float64(b.Count), Style: barStyle(barColor)})
	}
	return renderBars(w, "Repair Cost Distribution", bars, func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.0f", f)
		}
		return ""
	})
}

// ScenarioPNG draws mean simulated cost per scenario. Scenarios with
// expected savings are drawn in a second color.
func ScenarioPNG(w io.Writer, results []montecarlo.Result) error {
	bars := make([]chart.Value, 0, len(results))
	for _, r := range results {
		c := barColor
		if r.ExpectedSavings != nil && *r.ExpectedSavings > 0 {
			c = savingsColor
		}
		bars = append(bars, chart.Value{Label: r.Scenario, Value: r.MeanCost, Style: barStyle(c)})
	}
	return renderBars(w, "Mean Simulated Repair Cost", bars, func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("$%.0f", f)
		}
		return ""
	})
}
