package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/defectlens-cli/internal/analysis"
	"github.com/KaramelBytes/defectlens-cli/internal/defects"
	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
	"github.com/KaramelBytes/defectlens-cli/internal/stats"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleReport() *analysis.Report {
	ds := &defects.Dataset{Name: "sample.csv", Records: []defects.Record{
		{ID: "record_0", DefectType: "Crack", Severity: "High", DefectLocation: "Seam", InspectionMethod: "Visual", RepairCost: 120},
		{ID: "record_1", DefectType: "Dent", Severity: "Low", DefectLocation: "Panel", InspectionMethod: "Manual", RepairCost: 40},
		{ID: "record_2", DefectType: "Crack", Severity: "Medium", DefectLocation: "Seam", InspectionMethod: "X-Ray", RepairCost: 95.5},
	}}
	return analysis.Analyze(ds, analysis.DefaultOptions())
}

func sampleResults(t *testing.T) []montecarlo.Result {
	t.Helper()
	sim, err := montecarlo.New(montecarlo.Config{Simulations: 200, Seed: 4})
	require.NoError(t, err)
	res, err := sim.Run(context.Background(), []float64{120, 40, 95.5}, nil)
	require.NoError(t, err)
	return res
}

func TestReportTables(t *testing.T) {
	out := ReportTables(sampleReport(), Text)
	for _, want := range []string{"Repair Cost", "Mean", "85.17", "Defect Type", "Crack", "66.7%", "Cost by Category"} {
		assert.Contains(t, out, want)
	}
	md := ReportTables(sampleReport(), Markdown)
	assert.Contains(t, strings.ToLower(md), "| statistic | value |")
	assert.NotContains(t, md, "# Repair Cost")
}

func TestCostTableWithoutData(t *testing.T) {
	rep := analysis.Analyze(&defects.Dataset{}, analysis.DefaultOptions())
	out := CostTable(rep, Text)
	assert.Contains(t, out, "Records")
	assert.NotContains(t, out, "Mean")
}

func TestSimulationTable(t *testing.T) {
	out := SimulationTable(sampleResults(t), Text)
	assert.Contains(t, out, "0% Reduction")
	assert.Contains(t, out, "30% Reduction")
	assert.Contains(t, strings.ToLower(out), "expected savings")
	// the baseline row has no savings figure
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "0% Reduction") && !strings.Contains(line, "10%") &&
			!strings.Contains(line, "20%") && !strings.Contains(line, "30%") {
			assert.Contains(t, line, " - ")
		}
	}
}

func TestHistogramPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HistogramPNG(&buf, sampleReport().Histogram))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	require.NoError(t, HistogramPNG(&buf, stats.Histogram([]float64{5, 5}, 10)), "single bin must still render")

	assert.ErrorIs(t, HistogramPNG(&buf, nil), ErrNothingToChart)
}

func TestScenarioPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ScenarioPNG(&buf, sampleResults(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestHTMLDocuments(t *testing.T) {
	page := string(HTML("Defects", ReportDocument(sampleReport())))
	assert.Contains(t, page, "<title>Defects</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "Defect Analysis: sample.csv")

	sim := SimulationDocument("sample.csv", sampleResults(t))
	assert.Contains(t, sim, "# Repair Cost Simulation: sample.csv")
	assert.Contains(t, strings.ToLower(sim), "| scenario |")
}
