// Package render formats analysis reports and simulation results as
// terminal tables, Markdown, HTML and PNG charts.
package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/defectlens-cli/internal/analysis"
	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
)

// Style selects how tables are emitted.
type Style int

const (
	// Text draws box tables for terminals.
	Text Style = iota
	// Markdown emits GitHub-flavored pipe tables.
	Markdown
)

// newTable titles text tables only; Markdown callers supply their own headings.
func newTable(title string, s Style) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if title != "" && s == Text {
		t.SetTitle("%s", title)
	}
	return t
}

func emit(t table.Writer, s Style) string {
	if s == Markdown {
		return t.RenderMarkdown()
	}
	return t.Render()
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

var rightAligned = []table.ColumnConfig{
	{Number: 2, Align: text.AlignRight},
	{Number: 3, Align: text.AlignRight},
	{Number: 4, Align: text.AlignRight},
	{Number: 5, Align: text.AlignRight},
	{Number: 6, Align: text.AlignRight},
	{Number: 7, Align: text.AlignRight},
}

// CostTable lists the repair cost statistics of a report.
func CostTable(rep *analysis.Report, s Style) string {
	t := newTable("Repair Cost", s)
	t.AppendHeader(table.Row{"Statistic", "Value"})
	t.SetColumnConfigs(rightAligned[:1])
	c := rep.Cost
	if c == nil {
		t.AppendRow(table.Row{"Records", 0})
		return emit(t, s)
	}
	t.AppendRows([]table.Row{
		{"Records", rep.Records},
		{"Total", money(rep.TotalCost)},
		{"Mean", money(c.Mean)},
		{"Median", money(c.Median)},
		{"Mode", c.Mode.String()},
		{"Std. Dev.", money(c.StdDev)},
		{"Variance", money(c.Variance)},
		{"Min", money(c.Min)},
		{"Max", money(c.Max)},
		{"Range", money(c.Range)},
		{"Q1", money(c.Q1)},
		{"Q3", money(c.Q3)},
		{"IQR", money(c.IQR)},
	})
	return emit(t, s)
}

// HistogramTable lists histogram bins with their counts.
func HistogramTable(rep *analysis.Report, s Style) string {
	t := newTable("Repair Cost Histogram", s)
	t.AppendHeader(table.Row{"Bin", "Count"})
	t.SetColumnConfigs(rightAligned[:1])
	for _, b := range rep.Histogram {
		t.AppendRow(table.Row{b.Label, b.Count})
	}
	return emit(t, s)
}

// DistributionTable lists the top categories of one distribution with shares.
func DistributionTable(d analysis.Distribution, records int, s Style) string {
	t := newTable(d.Field, s)
	t.AppendHeader(table.Row{"Value", "Count", "Share"})
	t.SetColumnConfigs(rightAligned[:2])
	for _, kv := range d.Top {
		share := 0.0
		if records > 0 {
			share = float64(kv.Count) * 100 / float64(records)
		}
		t.AppendRow(table.Row{kv.Value, kv.Count, fmt.Sprintf("%.1f%%", share)})
	}
	if d.Unique > len(d.Top) {
		t.AppendFooter(table.Row{fmt.Sprintf("%d more", d.Unique-len(d.Top)), "", ""})
	}
	return emit(t, s)
}

// GroupTable lists per-category repair cost totals.
func GroupTable(rep *analysis.Report, s Style) string {
	t := newTable("Cost by Category", s)
	t.AppendHeader(table.Row{"Field", "Value", "N", "Total", "Mean", "Min", "Max"})
	t.SetColumnConfigs(rightAligned[1:])
	field := ""
	for _, g := range rep.Groups {
		if field != "" && g.Field != field {
			t.AppendSeparator()
		}
		field = g.Field
		t.AppendRow(table.Row{g.Field, g.Key, g.Size, money(g.Total), money(g.Mean), money(g.Min), money(g.Max)})
	}
	return emit(t, s)
}

// ReportTables renders every section of a report.
func ReportTables(rep *analysis.Report, s Style) string {
	parts := []string{CostTable(rep, s)}
	if len(rep.Histogram) > 0 {
		parts = append(parts, HistogramTable(rep, s))
	}
	for _, d := range rep.Distributions {
		parts = append(parts, DistributionTable(d, rep.Records, s))
	}
	if len(rep.Groups) > 0 {
		parts = append(parts, GroupTable(rep, s))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// SimulationTable lists one row per simulated scenario.
func SimulationTable(results []montecarlo.Result, s Style) string {
	t := newTable("Monte Carlo Repair Cost Simulation", s)
	t.AppendHeader(table.Row{"Scenario", "Defects", "Mean", "Std. Dev.", "P5", "P50", "P95", "Expected Savings"})
	t.SetColumnConfigs(append(rightAligned, table.ColumnConfig{Number: 8, Align: text.AlignRight}))
	for _, r := range results {
		savings := "-"
		if r.ExpectedSavings != nil {
			savings = money(*r.ExpectedSavings)
		}
		t.AppendRow(table.Row{
			r.Scenario, r.SampleSize, money(r.MeanCost), money(r.StdDevCost),
			money(r.Percentiles.P5), money(r.Percentiles.P50), money(r.Percentiles.P95), savings,
		})
	}
	return emit(t, s)
}
