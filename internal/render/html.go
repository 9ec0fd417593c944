package render

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/defectlens-cli/internal/analysis"
	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
)

const pageCSS = `<style>
body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem;color:#222}
table{border-collapse:collapse;margin:1rem 0}
th,td{border:1px solid #ccc;padding:.3rem .6rem}
th{background:#f3f3f3}
</style>
`

// ReportDocument renders a report as a Markdown document with headings and
// pipe tables.
func ReportDocument(rep *analysis.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Defect Analysis: %s\n\n", rep.Name))
	b.WriteString(fmt.Sprintf("%d records, total repair cost %.2f.\n\n", rep.Records, rep.TotalCost))
	b.WriteString("## Repair Cost\n\n")
	b.WriteString(CostTable(rep, Markdown))
	if len(rep.Histogram) > 0 {
		b.WriteString("\n\n## Histogram\n\n")
		b.WriteString(HistogramTable(rep, Markdown))
	}
	for _, d := range rep.Distributions {
		b.WriteString(fmt.Sprintf("\n\n## %s\n\n", d.Field))
		b.WriteString(DistributionTable(d, rep.Records, Markdown))
	}
	if len(rep.Groups) > 0 {
		b.WriteString("\n\n## Cost by Category\n\n")
		b.WriteString(GroupTable(rep, Markdown))
	}
	if len(rep.Warnings) > 0 {
		b.WriteString("\n\n## Notes\n\n")
		for _, w := range rep.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// SimulationDocument renders simulation results as a Markdown document.
func SimulationDocument(name string, results []montecarlo.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Repair Cost Simulation: %s\n\n", name))
	b.WriteString(SimulationTable(results, Markdown))
	b.WriteString("\n")
	return b.String()
}

// HTML converts a Markdown document into a standalone HTML page.
func HTML(title, md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Title: title,
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage,
		Head:  []byte(pageCSS),
	})
	return markdown.ToHTML([]byte(md), p, r)
}
