package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/defectlens-cli/internal/analysis"
	"github.com/KaramelBytes/defectlens-cli/internal/defects"
	"github.com/KaramelBytes/defectlens-cli/internal/render"
)

var (
	anaImport     importFlags
	anaOutputPath string
	anaFormat     string
	anaChartPath  string
	anaSampleRows int
	anaBins       int
	anaTop        int
	anaGroupBy    []string
	anaSummary    bool
	anaLang       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Descriptive statistics of repair costs and defect categories",
	Example: `  defectlens analyze defects.csv
  defectlens analyze line-b.xlsx --sheet-name "Line B" --format markdown -o report.md
  defectlens analyze defects.csv --format html -o report.html --chart costs.png
  defectlens analyze defects.csv --summary --lang es`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := analysisOptions(cmd)
		if err != nil {
			return err
		}
		ds, err := anaImport.load(args[0])
		if err != nil {
			return err
		}
		rep := analysis.Analyze(ds, opt)

		if anaChartPath != "" {
			if err := writeChart(anaChartPath, func(w io.Writer) error { return render.HistogramPNG(w, rep.Histogram) }); err != nil {
				return err
			}
		}
		if anaSummary {
			return writeOutput(anaOutputPath, []byte(rep.Summary(summaryLang(anaLang))+"\n"), "summary")
		}
		out, err := formatReport(rep, anaFormat)
		if err != nil {
			return err
		}
		return writeOutput(anaOutputPath, out, "analysis")
	},
}

func analysisOptions(cmd *cobra.Command) (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	if cfg != nil {
		if cfg.HistogramBins > 0 {
			opt.Bins = cfg.HistogramBins
		}
		if cfg.TopCategories > 0 {
			opt.TopN = cfg.TopCategories
		}
	}
	if cmd.Flags().Changed("bins") {
		if anaBins < 1 {
			return opt, fmt.Errorf("--bins must be at least 1")
		}
		opt.Bins = anaBins
	}
	if cmd.Flags().Changed("top") {
		opt.TopN = anaTop
	}
	if cmd.Flags().Changed("sample-rows") {
		opt.SampleRows = anaSampleRows
	}
	if len(anaGroupBy) > 0 {
		opt.GroupBy = nil
		for _, g := range anaGroupBy {
			if strings.EqualFold(g, "none") {
				opt.GroupBy = nil
				break
			}
			f, err := defects.ParseField(g)
			if err != nil {
				return opt, fmt.Errorf("--group-by: %w", err)
			}
			opt.GroupBy = append(opt.GroupBy, f)
		}
	}
	return opt, nil
}

func formatReport(rep *analysis.Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return []byte(render.ReportTables(rep, render.Text)), nil
	case "markdown", "md":
		return []byte(render.ReportDocument(rep)), nil
	case "digest":
		return []byte(rep.Markdown()), nil
	case "json":
		return jsonOutput(rep)
	case "html":
		return render.HTML("Defect Analysis: "+rep.Name, render.ReportDocument(rep)), nil
	}
	return nil, fmt.Errorf("unsupported --format: %s (use text|markdown|digest|json|html)", format)
}

func summaryLang(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.Language != "" {
		return cfg.Language
	}
	return analysis.LangEnglish
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	f := analyzeCmd.Flags()
	anaImport.bind(f)
	f.StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	f.StringVarP(&anaFormat, "format", "f", "text", "output format: text|markdown|digest|json|html")
	f.StringVar(&anaChartPath, "chart", "", "write a repair cost histogram PNG to this path")
	f.IntVar(&anaSampleRows, "sample-rows", 5, "number of sample records to include")
	f.IntVar(&anaBins, "bins", 10, "histogram bin count")
	f.IntVar(&anaTop, "top", 8, "categories listed per field (0 = all)")
	f.StringSliceVar(&anaGroupBy, "group-by", nil, "fields to total repair cost by (default defect_type,severity; 'none' disables)")
	f.BoolVar(&anaSummary, "summary", false, "print the short plain-text summary used for AI suggestions")
	f.StringVar(&anaLang, "lang", "", "summary language: en|es (default from config)")
}
