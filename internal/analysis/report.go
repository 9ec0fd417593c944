package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/defectlens-cli/internal/defects"
	"github.com/KaramelBytes/defectlens-cli/internal/stats"
	"gonum.org/v1/gonum/floats"
)

// Options controls report contents.
type Options struct {
	// Bins is the histogram bin count; 0 means stats.DefaultBins.
	Bins int
	// TopN limits each categorical view; 0 keeps every category.
	TopN int
	// SampleRows determines how many example records to include in the report.
	SampleRows int
	// GroupBy computes per-category repair cost summaries for these fields.
	GroupBy []defects.Field
}

// DefaultOptions returns reasonable defaults for defect analysis.
func DefaultOptions() Options {
	return Options{
		Bins:       stats.DefaultBins,
		TopN:       8,
		SampleRows: 5,
		GroupBy:    []defects.Field{defects.FieldDefectType, defects.FieldSeverity},
	}
}

// Report is the descriptive analysis of one defect dataset.
type Report struct {
	Name          string                `json:"name"`
	Records       int                   `json:"records"`
	TotalCost     float64               `json:"totalCost"`
	Cost          *stats.NumericalStats `json:"cost"`
	Histogram     []stats.HistogramBin  `json:"histogram"`
	Distributions []Distribution        `json:"distributions"`
	Groups        []GroupResult         `json:"groups,omitempty"`
	Samples       []defects.Record      `json:"samples,omitempty"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// Distribution is the frequency distribution of one categorical column.
type Distribution struct {
	Field  string                `json:"field"`
	Key    string                `json:"key"`
	Counts map[string]int        `json:"counts"`
	Top    []stats.CategoryCount `json:"top"`
	Unique int                   `json:"unique"`
	Mode   stats.Mode            `json:"mode"`
}

// GroupResult summarizes repair costs for one category value.
type GroupResult struct {
	Field string  `json:"field"`
	Key   string  `json:"key"`
	Size  int     `json:"size"`
	Total float64 `json:"total"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Analyze computes the report for ds. It never fails: an empty dataset
// yields a report with a nil Cost and empty distributions.
func Analyze(ds *defects.Dataset, opt Options) *Report {
	rep := &Report{Name: ds.Name, Records: len(ds.Records), Warnings: ds.Warnings()}
	costs := ds.Costs()
	rep.Cost, _ = stats.Describe(costs)
	rep.TotalCost = floats.Sum(costs)
	rep.Histogram = stats.Histogram(costs, opt.Bins)

	for _, f := range defects.CategoricalFields {
		col := ds.Column(f)
		dist := stats.FrequencyDistribution(col)
		rep.Distributions = append(rep.Distributions, Distribution{
			Field:  f.String(),
			Key:    f.Key(),
			Counts: dist,
			Top:    stats.TopCategories(dist, opt.TopN),
			Unique: len(dist),
			Mode:   stats.ModeOfStrings(col),
		})
	}
	for _, f := range opt.GroupBy {
		rep.Groups = append(rep.Groups, groupCosts(ds, f)...)
	}
	if n := min(opt.SampleRows, len(ds.Records)); n > 0 {
		rep.Samples = append([]defects.Record(nil), ds.Records[:n]...)
	}
	return rep
}

func groupCosts(ds *defects.Dataset, f defects.Field) []GroupResult {
	byKey := map[string][]float64{}
	for _, r := range ds.Records {
		k := r.Value(f)
		byKey[k] = append(byKey[k], r.RepairCost)
	}
	out := make([]GroupResult, 0, len(byKey))
	for k, costs := range byKey {
		mm := stats.MinMaxRange(costs)
		mean := stats.Mean(costs)
		out = append(out, GroupResult{
			Field: f.String(), Key: k, Size: len(costs),
			Total: floats.Sum(costs), Mean: mean, Min: mm.Min, Max: mm.Max,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Key < out[j].Key
		}
		return out[i].Total > out[j].Total
	})
	return out
}

// Distribution returns the distribution for a field key, or nil.
func (r *Report) Distribution(key string) *Distribution {
	for i := range r.Distributions {
		if r.Distributions[i].Key == key {
			return &r.Distributions[i]
		}
	}
	return nil
}

// Markdown renders a compact report suitable for prompts or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Records: %d\n", r.Records))
	b.WriteString(fmt.Sprintf("Total repair cost: %.2f\n\n", r.TotalCost))

	b.WriteString("[REPAIR COST]\n")
	if c := r.Cost; c != nil {
		b.WriteString(fmt.Sprintf("- mean %.2f, median %.2f, mode %s\n", c.Mean, c.Median, c.Mode))
		b.WriteString(fmt.Sprintf("- std dev %.2f, variance %.2f\n", c.StdDev, c.Variance))
		b.WriteString(fmt.Sprintf("- min %.2f, max %.2f, range %.2f\n", c.Min, c.Max, c.Range))
		b.WriteString(fmt.Sprintf("- q1 %.2f, q3 %.2f, iqr %.2f\n", c.Q1, c.Q3, c.IQR))
	} else {
		b.WriteString("- no repair cost data\n")
	}

	if len(r.Histogram) > 0 {
		b.WriteString("\n[HISTOGRAM]\n")
		for _, bin := range r.Histogram {
			b.WriteString(fmt.Sprintf("- %s: %d\n", bin.Label, bin.Count))
		}
	}

	for _, d := range r.Distributions {
		b.WriteString(fmt.Sprintf("\n[%s]\n", strings.ToUpper(d.Field)))
		if len(d.Top) == 0 {
			b.WriteString("- (none)\n")
			continue
		}
		for _, kv := range d.Top {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(safeName(kv.Value)), kv.Count))
		}
		if d.Unique > len(d.Top) {
			b.WriteString(fmt.Sprintf("- … %d more (unique=%d)\n", d.Unique-len(d.Top), d.Unique))
		}
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[COST BY CATEGORY]\n")
		field := ""
		for _, g := range r.Groups {
			if g.Field != field {
				field = g.Field
				b.WriteString(fmt.Sprintf("- %s\n", field))
			}
			b.WriteString(fmt.Sprintf("  • %s (n=%d): total %.2f, mean %.2f (min %.2f, max %.2f)\n",
				safeVal(safeName(g.Key)), g.Size, g.Total, g.Mean, g.Min, g.Max))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE RECORDS]\n")
		b.WriteString("| ID | Defect Type | Severity | Location | Inspection Method | Repair Cost |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Samples {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %.2f |\n", s.ID,
				safeVal(s.DefectType), safeVal(s.Severity), safeVal(s.DefectLocation),
				safeVal(s.InspectionMethod), s.RepairCost))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(blank)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
