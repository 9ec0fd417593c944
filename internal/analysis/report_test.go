package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/defectlens-cli/internal/defects"
	"github.com/KaramelBytes/defectlens-cli/internal/stats"
)

func fixture() *defects.Dataset {
	return &defects.Dataset{
		Name: "line-a.csv",
		Records: []defects.Record{
			{ID: "record_0", DefectType: "Crack", Severity: "High", DefectLocation: "Weld Seam", InspectionMethod: "Visual", RepairCost: 100},
			{ID: "record_1", DefectType: "Dent", Severity: "Low", DefectLocation: "Panel", InspectionMethod: "Manual", RepairCost: 200},
			{ID: "record_2", DefectType: "Crack", Severity: "High", DefectLocation: "Bracket", InspectionMethod: "X-Ray", RepairCost: 300},
			{ID: "record_3", DefectType: "Scratch", Severity: "Low", DefectLocation: "Panel", InspectionMethod: "Visual", RepairCost: 400},
		},
		RowErrors: []defects.RowError{{Row: 6, Reason: "invalid repair cost value 'x'"}},
	}
}

func TestAnalyzeAndMarkdown(t *testing.T) {
	rep := Analyze(fixture(), DefaultOptions())
	if rep.Records != 4 || rep.TotalCost != 1000 {
		t.Fatalf("records=%d total=%v", rep.Records, rep.TotalCost)
	}
	if rep.Cost == nil || rep.Cost.Mean != 250 || rep.Cost.Q1 != 175 {
		t.Fatalf("unexpected cost stats: %+v", rep.Cost)
	}
	if rep.Cost.Mode.Kind != stats.NoMode {
		t.Fatalf("all-distinct costs should have no mode, got %s", rep.Cost.Mode)
	}
	types := rep.Distribution("defect_type")
	if types == nil || types.Counts["Crack"] != 2 || types.Unique != 3 {
		t.Fatalf("unexpected defect type distribution: %+v", types)
	}
	if types.Top[0].Value != "Crack" {
		t.Fatalf("top category = %+v", types.Top[0])
	}
	if v, ok := types.Mode.Single(); !ok || v.Str != "Crack" {
		t.Fatalf("defect type mode = %s", types.Mode)
	}
	if len(rep.Histogram) != stats.DefaultBins {
		t.Fatalf("histogram bins = %d", len(rep.Histogram))
	}
	if rep.Groups[0].Key != "Crack" && rep.Groups[0].Key != "Scratch" {
		t.Fatalf("groups not ordered by total: %+v", rep.Groups)
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: line-a.csv",
		"Records: 4",
		"[REPAIR COST]",
		"mean 250.00, median 250.00, mode N/A",
		"[HISTOGRAM]",
		"[DEFECT TYPE]",
		"- Crack: 2",
		"[INSPECTION METHOD]",
		"[COST BY CATEGORY]",
		"Crack (n=2): total 400.00",
		"[SAMPLE RECORDS]",
		"[NOTES]",
		"1 rows skipped",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestAnalyzeEmptyDataset(t *testing.T) {
	rep := Analyze(&defects.Dataset{Name: "empty.csv"}, DefaultOptions())
	if rep.Cost != nil || len(rep.Histogram) != 0 {
		t.Fatalf("empty dataset should have no cost stats: %+v", rep)
	}
	if !strings.Contains(rep.Markdown(), "no repair cost data") {
		t.Fatalf("markdown should note missing cost data")
	}
}

func TestTopNLimitsCategories(t *testing.T) {
	opt := DefaultOptions()
	opt.TopN = 1
	rep := Analyze(fixture(), opt)
	d := rep.Distribution("defect_type")
	if len(d.Top) != 1 || len(d.Counts) != 3 {
		t.Fatalf("top=%v counts=%v", d.Top, d.Counts)
	}
	if !strings.Contains(rep.Markdown(), "2 more (unique=3)") {
		t.Fatalf("markdown should mention hidden categories")
	}
}

func TestSummaryLanguages(t *testing.T) {
	rep := Analyze(fixture(), DefaultOptions())
	en := rep.Summary(LangEnglish)
	for _, want := range []string{
		"Analysis of 4 defect records:",
		"mean $250.00, median $250.00",
		"Range from $100.00 to $400.00",
		"3 unique defect types",
		"2 unique severity levels",
	} {
		if !strings.Contains(en, want) {
			t.Errorf("summary missing %q:\n%s", want, en)
		}
	}
	es := rep.Summary("ES")
	if !strings.Contains(es, "Análisis de 4 registros de defectos:") || !strings.Contains(es, "Media $250.00") {
		t.Fatalf("spanish summary: %s", es)
	}
	if got := rep.Summary("fr"); got != en {
		t.Fatalf("unknown language should fall back to english")
	}
	empty := Analyze(&defects.Dataset{}, DefaultOptions()).Summary(LangEnglish)
	if !strings.HasPrefix(empty, "No data loaded yet") {
		t.Fatalf("empty summary: %s", empty)
	}
}

func TestCacheMemoizesByContent(t *testing.T) {
	c := NewCache(time.Minute, 8)
	ds := fixture()
	a := c.Analyze(ds, DefaultOptions())
	b := c.Analyze(fixture(), DefaultOptions())
	if a != b {
		t.Fatalf("identical content should hit the cache")
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}

	changed := fixture()
	changed.Records[0].RepairCost = 101
	if c.Analyze(changed, DefaultOptions()) == a {
		t.Fatalf("changed content must miss the cache")
	}
	opt := DefaultOptions()
	opt.Bins = 3
	if c.Analyze(ds, opt) == a {
		t.Fatalf("changed options must miss the cache")
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d", c.Len())
	}

	var nilCache *Cache
	if nilCache.Analyze(ds, DefaultOptions()) == nil {
		t.Fatalf("nil cache should still analyze")
	}
}

func TestFingerprintIsStable(t *testing.T) {
	if Fingerprint(fixture(), DefaultOptions()) != Fingerprint(fixture(), DefaultOptions()) {
		t.Fatalf("fingerprint should be deterministic")
	}
}
