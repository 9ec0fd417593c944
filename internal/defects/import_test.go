package defects

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Defect Type,Severity,Location,Inspection Method,Repair Cost ($)
Crack,High,Weld Seam,Visual,250.50
Dent,Low,Panel,Manual,80
Scratch,Low,Panel,Visual,"$1,200.00"
Crack,Medium,Bracket,X-Ray,not-a-number
Porosity,High,Weld Seam
`

func TestReadCSVParsesRecordsAndReportsBadRows(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(sampleCSV), "defects.csv", Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(ds.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(ds.Records))
	}
	first := ds.Records[0]
	if first.ID != "record_0" || first.DefectType != "Crack" || first.DefectLocation != "Weld Seam" || first.RepairCost != 250.5 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if got := ds.Records[2].RepairCost; got != 1200 {
		t.Fatalf("currency cost parsed as %v, want 1200", got)
	}
	if ds.Records[2].ID != "record_2" {
		t.Fatalf("ids must follow row order, got %s", ds.Records[2].ID)
	}
	if len(ds.RowErrors) != 2 {
		t.Fatalf("row errors = %+v, want 2", ds.RowErrors)
	}
	if ds.RowErrors[0].Row != 5 || !strings.Contains(ds.RowErrors[0].Reason, "invalid repair cost value 'not-a-number'") {
		t.Fatalf("unexpected first row error: %+v", ds.RowErrors[0])
	}
	if ds.RowErrors[1].Row != 6 || !strings.Contains(ds.RowErrors[1].Reason, "expected 5, got 3") {
		t.Fatalf("unexpected second row error: %+v", ds.RowErrors[1])
	}
	if w := ds.Warnings(); len(w) != 1 || !strings.Contains(w[0], "parsed 3 records, 2 rows skipped") {
		t.Fatalf("warnings = %v", w)
	}
}

func TestReadCSVHeaderAliases(t *testing.T) {
	in := "defect_type,SEVERITY,defect_location,inspection_method,repair cost\nCrack,High,Seam,Visual,10\n"
	ds, err := ReadCSV(strings.NewReader(in), "alias.csv", Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(ds.Records) != 1 || ds.Records[0].Severity != "High" || ds.Records[0].RepairCost != 10 {
		t.Fatalf("unexpected records: %+v", ds.Records)
	}
}

func TestReadCSVMissingHeaders(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Defect Type,Severity\nCrack,High\n"), "x.csv", Options{})
	if !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("err = %v, want ErrMissingHeaders", err)
	}
	for _, name := range []string{"Location", "Inspection Method", "Repair Cost ($)"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %q", err, name)
		}
	}
}

func TestReadCSVNoRecords(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"header only": "Defect Type,Severity,Location,Inspection Method,Repair Cost ($)\n",
		"all bad":     "Defect Type,Severity,Location,Inspection Method,Repair Cost ($)\nCrack,High,Seam,Visual,abc\n",
	}
	for name, in := range cases {
		_, err := ReadCSV(strings.NewReader(in), "x.csv", Options{})
		if !errors.Is(err, ErrNoRecords) {
			t.Errorf("%s: err = %v, want ErrNoRecords", name, err)
		}
	}
}

func TestReadCSVRejectsNegativeCost(t *testing.T) {
	in := "Defect Type,Severity,Location,Inspection Method,Repair Cost ($)\nCrack,High,Seam,Visual,-5\nDent,Low,Panel,Manual,5\n"
	ds, err := ReadCSV(strings.NewReader(in), "x.csv", Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(ds.Records) != 1 || len(ds.RowErrors) != 1 || !strings.Contains(ds.RowErrors[0].Reason, "negative") {
		t.Fatalf("unexpected result: %+v", ds)
	}
}

func TestParseCostLocales(t *testing.T) {
	cases := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"12.5", Options{}, 12.5, true},
		{"12,5", Options{}, 12.5, true},
		{"1,250", Options{}, 1250, true},
		{"1.234,56", Options{}, 1234.56, true},
		{"1,234.56", Options{}, 1234.56, true},
		{"€ 99", Options{}, 99, true},
		{"1.234", Options{DecimalSeparator: ','}, 1234, true},
		{"NaN", Options{}, 0, false},
		{"", Options{}, 0, false},
		{"abc", Options{}, 0, false},
	}
	for _, c := range cases {
		got, ok := parseCost(c.in, c.opt)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseCost(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestImportDispatchesTSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "d.tsv")
	body := "Defect Type\tSeverity\tLocation\tInspection Method\tRepair Cost ($)\nCrack\tHigh\tSeam\tVisual\t42\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := Import(p, Options{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if ds.Name != "d.tsv" || len(ds.Records) != 1 || ds.Records[0].RepairCost != 42 {
		t.Fatalf("unexpected dataset: %+v", ds)
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Line B"); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"Defect Type", "Severity", "Location", "Inspection Method", "Repair Cost ($)"},
		{"Crack", "High", "Seam", "Visual", 300},
		{"Dent", "Low", "Panel", "Manual", 45.5},
		{},
		{"Burr", "Low", "Edge", "", "bad"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Line B", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SetSheetRow("Sheet1", "A1", &[]any{"unrelated"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestImportXLSXSheetSelection(t *testing.T) {
	p := filepath.Join(t.TempDir(), "defects.xlsx")
	writeWorkbook(t, p)

	ds, err := Import(p, Options{Sheet: "line b"})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(ds.Records) != 2 || ds.Records[1].RepairCost != 45.5 {
		t.Fatalf("unexpected records: %+v", ds.Records)
	}
	if len(ds.RowErrors) != 1 || ds.RowErrors[0].Row != 5 {
		t.Fatalf("unexpected row errors: %+v", ds.RowErrors)
	}

	if _, err := Import(p, Options{}); !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("first sheet should lack headers, got %v", err)
	}
	if _, err := Import(p, Options{Sheet: "nope"}); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("expected sheet-not-found error, got %v", err)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	ds2, err := ReadXLSX(bytes.NewReader(b), "defects.xlsx", Options{SheetIndex: 2})
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(ds2.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(ds2.Records))
	}
}

func TestDatasetColumns(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(sampleCSV), "d.csv", Options{MaxRows: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := ds.Costs(); len(got) != 2 || got[1] != 80 {
		t.Fatalf("costs = %v", got)
	}
	if got := ds.Column(FieldSeverity); strings.Join(got, ",") != "High,Low" {
		t.Fatalf("severity = %v", got)
	}
	if FieldInspectionMethod.Key() != "inspection_method" {
		t.Fatalf("key = %s", FieldInspectionMethod.Key())
	}
}

func TestParseField(t *testing.T) {
	cases := map[string]Field{
		"defect_type":       FieldDefectType,
		"Defect Type":       FieldDefectType,
		"type":              FieldDefectType,
		" SEVERITY ":        FieldSeverity,
		"location":          FieldLocation,
		"inspection_method": FieldInspectionMethod,
		"method":            FieldInspectionMethod,
	}
	for in, want := range cases {
		got, err := ParseField(in)
		if err != nil || got != want {
			t.Errorf("ParseField(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseField("cost"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
