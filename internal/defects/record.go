// Package defects imports manufacturing-defect records from CSV and XLSX files.
package defects

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingHeaders is wrapped by imports whose header row lacks required columns.
	ErrMissingHeaders = errors.New("missing required headers")
	// ErrNoRecords is returned when a file holds no parseable data rows.
	ErrNoRecords = errors.New("no defect records could be parsed")
)

// Record is one observed defect. Records are never modified after import.
type Record struct {
	ID               string  `json:"id"`
	DefectType       string  `json:"defect_type"`
	Severity         string  `json:"severity"`
	DefectLocation   string  `json:"defect_location"`
	InspectionMethod string  `json:"inspection_method"`
	RepairCost       float64 `json:"repair_cost"`
}

// RowError describes a data row that was skipped. Row counts the header as
// row 1, so the first data row is 2.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Reason) }

// Dataset is the result of an import.
type Dataset struct {
	Name      string     `json:"name"`
	Records   []Record   `json:"records"`
	RowErrors []RowError `json:"rowErrors,omitempty"`
}

// Costs returns the repair cost column.
func (d *Dataset) Costs() []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.RepairCost
	}
	return out
}

// Column returns one categorical column by field.
func (d *Dataset) Column(f Field) []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Value(f)
	}
	return out
}

// Warnings summarizes skipped rows in a single line, or nil when every row parsed.
func (d *Dataset) Warnings() []string {
	if len(d.RowErrors) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("parsed %d records, %d rows skipped; first: %s",
		len(d.Records), len(d.RowErrors), d.RowErrors[0].Error())}
}

// Field names a categorical column of a Record.
type Field int

const (
	FieldDefectType Field = iota
	FieldSeverity
	FieldLocation
	FieldInspectionMethod
)

// CategoricalFields lists the categorical columns in report order.
var CategoricalFields = []Field{FieldDefectType, FieldSeverity, FieldLocation, FieldInspectionMethod}

func (f Field) String() string {
	switch f {
	case FieldDefectType:
		return "Defect Type"
	case FieldSeverity:
		return "Severity"
	case FieldLocation:
		return "Location"
	case FieldInspectionMethod:
		return "Inspection Method"
	}
	return "unknown"
}

// Key is a stable snake_case identifier, used for JSON keys.
func (f Field) Key() string {
	return strings.ReplaceAll(strings.ToLower(f.String()), " ", "_")
}

// Value returns the record's value for a categorical field.
func (r Record) Value(f Field) string {
	switch f {
	case FieldDefectType:
		return r.DefectType
	case FieldSeverity:
		return r.Severity
	case FieldLocation:
		return r.DefectLocation
	case FieldInspectionMethod:
		return r.InspectionMethod
	}
	return ""
}

// ParseField resolves a field by key ("defect_type") or display name
// ("Defect Type"), case-insensitively. "type" and "method" are accepted
// as short forms.
func ParseField(s string) (Field, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "type":
		return FieldDefectType, nil
	case "method":
		return FieldInspectionMethod, nil
	}
	for _, f := range CategoricalFields {
		if norm == f.Key() || norm == strings.ToLower(f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q (use defect_type, severity, location or inspection_method)", s)
}
