package defects

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Options controls how a file is read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension (tab for .tsv).
	Delimiter rune
	// DecimalSeparator for cost values. If 0, auto-detect per value.
	DecimalSeparator rune
	// Sheet selects an XLSX sheet by name; SheetIndex by 1-based position.
	Sheet      string
	SheetIndex int
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// headerSpec lists the accepted spellings of each required column, preferred
// name first. Matching is case-insensitive on trimmed header cells.
var headerSpec = []struct {
	name    string
	aliases []string
}{
	{"Defect Type", []string{"defect_type"}},
	{"Severity", []string{"severity"}},
	{"Location", []string{"defect_location"}},
	{"Inspection Method", []string{"inspection_method"}},
	{"Repair Cost ($)", []string{"repair_cost", "repair cost"}},
}

const (
	colType = iota
	colSeverity
	colLocation
	colMethod
	colCost
)

// columnMap resolves the required columns against a header row.
func columnMap(header []string) ([]int, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
	}
	find := func(name string) int {
		for i, h := range norm {
			if h == strings.ToLower(name) {
				return i
			}
		}
		return -1
	}
	idx := make([]int, len(headerSpec))
	var missing []string
	for k, spec := range headerSpec {
		i := find(spec.name)
		for _, alt := range spec.aliases {
			if i >= 0 {
				break
			}
			i = find(alt)
		}
		if i < 0 {
			missing = append(missing, spec.name)
		}
		idx[k] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}
	return idx, nil
}

// rowBuilder turns raw rows into records, collecting per-row failures.
type rowBuilder struct {
	cols   []int
	ncol   int
	opt    Options
	strict bool // rows must have exactly ncol cells
	ds     *Dataset
	seen   int
}

func (b *rowBuilder) add(row []string) {
	rowNum := b.seen + 2
	id := fmt.Sprintf("record_%d", b.seen)
	b.seen++
	if b.strict && len(row) != b.ncol {
		b.fail(rowNum, fmt.Sprintf("incorrect number of columns: expected %d, got %d", b.ncol, len(row)))
		return
	}
	if len(row) < b.ncol {
		tmp := make([]string, b.ncol)
		copy(tmp, row)
		row = tmp
	}
	raw := strings.TrimSpace(row[b.cols[colCost]])
	cost, ok := parseCost(raw, b.opt)
	if !ok {
		b.fail(rowNum, fmt.Sprintf("invalid repair cost value '%s'", raw))
		return
	}
	if cost < 0 {
		b.fail(rowNum, fmt.Sprintf("negative repair cost value '%s'", raw))
		return
	}
	b.ds.Records = append(b.ds.Records, Record{
		ID:               id,
		DefectType:       strings.TrimSpace(row[b.cols[colType]]),
		Severity:         strings.TrimSpace(row[b.cols[colSeverity]]),
		DefectLocation:   strings.TrimSpace(row[b.cols[colLocation]]),
		InspectionMethod: strings.TrimSpace(row[b.cols[colMethod]]),
		RepairCost:       cost,
	})
}

func (b *rowBuilder) fail(row int, reason string) {
	b.ds.RowErrors = append(b.ds.RowErrors, RowError{Row: row, Reason: reason})
}

func (b *rowBuilder) full() bool { return b.opt.MaxRows > 0 && b.seen >= b.opt.MaxRows }

func (b *rowBuilder) finish() (*Dataset, error) {
	if len(b.ds.Records) == 0 {
		if len(b.ds.RowErrors) > 0 {
			return nil, fmt.Errorf("%w: first error: %s", ErrNoRecords, b.ds.RowErrors[0].Error())
		}
		return nil, fmt.Errorf("%w: file needs a header and at least one data row", ErrNoRecords)
	}
	return b.ds, nil
}

var currencySymbols = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "")

// parseCost reads a currency amount. Separators are auto-detected per value
// unless opt.DecimalSeparator is set; a lone comma followed by exactly three
// digits is read as a thousands separator.
func parseCost(s string, opt Options) (float64, bool) {
	raw := currencySymbols.Replace(strings.TrimSpace(s))
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	var thou rune
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0 && len(raw)-cpos-1 == 3:
			// "1,250" is a thousands group, "12,5" a decimal comma
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
