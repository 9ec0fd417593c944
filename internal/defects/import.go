package defects

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Import reads a defect file, choosing the reader by extension.
func Import(path string, opt Options) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		return readWorkbook(f, filepath.Base(path), opt)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		if opt.Delimiter == 0 {
			opt.Delimiter = sniffDelimiter(path)
		}
		return ReadCSV(f, filepath.Base(path), opt)
	}
}

// ReadCSV parses CSV content. Rows whose cell count differs from the header
// or whose repair cost does not parse are skipped and reported on the dataset.
func ReadCSV(r io.Reader, name string, opt Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", ErrNoRecords)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnMap(header)
	if err != nil {
		return nil, err
	}
	b := &rowBuilder{cols: cols, ncol: len(header), opt: opt, strict: true, ds: &Dataset{Name: name}}
	for !b.full() {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				b.seen++
				b.fail(pe.StartLine, pe.Err.Error())
				continue
			}
			return nil, fmt.Errorf("read row %d: %w", b.seen+2, err)
		}
		b.add(rec)
	}
	return b.finish()
}

// ReadXLSX parses a workbook from r.
func ReadXLSX(r io.Reader, name string, opt Options) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, name, opt)
}

func readWorkbook(f *excelize.File, name string, opt Options) (*Dataset, error) {
	sheet, err := pickSheet(f, name, opt)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrNoRecords, sheet)
	}
	cols, err := columnMap(rows[0])
	if err != nil {
		return nil, err
	}
	// trailing empty cells are trimmed by the reader, so short rows are padded
	b := &rowBuilder{cols: cols, ncol: len(rows[0]), opt: opt, ds: &Dataset{Name: name}}
	for _, row := range rows[1:] {
		if b.full() {
			break
		}
		if blankRow(row) {
			b.seen++
			continue
		}
		b.add(row)
	}
	return b.finish()
}

func pickSheet(f *excelize.File, file string, opt Options) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook '%s' has no sheets", ErrNoRecords, file)
	}
	if opt.Sheet != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			opt.Sheet, file, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range: workbook '%s' has %d sheets", idx, file, len(sheets))
	}
	return sheets[idx-1], nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
