package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/defectlens-cli/internal/defects"
	"github.com/KaramelBytes/defectlens-cli/internal/utils"
)

// importFlags are the file-reading flags shared by analyze, simulate and suggest.
type importFlags struct {
	delimiter  string
	decimal    string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (f *importFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (by extension if omitted)")
	fs.StringVar(&f.decimal, "decimal", "", "decimal separator for costs: '.'|'comma' (auto-detect if omitted)")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fs.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.IntVar(&f.maxRows, "max-rows", 0, "maximum data rows to read (0 = unlimited)")
}

func (f *importFlags) options() (defects.Options, error) {
	opt := defects.Options{
		Sheet:      f.sheetName,
		SheetIndex: f.sheetIndex,
		MaxRows:    f.maxRows,
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab", `\t`:
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	return opt, nil
}

// load imports path and reports skipped rows on stderr.
func (f *importFlags) load(path string) (*defects.Dataset, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	ds, err := defects.Import(path, opt)
	if err != nil {
		return nil, err
	}
	if len(ds.RowErrors) > 0 {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", strings.Join(ds.Warnings(), "; "))
		for _, re := range ds.RowErrors {
			logrus.WithFields(logrus.Fields{"file": ds.Name, "row": re.Row}).Debug(re.Reason)
		}
	}
	logrus.WithFields(logrus.Fields{"file": ds.Name, "records": len(ds.Records)}).Debug("dataset loaded")
	return ds, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte, what string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("✓ Wrote %s to %s\n", what, path)
	return nil
}

// jsonOutput pretty-prints v with a trailing newline.
func jsonOutput(v any) ([]byte, error) {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// writeChart renders a PNG through draw into path.
func writeChart(path string, draw func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := draw(f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart: %w", err)
	}
	fmt.Printf("✓ Wrote chart to %s\n", path)
	return nil
}
