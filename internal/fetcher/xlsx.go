package fetcher

import (
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // rows above the header row
}

// Table is a sheet read into memory: one header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadXLSX reads a sheet of an XLSX workbook. The first row after SkipRows
// is the header; fully blank rows are dropped.
func ReadXLSX(path string, opts XLSXOptions) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || row == nil {
			continue
		}
		cells := rowToStrings(row)
		if blank(cells) {
			continue
		}
		if t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}

	if t.Header == nil {
		return nil, eris.Errorf("xlsx: sheet %q has no header row", sheet.Name)
	}
	return t, nil
}

// Decoder returns a csvutil decoder over the table so that sheets decode
// into the same tagged structs as CSV files.
func (t *Table) Decoder() (*csvutil.Decoder, error) {
	dec, err := csvutil.NewDecoder(&tableReader{t: t})
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: decode header")
	}
	return dec, nil
}

// tableReader feeds a Table to csvutil, padding or truncating rows to the
// header width since spreadsheet rows drop trailing empty cells.
type tableReader struct {
	t    *Table
	next int // 0 = header, n = Rows[n-1]
}

func (r *tableReader) Read() ([]string, error) {
	if r.next == 0 {
		r.next++
		return r.t.Header, nil
	}
	if r.next > len(r.t.Rows) {
		return nil, io.EOF
	}
	row := r.t.Rows[r.next-1]
	r.next++

	out := make([]string, len(r.t.Header))
	copy(out, row)
	return out, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = strings.TrimSpace(cell.String())
	}
	return cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
