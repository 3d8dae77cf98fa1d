// Package fetcher reads tabular inputs (CSV and XLSX) for the allocation commands.
package fetcher

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool // trim leading space of every field
}

// RecordReader reads CSV records padded or cut to the width of the header
// row, so that a short or long row decodes instead of failing the file.
type RecordReader struct {
	r      *csv.Reader
	width  int // -1 until the header is read
	ragged int
}

// NewRecordReader returns a RecordReader over r. A leading UTF-8 byte order
// mark (as written by spreadsheet exports) is stripped before the header is read.
func NewRecordReader(r io.Reader, opts CSVOptions) *RecordReader {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.TrimLeadingSpace = opts.TrimSpace
	reader.FieldsPerRecord = -1

	return &RecordReader{r: reader, width: -1}
}

// Read returns the next record. Rows after the header are padded with empty
// fields or truncated to the header width.
func (rr *RecordReader) Read() ([]string, error) {
	rec, err := rr.r.Read()
	if err != nil {
		return nil, err
	}
	if rr.width < 0 {
		rr.width = len(rec)
		return rec, nil
	}
	if len(rec) == rr.width {
		return rec, nil
	}

	rr.ragged++
	out := make([]string, rr.width)
	copy(out, rec)
	return out, nil
}

// Ragged returns the number of rows read so far whose width differed from
// the header's.
func (rr *RecordReader) Ragged() int { return rr.ragged }

// Decoder returns a csvutil decoder over the records.
func (rr *RecordReader) Decoder() (*csvutil.Decoder, error) {
	dec, err := csvutil.NewDecoder(rr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.New("csv: input has no header row")
		}
		return nil, eris.Wrap(err, "csv: read header")
	}
	return dec, nil
}

// NewCSVDecoder returns a csvutil decoder over r with ragged rows fitted to
// the header.
func NewCSVDecoder(r io.Reader, opts CSVOptions) (*csvutil.Decoder, error) {
	return NewRecordReader(r, opts).Decoder()
}

// OpenCSV opens the file at path and returns a decoder over it. The caller
// must close the returned closer once decoding is done.
func OpenCSV(path string, opts CSVOptions) (*csvutil.Decoder, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "csv: open %s", path)
	}

	dec, err := NewCSVDecoder(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, nil, eris.Wrapf(err, "csv: %s", path)
	}
	return dec, f, nil
}

// MissingColumns returns the required columns absent from header.
// Header names are compared after trimming surrounding whitespace.
func MissingColumns(header []string, required ...string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range required {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
