// Package household loads city-wide household-size statistics per tenure.
package household

import (
	"errors"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/residents-cli/internal/fetcher"
	"github.com/sells-group/residents-cli/internal/model"
)

// Sizes is the number of household-size categories. The last one is
// "five or more" and counts as five persons.
const Sizes = 5

// Categories holds the row labels of the distribution table, indexed by
// household size minus one.
var Categories = [Sizes]string{
	"One-person household",
	"Two-person household",
	"Three-person household",
	"Four-person household",
	"Five-or-more-person household",
}

// Column names of the distribution table.
const (
	ColCategory   = "Category"
	ColOwnersPct  = "Owners_Pct"
	ColRentersPct = "Renters_Pct"
)

var (
	// ErrMissingCategory is returned when a household-size row is absent.
	ErrMissingCategory = eris.New("household: missing category")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = eris.New("household: missing required column")
)

// Distribution gives, per tenure, the percentage (0-100) of households of
// each size. Index i is a household of i+1 persons.
type Distribution struct {
	Owners  [Sizes]float64
	Renters [Sizes]float64
}

// Pct returns the percentage of households of the given size (1..Sizes) for a
// tenure. Out-of-range sizes return 0.
func (d *Distribution) Pct(t model.Tenure, size int) float64 {
	if size < 1 || size > Sizes {
		return 0
	}
	if t == model.TenureOwned {
		return d.Owners[size-1]
	}
	return d.Renters[size-1]
}

type row struct {
	Category   string `csv:"Category"`
	OwnersPct  string `csv:"Owners_Pct"`
	RentersPct string `csv:"Renters_Pct"`
}

// LoadDistribution reads the distribution table from a CSV or XLSX file,
// chosen by extension.
func LoadDistribution(path string) (*Distribution, error) {
	var dec *csvutil.Decoder
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		tbl, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "household: read %s", path)
		}
		if dec, err = tbl.Decoder(); err != nil {
			return nil, eris.Wrapf(err, "household: read %s", path)
		}
	} else {
		d, closer, err := fetcher.OpenCSV(path, fetcher.CSVOptions{TrimSpace: true})
		if err != nil {
			return nil, eris.Wrapf(err, "household: read %s", path)
		}
		defer closer.Close() //nolint:errcheck
		dec = d
	}

	dist, err := decode(dec)
	if err != nil {
		return nil, eris.Wrapf(err, "household: load %s", path)
	}
	return dist, nil
}

// Decode reads a distribution table in CSV form.
func Decode(r io.Reader) (*Distribution, error) {
	dec, err := fetcher.NewCSVDecoder(r, fetcher.CSVOptions{TrimSpace: true})
	if err != nil {
		return nil, err
	}
	return decode(dec)
}

func decode(dec *csvutil.Decoder) (*Distribution, error) {
	if missing := fetcher.MissingColumns(dec.Header(), ColCategory, ColOwnersPct, ColRentersPct); len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumn, "%s", strings.Join(missing, ", "))
	}

	index := make(map[string]int, Sizes)
	for i, c := range Categories {
		index[strings.ToLower(c)] = i
	}

	var d Distribution
	var seen [Sizes]bool
	for {
		var r row
		if err := dec.Decode(&r); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrap(err, "household: decode row")
		}

		i, ok := index[strings.ToLower(strings.TrimSpace(r.Category))]
		if !ok || seen[i] {
			continue
		}
		seen[i] = true

		owners, err := parsePct(r.OwnersPct)
		if err != nil {
			return nil, eris.Wrapf(err, "household: %s %s", Categories[i], ColOwnersPct)
		}
		renters, err := parsePct(r.RentersPct)
		if err != nil {
			return nil, eris.Wrapf(err, "household: %s %s", Categories[i], ColRentersPct)
		}
		d.Owners[i] = owners
		d.Renters[i] = renters
	}

	for i, ok := range seen {
		if !ok {
			return nil, eris.Wrapf(ErrMissingCategory, "%q", Categories[i])
		}
	}
	return &d, nil
}

func parsePct(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, eris.Errorf("invalid percentage %q", s)
	}
	if v < 0 || v > 100 {
		return 0, eris.Errorf("percentage %v out of range 0-100", v)
	}
	return v, nil
}
