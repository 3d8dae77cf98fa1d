// Package tenure maps property use codes to the household tenure used to pick
// household-size statistics.
package tenure

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/residents-cli/internal/model"
)

// Default tenure for any code in neither table.
const DefaultTenure = model.TenureRented

// Table lists the property use codes treated as owned and as rented.
type Table struct {
	Owned  []string `yaml:"owned"`
	Rented []string `yaml:"rented"`
}

// DefaultTable returns the assessment roll's residential code mapping.
func DefaultTable() Table {
	return Table{
		Owned: []string{
			"RESSD - DETACHED SINGLE DWELLING",
			"RESSS - SIDE BY SIDE",
			"CNRES - CONDO RESIDENTIAL",
			"RESRH - ROW HOUSING",
			"RESMA - MULTIPLE ATTACHED UNITS",
			"RESDU - DUPLEX",
		},
		Rented: []string{
			"RESAP - APARTMENTS",
			"CNAPT - CONDO APARTMENT",
			"RESAM - APARTMENTS MULTIPLE USE",
			"RESMC - MULTIFAMILY CONVERSION",
			"CMMRH - COMMERCIAL ROW HOUSE",
		},
	}
}

// LoadTable reads a tenure table from a YAML file. An empty path returns
// the default table.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, eris.Wrapf(err, "tenure: read table %s", path)
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, eris.Wrap(err, "tenure: parse table")
	}
	if len(t.Owned) == 0 && len(t.Rented) == 0 {
		return Table{}, eris.Errorf("tenure: table %s lists no codes", path)
	}
	return t, nil
}

// Classifier assigns tenure from a Table. The zero value classifies
// everything as DefaultTenure.
type Classifier struct {
	owned  map[string]struct{}
	rented map[string]struct{}
}

// NewClassifier builds a Classifier. A code listed in both tables is owned.
func NewClassifier(t Table) *Classifier {
	c := &Classifier{
		owned:  make(map[string]struct{}, len(t.Owned)),
		rented: make(map[string]struct{}, len(t.Rented)),
	}
	for _, code := range t.Owned {
		c.owned[normalize(code)] = struct{}{}
	}
	for _, code := range t.Rented {
		c.rented[normalize(code)] = struct{}{}
	}
	return c
}

// Classify returns the tenure for a property use code.
func (c *Classifier) Classify(code string) model.Tenure {
	code = normalize(code)
	if _, ok := c.owned[code]; ok {
		return model.TenureOwned
	}
	if _, ok := c.rented[code]; ok {
		return model.TenureRented
	}
	return DefaultTenure
}

// Listed reports whether the code appears in either table.
func (c *Classifier) Listed(code string) bool {
	code = normalize(code)
	_, owned := c.owned[code]
	_, rented := c.rented[code]
	return owned || rented
}

func normalize(code string) string {
	return strings.TrimSpace(code)
}
