package report

import (
	"io"
	"sort"

	"github.com/sells-group/residents-cli/internal/model"
	"github.com/sells-group/residents-cli/internal/tenure"
)

// Classification labels used in the report.
const (
	ClassOwned         = "OWNED"
	ClassRented        = "RENTED"
	ClassRentedDefault = "RENTED (default)"
)

// CodeStat summarises the residential parcels of one property use code.
type CodeStat struct {
	Code    string
	Parcels int
	Units   float64
	Class   string
}

// Classification is the tenure mapping of every residential property use
// code found in a parcel table.
type Classification struct {
	Codes []CodeStat // by units descending, then code

	TotalParcels  int
	TotalUnits    float64
	OwnedParcels  int
	OwnedUnits    float64
	RentedParcels int
	RentedUnits   float64
}

// Classify groups the parcels with positive dwelling units by property use
// code and tags each code with its tenure.
func Classify(parcels []*model.Parcel, c *tenure.Classifier) Classification {
	var out Classification
	index := make(map[string]int)

	for _, p := range parcels {
		if !p.Occupied() {
			continue
		}
		i, ok := index[p.PropertyUseCode]
		if !ok {
			class := ClassRentedDefault
			switch {
			case !c.Listed(p.PropertyUseCode):
			case c.Classify(p.PropertyUseCode) == model.TenureOwned:
				class = ClassOwned
			default:
				class = ClassRented
			}
			i = len(out.Codes)
			index[p.PropertyUseCode] = i
			out.Codes = append(out.Codes, CodeStat{Code: p.PropertyUseCode, Class: class})
		}
		out.Codes[i].Parcels++
		out.Codes[i].Units += p.DwellingUnits
	}

	sort.SliceStable(out.Codes, func(i, j int) bool {
		if out.Codes[i].Units != out.Codes[j].Units {
			return out.Codes[i].Units > out.Codes[j].Units
		}
		return out.Codes[i].Code < out.Codes[j].Code
	})

	for _, s := range out.Codes {
		out.TotalParcels += s.Parcels
		out.TotalUnits += s.Units
		if s.Class == ClassOwned {
			out.OwnedParcels += s.Parcels
			out.OwnedUnits += s.Units
		} else {
			out.RentedParcels += s.Parcels
			out.RentedUnits += s.Units
		}
	}
	return out
}

// PctUnits is the share of all residential dwelling units held by s.
func (c Classification) PctUnits(s CodeStat) float64 {
	return pct(s.Units, c.TotalUnits)
}

// WriteClassification renders the classification report.
func WriteClassification(w io.Writer, h Header, c Classification) error {
	d := newDoc()
	if h.Title == "" {
		h.Title = "PARCEL CLASSIFICATION REPORT"
		h.Subtitle = "Property Use Code to Household Tenure Mapping"
	}
	d.header(h)

	d.line("EXECUTIVE SUMMARY")
	d.rule("-")
	d.table([][]string{
		{"Total Residential Parcels:", d.n("%d", c.TotalParcels)},
		{"Total Dwelling Units:", d.n("%.0f", c.TotalUnits)},
		{"Classified as OWNED:", d.n("%.0f", c.OwnedUnits) + " units", d.n("(%.1f%%)", pct(c.OwnedUnits, c.TotalUnits))},
		{"", d.n("%d", c.OwnedParcels) + " parcels", d.n("(%.1f%%)", pct(float64(c.OwnedParcels), float64(c.TotalParcels)))},
		{"Classified as RENTED:", d.n("%.0f", c.RentedUnits) + " units", d.n("(%.1f%%)", pct(c.RentedUnits, c.TotalUnits))},
		{"", d.n("%d", c.RentedParcels) + " parcels", d.n("(%.1f%%)", pct(float64(c.RentedParcels), float64(c.TotalParcels)))},
	})

	d.section("DETAILED CLASSIFICATION BY PROPERTY USE CODE")
	for _, class := range []string{ClassOwned, ClassRented, ClassRentedDefault} {
		d.blank()
		d.line("%s", class)
		rows := [][]string{{"Property Use Code", "Parcels", "Units", "% Units", "Avg DU"}}
		for _, s := range c.Codes {
			if s.Class != class {
				continue
			}
			code := s.Code
			if code == "" {
				code = "(blank)"
			}
			rows = append(rows, []string{
				code,
				d.n("%d", s.Parcels),
				d.n("%.0f", s.Units),
				d.n("%.1f%%", c.PctUnits(s)),
				d.n("%.1f", s.Units/float64(s.Parcels)),
			})
		}
		d.table(rows)
	}

	d.rule("-")
	d.table([][]string{
		{"TOTAL OWNED", d.n("%d", c.OwnedParcels), d.n("%.0f", c.OwnedUnits), d.n("%.1f%%", pct(c.OwnedUnits, c.TotalUnits))},
		{"TOTAL RENTED (incl. default)", d.n("%d", c.RentedParcels), d.n("%.0f", c.RentedUnits), d.n("%.1f%%", pct(c.RentedUnits, c.TotalUnits))},
	})
	d.rule("=")

	return d.writeTo(w, "classification")
}
