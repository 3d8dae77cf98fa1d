// Package aggregate merges resident parcels that share an identical footprint,
// such as the individual units of a condominium building.
package aggregate

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/model"
	"github.com/sells-group/residents-cli/internal/parcel"
)

// Group is one footprint and the parcels located on it.
type Group struct {
	Geometry      string
	RollNumber    string   // first parcel of the group
	RollNumbers   []string // every parcel, input order
	Residents     int
	DwellingUnits float64
	FloorArea     *float64 // nil when no parcel has a known area

	// Kept only when every parcel that has a value agrees.
	CentroidLat       *float64
	CentroidLon       *float64
	NeighbourhoodID   *int
	NeighbourhoodName string
	Population        *int

	PropertyUseCodes []string // distinct non-empty codes, first-seen order

	conflict map[string]bool
}

// Stats counts parcels that could not take part in grouping normally.
type Stats struct {
	Parcels      int
	Groups       int
	NoGeometry   int // skipped
	InvalidWKT   int // grouped on the raw text
	Conflicting  int // groups that dropped at least one attribute
	MaxGroupSize int
}

// ByGeometry groups parcels by WKT geometry, normalised so that formatting
// differences do not split a footprint. Groups keep first-seen order.
// Parcels without geometry are skipped.
func ByGeometry(parcels []*model.Parcel) ([]*Group, Stats) {
	var stats Stats
	index := make(map[string]*Group)
	var groups []*Group

	for _, p := range parcels {
		stats.Parcels++
		raw := strings.TrimSpace(p.Geometry)
		if raw == "" {
			stats.NoGeometry++
			continue
		}
		key, err := parcel.NormalizeWKT(raw)
		if err != nil {
			stats.InvalidWKT++
			key = raw
		}

		g, ok := index[key]
		if !ok {
			g = &Group{Geometry: key, RollNumber: p.RollNumber, conflict: make(map[string]bool)}
			index[key] = g
			groups = append(groups, g)
		}
		g.add(p)
	}

	for _, g := range groups {
		if len(g.conflict) > 0 {
			stats.Conflicting++
		}
		if len(g.RollNumbers) > stats.MaxGroupSize {
			stats.MaxGroupSize = len(g.RollNumbers)
		}
	}
	stats.Groups = len(groups)

	zap.L().Debug("aggregate: grouped parcels by geometry",
		zap.Int("parcels", stats.Parcels),
		zap.Int("groups", stats.Groups),
		zap.Int("no_geometry", stats.NoGeometry),
		zap.Int("invalid_wkt", stats.InvalidWKT),
		zap.Int("conflicting", stats.Conflicting),
	)
	return groups, stats
}

func (g *Group) add(p *model.Parcel) {
	g.RollNumbers = append(g.RollNumbers, p.RollNumber)
	g.Residents += p.Residents
	g.DwellingUnits += p.DwellingUnits
	if p.FloorArea != nil {
		if g.FloorArea == nil {
			a := *p.FloorArea
			g.FloorArea = &a
		} else {
			*g.FloorArea += *p.FloorArea
		}
	}

	g.CentroidLat = sameFloat(g, "lat", g.CentroidLat, p.CentroidLat)
	g.CentroidLon = sameFloat(g, "lon", g.CentroidLon, p.CentroidLon)
	g.NeighbourhoodID = sameInt(g, "neighbourhood_id", g.NeighbourhoodID, p.NeighbourhoodID)
	g.Population = sameInt(g, "population", g.Population, p.Population)

	switch {
	case g.conflict["name"] || p.NeighbourhoodName == "":
	case g.NeighbourhoodName == "":
		g.NeighbourhoodName = p.NeighbourhoodName
	case g.NeighbourhoodName != p.NeighbourhoodName:
		g.NeighbourhoodName = ""
		g.conflict["name"] = true
	}

	if code := strings.TrimSpace(p.PropertyUseCode); code != "" {
		for _, c := range g.PropertyUseCodes {
			if c == code {
				return
			}
		}
		g.PropertyUseCodes = append(g.PropertyUseCodes, code)
	}
}

func sameFloat(g *Group, key string, have, next *float64) *float64 {
	switch {
	case g.conflict[key] || next == nil:
		return have
	case have == nil:
		v := *next
		return &v
	case *have != *next:
		g.conflict[key] = true
		return nil
	}
	return have
}

func sameInt(g *Group, key string, have, next *int) *int {
	switch {
	case g.conflict[key] || next == nil:
		return have
	case have == nil:
		v := *next
		return &v
	case *have != *next:
		g.conflict[key] = true
		return nil
	}
	return have
}

// Row is one output row of the aggregated table.
type Row struct {
	RollNumber            string   `csv:"Roll Number"`
	AggregatedRollNumbers string   `csv:"aggregated_roll_numbers"`
	ParcelCount           int      `csv:"parcel_count"`
	Residents             int      `csv:"residents"`
	DwellingUnits         float64  `csv:"Dwelling Units"`
	TotalLivingArea       *float64 `csv:"Total Living Area"`
	CentroidLat           *float64 `csv:"Centroid Lat"`
	CentroidLon           *float64 `csv:"Centroid Lon"`
	NeighbourhoodID       *int     `csv:"neighbourhood_id"`
	Name                  string   `csv:"name"`
	Population            *int     `csv:"population"`
	PropertyUseCode       string   `csv:"Property Use Code"`
	Geometry              string   `csv:"Geometry"`
}

// Row converts the group to its output row.
func (g *Group) Row() Row {
	return Row{
		RollNumber:            g.RollNumber,
		AggregatedRollNumbers: strings.Join(g.RollNumbers, ", "),
		ParcelCount:           len(g.RollNumbers),
		Residents:             g.Residents,
		DwellingUnits:         g.DwellingUnits,
		TotalLivingArea:       g.FloorArea,
		CentroidLat:           g.CentroidLat,
		CentroidLon:           g.CentroidLon,
		NeighbourhoodID:       g.NeighbourhoodID,
		Name:                  g.NeighbourhoodName,
		Population:            g.Population,
		PropertyUseCode:       strings.Join(g.PropertyUseCodes, ", "),
		Geometry:              g.Geometry,
	}
}

// WriteCSV writes the aggregated table.
func WriteCSV(w io.Writer, groups []*Group) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(Row{}); err != nil {
		return eris.Wrap(err, "aggregate: encode header")
	}
	for _, g := range groups {
		if err := enc.Encode(g.Row()); err != nil {
			return eris.Wrapf(err, "aggregate: encode %s", g.RollNumber)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "aggregate: flush csv")
	}
	return nil
}

// WriteCSVFile writes the aggregated table to path.
func WriteCSVFile(path string, groups []*Group) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "aggregate: create %s", path)
	}
	if err := WriteCSV(f, groups); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "aggregate: close %s", path)
	}
	return nil
}
