package parcel

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/fetcher"
	"github.com/sells-group/residents-cli/internal/model"
)

// Column names of the assessment parcel export and the neighbourhood mask.
const (
	ColRollNumber         = "Roll Number"
	ColNeighbourhoodID    = "neighbourhood_id"
	ColName               = "name"
	ColPopulation         = "population"
	ColDwellingUnits      = "Dwelling Units"
	ColTotalLivingArea    = "Total Living Area"
	ColPropertyUseCode    = "Property Use Code"
	ColMultipleResidences = "Multiple Residences"
	ColCentroidLat        = "Centroid Lat"
	ColCentroidLon        = "Centroid Lon"
	ColGeometry           = "Geometry"
	ColResidents          = "residents"
)

// ErrMissingColumn is returned when a required column is absent from a header.
var ErrMissingColumn = eris.New("parcel: missing required column")

// rawParcel is one row of the parcel table before numeric coercion.
type rawParcel struct {
	RollNumber         string `csv:"Roll Number"`
	NeighbourhoodID    string `csv:"neighbourhood_id"`
	Name               string `csv:"name"`
	Population         string `csv:"population"`
	DwellingUnits      string `csv:"Dwelling Units"`
	TotalLivingArea    string `csv:"Total Living Area"`
	PropertyUseCode    string `csv:"Property Use Code"`
	MultipleResidences string `csv:"Multiple Residences"`
	CentroidLat        string `csv:"Centroid Lat"`
	CentroidLon        string `csv:"Centroid Lon"`
	Geometry           string `csv:"Geometry"`
}

// ReadStats counts the data-quality fallbacks applied while decoding.
type ReadStats struct {
	Rows             int
	Parcels          int
	EmptyRoll        int
	DuplicateRoll    int
	DefaultedUnits   int // missing or unparseable dwelling units set to 1
	MissingArea      int
	MissingNeighbour int
	RaggedRows       int // rows padded or cut to the header width
}

// ReadFile decodes the parcel table at path.
func ReadFile(path string) ([]*model.Parcel, ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadStats{}, eris.Wrapf(err, "parcel: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	parcels, stats, err := Decode(f)
	if err != nil {
		return nil, stats, eris.Wrapf(err, "parcel: read %s", path)
	}
	return parcels, stats, nil
}

// Decode reads a parcel table. Only Roll Number is required; unparseable
// numeric cells become missing values and never fail the read.
func Decode(r io.Reader) ([]*model.Parcel, ReadStats, error) {
	var stats ReadStats

	rr := fetcher.NewRecordReader(r, fetcher.CSVOptions{LazyQuotes: true})
	dec, err := rr.Decoder()
	if err != nil {
		return nil, stats, err
	}
	if missing := fetcher.MissingColumns(dec.Header(), ColRollNumber); len(missing) > 0 {
		return nil, stats, eris.Wrapf(ErrMissingColumn, "%s", strings.Join(missing, ", "))
	}
	hasUnits := len(fetcher.MissingColumns(dec.Header(), ColDwellingUnits)) == 0

	seen := make(map[string]bool)
	var parcels []*model.Parcel

	for {
		var raw rawParcel
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, eris.Wrapf(err, "parcel: decode row %d", stats.Rows+1)
		}
		stats.Rows++

		roll := strings.TrimSpace(raw.RollNumber)
		if roll == "" {
			stats.EmptyRoll++
			continue
		}
		if seen[roll] {
			stats.DuplicateRoll++
			continue
		}
		seen[roll] = true

		p := &model.Parcel{
			RollNumber:         roll,
			NeighbourhoodID:    ParseInt(raw.NeighbourhoodID),
			NeighbourhoodName:  strings.TrimSpace(raw.Name),
			Population:         ParseInt(raw.Population),
			FloorArea:          ParseNonNegative(raw.TotalLivingArea),
			PropertyUseCode:    strings.TrimSpace(raw.PropertyUseCode),
			MultipleResidences: ParseFlag(raw.MultipleResidences),
			Geometry:           strings.TrimSpace(raw.Geometry),
		}

		if units := ParseNonNegative(raw.DwellingUnits); units != nil {
			p.DwellingUnits = *units
		} else {
			p.DwellingUnits = 1
			if hasUnits {
				stats.DefaultedUnits++
			}
		}

		if lat, ok := ParseNumber(raw.CentroidLat); ok {
			p.CentroidLat = &lat
		}
		if lon, ok := ParseNumber(raw.CentroidLon); ok {
			p.CentroidLon = &lon
		}

		if p.FloorArea == nil {
			stats.MissingArea++
		}
		if p.NeighbourhoodID == nil {
			stats.MissingNeighbour++
		}

		parcels = append(parcels, p)
	}

	stats.Parcels = len(parcels)
	stats.RaggedRows = rr.Ragged()
	zap.L().Debug("parcel: decoded table",
		zap.Int("rows", stats.Rows),
		zap.Int("parcels", stats.Parcels),
		zap.Int("empty_roll", stats.EmptyRoll),
		zap.Int("duplicate_roll", stats.DuplicateRoll),
		zap.Int("defaulted_units", stats.DefaultedUnits),
		zap.Int("missing_area", stats.MissingArea),
		zap.Int("missing_neighbourhood", stats.MissingNeighbour),
		zap.Int("ragged_rows", stats.RaggedRows),
	)

	return parcels, stats, nil
}
