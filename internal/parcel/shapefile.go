package parcel

import (
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/model"
)

// Shapefile attribute columns. DBF field names are limited to 10 characters.
var shapeFields = []shp.Field{
	shp.StringField("ROLL", 32),
	shp.NumberField("NEIGH_ID", 10),
	shp.StringField("NEIGH_NAME", 80),
	shp.NumberField("POP", 10),
	shp.FloatField("UNITS", 12, 2),
	shp.FloatField("AREA", 14, 2),
	shp.NumberField("RES", 10),
}

const (
	fieldRoll = iota
	fieldNeighID
	fieldNeighName
	fieldPop
	fieldUnits
	fieldArea
	fieldRes
)

// WriteShapefile writes the resident mask as a point shapefile located at
// each parcel's centroid. Parcels without a usable location are skipped.
func WriteShapefile(path string, parcels []*model.Parcel) (written, skipped int, err error) {
	if !strings.EqualFold(filepath.Ext(path), ".shp") {
		path += ".shp"
	}

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "parcel: create shapefile %s", path)
	}
	defer w.Close()

	if err := w.SetFields(shapeFields); err != nil {
		return 0, 0, eris.Wrap(err, "parcel: set shapefile fields")
	}

	for _, p := range parcels {
		lon, lat, ok := Location(p)
		if !ok {
			skipped++
			continue
		}

		row := int(w.Write(&shp.Point{X: lon, Y: lat}))
		if err := writeAttributes(w, row, p); err != nil {
			return written, skipped, eris.Wrapf(err, "parcel: write attributes for %s", p.RollNumber)
		}
		written++
	}

	if skipped > 0 {
		zap.L().Debug("parcel: skipped shapefile records without location",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return written, skipped, nil
}

func writeAttributes(w *shp.Writer, row int, p *model.Parcel) error {
	attrs := map[int]any{
		fieldRoll:      truncate(p.RollNumber, 32),
		fieldNeighName: truncate(p.NeighbourhoodName, 80),
		fieldUnits:     p.DwellingUnits,
		fieldRes:       p.Residents,
	}
	if p.NeighbourhoodID != nil {
		attrs[fieldNeighID] = *p.NeighbourhoodID
	}
	if p.Population != nil {
		attrs[fieldPop] = *p.Population
	}
	if p.FloorArea != nil {
		attrs[fieldArea] = *p.FloorArea
	}

	for field := range shapeFields {
		v, ok := attrs[field]
		if !ok {
			continue
		}
		if err := w.WriteAttribute(row, field, v); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
