package parcel

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/residents-cli/internal/model"
)

// Location returns the parcel's representative point (lon, lat). The
// centroid columns win; otherwise the centroid of the WKT geometry is used.
func Location(p *model.Parcel) (lon, lat float64, ok bool) {
	if p.CentroidLat != nil && p.CentroidLon != nil {
		return *p.CentroidLon, *p.CentroidLat, true
	}
	if p.Geometry == "" {
		return 0, 0, false
	}

	g, err := wkt.Unmarshal(p.Geometry)
	if err != nil || g == nil || g.Empty() {
		return 0, 0, false
	}
	c, err := xy.Centroid(g)
	if err != nil || len(c) < 2 {
		return 0, 0, false
	}
	return c.X(), c.Y(), true
}

// NormalizeWKT re-encodes a WKT geometry so that textually different but
// identical geometries (spacing, number formatting) compare equal.
func NormalizeWKT(s string) (string, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return "", eris.Wrap(err, "parcel: parse wkt")
	}
	out, err := wkt.Marshal(g)
	if err != nil {
		return "", eris.Wrap(err, "parcel: encode wkt")
	}
	return out, nil
}
