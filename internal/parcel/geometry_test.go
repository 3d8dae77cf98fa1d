package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/residents-cli/internal/model"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		name    string
		parcel  model.Parcel
		wantLon float64
		wantLat float64
		wantOK  bool
	}{
		{
			name:    "centroid columns",
			parcel:  model.Parcel{CentroidLat: floatPtr(53.5), CentroidLon: floatPtr(-113.5), Geometry: "POINT (1 1)"},
			wantLon: -113.5,
			wantLat: 53.5,
			wantOK:  true,
		},
		{
			name:    "polygon centroid",
			parcel:  model.Parcel{Geometry: "POLYGON ((0 0, 4 0, 4 2, 0 2, 0 0))"},
			wantLon: 2,
			wantLat: 1,
			wantOK:  true,
		},
		{
			name:    "point geometry",
			parcel:  model.Parcel{Geometry: "POINT (-113.4 53.6)"},
			wantLon: -113.4,
			wantLat: 53.6,
			wantOK:  true,
		},
		{
			name:   "only latitude",
			parcel: model.Parcel{CentroidLat: floatPtr(53.5)},
		},
		{
			name:   "bad wkt",
			parcel: model.Parcel{Geometry: "POLYGON ((0 0"},
		},
		{
			name: "nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, lat, ok := Location(&tt.parcel)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantLon, lon, 1e-9)
				assert.InDelta(t, tt.wantLat, lat, 1e-9)
			}
		})
	}
}

func TestNormalizeWKT(t *testing.T) {
	a, err := NormalizeWKT("POLYGON((0 0,1 0,1 1,0 0))")
	require.NoError(t, err)
	b, err := NormalizeWKT("POLYGON ((0.0 0.0, 1 0, 1.000 1, 0 0))")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = NormalizeWKT("not wkt")
	assert.Error(t, err)
}
