package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/residents-cli/internal/aggregate"
	"github.com/sells-group/residents-cli/internal/allocate"
	"github.com/sells-group/residents-cli/internal/model"
	"github.com/sells-group/residents-cli/internal/tenure"
)

func intPtr(v int) *int { return &v }

func classifyFixture() []*model.Parcel {
	var parcels []*model.Parcel
	for range 1500 {
		parcels = append(parcels, &model.Parcel{DwellingUnits: 1, PropertyUseCode: "RESSD - DETACHED SINGLE DWELLING"})
	}
	for range 10 {
		parcels = append(parcels, &model.Parcel{DwellingUnits: 50, PropertyUseCode: "RESAP - APARTMENTS"})
	}
	parcels = append(parcels,
		&model.Parcel{DwellingUnits: 4, PropertyUseCode: "RESGC - GROUP CARE"},
		&model.Parcel{DwellingUnits: 0, PropertyUseCode: "COMM - COMMERCIAL"},
	)
	return parcels
}

func TestClassify(t *testing.T) {
	c := Classify(classifyFixture(), tenure.NewClassifier(tenure.DefaultTable()))

	require.Len(t, c.Codes, 3)
	assert.Equal(t, "RESSD - DETACHED SINGLE DWELLING", c.Codes[0].Code)
	assert.Equal(t, ClassOwned, c.Codes[0].Class)
	assert.Equal(t, 1500, c.Codes[0].Parcels)
	assert.Equal(t, "RESAP - APARTMENTS", c.Codes[1].Code)
	assert.Equal(t, ClassRented, c.Codes[1].Class)
	assert.Equal(t, ClassRentedDefault, c.Codes[2].Class)

	assert.Equal(t, 1511, c.TotalParcels)
	assert.InDelta(t, 2004.0, c.TotalUnits, 1e-9)
	assert.Equal(t, 1500, c.OwnedParcels)
	assert.InDelta(t, 1500.0, c.OwnedUnits, 1e-9)
	assert.Equal(t, 11, c.RentedParcels)
	assert.InDelta(t, 504.0, c.RentedUnits, 1e-9)
	assert.InDelta(t, 24.95, c.PctUnits(c.Codes[1]), 0.01)
}

func TestWriteClassification(t *testing.T) {
	c := Classify(classifyFixture(), tenure.NewClassifier(tenure.DefaultTable()))

	var buf bytes.Buffer
	h := Header{Source: "parcels.csv", Generated: time.Date(2025, 11, 12, 9, 30, 0, 0, time.UTC)}
	require.NoError(t, WriteClassification(&buf, h, c))

	out := buf.String()
	assert.Contains(t, out, "PARCEL CLASSIFICATION REPORT")
	assert.Contains(t, out, "Generated: 2025-11-12 09:30:00")
	assert.Contains(t, out, "Data Source: parcels.csv")
	assert.Contains(t, out, "1,511")
	assert.Contains(t, out, "2,004")
	assert.Contains(t, out, "RESGC - GROUP CARE")
	assert.Contains(t, out, "TOTAL RENTED (incl. default)")
	assert.NotContains(t, out, "COMMERCIAL", "unoccupied parcels are not residential")
}

func TestWriteAudit(t *testing.T) {
	res := &allocate.Result{
		RunID:  "6f1c1c9e-2b1f-4a53-8d0e-5d5f1d0b7a11",
		Method: allocate.MethodPool,
		Seed:   42,
		Parcels: []*model.Parcel{
			{RollNumber: "A"}, {RollNumber: "B"}, {RollNumber: "C"},
		},
		Summaries: []model.NeighbourhoodSummary{
			{ID: 1, Name: "Riverside", Population: intPtr(12500), Parcels: 2, DwellingUnits: 3, Assigned: 12500},
			{ID: 2, Name: "Hillside", Population: intPtr(3), Parcels: 4, DwellingUnits: 4, Assigned: 4, PoolExhausted: 2},
			{ID: 3, Name: "Airport", Parcels: 1, DwellingUnits: 1},
		},
		Unassigned: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAudit(&buf, Header{}, res))

	out := buf.String()
	assert.Contains(t, out, "RESIDENT ALLOCATION AUDIT")
	assert.Contains(t, out, res.RunID)
	assert.Contains(t, out, "Seed:")
	assert.Contains(t, out, "12,503")
	assert.Contains(t, out, "12,504")
	assert.Contains(t, out, "Riverside")

	lines := strings.Split(out, "\n")
	var offCensus string
	for _, l := range lines {
		if strings.HasPrefix(l, "Neighbourhoods off census:") {
			offCensus = l
		}
	}
	assert.True(t, strings.HasSuffix(strings.TrimSpace(offCensus), "1"), offCensus)
}

func TestWriteAudit_Quota(t *testing.T) {
	res := &allocate.Result{RunID: "r", Method: allocate.MethodQuota, QuotaMode: allocate.QuotaStrict}

	var buf bytes.Buffer
	require.NoError(t, WriteAudit(&buf, Header{}, res))
	assert.Contains(t, buf.String(), "strict")
	assert.NotContains(t, buf.String(), "Seed:")
}

func TestWriteAggregation(t *testing.T) {
	groups, stats := aggregate.ByGeometry([]*model.Parcel{
		{RollNumber: "1", Geometry: "POINT (0 0)", Residents: 2},
		{RollNumber: "2", Geometry: "POINT (0 0)", Residents: 3},
		{RollNumber: "3", Geometry: "POINT (1 1)", Residents: 4},
		{RollNumber: "4", Residents: 1},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteAggregation(&buf, Header{}, groups, stats, 10))

	out := buf.String()
	assert.Contains(t, out, "PARCEL GEOMETRY AGGREGATION REPORT")
	assert.Contains(t, out, "Maximum parcels in single location:")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "Total residents (aggregated):")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_Error(t *testing.T) {
	err := WriteAudit(failingWriter{}, Header{}, &allocate.Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: write audit")
}
