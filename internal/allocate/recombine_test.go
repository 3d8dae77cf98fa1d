package allocate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/residents-cli/internal/model"
)

func TestRecombine(t *testing.T) {
	dwellings := []*model.Parcel{
		{RollNumber: "B-a", BaseRoll: "B", DwellingUnits: 1, Residents: 2, NeighbourhoodID: intPtr(1), NeighbourhoodName: "North", Population: intPtr(9)},
		{RollNumber: "A", BaseRoll: "A", DwellingUnits: 1, FloorArea: floatPtr(70), Residents: 3},
		{RollNumber: "B-b", BaseRoll: "B", DwellingUnits: 1, FloorArea: floatPtr(40), Residents: 1, NeighbourhoodName: "ignored"},
		{RollNumber: "B-c", BaseRoll: "B", DwellingUnits: 1, FloorArea: floatPtr(40), Residents: 2},
		{RollNumber: "C", DwellingUnits: 2, Residents: 4},
	}

	got := Recombine(dwellings)
	require.Len(t, got, 3)

	b := got[0]
	assert.Equal(t, "B", b.RollNumber)
	assert.Empty(t, b.BaseRoll)
	assert.InDelta(t, 3.0, b.DwellingUnits, 1e-9)
	assert.Equal(t, 5, b.Residents)
	require.NotNil(t, b.FloorArea)
	assert.InDelta(t, 80.0, *b.FloorArea, 1e-9)
	assert.Equal(t, "North", b.NeighbourhoodName, "first observed")
	assert.Equal(t, 9, *b.Population)

	assert.Equal(t, "A", got[1].RollNumber)
	assert.Equal(t, 3, got[1].Residents)

	assert.Equal(t, "C", got[2].RollNumber, "missing base falls back to roll number")
	assert.Nil(t, got[2].FloorArea)

	assert.InDelta(t, 40.0, *dwellings[2].FloorArea, 1e-9, "input is not modified")
}
