package allocate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/residents-cli/internal/household"
	"github.com/sells-group/residents-cli/internal/model"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func cityDistribution() *household.Distribution {
	return &household.Distribution{
		Owners:  [household.Sizes]float64{18.2, 36.9, 16.4, 17.0, 11.5},
		Renters: [household.Sizes]float64{44.6, 30.1, 12.5, 7.4, 5.4},
	}
}

func onePersonOwners() *household.Distribution {
	return &household.Distribution{
		Owners:  [household.Sizes]float64{100, 0, 0, 0, 0},
		Renters: [household.Sizes]float64{100, 0, 0, 0, 0},
	}
}

func sumResidents(parcels []*model.Parcel) int {
	total := 0
	for _, p := range parcels {
		total += p.Residents
	}
	return total
}

func TestBuildPool(t *testing.T) {
	assert.Equal(t, []int{1, 1}, buildPool([]float64{10, 0, 0, 0, 0}, 2))
	assert.Equal(t, []int{1, 2, 2, 3}, buildPool([]float64{1, 2, 1, 0, 0}, 4))
	assert.Equal(t, []int{1, 2, 2, 3}, buildPool([]float64{0.5, 1, 0.5, 0, 0}, 4), "rescaled to the unit total")
	assert.Nil(t, buildPool([]float64{0, 0, 0, 0, 0}, 3))
	assert.Nil(t, buildPool([]float64{1, 1, 1, 1, 1}, 0))
}

func TestPoolAllocator_PoolsMatchUnits(t *testing.T) {
	n := &Neighbourhood{
		ID:         7,
		Population: intPtr(400),
		Parcels: []*model.Parcel{
			{RollNumber: "A", DwellingUnits: 1, Tenure: model.TenureOwned},
			{RollNumber: "B", DwellingUnits: 2.4, Tenure: model.TenureOwned},
			{RollNumber: "C", DwellingUnits: 48, Tenure: model.TenureRented},
			{RollNumber: "D", DwellingUnits: 97, Tenure: model.TenureRented},
			{RollNumber: "E", DwellingUnits: 0, Tenure: model.TenureRented},
		},
	}

	out := NewPoolAllocator(cityDistribution(), 42).Allocate(n)

	assert.Equal(t, [2]int{3, 145}, out.Units)
	assert.Len(t, out.Pools[0], 3)
	assert.Len(t, out.Pools[1], 145)
	assert.Zero(t, out.Exhausted)
	assert.Greater(t, out.Scale, 0.0)

	for _, p := range n.Parcels[:4] {
		assert.GreaterOrEqual(t, p.Residents, int(p.DwellingUnits+0.5), p.RollNumber)
	}
	assert.Zero(t, n.Parcels[4].Residents, "unoccupied parcel")

	poolTotal := 0
	for _, pool := range out.Pools {
		for _, size := range pool {
			require.True(t, size >= 1 && size <= household.Sizes)
			poolTotal += size
		}
	}
	assert.Equal(t, poolTotal, sumResidents(n.Parcels))
}

func TestPoolAllocator_Deterministic(t *testing.T) {
	build := func() *Neighbourhood {
		n := &Neighbourhood{ID: 3, Population: intPtr(250)}
		for i := range 40 {
			tn := model.TenureRented
			if i%3 == 0 {
				tn = model.TenureOwned
			}
			n.Parcels = append(n.Parcels, &model.Parcel{DwellingUnits: float64(1 + i%4), Tenure: tn})
		}
		return n
	}

	a, b := build(), build()
	outA := NewPoolAllocator(cityDistribution(), 42).Allocate(a)
	outB := NewPoolAllocator(cityDistribution(), 42).Allocate(b)

	assert.Equal(t, outA.Pools, outB.Pools)
	for i := range a.Parcels {
		assert.Equal(t, a.Parcels[i].Residents, b.Parcels[i].Residents)
	}
}

func TestPoolAllocator_MinimumOne(t *testing.T) {
	n := &Neighbourhood{
		ID:         1,
		Population: intPtr(5),
		Parcels: []*model.Parcel{
			{RollNumber: "A", DwellingUnits: 0.4, Tenure: model.TenureOwned},
			{RollNumber: "B", DwellingUnits: 1, Tenure: model.TenureOwned},
		},
	}

	NewPoolAllocator(onePersonOwners(), 42).Allocate(n)
	assert.Equal(t, 1, n.Parcels[0].Residents, "rounds to zero draws but is occupied")
	assert.Equal(t, 1, n.Parcels[1].Residents)
}

func TestPoolAllocator_Exhausted(t *testing.T) {
	dist := &household.Distribution{
		Renters: [household.Sizes]float64{100, 0, 0, 0, 0},
	}
	n := &Neighbourhood{
		ID:         2,
		Population: intPtr(20),
		Parcels: []*model.Parcel{
			{RollNumber: "A", DwellingUnits: 3, Tenure: model.TenureOwned},
			{RollNumber: "B", DwellingUnits: 2, Tenure: model.TenureRented},
		},
	}

	out := NewPoolAllocator(dist, 42).Allocate(n)
	assert.Equal(t, 3, out.Exhausted)
	assert.Empty(t, out.Pools[0])
	assert.Equal(t, 3, n.Parcels[0].Residents, "one resident per unit fallback")
	assert.Equal(t, 2, n.Parcels[1].Residents)
}

func TestPoolAllocator_NoPopulation(t *testing.T) {
	for _, pop := range []*int{nil, intPtr(0), intPtr(-4)} {
		n := &Neighbourhood{
			ID:         9,
			Population: pop,
			Parcels: []*model.Parcel{
				{DwellingUnits: 2, Tenure: model.TenureOwned, Residents: 7},
			},
		}
		out := NewPoolAllocator(cityDistribution(), 42).Allocate(n)
		assert.Zero(t, n.Parcels[0].Residents)
		assert.Zero(t, out.Exhausted)
	}
}

func TestPoolAndConserve_OnePersonScenario(t *testing.T) {
	n := &Neighbourhood{
		ID:         1,
		Population: intPtr(10),
		Parcels: []*model.Parcel{
			{RollNumber: "A", DwellingUnits: 1, Tenure: model.TenureOwned},
			{RollNumber: "B", DwellingUnits: 1, Tenure: model.TenureOwned},
		},
	}

	NewPoolAllocator(onePersonOwners(), 42).Allocate(n)
	assert.Equal(t, 2, sumResidents(n.Parcels))

	residual := Conserve(n.Parcels, 10)
	assert.Zero(t, residual)
	assert.Equal(t, 10, sumResidents(n.Parcels))
	assert.Equal(t, 5, n.Parcels[0].Residents)
	assert.Equal(t, 5, n.Parcels[1].Residents)
}
