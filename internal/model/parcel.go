package model

// Tenure is the household tenure a parcel is expected to house.
type Tenure string

const (
	TenureOwned  Tenure = "owned"
	TenureRented Tenure = "rented"
)

// Parcel is a single assessment parcel (or a synthetic dwelling split out of one).
// Nullable attributes are pointers so that "missing" stays distinct from zero.
type Parcel struct {
	RollNumber         string   `json:"roll_number"`
	BaseRoll           string   `json:"base_roll,omitempty"` // original roll number of a split dwelling
	NeighbourhoodID    *int     `json:"neighbourhood_id,omitempty"`
	NeighbourhoodName  string   `json:"name,omitempty"`
	Population         *int     `json:"population,omitempty"`
	DwellingUnits      float64  `json:"dwelling_units"`
	FloorArea          *float64 `json:"floor_area,omitempty"`
	PropertyUseCode    string   `json:"property_use_code,omitempty"`
	MultipleResidences bool     `json:"multiple_residences,omitempty"`
	Tenure             Tenure   `json:"tenure,omitempty"`
	Residents          int      `json:"residents"`

	CentroidLat *float64 `json:"centroid_lat,omitempty"`
	CentroidLon *float64 `json:"centroid_lon,omitempty"`
	Geometry    string   `json:"geometry,omitempty"` // WKT
}

// Occupied reports whether the parcel holds at least part of a dwelling unit.
func (p *Parcel) Occupied() bool {
	return p.DwellingUnits > 0
}

// Area returns the floor area, treating unknown as zero.
func (p *Parcel) Area() float64 {
	if p.FloorArea == nil || *p.FloorArea < 0 {
		return 0
	}
	return *p.FloorArea
}

// Clone returns a copy of the parcel. Pointer fields are shared; they are
// never mutated in place by the allocation stages.
func (p *Parcel) Clone() *Parcel {
	c := *p
	return &c
}

// ResidentRow is one output row of the resident mask.
type ResidentRow struct {
	RollNumber      string   `csv:"Roll Number"`
	NeighbourhoodID *int     `csv:"neighbourhood_id"`
	Name            string   `csv:"name"`
	Population      *int     `csv:"population"`
	TotalLivingArea *float64 `csv:"Total Living Area"`
	DwellingUnits   float64  `csv:"Dwelling Units"`
	Residents       int      `csv:"residents"`
}

// Row converts the parcel into its resident mask output row.
func (p *Parcel) Row() ResidentRow {
	return ResidentRow{
		RollNumber:      p.RollNumber,
		NeighbourhoodID: p.NeighbourhoodID,
		Name:            p.NeighbourhoodName,
		Population:      p.Population,
		TotalLivingArea: p.FloorArea,
		DwellingUnits:   p.DwellingUnits,
		Residents:       p.Residents,
	}
}

// NeighbourhoodSummary records the outcome of allocating one neighbourhood,
// so that pre/post totals can be audited after a run.
type NeighbourhoodSummary struct {
	ID            int     `json:"neighbourhood_id"`
	Name          string  `json:"name"`
	Population    *int    `json:"population,omitempty"`
	Parcels       int     `json:"parcels"`
	DwellingUnits float64 `json:"dwelling_units"`
	Assigned      int     `json:"assigned"`
	PoolExhausted int     `json:"pool_exhausted,omitempty"` // draws served by the 1-per-unit fallback
}

// Residual is census population minus assigned residents.
func (s NeighbourhoodSummary) Residual() int {
	if s.Population == nil {
		return -s.Assigned
	}
	return *s.Population - s.Assigned
}
