package allocate

import (
	"math"

	"github.com/sells-group/residents-cli/internal/model"
)

// Split explodes every parcel flagged as holding multiple residences with
// more than one dwelling unit into one row per dwelling. Rows are suffixed
// -a, -b, ..., -z, -aa, -ab, ... and each carries an equal share of the
// floor area and dwelling units. Every output row records its original
// roll number in BaseRoll.
func Split(parcels []*model.Parcel) []*model.Parcel {
	out := make([]*model.Parcel, 0, len(parcels))
	for _, p := range parcels {
		n := int(math.Round(p.DwellingUnits))
		if !p.MultipleResidences || p.DwellingUnits <= 1 || n < 2 {
			c := p.Clone()
			c.BaseRoll = p.RollNumber
			out = append(out, c)
			continue
		}

		var area *float64
		if p.FloorArea != nil {
			a := *p.FloorArea / float64(n)
			area = &a
		}
		units := p.DwellingUnits / float64(n)

		for i := 1; i <= n; i++ {
			d := p.Clone()
			d.RollNumber = p.RollNumber + "-" + DwellingSuffix(i)
			d.BaseRoll = p.RollNumber
			d.FloorArea = area
			d.DwellingUnits = units
			out = append(out, d)
		}
	}
	return out
}

// DwellingSuffix returns the bijective base-26 letter label of the n-th
// dwelling: 1 is "a", 26 is "z", 27 is "aa". n < 1 yields "".
func DwellingSuffix(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('a'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
