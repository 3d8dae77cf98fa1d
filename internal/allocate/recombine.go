package allocate

import (
	"github.com/sells-group/residents-cli/internal/model"
)

// Recombine sums dwelling rows back into one row per BaseRoll, in the order
// the bases are first seen. Floor area, dwelling units and residents are
// summed; the neighbourhood columns and the remaining attributes come from
// the first row of each group. Area stays unknown only when every row's is.
func Recombine(dwellings []*model.Parcel) []*model.Parcel {
	index := make(map[string]int, len(dwellings))
	out := make([]*model.Parcel, 0, len(dwellings))

	for _, d := range dwellings {
		base := d.BaseRoll
		if base == "" {
			base = d.RollNumber
		}

		i, ok := index[base]
		if !ok {
			p := d.Clone()
			p.RollNumber = base
			p.BaseRoll = ""
			if d.FloorArea != nil {
				a := *d.FloorArea
				p.FloorArea = &a
			}
			index[base] = len(out)
			out = append(out, p)
			continue
		}

		p := out[i]
		p.DwellingUnits += d.DwellingUnits
		p.Residents += d.Residents
		if d.FloorArea != nil {
			if p.FloorArea == nil {
				a := *d.FloorArea
				p.FloorArea = &a
			} else {
				*p.FloorArea += *d.FloorArea
			}
		}
	}
	return out
}
