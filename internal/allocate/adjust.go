package allocate

import (
	"sort"

	"github.com/sells-group/residents-cli/internal/model"
)

// Conserve moves the residents of the occupied parcels toward population
// one at a time. Additions go to the currently smallest parcels, removals
// to the largest; equal counts keep input order and no parcel drops below
// one resident. Passes repeat until the totals match or a pass changes
// nothing. It returns population minus the final total.
func Conserve(parcels []*model.Parcel, population int) int {
	occupied := make([]*model.Parcel, 0, len(parcels))
	total := 0
	for _, p := range parcels {
		if p.Occupied() {
			occupied = append(occupied, p)
			total += p.Residents
		}
	}

	diff := population - total
	for diff != 0 && len(occupied) > 0 {
		order := make([]*model.Parcel, len(occupied))
		copy(order, occupied)
		adding := diff > 0
		sort.SliceStable(order, func(i, j int) bool {
			if adding {
				return order[i].Residents < order[j].Residents
			}
			return order[i].Residents > order[j].Residents
		})

		changed := false
		for _, p := range order {
			if diff == 0 {
				break
			}
			switch {
			case adding:
				p.Residents++
				diff--
				changed = true
			case p.Residents > 1:
				p.Residents--
				diff++
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return diff
}
