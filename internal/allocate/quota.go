package allocate

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/residents-cli/internal/model"
)

// QuotaMode selects how the quota allocator treats an overcount caused by
// forcing every dwelling to at least one resident.
type QuotaMode string

const (
	// QuotaFaithful keeps the overcount.
	QuotaFaithful QuotaMode = "faithful"
	// QuotaStrict removes residents from the largest dwellings until the
	// neighbourhood total matches its population.
	QuotaStrict QuotaMode = "strict"
)

// ParseQuotaMode validates a configured quota mode.
func ParseQuotaMode(s string) (QuotaMode, error) {
	switch m := QuotaMode(s); m {
	case QuotaFaithful, QuotaStrict:
		return m, nil
	case "":
		return QuotaFaithful, nil
	}
	return "", eris.Errorf("allocate: unknown quota mode %q", s)
}

// ineligible marks a dwelling forced up to one resident; it takes no share
// of the leftover.
const ineligible = -1.0

// Quota sets Residents on the dwellings of one neighbourhood in proportion
// to their floor-area share of population. It returns the number of
// residents assigned above population (0 when the totals match).
func Quota(dwellings []*model.Parcel, population *int, mode QuotaMode) int {
	for _, d := range dwellings {
		d.Residents = 0
	}
	if population == nil || *population <= 0 {
		return 0
	}
	pop := *population

	occupied := make([]*model.Parcel, 0, len(dwellings))
	totalArea := 0.0
	for _, d := range dwellings {
		if d.Occupied() {
			occupied = append(occupied, d)
			totalArea += d.Area()
		}
	}

	if totalArea <= 0 {
		for i, d := range occupied {
			if i >= pop {
				break
			}
			d.Residents = 1
		}
		return 0
	}

	rem := make([]float64, len(occupied))
	assigned := 0
	for i, d := range occupied {
		q := float64(pop) * d.Area() / totalArea
		base := math.Floor(q)
		if base == 0 {
			d.Residents = 1
			rem[i] = ineligible
		} else {
			d.Residents = int(base)
			rem[i] = q - base
		}
		assigned += d.Residents
	}

	leftover := pop - assigned
	if leftover > 0 {
		order := indexOrder(len(occupied))
		sort.SliceStable(order, func(a, b int) bool {
			return rem[order[a]] > rem[order[b]]
		})
		for _, i := range order {
			if leftover == 0 || rem[i] == ineligible {
				break
			}
			occupied[i].Residents++
			leftover--
		}
	}

	if leftover < 0 && mode == QuotaStrict {
		leftover += trim(occupied, -leftover)
	}
	if leftover < 0 {
		return -leftover
	}
	return 0
}

// trim removes up to n residents, one at a time, from the dwelling holding
// the most residents (smaller floor area first, then input order), never
// below one. It returns the number removed.
func trim(dwellings []*model.Parcel, n int) int {
	removed := 0
	for removed < n {
		best := -1
		for i, d := range dwellings {
			if d.Residents <= 1 {
				continue
			}
			if best < 0 ||
				d.Residents > dwellings[best].Residents ||
				(d.Residents == dwellings[best].Residents && d.Area() < dwellings[best].Area()) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		dwellings[best].Residents--
		removed++
	}
	return removed
}

func indexOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
