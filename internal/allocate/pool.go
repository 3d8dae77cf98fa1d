package allocate

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/sells-group/residents-cli/internal/household"
	"github.com/sells-group/residents-cli/internal/model"
)

var tenures = [2]model.Tenure{model.TenureOwned, model.TenureRented}

// PoolAllocator deals household sizes, drawn from city-wide statistics per
// tenure, to the dwelling units of one neighbourhood at a time.
type PoolAllocator struct {
	dist *household.Distribution
	seed uint64
}

// NewPoolAllocator returns an allocator over dist. Every neighbourhood is
// shuffled with its own generator derived from seed and the neighbourhood id.
func NewPoolAllocator(dist *household.Distribution, seed uint64) *PoolAllocator {
	return &PoolAllocator{dist: dist, seed: seed}
}

// PoolOutcome describes one neighbourhood's pools.
type PoolOutcome struct {
	Units     [2]int   // draws required per tenure (owned, rented)
	Pools     [2][]int // shuffled household sizes per tenure
	Scale     float64  // census population / raw population
	Exhausted int      // draws served by the 1-per-unit fallback
}

// Allocate sets Residents on every parcel of n from the household pools,
// before conservation. Unoccupied parcels and neighbourhoods without a
// positive population get 0.
func (a *PoolAllocator) Allocate(n *Neighbourhood) PoolOutcome {
	var out PoolOutcome
	for _, p := range n.Parcels {
		p.Residents = 0
	}

	pop := n.population()
	if pop <= 0 {
		return out
	}

	var unitTotal [2]float64
	for _, p := range n.Parcels {
		if !p.Occupied() {
			continue
		}
		t := tenureIndex(p.Tenure)
		unitTotal[t] += p.DwellingUnits
		out.Units[t] += draws(p)
	}

	var raw [2][household.Sizes]float64
	rawTotal := 0.0
	for t, tn := range tenures {
		for s := 1; s <= household.Sizes; s++ {
			raw[t][s-1] = a.dist.Pct(tn, s) / 100 * unitTotal[t] * float64(s)
			rawTotal += raw[t][s-1]
		}
	}
	if rawTotal > 0 {
		out.Scale = float64(pop) / rawTotal
	}

	rng := rand.New(rand.NewPCG(a.seed, uint64(int64(n.ID))))
	for t := range tenures {
		var exact [household.Sizes]float64
		for s := 1; s <= household.Sizes; s++ {
			exact[s-1] = raw[t][s-1] * out.Scale / float64(s)
		}
		pool := buildPool(exact[:], out.Units[t])
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		out.Pools[t] = pool
	}

	var next [2]int
	for _, p := range n.Parcels {
		if !p.Occupied() {
			continue
		}
		t := tenureIndex(p.Tenure)
		pool := out.Pools[t]
		want := draws(p)
		for range want {
			if next[t] < len(pool) {
				p.Residents += pool[next[t]]
				next[t]++
				continue
			}
			p.Residents++
			out.Exhausted++
		}
		if p.Residents < 1 {
			p.Residents = 1
		}
	}

	if out.Exhausted > 0 {
		zap.L().Warn("allocate: household pool exhausted",
			zap.Int("neighbourhood_id", n.ID),
			zap.Int("fallback_draws", out.Exhausted),
		)
	}
	return out
}

// buildPool converts per-size household counts into a flat pool of exactly
// units household sizes. The counts are rescaled to units before
// largest-remainder rounding; an all-zero input yields an empty pool.
func buildPool(exact []float64, units int) []int {
	sum := 0.0
	for _, e := range exact {
		sum += e
	}
	if sum <= 0 || units <= 0 {
		return nil
	}

	shares := make([]float64, len(exact))
	for i, e := range exact {
		shares[i] = e * float64(units) / sum
	}
	counts := largestRemainder(shares, units)

	pool := make([]int, 0, units)
	for i, c := range counts {
		for range c {
			pool = append(pool, i+1)
		}
	}
	return pool
}

// draws is the number of household sizes a parcel consumes.
func draws(p *model.Parcel) int {
	return int(math.Round(p.DwellingUnits))
}

func tenureIndex(t model.Tenure) int {
	if t == model.TenureOwned {
		return 0
	}
	return 1
}
