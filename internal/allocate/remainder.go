// Package allocate distributes neighbourhood census population to parcels.
package allocate

import (
	"math"
	"sort"
)

// largestRemainder apportions total integer units across shares: each share
// is floored, then the leftover goes one unit at a time to the shares with
// the largest fractional remainder. Equal remainders go to the lower index.
// Shares must be non-negative; they are not required to sum to total.
func largestRemainder(shares []float64, total int) []int {
	out := make([]int, len(shares))
	if len(shares) == 0 {
		return out
	}

	rem := make([]float64, len(shares))
	sum := 0
	for i, s := range shares {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		f := math.Floor(s)
		out[i] = int(f)
		rem[i] = s - f
		sum += out[i]
	}

	leftover := total - sum
	if leftover <= 0 {
		return out
	}

	order := indexOrder(len(shares))
	sort.SliceStable(order, func(a, b int) bool {
		return rem[order[a]] > rem[order[b]]
	})

	for i := 0; leftover > 0; i = (i + 1) % len(order) {
		out[order[i]]++
		leftover--
	}
	return out
}
