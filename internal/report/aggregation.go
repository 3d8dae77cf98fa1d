package report

import (
	"io"
	"sort"

	"github.com/sells-group/residents-cli/internal/aggregate"
)

const maxCountRows = 20

// WriteAggregation renders the geometry aggregation summary: how many
// parcels collapsed into shared footprints and whether residents survived
// the merge.
func WriteAggregation(w io.Writer, h Header, groups []*aggregate.Group, stats aggregate.Stats, residentsBefore int) error {
	d := newDoc()
	if h.Title == "" {
		h.Title = "PARCEL GEOMETRY AGGREGATION REPORT"
		h.Subtitle = "Residential Parcels Grouped by Identical Geographic Location"
	}
	d.header(h)

	grouped := stats.Parcels - stats.NoGeometry
	d.line("EXECUTIVE SUMMARY")
	d.rule("-")
	d.table([][]string{
		{"Original residential parcels:", d.n("%d", stats.Parcels)},
		{"Parcels without geometry:", d.n("%d", stats.NoGeometry)},
		{"Unique geographic locations:", d.n("%d", len(groups))},
		{"Parcels aggregated:", d.n("%d", grouped-len(groups)), d.n("(%.1f%%)", pct(float64(grouped-len(groups)), float64(grouped)))},
		{"Locations with conflicting attributes:", d.n("%d", stats.Conflicting)},
	})

	freq := make(map[int]int)
	residentsAfter, multi := 0, 0
	for _, g := range groups {
		freq[len(g.RollNumbers)]++
		residentsAfter += g.Residents
		if len(g.RollNumbers) > 1 {
			multi++
		}
	}
	counts := make([]int, 0, len(freq))
	for c := range freq {
		counts = append(counts, c)
	}
	sort.Ints(counts)

	d.section("PARCEL COUNT DISTRIBUTION")
	rows := [][]string{{"Parcels", "Locations", "Share"}}
	for i, c := range counts {
		if i == maxCountRows {
			rest := 0
			for _, r := range counts[i:] {
				rest += freq[r]
			}
			rows = append(rows, []string{"...", d.n("%d", rest), d.n("(%d more sizes)", len(counts)-i)})
			break
		}
		rows = append(rows, []string{d.n("%d", c), d.n("%d", freq[c]), d.n("%.1f%%", pct(float64(freq[c]), float64(len(groups))))})
	}
	d.table(rows)
	d.blank()
	d.table([][]string{
		{"Maximum parcels in single location:", d.n("%d", stats.MaxGroupSize)},
		{"Locations with multiple parcels:", d.n("%d", multi), d.n("(%.1f%%)", pct(float64(multi), float64(len(groups))))},
		{"Locations with single parcel:", d.n("%d", len(groups)-multi), d.n("(%.1f%%)", pct(float64(len(groups)-multi), float64(len(groups))))},
	})

	d.section("RESIDENT STATISTICS")
	diff := residentsBefore - residentsAfter
	if diff < 0 {
		diff = -diff
	}
	d.table([][]string{
		{"Total residents (original):", d.n("%d", residentsBefore)},
		{"Total residents (aggregated):", d.n("%d", residentsAfter)},
		{"Difference:", d.n("%d", diff)},
	})
	d.rule("=")

	return d.writeTo(w, "aggregation")
}
