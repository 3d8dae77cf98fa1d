package report

import (
	"io"
	"strconv"

	"github.com/sells-group/residents-cli/internal/allocate"
)

// WriteAudit renders the allocation audit: census population against
// assigned residents for every neighbourhood of a run.
func WriteAudit(w io.Writer, h Header, res *allocate.Result) error {
	d := newDoc()
	if h.Title == "" {
		h.Title = "RESIDENT ALLOCATION AUDIT"
		h.Subtitle = "Census Population vs Assigned Residents by Neighbourhood"
	}
	d.header(h)

	pop, assigned := res.Totals()
	mismatched, exhausted := 0, 0
	for _, s := range res.Summaries {
		if s.Population != nil && *s.Population > 0 && s.Residual() != 0 {
			mismatched++
		}
		exhausted += s.PoolExhausted
	}

	d.line("RUN")
	d.rule("-")
	run := [][]string{
		{"Run ID:", res.RunID},
		{"Method:", string(res.Method)},
	}
	if res.Method == allocate.MethodPool {
		run = append(run, []string{"Seed:", strconv.FormatUint(res.Seed, 10)})
	} else {
		run = append(run, []string{"Quota mode:", string(res.QuotaMode)})
	}
	d.table(run)

	d.section("SUMMARY")
	d.table([][]string{
		{"Parcels:", d.n("%d", len(res.Parcels))},
		{"Parcels without neighbourhood:", d.n("%d", res.Unassigned)},
		{"Neighbourhoods:", d.n("%d", len(res.Summaries))},
		{"Census population:", d.n("%d", pop)},
		{"Assigned residents:", d.n("%d", assigned)},
		{"Difference:", d.n("%d", assigned-pop)},
		{"Neighbourhoods off census:", d.n("%d", mismatched)},
		{"Pool fallback draws:", d.n("%d", exhausted)},
	})

	d.section("NEIGHBOURHOODS")
	rows := [][]string{{"ID", "Name", "Parcels", "Units", "Population", "Assigned", "Residual", "Fallback"}}
	for _, s := range res.Summaries {
		census := "-"
		if s.Population != nil {
			census = d.n("%d", *s.Population)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Name,
			d.n("%d", s.Parcels),
			d.n("%.1f", s.DwellingUnits),
			census,
			d.n("%d", s.Assigned),
			d.n("%d", s.Residual()),
			d.n("%d", s.PoolExhausted),
		})
	}
	d.table(rows)
	d.rule("=")

	return d.writeTo(w, "audit")
}
