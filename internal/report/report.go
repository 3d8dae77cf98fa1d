// Package report renders the plain-text reports that accompany a run: the
// tenure classification of property use codes, the per-neighbourhood
// allocation audit and the geometry aggregation summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ruleWidth = 100

// Header is printed at the top of every report.
type Header struct {
	Title     string
	Subtitle  string
	Source    string
	Generated time.Time
}

// doc accumulates a report in memory so that a failed write surfaces once.
type doc struct {
	b strings.Builder
	p *message.Printer
}

func newDoc() *doc {
	return &doc{p: message.NewPrinter(language.English)}
}

func (d *doc) line(format string, args ...any) {
	d.p.Fprintf(&d.b, format, args...)
	d.b.WriteByte('\n')
}

func (d *doc) blank() { d.b.WriteByte('\n') }

func (d *doc) rule(ch string) { d.line("%s", strings.Repeat(ch, ruleWidth)) }

func (d *doc) header(h Header) {
	d.rule("=")
	d.line("%s", h.Title)
	if h.Subtitle != "" {
		d.line("%s", h.Subtitle)
	}
	d.rule("=")
	if !h.Generated.IsZero() {
		d.line("Generated: %s", h.Generated.Format(time.DateTime))
	}
	if h.Source != "" {
		d.line("Data Source: %s", h.Source)
	}
	d.blank()
}

func (d *doc) section(title string) {
	d.blank()
	d.line("%s", title)
	d.rule("-")
}

// table writes tab-separated rows aligned in columns.
func (d *doc) table(rows [][]string) {
	tw := tabwriter.NewWriter(&d.b, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

// n formats a number with thousands separators.
func (d *doc) n(format string, v any) string {
	return d.p.Sprintf(format, v)
}

func (d *doc) writeTo(w io.Writer, name string) error {
	if _, err := io.WriteString(w, d.b.String()); err != nil {
		return eris.Wrapf(err, "report: write %s", name)
	}
	return nil
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
