package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leengari/docsim/internal/engine"
	"github.com/leengari/docsim/internal/operators"
	"github.com/leengari/docsim/internal/sizing"
)

// Options controls rendering
type Options struct {
	Plain bool // ASCII headings, no terminal styling
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8B5CF6")).
			BorderStyle(lipgloss.DoubleBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#334155"))

	layoutStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8FAFC"))

	noteStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#CBD5E1"))
)

const ruleWidth = 80

// Writer renders an analysis as text tables
type Writer struct {
	w    io.Writer
	opts Options
	p    *message.Printer
}

func New(w io.Writer, opts Options) *Writer {
	return &Writer{
		w:    w,
		opts: opts,
		p:    message.NewPrinter(language.English),
	}
}

// Write renders every section of the analysis
func (rw *Writer) Write(a *engine.Analysis) error {
	rw.header(fmt.Sprintf("Scenario %s (%d servers)", a.Scenario, a.Servers))

	rw.header("Denormalizations, Document Sizes, Collection Sizes, DB Sizes")
	for _, l := range a.Layouts {
		if err := rw.Layout(l); err != nil {
			return err
		}
	}

	rw.header("Sharding Strategies - Averages per Server")
	if err := rw.Shards(a); err != nil {
		return err
	}

	if len(a.Queries) > 0 {
		rw.header("Operator Costs")
		if err := rw.Queries(a.Queries); err != nil {
			return err
		}
	}
	return nil
}

// Layout renders the document and collection sizes of one layout
func (rw *Writer) Layout(l engine.LayoutReport) error {
	fmt.Fprintln(rw.w)
	fmt.Fprintln(rw.w, rw.style(layoutStyle, l.Layout))
	fmt.Fprintln(rw.w, strings.Repeat("-", ruleWidth))

	tw := tabwriter.NewWriter(rw.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Collection\tDocuments\tAvg doc size (B)\tCollection size (GiB)")
	for _, c := range l.Collections {
		rw.p.Fprintf(tw, "%s\t%d\t%.0f\t%.3f\n", c.Name, c.Documents, c.DocumentBytes, sizing.GiB(c.TotalBytes))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	rw.p.Fprintf(rw.w, "\nTotal Database Size (GiB): %.3f GiB\n", sizing.GiB(l.TotalBytes))
	if l.Description != "" {
		fmt.Fprintln(rw.w, rw.style(noteStyle, "  - "+l.Description))
	}
	return nil
}

// Shards renders one line per shard-key scenario
func (rw *Writer) Shards(a *engine.Analysis) error {
	tw := tabwriter.NewWriter(rw.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Strategy\tCollection\tDocs/server\tDistinct values/server")
	for _, r := range a.Shards {
		rw.p.Fprintf(tw, "%s\t%s\t%.1f\t%.3f\n", r.Label, r.Collection, r.DocsPerServer, r.DistinctPerServer)
	}
	return tw.Flush()
}

// Queries renders both sharding variants of every workload query
func (rw *Writer) Queries(runs []engine.QueryRun) error {
	tw := tabwriter.NewWriter(rw.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Query\tLayout\tOperator\tOutput rows\tOutput (B)\tScanned (GB)\tShards\tTime (s)\tCarbon (kg)\tPrice ($)")
	for _, run := range runs {
		for _, res := range []operators.Result{run.Sharded, run.Unsharded} {
			rw.p.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.0f\t%.3f\t%d\t%.3f\t%.6f\t%.4f\n",
				run.Query.ID,
				run.Query.Layout,
				res.Name,
				res.OutputRows,
				res.OutputBytes,
				res.ScannedBytes/1e9,
				res.ShardsTouched,
				res.TimeSeconds,
				res.CarbonKg,
				res.PriceUSD,
			)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(rw.w)
	for _, run := range runs {
		if run.Query.Title != "" {
			fmt.Fprintf(rw.w, "%s: %s\n", run.Query.ID, run.Query.Title)
		}
	}
	return nil
}

func (rw *Writer) header(title string) {
	fmt.Fprintln(rw.w)
	if rw.opts.Plain {
		fmt.Fprintln(rw.w, strings.Repeat("=", ruleWidth))
		fmt.Fprintln(rw.w, title)
		fmt.Fprintln(rw.w, strings.Repeat("=", ruleWidth))
		return
	}
	fmt.Fprintln(rw.w, titleStyle.Width(ruleWidth).Render(title))
}

func (rw *Writer) style(s lipgloss.Style, text string) string {
	if rw.opts.Plain {
		return text
	}
	return s.Render(text)
}
