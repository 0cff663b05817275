package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/data"
)

// PrintTables writes the banner, the raw input table and the result table.
func PrintTables(out io.Writer, input *data.Table, t *analysis.Table) error {
	banner := strings.Repeat("=", 60)
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, "SIMULATION RESULTS")
	fmt.Fprintln(out, banner)

	if input != nil {
		fmt.Fprintf(out, "\nInput (%s):\n", describe(input))
		if err := writeTable(out, input.Headers, input.Rows); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nOutput:")
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = cells(r)
	}
	if err := writeTable(out, Headers(t.Mode), rows); err != nil {
		return err
	}

	s := t.Summary()
	fmt.Fprintf(out, "\n%d scenarios, %d ok, %d failed", s.Total, s.OK, s.Failed)
	if s.OK > 0 {
		fmt.Fprintf(out, "; mean difference AC %.2f%%, DC %.2f%%; largest AC gain %s (%.2f%%)",
			s.MeanPercentDiffAC, s.MeanPercentDiffDC, s.Best, s.BestPercentDiffAC)
	}
	fmt.Fprintln(out)
	return nil
}

func describe(t *data.Table) string {
	if t.Sheet == "" {
		return t.Source
	}
	return fmt.Sprintf("%s, sheet %s", t.Source, t.Sheet)
}

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(tw, "\t"+strings.Join(headers, "\t")+"\t")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t\n", i, strings.Join(r, "\t"))
	}
	return tw.Flush()
}
