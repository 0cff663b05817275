package report

import (
	"strconv"

	"bifacial-compare/internal/model"
)

// Headers are the result table columns for a mode.
func Headers(mode model.Mode) []string {
	return []string{
		mode.KeyHeader(),
		"Max BPV Power AC (W)",
		"Max MPV Power AC (W)",
		"Percent Difference AC (%)",
		"Max BPV Power DC (W)",
		"Max MPV Power DC (W)",
		"Percent Difference DC (%)",
		"Status",
	}
}

// numbers are the six numeric cells of a row in column order.
func numbers(r model.RunResult) []float64 {
	return []float64{
		r.BifacialPeakAC,
		r.MonofacialPeakAC,
		r.PercentDiffAC,
		r.BifacialPeakDC,
		r.MonofacialPeakDC,
		r.PercentDiffDC,
	}
}

// cells renders a row as text. Sentinel rows leave the numeric cells blank.
func cells(r model.RunResult) []string {
	out := []string{r.Label}
	for _, v := range numbers(r) {
		if r.Computed() {
			out = append(out, fmtFloat(v))
		} else {
			out = append(out, "")
		}
	}
	return append(out, string(r.Status))
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
