package report

import (
	"encoding/csv"
	"os"

	"bifacial-compare/internal/analysis"
)

// WriteResultsCSV writes the result table with the same columns as the workbook.
func WriteResultsCSV(path string, t *analysis.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(Headers(t.Mode)); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := w.Write(cells(r)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
