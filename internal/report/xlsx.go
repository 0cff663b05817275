package report

import (
	"fmt"

	"bifacial-compare/internal/analysis"

	"github.com/xuri/excelize/v2"
)

// WriteResultsXLSX writes the result table to a single-sheet workbook named after
// the mode ("albedo_results" or "location_results"). Numeric cells are numbers;
// sentinel rows leave them empty.
func WriteResultsXLSX(path string, t *analysis.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Mode.ResultSheet()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := Headers(t.Mode)
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i, r := range t.Rows {
		row := make([]interface{}, 0, len(headers))
		row = append(row, r.Label)
		for _, v := range numbers(r) {
			if r.Computed() {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, string(r.Status))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "H", 16); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
