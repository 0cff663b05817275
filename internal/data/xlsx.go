package data

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadSheet loads one sheet of a workbook as a Table. The first non-empty row is
// the header; blank rows are skipped but the sheet row numbers are kept.
func ReadSheet(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &MissingFieldError{Source: path, Sheet: sheet}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	t := &Table{Source: path, Sheet: sheet}
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if t.Headers == nil {
			t.Headers = trimAll(row)
			continue
		}
		t.Rows = append(t.Rows, row)
		t.RowNumbers = append(t.RowNumbers, i+1)
	}
	if t.Headers == nil {
		return nil, &MissingFieldError{Source: path, Sheet: sheet, Field: "header row"}
	}
	return t, nil
}

// WriteSheet writes a Table to a new single-sheet workbook. Cells that parse as
// numbers are stored as numbers.
func WriteSheet(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		return err
	}
	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			if x, err := strconv.ParseFloat(v, 64); err == nil {
				cells[i] = x
			} else {
				cells[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Sheet, cell, &cells); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
