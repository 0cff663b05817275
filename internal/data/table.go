package data

import (
	"strconv"
	"strings"
)

// Table is a raw rectangular input table: one header row plus data rows, as read
// from a spreadsheet sheet. It is kept for the console dump of the input.
type Table struct {
	Source  string
	Sheet   string
	Headers []string
	Rows    [][]string
	// RowNumbers holds the 1-based sheet row of each entry in Rows. When nil the
	// header is taken to sit in row 1 with the data directly below it.
	RowNumbers []int
}

// RowNumber returns the sheet row that data row r was read from.
func (t *Table) RowNumber(r int) int {
	if r < len(t.RowNumbers) {
		return t.RowNumbers[r]
	}
	return r + 2
}

// Column returns the index of the named column (exact, then case-insensitive match).
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Headers {
		if h == name {
			return i, true
		}
	}
	for i, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, true
		}
	}
	return -1, false
}

// requireColumns resolves every named column or fails naming the first missing one.
func (t *Table) requireColumns(names ...string) (map[string]int, error) {
	out := make(map[string]int, len(names))
	for _, n := range names {
		idx, ok := t.Column(n)
		if !ok {
			return nil, &MissingFieldError{Source: t.Source, Sheet: t.Sheet, Field: n}
		}
		out[n] = idx
	}
	return out, nil
}

// cell returns the trimmed value at row r, column c ("" when the row is short).
func (t *Table) cell(r, c int) string {
	row := t.Rows[r]
	if c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func (t *Table) requiredString(r, c int, field string) (string, error) {
	v := t.cell(r, c)
	if v == "" {
		return "", &MissingFieldError{Source: t.Source, Sheet: t.Sheet, Field: field, Row: t.RowNumber(r)}
	}
	return v, nil
}

func (t *Table) requiredFloat(r, c int, field string) (float64, error) {
	v, err := t.requiredString(r, c, field)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ParseError{Source: t.Source, Sheet: t.Sheet, Field: field, Row: t.RowNumber(r), Value: v}
	}
	return f, nil
}

// ParseError reports a cell that is present but not a number.
type ParseError struct {
	Source string
	Sheet  string
	Field  string
	Row    int
	Value  string
}

func (e *ParseError) Error() string {
	return e.Source + " sheet \"" + e.Sheet + "\": row " + strconv.Itoa(e.Row) +
		": " + strconv.Quote(e.Value) + " is not a number (" + e.Field + ")"
}
