package data

import "fmt"

// MissingFieldError reports a mandatory input parameter that is absent: a missing
// sheet, a missing column, or an empty cell in a required column.
type MissingFieldError struct {
	Source string // file path or "config"
	Sheet  string
	Field  string
	Row    int // 1-based spreadsheet row, 0 when the whole column or sheet is missing
}

func (e *MissingFieldError) Error() string {
	where := e.Source
	if e.Sheet != "" {
		where += fmt.Sprintf(" sheet %q", e.Sheet)
	}
	if e.Row > 0 {
		return fmt.Sprintf("%s: row %d: missing value for %q", where, e.Row, e.Field)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: sheet not found", where)
	}
	return fmt.Sprintf("%s: missing required field %q", where, e.Field)
}
