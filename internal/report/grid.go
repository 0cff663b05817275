package report

// GridIndex places scenario i in a column-major grid with rowsPerColumn rows.
func GridIndex(i, rowsPerColumn int) (col, row int) {
	if rowsPerColumn < 1 {
		rowsPerColumn = 1
	}
	return i / rowsPerColumn, i % rowsPerColumn
}

// GridShape is the number of columns and rows needed for n panels.
func GridShape(n, rowsPerColumn int) (cols, rows int) {
	if rowsPerColumn < 1 {
		rowsPerColumn = 1
	}
	if n <= 0 {
		return 0, 0
	}
	cols = (n + rowsPerColumn - 1) / rowsPerColumn
	rows = rowsPerColumn
	if n < rows {
		rows = n
	}
	return cols, rows
}
