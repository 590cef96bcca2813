package tablex

import (
	"sort"
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/ocr"
)

// Matrix is the dense text grid rebuilt from a table's cell list.
// Rows may have different widths.
type Matrix [][]string

// Reconstruct builds a Matrix from an unordered, possibly sparse cell list.
// Each row is as wide as its largest observed column index plus one, and
// missing positions are filled with "". A table with no cells yields an
// empty Matrix.
func Reconstruct(table ocr.Table) Matrix {
	rows := make(map[int]map[int]string)
	for _, cell := range table.Cells {
		if cell.RowIndex < 0 || cell.ColumnIndex < 0 {
			continue
		}
		row, ok := rows[cell.RowIndex]
		if !ok {
			row = make(map[int]string)
			rows[cell.RowIndex] = row
		}
		row[cell.ColumnIndex] = cell.Text()
	}

	if len(rows) == 0 {
		return Matrix{}
	}

	indices := make([]int, 0, len(rows))
	for r := range rows {
		indices = append(indices, r)
	}
	sort.Ints(indices)

	m := make(Matrix, 0, len(indices))
	for _, r := range indices {
		cols := rows[r]
		width := 0
		for c := range cols {
			if c+1 > width {
				width = c + 1
			}
		}
		line := make([]string, width)
		for c := 0; c < width; c++ {
			line[c] = cols[c]
		}
		m = append(m, line)
	}
	return m
}

// Header returns row 0, or nil for an empty matrix.
func (m Matrix) Header() []string {
	if len(m) == 0 {
		return nil
	}
	return m[0]
}

// HeaderText is row 0 joined with single spaces.
func (m Matrix) HeaderText() string {
	return strings.Join(m.Header(), " ")
}

// Cell returns the text at (r, c) and whether that position exists.
func (m Matrix) Cell(r, c int) (string, bool) {
	if r < 0 || r >= len(m) || c < 0 || c >= len(m[r]) {
		return "", false
	}
	return m[r][c], true
}
