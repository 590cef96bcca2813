// Package ocrtest builds OCR documents for tests.
package ocrtest

import (
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/ocr"
)

// Cell builds a cell whose words are the whitespace-separated tokens of text,
// all on one line. The cell box starts at y and is 20px tall.
func Cell(row, col int, text string, y float64) ocr.Cell {
	words := make([]ocr.CellWord, 0)
	for _, w := range strings.Fields(text) {
		words = append(words, ocr.CellWord{InferText: w})
	}
	return ocr.Cell{
		RowIndex:      row,
		ColumnIndex:   col,
		CellTextLines: []ocr.CellLine{{CellWords: words}},
		BoundingPoly:  Box(float64(col*100), y, 100, 20),
	}
}

// Grid builds a table from rows of cell texts. Row r sits at top+r*20.
// Empty strings produce no cell, leaving a gap in the table.
func Grid(top float64, rows ...[]string) ocr.Table {
	var t ocr.Table
	for r, row := range rows {
		for c, text := range row {
			if text == "" {
				continue
			}
			t.Cells = append(t.Cells, Cell(r, c, text, top+float64(r*20)))
		}
	}
	return t
}

// Field builds a free text field whose first vertex is at y.
func Field(text string, y float64) ocr.Field {
	return ocr.Field{InferText: text, BoundingPoly: Box(0, y, 200, 20)}
}

// Box returns a clockwise rectangle starting at the top-left corner.
func Box(x, y, w, h float64) ocr.BoundingPoly {
	return ocr.BoundingPoly{Vertices: []ocr.Vertex{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}}
}
