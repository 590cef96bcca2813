package ocr

import (
	"context"
	"strings"
)

// ============================================================================
// Capabilities
// ============================================================================

// Recognizer runs OCR with table detection over a single page image.
type Recognizer interface {
	Recognize(ctx context.Context, image Image, opts ...Option) (*Page, error)
}

// Image is one rasterized page handed to a Recognizer.
type Image struct {
	// Name identifies the page to the provider (e.g. "page_1")
	Name string

	// Format is the image encoding: "jpg", "png", "tiff", "pdf"
	Format string

	Data []byte
}

// ============================================================================
// Result Model
// ============================================================================

// Document is the full OCR result of a multi-page scan. The JSON layout
// matches the provider response so stored results can be replayed as-is.
type Document struct {
	Images []Page `json:"images"`
}

// Page holds everything detected on one page image.
type Page struct {
	Name   string  `json:"name,omitempty"`
	Fields []Field `json:"fields"`
	Tables []Table `json:"tables"`

	// InferResult is the provider status for this page ("SUCCESS", "FAILURE", ...)
	InferResult string `json:"inferResult,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Field is a free-floating text token outside of any table.
type Field struct {
	InferText    string       `json:"inferText"`
	BoundingPoly BoundingPoly `json:"boundingPoly"`
}

// Table is a detected grid. Cells arrive in no particular order.
type Table struct {
	Cells []Cell `json:"cells"`
}

// Cell is one table cell. RowIndex and ColumnIndex may be sparse.
type Cell struct {
	RowIndex      int          `json:"rowIndex"`
	ColumnIndex   int          `json:"columnIndex"`
	RowSpan       int          `json:"rowSpan,omitempty"`
	ColumnSpan    int          `json:"columnSpan,omitempty"`
	CellTextLines []CellLine   `json:"cellTextLines"`
	BoundingPoly  BoundingPoly `json:"boundingPoly"`
}

type CellLine struct {
	CellWords []CellWord `json:"cellWords"`
}

type CellWord struct {
	InferText string `json:"inferText"`
}

// BoundingPoly is a polygon in page pixel coordinates.
type BoundingPoly struct {
	Vertices []Vertex `json:"vertices"`
}

type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ============================================================================
// Accessors
// ============================================================================

// Text returns the cell text: words space-joined per line, lines space-joined.
func (c Cell) Text() string {
	lines := make([]string, 0, len(c.CellTextLines))
	for _, line := range c.CellTextLines {
		words := make([]string, 0, len(line.CellWords))
		for _, w := range line.CellWords {
			words = append(words, w.InferText)
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

// Words returns every word of the cell in line order, untrimmed.
func (c Cell) Words() []string {
	var words []string
	for _, line := range c.CellTextLines {
		for _, w := range line.CellWords {
			words = append(words, w.InferText)
		}
	}
	return words
}

// TopY returns the y of the first vertex, the position the provider reports
// as the top-left corner.
func (p BoundingPoly) TopY() (float64, bool) {
	if len(p.Vertices) == 0 {
		return 0, false
	}
	return p.Vertices[0].Y, true
}

// MinY returns the smallest vertex y.
func (p BoundingPoly) MinY() (float64, bool) {
	if len(p.Vertices) == 0 {
		return 0, false
	}
	minY := p.Vertices[0].Y
	for _, v := range p.Vertices[1:] {
		if v.Y < minY {
			minY = v.Y
		}
	}
	return minY, true
}

// TableCount returns the number of tables across all pages.
func (d *Document) TableCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.Images {
		n += len(p.Tables)
	}
	return n
}

// MergePages concatenates per-page recognition results in page order.
func MergePages(pages []*Page) *Document {
	doc := &Document{Images: make([]Page, 0, len(pages))}
	for _, p := range pages {
		if p == nil {
			continue
		}
		doc.Images = append(doc.Images, *p)
	}
	return doc
}
