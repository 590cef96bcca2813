package tablex

import (
	"sort"
	"strings"
	"unicode"

	"github.com/Abraxas-365/saenggibu/pkg/ocr"
)

// PageText is one free-floating text field and its vertical position.
type PageText struct {
	Text string
	TopY float64
}

// IndexPage returns the page's non-blank fields ordered top to bottom.
// Fields without geometry are dropped.
func IndexPage(page ocr.Page) []PageText {
	out := make([]PageText, 0, len(page.Fields))
	for _, f := range page.Fields {
		text := strings.TrimSpace(f.InferText)
		if text == "" {
			continue
		}
		y, ok := f.BoundingPoly.TopY()
		if !ok {
			continue
		}
		out = append(out, PageText{Text: text, TopY: y})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TopY < out[j].TopY })
	return out
}

// TableText joins every non-empty trimmed word of the table with spaces,
// in cell, line and word order.
func TableText(table ocr.Table) string {
	var words []string
	for _, cell := range table.Cells {
		for _, w := range cell.Words() {
			if t := strings.TrimSpace(w); t != "" {
				words = append(words, t)
			}
		}
	}
	return strings.Join(words, " ")
}

// TopY is the smallest vertex y across all cells. It reports false when no
// cell carries geometry.
func TopY(table ocr.Table) (float64, bool) {
	var (
		minY  float64
		found bool
	)
	for _, cell := range table.Cells {
		y, ok := cell.BoundingPoly.MinY()
		if !ok {
			continue
		}
		if !found || y < minY {
			minY = y
			found = true
		}
	}
	return minY, found
}

// RowWords concatenates the words of every cell in row r without separators.
func RowWords(table ocr.Table, r int) string {
	var b strings.Builder
	for _, cell := range table.Cells {
		if cell.RowIndex != r {
			continue
		}
		for _, w := range cell.Words() {
			b.WriteString(w)
		}
	}
	return b.String()
}

// AllWords concatenates every word of the table without separators.
func AllWords(table ocr.Table) string {
	var b strings.Builder
	for _, cell := range table.Cells {
		for _, w := range cell.Words() {
			b.WriteString(w)
		}
	}
	return b.String()
}

// StripSpace removes all whitespace from s.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// FirstNumber returns the first run of ASCII digits in s.
func FirstNumber(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return atoi(s[start:i]), true
		}
	}
	if start >= 0 {
		return atoi(s[start:]), true
	}
	return 0, false
}

func atoi(digits string) int {
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return n
}
