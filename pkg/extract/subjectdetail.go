package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/tablex"
	"golang.org/x/text/unicode/norm"
)

const (
	notApplicable = "해당 사항 없음"

	electiveMarker      = "자율적교육과정"
	electiveMarkerLabel = "자율적 교육과정"

	minDetailRunes = 30
)

// SubjectDetail is one subject's narrative segment.
type SubjectDetail struct {
	Subject string `json:"과목"`
	Content string `json:"내용"`
}

// NormalizeSubject folds compatibility characters (Roman numerals,
// full-width punctuation) and removes all whitespace, so "화학 Ⅱ" becomes
// "화학II".
func NormalizeSubject(s string) string {
	return tablex.StripSpace(norm.NFKC.String(s))
}

// SubjectSet is an immutable set of normalized subject names ordered
// longest first.
type SubjectSet struct {
	names []string
}

// NewSubjectSet normalizes and deduplicates names. Blank names are dropped.
func NewSubjectSet(names ...string) SubjectSet {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeSubject(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return SubjectSet{names: out}
}

// SubjectsFromGrades collects the subject names of the grade records.
func SubjectsFromGrades(records []GradeRecord) SubjectSet {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.SubjectName)
	}
	return NewSubjectSet(names...)
}

// Names returns a copy of the ordered names.
func (s SubjectSet) Names() []string {
	return append([]string(nil), s.names...)
}

func (s SubjectSet) Len() int { return len(s.names) }

// SubjectDetailText joins the body of every subject-detail table in
// document order. Header rows are skipped.
func SubjectDetailText(pages []classify.Page) string {
	var parts []string
	for _, p := range pages {
		for _, t := range p.Tables {
			if t.Category == classify.SubjectDetail {
				parts = append(parts, detailBody(t.Raw))
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func detailBody(table ocr.Table) string {
	cells := make([]ocr.Cell, 0, len(table.Cells))
	for _, c := range table.Cells {
		if c.RowIndex != 0 {
			cells = append(cells, c)
		}
	}
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].RowIndex != cells[j].RowIndex {
			return cells[i].RowIndex < cells[j].RowIndex
		}
		return cells[i].ColumnIndex < cells[j].ColumnIndex
	})

	var lines []string
	for _, c := range cells {
		for _, line := range c.CellTextLines {
			words := make([]string, 0, len(line.CellWords))
			for _, w := range line.CellWords {
				words = append(words, w.InferText)
			}
			lines = append(lines, strings.Join(words, " "))
		}
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

// SplitSubjectDetails cuts text into per-subject segments anchored on
// "<subject>:". The text is normalized like subject names first, so
// whitespace is removed everywhere and the emitted content carries none.
// A segment runs until the next anchor or the end of text. Segments
// shorter than 30 characters are treated as incidental mentions and
// dropped.
func SplitSubjectDetails(text string, subjects SubjectSet) []SubjectDetail {
	out := []SubjectDetail{}
	if strings.TrimSpace(text) == "" || strings.Contains(text, notApplicable) {
		return out
	}

	re, err := anchorPattern(subjects)
	if err != nil {
		return out
	}

	text = NormalizeSubject(text)
	matches := re.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := text[m[1]:end]
		if utf8.RuneCountInString(content) < minDetailRunes {
			continue
		}

		subject := text[m[2]:m[3]]
		if subject == electiveMarker {
			subject = electiveMarkerLabel
		}
		out = append(out, SubjectDetail{Subject: subject, Content: content})
	}
	return out
}

// anchorPattern builds "(name|...):" with names longest first, since the
// first matching alternative wins.
func anchorPattern(subjects SubjectSet) (*regexp.Regexp, error) {
	alts := make([]string, 0, subjects.Len()+1)
	for _, name := range subjects.names {
		alts = append(alts, regexp.QuoteMeta(name))
	}
	alts = append(alts, electiveMarker)
	return regexp.Compile(`(` + strings.Join(alts, "|") + `):`)
}
