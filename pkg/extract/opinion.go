package extract

import (
	"sort"
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/tablex"
)

const (
	opinionHeading   = "행동특성및종합의견"
	opinionYearLabel = "학년"

	// ContentKey is the JSON key of narrative content.
	ContentKey = "내용"
)

// OverallOpinion joins the body of every overall-opinion table in document
// order. It returns an empty map when no table yields text.
func OverallOpinion(pages []classify.Page) map[string]string {
	var texts []string
	for _, p := range pages {
		for _, t := range p.Tables {
			if t.Category != classify.OverallOpinion {
				continue
			}
			if text := opinionText(t.Raw); text != "" {
				texts = append(texts, text)
			}
		}
	}
	if len(texts) == 0 {
		return map[string]string{}
	}
	return map[string]string{ContentKey: strings.Join(texts, " ")}
}

type colText struct {
	col  int
	text string
}

// opinionText rebuilds the table row by row and drops heading rows.
func opinionText(table ocr.Table) string {
	rows := map[int][]colText{}
	for _, c := range table.Cells {
		var words []string
		for _, w := range c.Words() {
			if t := strings.TrimSpace(w); t != "" {
				words = append(words, t)
			}
		}
		if len(words) == 0 {
			continue
		}
		rows[c.RowIndex] = append(rows[c.RowIndex], colText{c.ColumnIndex, strings.Join(words, " ")})
	}

	rowIdx := make([]int, 0, len(rows))
	for r := range rows {
		rowIdx = append(rowIdx, r)
	}
	sort.Ints(rowIdx)

	var contents []string
	for _, r := range rowIdx {
		cells := rows[r]
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].col < cells[j].col })

		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c.text
		}
		joined := strings.Join(parts, " ")

		compact := tablex.StripSpace(joined)
		if strings.Contains(compact, opinionHeading) || compact == opinionYearLabel {
			continue
		}
		contents = append(contents, joined)
	}
	return strings.TrimSpace(strings.Join(contents, " "))
}
