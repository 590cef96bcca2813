package classify

import (
	"sort"
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/tablex"
)

// MatchTitle returns the first title candidate contained in text, or "".
func MatchTitle(text string) string {
	if text == "" {
		return ""
	}
	for _, k := range TitleCandidates {
		if strings.Contains(text, k) {
			return k
		}
	}
	return ""
}

// ResolveTitle picks a caption for a table that no content classifier
// claimed. The three page texts closest above the table are tried first,
// then the first tokens of the table's own text. hasTop is false when the
// table carries no geometry, in which case no title is assigned.
func ResolveTitle(index []tablex.PageText, topY float64, hasTop bool, tableText string) string {
	if !hasTop {
		return ""
	}

	above := make([]tablex.PageText, 0, len(index))
	for _, t := range index {
		if t.TopY < topY {
			above = append(above, t)
		}
	}
	sort.SliceStable(above, func(i, j int) bool {
		return topY-above[i].TopY < topY-above[j].TopY
	})

	if len(above) > captionCandidates {
		above = above[:captionCandidates]
	}
	for _, c := range above {
		if title := MatchTitle(c.Text); title != "" {
			return title
		}
	}

	tokens := strings.Fields(tableText)
	if len(tokens) > headTokens {
		tokens = tokens[:headTokens]
	}
	return MatchTitle(strings.Join(tokens, " "))
}
