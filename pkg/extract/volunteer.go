package extract

import (
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/tablex"
)

const hoursHeader = "시간"

// VolunteerSummary is the total of the hours column over every volunteer
// table.
type VolunteerSummary struct {
	TotalHours int `json:"total_hours"`
}

// Volunteer sums the hours column of every volunteer table.
func Volunteer(pages []classify.Page) VolunteerSummary {
	var total int
	for _, p := range pages {
		for _, t := range p.Tables {
			if t.Category == classify.Volunteer {
				total += VolunteerHours(t.Matrix)
			}
		}
	}
	return VolunteerSummary{TotalHours: total}
}

// VolunteerHours locates the first "시간" cell in row-major order and sums
// the first number of each cell below it. Tables without that header
// contribute nothing.
func VolunteerHours(m tablex.Matrix) int {
	headerRow, col, ok := findHeader(m, hoursHeader)
	if !ok {
		return 0
	}

	total := 0
	for _, row := range m[headerRow+1:] {
		if col >= len(row) {
			continue
		}
		if n, ok := tablex.FirstNumber(row[col]); ok {
			total += n
		}
	}
	return total
}

func findHeader(m tablex.Matrix, label string) (int, int, bool) {
	for r, row := range m {
		for c, v := range row {
			if strings.TrimSpace(v) == label {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}
