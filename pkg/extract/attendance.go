package extract

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
)

// attendanceSkipColumns are reported by the attendance grid but are not
// counts.
var attendanceSkipColumns = map[string]bool{
	"학년":   true,
	"수업일수": true,
	"특기사항": true,
}

const attendanceHeaderRows = 2

// Attendance sums every count column of the first attendance table in the
// document. Later attendance tables are ignored. The result is empty when
// the document has no attendance table.
func Attendance(pages []classify.Page) map[string]int {
	for _, p := range pages {
		for _, t := range p.Tables {
			if t.Category == classify.Attendance {
				return summarizeAttendance(t.Raw)
			}
		}
	}
	return map[string]int{}
}

func summarizeAttendance(table ocr.Table) map[string]int {
	grid, rows, cols := pivot(table)
	summary := map[string]int{}
	if len(rows) < attendanceHeaderRows {
		return summary
	}

	names := attendanceHeaders(grid, rows[0], rows[1], cols)
	for i, name := range names {
		if name == "" || attendanceSkipColumns[name] {
			continue
		}
		if _, ok := summary[name]; !ok {
			summary[name] = 0
		}
		for _, r := range rows[attendanceHeaderRows:] {
			summary[name] += toInt(grid[cellKey{r, cols[i]}])
		}
	}
	return summary
}

type cellKey struct{ row, col int }

// pivot indexes cell text by position and returns the distinct row and
// column indices in ascending order.
func pivot(table ocr.Table) (map[cellKey]string, []int, []int) {
	grid := make(map[cellKey]string, len(table.Cells))
	rowSet := map[int]bool{}
	colSet := map[int]bool{}
	for _, c := range table.Cells {
		grid[cellKey{c.RowIndex, c.ColumnIndex}] = c.Text()
		rowSet[c.RowIndex] = true
		colSet[c.ColumnIndex] = true
	}
	return grid, sortedKeys(rowSet), sortedKeys(colSet)
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// attendanceHeaders merges the two header rows. Blank cells of the upper
// row inherit the nearest label to their left.
func attendanceHeaders(grid map[cellKey]string, top, sub int, cols []int) []string {
	names := make([]string, len(cols))
	last := ""
	for i, c := range cols {
		h1 := grid[cellKey{top, c}]
		if h1 == "" {
			h1 = last
		} else {
			last = h1
		}
		h2 := grid[cellKey{sub, c}]

		switch {
		case h1 != "" && h2 != "":
			names[i] = h1 + "_" + h2
		case h1 != "":
			names[i] = h1
		default:
			names[i] = h2
		}
	}
	return names
}

func toInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
