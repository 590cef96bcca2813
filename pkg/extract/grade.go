package extract

import (
	"strconv"
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/ptrx"
	"github.com/Abraxas-365/saenggibu/pkg/tablex"
)

// GradeRecord is one subject row of a grade table. Year and Term are set
// only for SubjectAchievement rows; RankGrade belongs to SubjectAchievement
// and Achievement to the other two kinds. CreditUnits is nil only for a
// summary row whose unit cell holds no number.
type GradeRecord struct {
	Kind        classify.GradeKind `json:"구분"`
	SubjectArea string             `json:"교과"`
	SubjectName string             `json:"과목"`
	CreditUnits *int               `json:"단위수"`
	Year        *int               `json:"학년,omitempty"`
	Term        *int               `json:"학기,omitempty"`
	RankGrade   *int               `json:"석차등급,omitempty"`
	Achievement *string            `json:"성취도,omitempty"`
}

const (
	gradeMinColumns = 4

	colSubjectArea = 1
	colSubjectName = 2
	colCreditUnits = 3

	// Wide elective tables carry a raw-score column before the achievement.
	colAchievement     = 4
	colAchievementWide = 5

	summaryMarker     = "합계"
	summaryMarkerLong = "이수단위 합계"
)

// Grades walks every grade table in document order and returns one record
// per usable row. Rows are visited strictly in page, table and row order
// since term inference depends on it.
func Grades(pages []classify.Page) []GradeRecord {
	var (
		records []GradeRecord
		tracker = NewTermTracker()
	)

	for _, p := range pages {
		for _, t := range p.Tables {
			if t.Category != classify.Grade || len(t.Matrix) == 0 {
				continue
			}
			for _, row := range t.Matrix[1:] {
				if rec, ok := gradeRow(t.GradeKind, row, tracker); ok {
					records = append(records, rec)
				}
			}
		}
	}
	return records
}

func gradeRow(kind classify.GradeKind, row []string, tracker *TermTracker) (GradeRecord, bool) {
	if len(row) < gradeMinColumns {
		return GradeRecord{}, false
	}

	area := strings.TrimSpace(row[colSubjectArea])
	name := strings.TrimSpace(row[colSubjectName])
	unitsRaw := strings.TrimSpace(row[colCreditUnits])
	if name == "" {
		return GradeRecord{}, false
	}

	if kind == classify.SubjectAchievement {
		tracker.Observe(area)
	}

	var units *int
	n, ok := tablex.FirstNumber(unitsRaw)
	switch {
	case strings.Contains(area, summaryMarker):
		area = stripSummaryMarker(area)
		if ok {
			units = ptrx.Int(n)
		}
	case ok:
		units = ptrx.Int(n)
	default:
		return GradeRecord{}, false
	}

	rec := GradeRecord{
		Kind:        kind,
		SubjectArea: area,
		SubjectName: name,
		CreditUnits: units,
	}

	if kind == classify.SubjectAchievement {
		rec.Year = ptrx.Int(tracker.Year)
		rec.Term = ptrx.Int(tracker.Term)
		rec.RankGrade = rankGrade(row[len(row)-1])
		return rec, true
	}

	switch {
	case len(row) > colAchievementWide:
		rec.Achievement = achievementLetter(row[colAchievementWide])
	case len(row) > colAchievement:
		rec.Achievement = achievementLetter(row[colAchievement])
	}
	return rec, true
}

func stripSummaryMarker(area string) string {
	area = strings.ReplaceAll(area, summaryMarkerLong, "")
	area = strings.ReplaceAll(area, summaryMarker, "")
	return strings.TrimSpace(area)
}

func rankGrade(cell string) *int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	for _, r := range cell {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return nil
	}
	return ptrx.Int(n)
}

func achievementLetter(cell string) *string {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell[0] < 'A' || cell[0] > 'Z' {
		return nil
	}
	return ptrx.String(cell[:1])
}
