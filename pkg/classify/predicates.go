package classify

import (
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/tablex"
)

// IsSubjectDetail reports whether row 0 alone names both the subject column
// and the detailed-ability heading.
func IsSubjectDetail(table ocr.Table) bool {
	header := tablex.StripSpace(tablex.RowWords(table, 0))
	return strings.Contains(header, subjectDetailSubject) &&
		strings.Contains(header, subjectDetailHeading)
}

// IsOverallOpinion reports whether the table mentions the behavior and
// overall opinion heading anywhere.
func IsOverallOpinion(table ocr.Table) bool {
	joined := tablex.StripSpace(tablex.AllWords(table))
	return strings.Contains(joined, opinionHeading) ||
		strings.Contains(joined, opinionHeadingShort)
}

// IsAttendance reports whether at least two attendance keywords occur in
// the table text.
func IsAttendance(tableText string) bool {
	hits := 0
	for _, k := range AttendanceKeywords {
		if strings.Contains(tableText, k) {
			hits++
		}
	}
	return hits >= attendanceMinHits
}

// IsGrade reports whether the header row carries every grade header keyword.
func IsGrade(m tablex.Matrix) bool {
	if len(m) == 0 {
		return false
	}
	header := m.HeaderText()
	for _, k := range GradeHeaderKeywords {
		if !strings.Contains(header, k) {
			return false
		}
	}
	return true
}

// IsVolunteer reports whether the resolved title is the volunteer title.
func IsVolunteer(title string) bool {
	return title == TitleVolunteer
}

// GradeKindOf sub-classifies a grade table by its header.
func GradeKindOf(m tablex.Matrix) GradeKind {
	header := m.HeaderText()
	switch {
	case strings.Contains(header, rankKeyword):
		return SubjectAchievement
	case strings.Contains(header, distributionKeyword):
		return CareerElective
	default:
		return ArtsPE
	}
}
