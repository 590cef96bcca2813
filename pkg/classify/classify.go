package classify

import (
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/tablex"
)

// Category is the semantic kind assigned to a detected table.
type Category int

const (
	Unclassified Category = iota
	SubjectDetail
	OverallOpinion
	Attendance
	Grade
	Volunteer
)

func (c Category) String() string {
	switch c {
	case SubjectDetail:
		return "subject_detail"
	case OverallOpinion:
		return "overall_opinion"
	case Attendance:
		return "attendance"
	case Grade:
		return "grade"
	case Volunteer:
		return "volunteer"
	default:
		return "unclassified"
	}
}

// GradeKind distinguishes the three grade table layouts.
type GradeKind int

const (
	SubjectAchievement GradeKind = iota + 1
	CareerElective
	ArtsPE
)

func (k GradeKind) String() string {
	switch k {
	case SubjectAchievement:
		return "교과학습발달상황"
	case CareerElective:
		return "진로 선택 과목"
	case ArtsPE:
		return "체육·예술"
	default:
		return ""
	}
}

func (k GradeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *GradeKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case SubjectAchievement.String():
		*k = SubjectAchievement
	case CareerElective.String():
		*k = CareerElective
	case ArtsPE.String():
		*k = ArtsPE
	default:
		*k = 0
	}
	return nil
}

// Table is a detected table after classification. It is built once and
// shared read-only by every extractor.
type Table struct {
	PageIndex int // 1-based
	Index     int // 1-based position on the page
	Title     string
	Text      string
	Category  Category
	GradeKind GradeKind // set only for Grade
	Matrix    tablex.Matrix
	Raw       ocr.Table
}

// Page is the classified view of one OCR page.
type Page struct {
	Index  int // 1-based
	Tables []Table
}

// ClassifyPage tags every table on the page. Content-anchored classifiers
// run first, then title resolution, then the keyword classifiers, in a
// fixed priority order.
func ClassifyPage(pageIndex int, page ocr.Page) Page {
	index := tablex.IndexPage(page)
	out := Page{Index: pageIndex, Tables: make([]Table, 0, len(page.Tables))}

	for i, raw := range page.Tables {
		t := Table{
			PageIndex: pageIndex,
			Index:     i + 1,
			Text:      tablex.TableText(raw),
			Matrix:    tablex.Reconstruct(raw),
			Raw:       raw,
		}

		switch {
		case IsSubjectDetail(raw):
			t.Title = TitleSubjectDetail
			t.Category = SubjectDetail
		case IsOverallOpinion(raw):
			t.Title = TitleOverallOpinion
			t.Category = OverallOpinion
		default:
			topY, ok := tablex.TopY(raw)
			t.Title = ResolveTitle(index, topY, ok, t.Text)
			t.Category = categorize(t)
			if t.Category == Grade {
				t.GradeKind = GradeKindOf(t.Matrix)
			}
		}

		out.Tables = append(out.Tables, t)
	}
	return out
}

func categorize(t Table) Category {
	switch {
	case IsAttendance(t.Text):
		return Attendance
	case IsGrade(t.Matrix):
		return Grade
	case IsVolunteer(t.Title):
		return Volunteer
	default:
		return Unclassified
	}
}

// Count tallies tables per category across pages.
func Count(pages []Page) map[Category]int {
	counts := make(map[Category]int)
	for _, p := range pages {
		for _, t := range p.Tables {
			counts[t.Category]++
		}
	}
	return counts
}
