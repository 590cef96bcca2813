package extract

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/ptrx"
)

// Bucket names inside one year of the grade tree.
const (
	BucketTerm1    = "1학기"
	BucketTerm2    = "2학기"
	BucketElective = "진로선택과목"
	BucketArtsPE   = "체육·예술"
)

// TermGrade is a subject achievement row as filed under a term bucket.
// A missing rank is rendered as null.
type TermGrade struct {
	SubjectArea string `json:"교과"`
	SubjectName string `json:"과목"`
	CreditUnits *int   `json:"단위수"`
	RankGrade   *int   `json:"석차등급"`
}

// ElectiveGrade is a career elective or arts row as filed under its bucket.
type ElectiveGrade struct {
	SubjectArea string  `json:"교과"`
	SubjectName string  `json:"과목"`
	CreditUnits *int    `json:"단위수"`
	Achievement *string `json:"성취도"`
}

// YearGrades holds one school year's records split into the four fixed
// buckets.
type YearGrades struct {
	Term1    []TermGrade
	Term2    []TermGrade
	Elective []ElectiveGrade
	ArtsPE   []ElectiveGrade
}

// MarshalJSON writes the buckets in a fixed order and never emits null.
// Struct tags cannot carry the middle dot in the arts bucket name.
func (y YearGrades) MarshalJSON() ([]byte, error) {
	buckets := []struct {
		key  string
		list any
	}{
		{BucketTerm1, orEmpty(y.Term1)},
		{BucketTerm2, orEmpty(y.Term2)},
		{BucketElective, orEmpty(y.Elective)},
		{BucketArtsPE, orEmpty(y.ArtsPE)},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.list)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// UnmarshalJSON accepts the layout produced by MarshalJSON so stored
// results can be read back.
func (y *YearGrades) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	targets := map[string]any{
		BucketTerm1:    &y.Term1,
		BucketTerm2:    &y.Term2,
		BucketElective: &y.Elective,
		BucketArtsPE:   &y.ArtsPE,
	}
	for key, dst := range targets {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len is the total number of records in the year.
func (y *YearGrades) Len() int {
	return len(y.Term1) + len(y.Term2) + len(y.Elective) + len(y.ArtsPE)
}

// YearKey renders the grade tree key for a school year.
func YearKey(year int) string {
	return strconv.Itoa(year) + "학년"
}

// BuildGradeTree groups records by year. Subject achievement rows go to
// their term bucket; elective and arts rows carry no year and land under
// the year most recently seen in document order. Elective and arts rows
// that precede every subject achievement row are dropped.
func BuildGradeTree(records []GradeRecord) map[string]*YearGrades {
	tree := make(map[string]*YearGrades)
	var current *YearGrades

	for _, rec := range records {
		switch rec.Kind {
		case classify.SubjectAchievement:
			if rec.Year == nil {
				continue
			}
			key := YearKey(*rec.Year)
			yg, ok := tree[key]
			if !ok {
				yg = &YearGrades{}
				tree[key] = yg
			}
			current = yg
			// Rows seen before the first sentinel have term 0 and are
			// filed under the first term.
			if ptrx.Deref(rec.Term, 0) == 2 {
				yg.Term2 = append(yg.Term2, termGrade(rec))
			} else {
				yg.Term1 = append(yg.Term1, termGrade(rec))
			}
		case classify.CareerElective:
			if current != nil {
				current.Elective = append(current.Elective, electiveGrade(rec))
			}
		case classify.ArtsPE:
			if current != nil {
				current.ArtsPE = append(current.ArtsPE, electiveGrade(rec))
			}
		}
	}
	return tree
}

func termGrade(rec GradeRecord) TermGrade {
	return TermGrade{
		SubjectArea: rec.SubjectArea,
		SubjectName: rec.SubjectName,
		CreditUnits: rec.CreditUnits,
		RankGrade:   rec.RankGrade,
	}
}

func electiveGrade(rec GradeRecord) ElectiveGrade {
	return ElectiveGrade{
		SubjectArea: rec.SubjectArea,
		SubjectName: rec.SubjectName,
		CreditUnits: rec.CreditUnits,
		Achievement: rec.Achievement,
	}
}
