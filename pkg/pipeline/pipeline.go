// Package pipeline turns a multi-page OCR document into the structured
// student record.
//
// Pages are classified concurrently and reassembled in page order before
// any extractor runs, so order-sensitive stages (term inference, narrative
// concatenation) always see the document as printed.
package pipeline

import (
	"context"

	"github.com/Abraxas-365/saenggibu/pkg/asyncx"
	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/extract"
	"github.com/Abraxas-365/saenggibu/pkg/logx"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
)

// Result is the structured record assembled from one OCR document. Every
// section is present even when the document has no matching table.
type Result struct {
	AttendanceSummary map[string]int                 `json:"attendance_summary"`
	VolunteerSummary  extract.VolunteerSummary       `json:"volunteer_summary"`
	GradeRecords      map[string]*extract.YearGrades `json:"grade_records"`
	LifeRecordTables  map[string][]extract.TableRef  `json:"life_record_tables"`
	DetailAbility     []extract.SubjectDetail        `json:"detail_ability"`
	OverallOpinion    map[string]string              `json:"overall_opinion"`
}

// Empty returns a result with every section set to its empty value.
func Empty() *Result {
	return &Result{
		AttendanceSummary: map[string]int{},
		GradeRecords:      map[string]*extract.YearGrades{},
		LifeRecordTables:  map[string][]extract.TableRef{},
		DetailAbility:     []extract.SubjectDetail{},
		OverallOpinion:    map[string]string{},
	}
}

// Classify tags every table of the document. Pages are processed
// concurrently; the returned slice is in page order.
func Classify(ctx context.Context, doc *ocr.Document) ([]classify.Page, error) {
	if doc == nil || len(doc.Images) == 0 {
		return nil, nil
	}

	type indexed struct {
		index int
		page  ocr.Page
	}
	items := make([]indexed, len(doc.Images))
	for i, p := range doc.Images {
		items[i] = indexed{index: i + 1, page: p}
	}

	return asyncx.Map(ctx, items, func(ctx context.Context, it indexed) (classify.Page, error) {
		if err := ctx.Err(); err != nil {
			return classify.Page{}, err
		}
		return classify.ClassifyPage(it.index, it.page), nil
	})
}

// Run classifies the document and runs every extractor. Grades are
// extracted first since their subject names anchor the narrative split.
// The only error is context cancellation.
func Run(ctx context.Context, doc *ocr.Document) (*Result, error) {
	pages, err := Classify(ctx, doc)
	if err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{
		"pages":  len(pages),
		"tables": doc.TableCount(),
	}).Debug("Document classified")

	res := Assemble(pages)

	counts := classify.Count(pages)
	logx.WithFields(logx.Fields{
		"subject_detail":  counts[classify.SubjectDetail],
		"overall_opinion": counts[classify.OverallOpinion],
		"attendance":      counts[classify.Attendance],
		"grade":           counts[classify.Grade],
		"volunteer":       counts[classify.Volunteer],
		"unclassified":    counts[classify.Unclassified],
		"detail_records":  len(res.DetailAbility),
	}).Info("Student record extracted")

	return res, nil
}

// Assemble runs every extractor over already classified pages.
func Assemble(pages []classify.Page) *Result {
	res := Empty()
	if len(pages) == 0 {
		return res
	}

	grades := extract.Grades(pages)
	subjects := extract.SubjectsFromGrades(grades)

	res.AttendanceSummary = extract.Attendance(pages)
	res.VolunteerSummary = extract.Volunteer(pages)
	res.GradeRecords = extract.BuildGradeTree(grades)
	res.LifeRecordTables = extract.LifeRecordTables(pages)
	res.DetailAbility = extract.SplitSubjectDetails(extract.SubjectDetailText(pages), subjects)
	res.OverallOpinion = extract.OverallOpinion(pages)
	return res
}
