package extract_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Abraxas-365/saenggibu/pkg/classify"
	"github.com/Abraxas-365/saenggibu/pkg/extract"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/ocr/ocrtest"
	"github.com/Abraxas-365/saenggibu/pkg/tablex"
)

func classified(category classify.Category, raw ocr.Table) classify.Table {
	return classify.Table{
		Category: category,
		Text:     tablex.TableText(raw),
		Matrix:   tablex.Reconstruct(raw),
		Raw:      raw,
	}
}

func gradeTable(kind classify.GradeKind, rows ...[]string) classify.Table {
	t := classified(classify.Grade, ocrtest.Grid(0, rows...))
	t.GradeKind = kind
	return t
}

func onePage(tables ...classify.Table) []classify.Page {
	for i := range tables {
		tables[i].PageIndex = 1
		tables[i].Index = i + 1
	}
	return []classify.Page{{Index: 1, Tables: tables}}
}

// --- term tracker ---

func TestTermTracker_Sequence(t *testing.T) {
	tracker := extract.NewTermTracker()
	areas := []string{"국어", "수학", "국어", "수학", "국어", "수학"}
	wantTerms := []int{1, 1, 2, 2, 1, 1}
	wantYears := []int{1, 1, 1, 1, 2, 2}

	for i, a := range areas {
		tracker.Observe(a)
		if tracker.Term != wantTerms[i] || tracker.Year != wantYears[i] {
			t.Fatalf("step %d: got (year=%d, term=%d), want (%d, %d)",
				i, tracker.Year, tracker.Term, wantYears[i], wantTerms[i])
		}
	}
}

// --- grades ---

var achievementHeader = []string{"학기", "교과", "과목", "단위수", "원점수", "석차등급"}

func TestGrades_TermInferenceAcrossTables(t *testing.T) {
	pages := onePage(
		gradeTable(classify.SubjectAchievement,
			achievementHeader,
			[]string{"1", "국어", "국어", "4", "90", "2"},
			[]string{"1", "수학", "수학", "4", "80", "3"},
			[]string{"2", "국어", "문학", "4", "85", "2"},
			[]string{"2", "수학", "수학 I", "4", "70", "4"},
		),
		gradeTable(classify.SubjectAchievement,
			achievementHeader,
			[]string{"1", "국어", "화법과 작문", "3", "88", "1"},
			[]string{"1", "수학", "미적분", "3", "77", "P"},
		),
	)

	records := extract.Grades(pages)
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}

	wantTerms := []int{1, 1, 2, 2, 1, 1}
	wantYears := []int{1, 1, 1, 1, 2, 2}
	for i, r := range records {
		if *r.Term != wantTerms[i] || *r.Year != wantYears[i] {
			t.Errorf("record %d (%s): year=%d term=%d", i, r.SubjectName, *r.Year, *r.Term)
		}
	}

	if records[0].RankGrade == nil || *records[0].RankGrade != 2 {
		t.Errorf("expected rank grade 2, got %v", records[0].RankGrade)
	}
	if records[5].RankGrade != nil {
		t.Errorf("non-numeric rank grade must be nil, got %d", *records[5].RankGrade)
	}
}

func TestGrades_SkipsMalformedRows(t *testing.T) {
	pages := onePage(gradeTable(classify.SubjectAchievement,
		achievementHeader,
		[]string{"1", "국어", "국어"},                     // too short
		[]string{"1", "국어", "", "4", "90", "2"},         // no subject name
		[]string{"1", "수학", "수학", "-", "80", "3"},      // no units
		[]string{"1", "영어", "영어", "3단위", "70", "5"}, // digits found
	))

	records := extract.Grades(pages)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(records), records)
	}
	if records[0].SubjectName != "영어" || deref(records[0].CreditUnits) != 3 {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func deref(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func TestGrades_NarrowElectiveRows(t *testing.T) {
	pages := onePage(
		gradeTable(classify.ArtsPE,
			[]string{"학기", "교과", "과목", "단위수"},
			[]string{"1", "체육", "체육", "2"},
			[]string{"1", "예술", "음악"},
		),
		gradeTable(classify.CareerElective,
			[]string{"학기", "교과", "과목", "단위수", "성취도"},
			[]string{"1", "과학", "물리학 실험", "2"},
			[]string{"1", "과학", "화학 실험", "2", "A"},
		),
	)

	records := extract.Grades(pages)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}
	for _, r := range records[:2] {
		if r.Achievement != nil {
			t.Errorf("%s: achievement must be nil without its column", r.SubjectName)
		}
		if deref(r.CreditUnits) != 2 {
			t.Errorf("%s: credit units = %d", r.SubjectName, deref(r.CreditUnits))
		}
	}
	if got := records[2].Achievement; got == nil || *got != "A" {
		t.Errorf("achievement = %v", got)
	}
}

func TestGrades_SummaryRow(t *testing.T) {
	pages := onePage(gradeTable(classify.SubjectAchievement,
		achievementHeader,
		[]string{"1", "이수단위 합계", "소계", " ", " ", " "},
		[]string{"1", "합계 국어", "국어", "총 8", " ", " "},
	))

	records := extract.Grades(pages)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SubjectArea != "" || records[0].CreditUnits != nil {
		t.Errorf("summary row without digits: %+v", records[0])
	}
	if records[1].SubjectArea != "국어" || deref(records[1].CreditUnits) != 8 {
		t.Errorf("summary row: %+v", records[1])
	}
}

func TestGrades_AchievementColumnDependsOnWidth(t *testing.T) {
	pages := onePage(
		gradeTable(classify.ArtsPE,
			[]string{"학기", "교과", "과목", "단위수", "성취도"},
			[]string{"1", "체육", "체육", "2", "A"},
		),
		gradeTable(classify.CareerElective,
			[]string{"학기", "교과", "과목", "단위수", "원점수", "성취도", "성취도별 분포비율"},
			[]string{"1", "과학", "물리학 실험", "2", "95", "B(3)", "A(30) B(40)"},
			[]string{"1", "과학", "화학 실험", "2", "95", "pass", ""},
		),
	)

	records := extract.Grades(pages)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if got := records[0].Achievement; got == nil || *got != "A" {
		t.Errorf("arts achievement = %v", got)
	}
	if got := records[1].Achievement; got == nil || *got != "B" {
		t.Errorf("elective achievement = %v", got)
	}
	if records[2].Achievement != nil {
		t.Errorf("lowercase cell must yield nil, got %q", *records[2].Achievement)
	}
	for _, r := range records {
		if r.Year != nil || r.Term != nil || r.RankGrade != nil {
			t.Errorf("%s: year/term/rank must be unset", r.SubjectName)
		}
	}
}

// --- grade tree ---

func TestBuildGradeTree(t *testing.T) {
	pages := onePage(
		gradeTable(classify.CareerElective,
			[]string{"학기", "교과", "과목", "단위수", "성취도", "분포비율"},
			[]string{"1", "과학", "과학탐구실험", "1", "A", ""},
		),
		gradeTable(classify.SubjectAchievement,
			achievementHeader,
			[]string{"1", "국어", "국어", "4", "90", "2"},
			[]string{"2", "국어", "국어", "4", "90", "2"},
		),
		gradeTable(classify.ArtsPE,
			[]string{"학기", "교과", "과목", "단위수", "성취도"},
			[]string{"1", "체육", "체육", "2", "A"},
		),
		gradeTable(classify.SubjectAchievement,
			achievementHeader,
			[]string{"1", "국어", "문학", "4", "90", "1"},
		),
		gradeTable(classify.CareerElective,
			[]string{"학기", "교과", "과목", "단위수", "성취도", "분포비율"},
			[]string{"1", "사회", "여행지리", "2", "A", ""},
		),
	)

	tree := extract.BuildGradeTree(extract.Grades(pages))
	if len(tree) != 2 {
		t.Fatalf("expected 2 years, got %d", len(tree))
	}

	y1 := tree[extract.YearKey(1)]
	if len(y1.Term1) != 1 || len(y1.Term2) != 1 || len(y1.ArtsPE) != 1 || len(y1.Elective) != 0 {
		t.Errorf("year 1 buckets: %+v", y1)
	}
	y2 := tree[extract.YearKey(2)]
	if y2.Len() != 2 || len(y2.Elective) != 1 || y2.Elective[0].SubjectName != "여행지리" {
		t.Errorf("year 2 buckets: %+v", y2)
	}
}

func TestYearGrades_MarshalJSON(t *testing.T) {
	four := 4
	y := extract.YearGrades{Term1: []extract.TermGrade{{
		SubjectArea: "국어",
		SubjectName: "국어",
		CreditUnits: &four,
	}}}

	b, err := json.Marshal(y)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)

	order := []string{`"1학기"`, `"2학기":[]`, `"진로선택과목":[]`, `"체육·예술":[]`}
	last := -1
	for _, key := range order {
		i := strings.Index(got, key)
		if i < 0 || i < last {
			t.Fatalf("bucket %s missing or out of order in %s", key, got)
		}
		last = i
	}
	want := `{"교과":"국어","과목":"국어","단위수":4,"석차등급":null}`
	if !strings.Contains(got, want) {
		t.Errorf("term record = %s, want %s", got, want)
	}
	if strings.Contains(got, "구분") || strings.Contains(got, "학년\"") {
		t.Errorf("term record must not carry kind or year: %s", got)
	}

	var back extract.YearGrades
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Term1) != 1 || deref(back.Term1[0].CreditUnits) != 4 || back.Term1[0].RankGrade != nil {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestYearGrades_ElectiveShape(t *testing.T) {
	y := extract.YearGrades{ArtsPE: []extract.ElectiveGrade{{SubjectArea: "체육", SubjectName: "체육"}}}
	b, err := json.Marshal(y)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `"체육·예술":[{"교과":"체육","과목":"체육","단위수":null,"성취도":null}]`
	if !strings.Contains(string(b), want) {
		t.Errorf("got %s, want %s", b, want)
	}
}

// --- attendance ---

func TestAttendance_DenylistExcluded(t *testing.T) {
	raw := ocrtest.Grid(0,
		[]string{"학년", "수업일수", "결석일수", "", "지각"},
		[]string{"", "", "질병", "미인정", ""},
		[]string{"1", "190", "2", "1", "0"},
		[]string{"2", "190", "1", "x", "3"},
	)
	pages := onePage(classified(classify.Attendance, raw))

	got := extract.Attendance(pages)
	want := map[string]int{
		"결석일수_질병":  3,
		"결석일수_미인정": 1,
		"지각":       3,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %d, want %d", k, got[k], v)
		}
	}
}

func TestAttendance_SingleHeaderExample(t *testing.T) {
	raw := ocrtest.Grid(0,
		[]string{"학년", "수업일수", "결석"},
		[]string{"", "", ""},
		[]string{"2", "190", "3"},
	)
	// A blank second header row still occupies a row index.
	raw.Cells = append(raw.Cells, ocrtest.Cell(1, 0, "", 20))

	got := extract.Attendance(onePage(classified(classify.Attendance, raw)))
	if got["결석"] != 3 {
		t.Errorf("결석 = %d, want 3", got["결석"])
	}
	if _, ok := got["학년"]; ok {
		t.Error("학년 must be excluded")
	}
	if _, ok := got["수업일수"]; ok {
		t.Error("수업일수 must be excluded")
	}
}

func TestAttendance_FirstTableOnly(t *testing.T) {
	first := ocrtest.Grid(0,
		[]string{"결석", "지각"},
		[]string{"", ""},
		[]string{"1", "1"},
	)
	first.Cells = append(first.Cells, ocrtest.Cell(1, 0, "", 20))
	second := ocrtest.Grid(0,
		[]string{"결석", "지각"},
		[]string{"", ""},
		[]string{"9", "9"},
	)
	second.Cells = append(second.Cells, ocrtest.Cell(1, 0, "", 20))

	got := extract.Attendance(onePage(
		classified(classify.Attendance, first),
		classified(classify.Attendance, second),
	))
	if got["결석"] != 1 || got["지각"] != 1 {
		t.Fatalf("expected only the first table, got %v", got)
	}
}

func TestAttendance_Absent(t *testing.T) {
	got := extract.Attendance(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil map, got %v", got)
	}
}

// --- volunteer ---

func TestVolunteerHours(t *testing.T) {
	m := tablex.Matrix{
		{"봉사활동실적"},
		{"학년", "일자", "장소", "시간"},
		{"1", "03.01", "도서관", "5시간"},
		{"1", "03.02", "복지관", ""},
		{"1", "03.03", "학교", "abc"},
		{"1", "03.04", "학교", "3"},
		{"1"},
	}
	if got := extract.VolunteerHours(m); got != 8 {
		t.Fatalf("VolunteerHours = %d, want 8", got)
	}
	if got := extract.VolunteerHours(tablex.Matrix{{"학년", "일자"}, {"1", "5"}}); got != 0 {
		t.Fatalf("table without hours header must contribute 0, got %d", got)
	}
}

func TestVolunteer_SumsTaggedTables(t *testing.T) {
	a := classified(classify.Volunteer, ocrtest.Grid(0, []string{"일자", "시간"}, []string{"03.01", "4"}))
	b := classified(classify.Volunteer, ocrtest.Grid(0, []string{"일자", "시간"}, []string{"03.02", "6"}))
	c := classified(classify.Unclassified, ocrtest.Grid(0, []string{"일자", "시간"}, []string{"03.03", "100"}))

	if got := extract.Volunteer(onePage(a, b, c)); got.TotalHours != 10 {
		t.Fatalf("TotalHours = %d, want 10", got.TotalHours)
	}
}

// --- subject detail ---

var filler = strings.Repeat("가", 35)

func TestSplitSubjectDetails(t *testing.T) {
	text := "국어 : " + filler + " 수학 : " + filler

	got := extract.SplitSubjectDetails(text, extract.NewSubjectSet("국어", "수학"))
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}
	if got[0].Subject != "국어" || got[1].Subject != "수학" {
		t.Errorf("subjects = %q, %q", got[0].Subject, got[1].Subject)
	}
	for _, r := range got {
		if len([]rune(r.Content)) < 30 {
			t.Errorf("%s content too short: %q", r.Subject, r.Content)
		}
	}
}

func TestSplitSubjectDetails_LengthIgnoresWhitespace(t *testing.T) {
	subjects := extract.NewSubjectSet("국어")
	spaced := strings.TrimSpace(strings.Repeat("가 ", 29))
	if got := extract.SplitSubjectDetails("국어 : "+spaced, subjects); len(got) != 0 {
		t.Fatalf("29 characters with spaces must be dropped, got %+v", got)
	}

	got := extract.SplitSubjectDetails("국 어 : "+spaced+" 나", subjects)
	if len(got) != 1 {
		t.Fatalf("30 characters must be kept, got %+v", got)
	}
	if want := strings.Repeat("가", 29) + "나"; got[0].Content != want {
		t.Errorf("content = %q, want %q", got[0].Content, want)
	}
}

func TestSplitSubjectDetails_PrefixDoesNotSteal(t *testing.T) {
	text := "국어 : " + filler + " 수학 : " + filler
	if got := extract.SplitSubjectDetails(text, extract.NewSubjectSet("국")); len(got) != 0 {
		t.Fatalf("국 must not match 국어, got %+v", got)
	}

	got := extract.SplitSubjectDetails("수학I : "+filler, extract.NewSubjectSet("수학", "수학 Ⅰ"))
	if len(got) != 1 || got[0].Subject != "수학I" {
		t.Fatalf("longest subject must win, got %+v", got)
	}
}

func TestSplitSubjectDetails_NotApplicable(t *testing.T) {
	subjects := extract.NewSubjectSet("국어")
	if got := extract.SplitSubjectDetails("해당 사항 없음", subjects); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
	if got := extract.SplitSubjectDetails("", subjects); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestSplitSubjectDetails_ShortAndMarker(t *testing.T) {
	text := "국어 : 짧음 자율적 교육과정 ： " + filler
	got := extract.SplitSubjectDetails(text, extract.NewSubjectSet("국어"))
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %+v", got)
	}
	if got[0].Subject != "자율적 교육과정" || got[0].Content != filler {
		t.Fatalf("unexpected record %+v", got[0])
	}
}

func TestNormalizeSubject(t *testing.T) {
	tests := map[string]string{
		"화학 Ⅱ":   "화학II",
		"수학Ⅰ":    "수학I",
		" 영 어 ":  "영어",
		"물리학 실험": "물리학실험",
	}
	for in, want := range tests {
		if got := extract.NormalizeSubject(in); got != want {
			t.Errorf("NormalizeSubject(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewSubjectSet_LongestFirst(t *testing.T) {
	got := extract.NewSubjectSet("국어", "국어", "", "화법과 작문", "영어 Ⅱ").Names()
	want := []string{"화법과작문", "영어II", "국어"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestSubjectDetailText_SkipsHeaderRows(t *testing.T) {
	raw := ocrtest.Grid(0,
		[]string{"과목", "세부능력 및 특기사항"},
		[]string{"국어", "국어: 성실함"},
	)
	other := classified(classify.Unclassified, ocrtest.Grid(0, []string{"무시"}, []string{"무시"}))
	got := extract.SubjectDetailText(onePage(classified(classify.SubjectDetail, raw), other))
	if got != "국어 국어: 성실함" {
		t.Fatalf("SubjectDetailText = %q", got)
	}
}

// --- overall opinion ---

func TestOverallOpinion_DropsHeadingRows(t *testing.T) {
	raw := ocrtest.Grid(0,
		[]string{"학년"},
		[]string{"행동특성 및 종합의견 요약"},
		[]string{"1", "성실하고 책임감이 강함"},
		[]string{"2", "배려심이 깊음"},
	)
	got := extract.OverallOpinion(onePage(classified(classify.OverallOpinion, raw)))
	if got[extract.ContentKey] != "1 성실하고 책임감이 강함 2 배려심이 깊음" {
		t.Fatalf("content = %q", got[extract.ContentKey])
	}
}

func TestOverallOpinion_Empty(t *testing.T) {
	raw := ocrtest.Grid(0, []string{"학년", "행동특성 및 종합의견"})
	got := extract.OverallOpinion(onePage(classified(classify.OverallOpinion, raw)))
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

// --- other tables ---

func TestLifeRecordTables(t *testing.T) {
	titled := func(title, text string) classify.Table {
		return classify.Table{Title: title, Text: text}
	}
	pages := []classify.Page{
		{Index: 1, Tables: []classify.Table{
			titled(classify.TitleActivities, "자율활동 12"),
			titled(classify.TitleVolunteer, "시간 3"),
			titled("", "무제"),
			titled(classify.TitleActivities, "마지막 표"),
		}},
		{Index: 2, Tables: []classify.Table{
			titled(classify.TitleActivities, "동아리활동 20"),
			titled("", "footer"),
		}},
	}
	for _, p := range pages {
		for i := range p.Tables {
			p.Tables[i].PageIndex = p.Index
		}
	}

	got := extract.LifeRecordTables(pages)
	refs := got[classify.TitleActivities]
	if len(got) != 1 || len(refs) != 2 {
		t.Fatalf("unexpected groups %+v", got)
	}
	if refs[0].PageIndex != 1 || refs[0].TableText != "자율활동 12" || refs[1].PageIndex != 2 {
		t.Fatalf("unexpected refs %+v", refs)
	}
}
