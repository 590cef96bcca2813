package classify

// Fixed titles. TitleSubjectDetail and TitleOverallOpinion are assigned by
// content; the rest are discovered from captions.
const (
	TitleAttendance     = "출결상황"
	TitleActivities     = "창의적체험활동상황"
	TitleVolunteer      = "봉사활동실적"
	TitleSubjectDetail  = "세부능력특기사항"
	TitleOverallOpinion = "행동특성및종합의견"
)

// TitleCandidates are the captions the resolver looks for, in priority order.
var TitleCandidates = []string{
	TitleAttendance,
	TitleActivities,
	TitleVolunteer,
}

// ReservedTitles are handled by dedicated extractors and never reported as
// generic tables.
var ReservedTitles = map[string]bool{
	TitleVolunteer:      true,
	TitleAttendance:     true,
	TitleSubjectDetail:  true,
	TitleOverallOpinion: true,
}

// AttendanceKeywords appear in the attendance grid headers. Two hits are
// needed to classify a table as attendance.
var AttendanceKeywords = []string{"수업일수", "결석", "지각", "조퇴", "결과"}

const attendanceMinHits = 2

// GradeHeaderKeywords must all appear in row 0 of a grade table.
var GradeHeaderKeywords = []string{"교과", "과목", "단위수"}

const (
	subjectDetailSubject = "과목"
	subjectDetailHeading = "세부능력및특기사항"
	opinionHeading       = "행동특성및종합의견"
	opinionHeadingShort  = "행동특성종합의견"

	rankKeyword         = "석차"
	distributionKeyword = "분포"
)

// Caption lookup limits.
const (
	captionCandidates = 3
	headTokens        = 30
)
