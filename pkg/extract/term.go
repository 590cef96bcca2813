package extract

// termSentinel is the subject area listed first in every term's table.
const termSentinel = "국어"

const termsPerYear = 2

// TermTracker infers the school year and term from row order. Grade tables
// carry no year or term labels, so each reappearance of the sentinel
// subject area opens a new term.
type TermTracker struct {
	Year int
	Term int
}

// NewTermTracker starts before the first term of year 1.
func NewTermTracker() *TermTracker {
	return &TermTracker{Year: 1, Term: 0}
}

// Observe advances the state when subjectArea is the sentinel.
func (t *TermTracker) Observe(subjectArea string) {
	if subjectArea != termSentinel {
		return
	}
	t.Term++
	if t.Term > termsPerYear {
		t.Term = 1
		t.Year++
	}
}
