package mark

import (
	"time"
)

// Statuses
const (
	StatusPass   = "Pass"
	StatusFail   = "Fail"
	StatusAbsent = "Absent"
)

// PassPercentage is the fixed pass cutoff. The slots' passing marks are not used for grading.
const PassPercentage = 40

// Entry is the marks of one student in one subject of one exam.
type Entry struct {
	ID            string   `json:"id"`
	TestID        string   `json:"test_id"`
	StudentID     string   `json:"student_id"`
	SubjectID     string   `json:"subject_id"`
	ObtainedMarks *float64 `json:"obtained_marks"` // nil when absent
	// TotalMarks is the subject's total marks when the entry was submitted.
	TotalMarks float64   `json:"total_marks"`
	IsAbsent   bool      `json:"is_absent"`
	Remarks    string    `json:"remarks"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (e Entry) Key() Key {
	return Key{TestID: e.TestID, StudentID: e.StudentID, SubjectID: e.SubjectID}
}

// Key identifies an entry; there is at most one entry per key.
type Key struct {
	TestID    string
	StudentID string
	SubjectID string
}

type Outcome struct {
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

// Result is an entry with its derived outcome. The outcome is never stored.
type Result struct {
	Entry
	Outcome
}

func NewResult(e Entry) Result {
	return Result{Entry: e, Outcome: Evaluate(e)}
}

type QueryFilter struct {
	TestID    string `query:"test_id"`
	StudentID string `query:"student_id"`
	SubjectID string `query:"subject_id"`
}

// SubjectSummary aggregates the entries of one subject of an exam.
type SubjectSummary struct {
	SubjectID         string  `json:"subject_id"`
	Entries           int     `json:"entries"`
	Present           int     `json:"present"`
	Absent            int     `json:"absent"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	AveragePercentage float64 `json:"average_percentage"` // present entries only
	HighestPercentage float64 `json:"highest_percentage"`
}
