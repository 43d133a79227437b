package mark

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/jounabs52/datesheet/core"
)

// Submission is one mark entry as entered by staff.
type Submission struct {
	TestID        string   `json:"test_id" validate:"required,max=64"`
	StudentID     string   `json:"student_id" validate:"required,max=64"`
	SubjectID     string   `json:"subject_id" validate:"required,max=64"`
	ObtainedMarks *float64 `json:"obtained_marks" validate:"omitempty,gte=0"`
	IsAbsent      bool     `json:"is_absent"`
	Remarks       string   `json:"remarks" validate:"max=1000"`
	// TotalMarks overrides the subject's total marks looked up from the exam's slots.
	TotalMarks *float64 `json:"total_marks" validate:"omitempty,gte=0"`
}

func (s *Submission) Validate(validate *validator.Validate) error {
	s.TestID = core.CleanString(s.TestID)
	s.StudentID = core.CleanString(s.StudentID)
	s.SubjectID = core.CleanString(s.SubjectID)
	s.Remarks = core.CleanString(s.Remarks)

	if err := validate.Struct(s); err != nil {
		return err
	}
	return s.check()
}

func (s Submission) check() error {
	if s.IsAbsent {
		return nil
	}
	if s.ObtainedMarks == nil {
		return core.NewValidationError(ErrObtainedRequired, core.FieldError{Field: "obtained_marks", Error: ErrObtainedRequired.Error()})
	}
	if v := *s.ObtainedMarks; math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return core.NewValidationError(ErrInvalidMarks, core.FieldError{Field: "obtained_marks", Error: ErrInvalidMarks.Error()})
	}
	return nil
}
