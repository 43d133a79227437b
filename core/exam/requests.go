package exam

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/jounabs52/datesheet/core"
)

// NewCalendarExam contains information needed to create a calendar-mode exam.
type NewCalendarExam struct {
	Name           string `json:"name" validate:"required,max=255"`
	Type           string `json:"type" validate:"required,examtype"`
	OrganizationID string `json:"organization_id" validate:"max=64"`
	SessionID      string `json:"session_id" validate:"max=64"`
	DateRule
	ClassIDs []string `json:"class_ids" validate:"required,min=1,dive,required,max=64"`

	// grid defaults; blank fields fall back to the configured ones
	StartTime    string   `json:"start_time" validate:"omitempty,hhmm"`
	EndTime      string   `json:"end_time" validate:"omitempty,hhmm"`
	Room         string   `json:"room" validate:"max=255"`
	TotalMarks   *float64 `json:"total_marks" validate:"omitempty,gte=0"`
	PassingMarks *float64 `json:"passing_marks" validate:"omitempty,gte=0"`
}

func (nce *NewCalendarExam) Validate(validate *validator.Validate) error {
	nce.Name = core.CleanString(nce.Name)
	nce.Type = core.CleanString(nce.Type, true /* lower */)
	nce.OrganizationID = core.CleanString(nce.OrganizationID)
	nce.SessionID = core.CleanString(nce.SessionID)
	nce.ClassIDs = core.CleanStrings(nce.ClassIDs)
	nce.Room = core.CleanString(nce.Room)

	if err := validate.Struct(nce); err != nil {
		return err
	}
	if err := nce.DateRule.Validate(); err != nil {
		return err
	}
	if nce.EndDate.Before(nce.StartDate) {
		return core.NewValidationError(ErrInvalidDates, core.FieldError{Field: "end_date", Error: "end_date cannot be before start_date"})
	}
	return nil
}

func (nce NewCalendarExam) gridDefaults(base GridDefaults) GridDefaults {
	if nce.StartTime != "" {
		base.StartTime = nce.StartTime
	}
	if nce.EndTime != "" {
		base.EndTime = nce.EndTime
	}
	if nce.Room != "" {
		base.Room = nce.Room
	}
	if nce.TotalMarks != nil {
		base.TotalMarks = *nce.TotalMarks
	}
	if nce.PassingMarks != nil {
		base.PassingMarks = *nce.PassingMarks
	}
	return base
}

// SubjectMarks is one subject of a direct-mode exam.
type SubjectMarks struct {
	SubjectID  string  `json:"subject_id" validate:"required,max=64"`
	TotalMarks float64 `json:"total_marks" validate:"gte=0"`
	// PassingMarks defaults to 40% of TotalMarks.
	PassingMarks *float64 `json:"passing_marks" validate:"omitempty,gte=0"`
}

func (sm SubjectMarks) passingMarks() float64 {
	if sm.PassingMarks != nil {
		return *sm.PassingMarks
	}
	return math.Round(sm.TotalMarks*DefaultPassingMarks) / DefaultTotalMarks
}

// DirectSchedule is the single date, class and subject list of a direct-mode exam.
type DirectSchedule struct {
	ExamDate  core.Date      `json:"exam_date"`
	ClassID   string         `json:"class_id" validate:"required,max=64"`
	StartTime string         `json:"start_time" validate:"omitempty,hhmm"`
	EndTime   string         `json:"end_time" validate:"omitempty,hhmm"`
	Room      string         `json:"room" validate:"max=255"`
	Subjects  []SubjectMarks `json:"subjects" validate:"required,min=1,dive"`
}

func (ds *DirectSchedule) clean() {
	ds.ClassID = core.CleanString(ds.ClassID)
	ds.Room = core.CleanString(ds.Room)
	for i := range ds.Subjects {
		ds.Subjects[i].SubjectID = core.CleanString(ds.Subjects[i].SubjectID)
	}
}

func (ds DirectSchedule) check() error {
	if ds.ExamDate.IsZero() {
		return core.NewValidationError(ErrInvalidDates, core.FieldError{Field: "exam_date", Error: "this field is required"})
	}
	return nil
}

// TotalMarks is the sum of the subjects' total marks.
func (ds DirectSchedule) TotalMarks() float64 {
	var total float64
	for _, sm := range ds.Subjects {
		total += sm.TotalMarks
	}
	return total
}

// NewDirectExam contains information needed to create a direct-mode exam.
type NewDirectExam struct {
	Name           string `json:"name" validate:"required,max=255"`
	Type           string `json:"type" validate:"required,examtype"`
	OrganizationID string `json:"organization_id" validate:"max=64"`
	SessionID      string `json:"session_id" validate:"max=64"`
	DirectSchedule
}

func (nde *NewDirectExam) Validate(validate *validator.Validate) error {
	nde.Name = core.CleanString(nde.Name)
	nde.Type = core.CleanString(nde.Type, true /* lower */)
	nde.OrganizationID = core.CleanString(nde.OrganizationID)
	nde.SessionID = core.CleanString(nde.SessionID)
	nde.DirectSchedule.clean()

	if err := validate.Struct(nde); err != nil {
		return err
	}
	return nde.DirectSchedule.check()
}

// UpdateDirectExam replaces the schedule of a direct-mode exam.
type UpdateDirectExam struct {
	DirectSchedule
}

func (ude *UpdateDirectExam) Validate(validate *validator.Validate) error {
	ude.DirectSchedule.clean()
	if err := validate.Struct(ude); err != nil {
		return err
	}
	return ude.DirectSchedule.check()
}

// UpdateExam defines what exam-level information may be modified. Blank fields keep their value.
type UpdateExam struct {
	Name           string `json:"name" validate:"max=255"`
	Type           string `json:"type" validate:"omitempty,examtype"`
	OrganizationID string `json:"organization_id" validate:"max=64"`
	SessionID      string `json:"session_id" validate:"max=64"`
}

func (ue *UpdateExam) Validate(validate *validator.Validate, orig Exam) error {
	keep := func(val, orig string, lower ...bool) string {
		if v := core.CleanString(val, lower...); v != "" {
			return v
		}
		return orig
	}
	ue.Name = keep(ue.Name, orig.Name)
	ue.Type = keep(ue.Type, orig.Type, true /* lower */)
	ue.OrganizationID = keep(ue.OrganizationID, orig.OrganizationID)
	ue.SessionID = keep(ue.SessionID, orig.SessionID)

	return validate.Struct(ue)
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,examstatus"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

// AssignSlot holds every field the grid editor writes to a slot.
// A zero Date keeps the slot's date; any other date must match it.
type AssignSlot struct {
	SubjectID    string    `json:"subject_id" validate:"required,max=64"`
	Date         core.Date `json:"date"`
	StartTime    string    `json:"start_time" validate:"omitempty,hhmm"`
	EndTime      string    `json:"end_time" validate:"omitempty,hhmm"`
	Room         string    `json:"room" validate:"max=255"`
	TotalMarks   float64   `json:"total_marks" validate:"gte=0"`
	PassingMarks float64   `json:"passing_marks" validate:"gte=0"`
}

func (as *AssignSlot) Validate(validate *validator.Validate) error {
	as.SubjectID = core.CleanString(as.SubjectID)
	as.Room = core.CleanString(as.Room)
	return validate.Struct(as)
}

// checkMarks rejects negative and non-finite marks.
func checkMarks(total, passing float64) error {
	var flds []core.FieldError
	if !validMarks(total) {
		flds = append(flds, core.FieldError{Field: "total_marks", Error: "total_marks must be a non-negative number"})
	}
	if !validMarks(passing) {
		flds = append(flds, core.FieldError{Field: "passing_marks", Error: "passing_marks must be a non-negative number"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidMarks, flds...)
	}
	return nil
}

func validMarks(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
