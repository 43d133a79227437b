package exam

import (
	"time"

	"github.com/jounabs52/datesheet/core"
)

// Types
const (
	TypeTerm       = "term"
	TypeUnit       = "unit"
	TypeFinal      = "final"
	TypeAssessment = "assessment"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Slot creation modes
const (
	ModeCalendar = "calendar"
	ModeDirect   = "direct"
)

var (
	Types    = []string{TypeTerm, TypeUnit, TypeFinal, TypeAssessment}
	Statuses = []string{StatusScheduled, StatusOngoing, StatusCompleted, StatusCancelled}

	// OrderingFields lists the fields exams can be ordered by.
	OrderingFields = []string{"name", "type", "status", "start_date", "end_date", "created_at"}
)

func isOneOf(val string, vals []string) bool {
	for _, v := range vals {
		if v == val {
			return true
		}
	}
	return false
}

type Exam struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Mode           string    `json:"mode"`
	StartDate      core.Date `json:"start_date"`
	EndDate        core.Date `json:"end_date"`
	Status         string    `json:"status"`
	OrganizationID string    `json:"organization_id"`
	SessionID      string    `json:"session_id"`
	TotalMarks     float64   `json:"total_marks"` // direct mode: sum of the subjects' total marks
	CreatedAt      time.Time `json:"created_at"`  // UTC
	UpdatedAt      time.Time `json:"updated_at"`  // UTC
}

func (e Exam) IsCalendar() bool { return e.Mode == ModeCalendar }
func (e Exam) IsDirect() bool   { return e.Mode == ModeDirect }

// Slot is a schedule slot as stored. Both creation modes persist this shape;
// CalendarSlot and DirectSlot carry the rules of each mode.
type Slot struct {
	ID           string    `json:"id"`
	ExamID       string    `json:"exam_id"`
	ClassID      string    `json:"class_id"`
	Position     int       `json:"position"` // creation order within the exam
	Date         core.Date `json:"date"`
	SubjectID    *string   `json:"subject_id"` // nil: unassigned
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Room         string    `json:"room"`
	TotalMarks   float64   `json:"total_marks"`
	PassingMarks float64   `json:"passing_marks"`
}

func (s Slot) HasSubject() bool { return s.SubjectID != nil }

// Subject returns the assigned subject or "".
func (s Slot) Subject() string {
	if s.SubjectID == nil {
		return ""
	}
	return *s.SubjectID
}

// ScheduleSlot is implemented by CalendarSlot and DirectSlot only.
type ScheduleSlot interface {
	Stored() Slot
	Mode() string
	isScheduleSlot()
}

// CalendarSlot is one (class, date) cell of a calendar-mode grid.
// It lives as long as its exam; only its subject, times, room and marks change.
type CalendarSlot struct {
	Slot
}

// DirectSlot is the slot of one subject of a direct-mode exam. Its subject is always set.
type DirectSlot struct {
	Slot
}

func (s CalendarSlot) Stored() Slot { return s.Slot }
func (CalendarSlot) Mode() string   { return ModeCalendar }

func (s DirectSlot) Stored() Slot { return s.Slot }
func (DirectSlot) Mode() string   { return ModeDirect }

func (CalendarSlot) isScheduleSlot() {}
func (DirectSlot) isScheduleSlot()   {}

// SlotOf returns the mode-specific view of a stored slot of e.
func SlotOf(e Exam, s Slot) ScheduleSlot {
	if e.IsDirect() {
		return DirectSlot{s}
	}
	return CalendarSlot{s}
}

func storedSlots[T ScheduleSlot](slots []T) []Slot {
	stored := make([]Slot, 0, len(slots))
	for _, s := range slots {
		stored = append(stored, s.Stored())
	}
	return stored
}

type QueryFilter struct {
	Type           string    `query:"type"`
	Status         string    `query:"status"`
	OrganizationID string    `query:"organization_id"`
	SessionID      string    `query:"session_id"`
	From           core.Date `query:"from"` // exams ending on or after From
	To             core.Date `query:"to"`   // exams starting on or before To
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Type == "" && qf.Status == "" && qf.OrganizationID == "" && qf.SessionID == "" &&
		qf.From.IsZero() && qf.To.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.OrganizationID = core.CleanString(qf.OrganizationID)
	qf.SessionID = core.CleanString(qf.SessionID)
}

// SlotFilter selects slots of one exam. Zero fields are ignored.
type SlotFilter struct {
	ExamID    string    `query:"-"`
	ClassID   string    `query:"class_id"`
	SubjectID string    `query:"subject_id"`
	Date      core.Date `query:"date"`
}

func (sf *SlotFilter) Clean() {
	sf.ClassID = core.CleanString(sf.ClassID)
	sf.SubjectID = core.CleanString(sf.SubjectID)
}
