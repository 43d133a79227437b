package exam

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core"
)

// Grid cell editing.
//
// There is no version field on slots: two concurrent edits of the same slot
// are last-write-wins, the second write silently replaces the first.

// Assign writes the subject, times, room and marks of as to one calendar-mode slot.
func (svc *Service) Assign(ctx context.Context, slotID string, as AssignSlot) (CalendarSlot, error) {
	if as.SubjectID == "" {
		return CalendarSlot{}, core.NewValidationError(nil, core.FieldError{Field: "subject_id", Error: "this field is required"})
	}
	if err := checkMarks(as.TotalMarks, as.PassingMarks); err != nil {
		return CalendarSlot{}, err
	}

	slot, err := svc.calendarSlot(ctx, slotID)
	if err != nil {
		return CalendarSlot{}, err
	}
	if !as.Date.IsZero() && !as.Date.Equal(slot.Date) {
		return CalendarSlot{}, core.NewValidationError(ErrSlotDateChange, core.FieldError{Field: "date", Error: ErrSlotDateChange.Error()})
	}

	subjectID := as.SubjectID
	slot.SubjectID = &subjectID
	slot.StartTime = as.StartTime
	slot.EndTime = as.EndTime
	slot.Room = as.Room
	slot.TotalMarks = as.TotalMarks
	slot.PassingMarks = as.PassingMarks

	updated, err := svc.slots.UpdateSlot(ctx, slot.Slot)
	if err != nil {
		return CalendarSlot{}, errors.Wrap(err, "updating slot")
	}
	return CalendarSlot{updated}, nil
}

// Clear unassigns the subject of one calendar-mode slot. The slot itself is kept.
func (svc *Service) Clear(ctx context.Context, slotID string) (CalendarSlot, error) {
	slot, err := svc.calendarSlot(ctx, slotID)
	if err != nil {
		return CalendarSlot{}, err
	}

	slot.SubjectID = nil
	updated, err := svc.slots.UpdateSlot(ctx, slot.Slot)
	if err != nil {
		return CalendarSlot{}, errors.Wrap(err, "clearing slot")
	}
	return CalendarSlot{updated}, nil
}

func (svc *Service) GetSlot(ctx context.Context, slotID string) (ScheduleSlot, error) {
	slot, err := svc.slots.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	exam, err := svc.repo.GetExam(ctx, slot.ExamID)
	if err != nil {
		return nil, err
	}
	return SlotOf(exam, slot), nil
}

// calendarSlot loads a slot, refusing the slots of direct-mode exams:
// those are only changed by updating the exam.
func (svc *Service) calendarSlot(ctx context.Context, slotID string) (CalendarSlot, error) {
	slot, err := svc.GetSlot(ctx, slotID)
	if err != nil {
		return CalendarSlot{}, err
	}
	cs, ok := slot.(CalendarSlot)
	if !ok {
		return CalendarSlot{}, core.NewValidationError(ErrNotCalendarExam)
	}
	return cs, nil
}
