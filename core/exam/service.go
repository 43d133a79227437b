package exam

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core"
)

// MaxSlotBatchSize keeps a multi-row slot INSERT under postgres' 65535 bind parameters (11 per slot).
const MaxSlotBatchSize = 65535 / 11

var (
	// errors
	ErrExamNotFound = core.NewNotFoundError("exam")
	ErrSlotNotFound = core.NewNotFoundError("schedule slot")

	ErrInvalidMarks    = errors.New("invalid marks")
	ErrInvalidStatus   = errors.New("invalid exam status")
	ErrInvalidOrdering = errors.New("invalid ordering")
	ErrNoExamDates     = errors.New("the date range has no exam dates")
	ErrNotCalendarExam = errors.New("only calendar-mode exams support this operation")
	ErrNotDirectExam   = errors.New("only direct-mode exams support this operation")
	ErrSlotDateChange  = errors.New("the date of a calendar-mode slot cannot change")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		CreateExam(ctx context.Context, exam Exam) (Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		// QueryExams applies AND operation on available QueryFilter fields.
		QueryExams(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Exam, error)
		UpdateExam(ctx context.Context, exam Exam) (Exam, error)
		DeleteExam(ctx context.Context, id string) error
	}

	SlotRepository interface {
		// CreateSlots writes all slots in one store call and returns them with their IDs.
		CreateSlots(ctx context.Context, slots []Slot) ([]Slot, error)
		GetSlot(ctx context.Context, id string) (Slot, error)
		// QuerySlots returns the slots of filter.ExamID ordered by Position.
		QuerySlots(ctx context.Context, filter SlotFilter) ([]Slot, error)
		CountSlots(ctx context.Context, examID string) (int, error)
		// UpdateSlot writes the date, subject, times, room and marks of slot.
		UpdateSlot(ctx context.Context, slot Slot) (Slot, error)
		// DeleteSlots removes every slot of the exam and returns how many were removed.
		DeleteSlots(ctx context.Context, examID string) (int, error)
	}

	Service struct {
		repo      Repository
		slots     SlotRepository
		logger    core.Logger
		batchSize int
		defaults  GridDefaults
	}
)

func NewService(repo Repository, slots SlotRepository, logger core.Logger, conf *core.Config) *Service {
	svc := &Service{
		repo:      repo,
		slots:     slots,
		logger:    logger,
		batchSize: core.DefaultBatchSize,
		defaults:  DefaultGridDefaults(),
	}
	if conf != nil {
		if conf.Exam.BatchSize > 0 {
			svc.batchSize = conf.Exam.BatchSize
		}
		if svc.batchSize > MaxSlotBatchSize {
			svc.batchSize = MaxSlotBatchSize
		}
		svc.defaults = GridDefaultsFromConfig(conf.Exam)
	}
	return svc
}

// CreateCalendarExam creates the exam then writes its empty classes × dates grid in batches.
// Slot writes are not atomic: on a *core.BatchError the exam and the chunks written before the
// failure stay in the store. The number of slots written is returned in all cases.
func (svc *Service) CreateCalendarExam(ctx context.Context, nce NewCalendarExam) (Exam, int, error) {
	dates, err := GenerateDates(nce.DateRule)
	if err != nil {
		return Exam{}, 0, err
	}
	if len(dates) == 0 {
		return Exam{}, 0, core.NewValidationError(ErrNoExamDates, core.FieldError{Field: "start_date", Error: ErrNoExamDates.Error()})
	}
	nce.ClassIDs = core.CleanStrings(nce.ClassIDs)
	if len(nce.ClassIDs) == 0 {
		return Exam{}, 0, core.NewValidationError(nil, core.FieldError{Field: "class_ids", Error: "this field is required"})
	}
	defaults := nce.gridDefaults(svc.defaults)
	if err = checkMarks(defaults.TotalMarks, defaults.PassingMarks); err != nil {
		return Exam{}, 0, err
	}

	now := nowFunc()
	exam, err := svc.repo.CreateExam(ctx, Exam{
		Name:           nce.Name,
		Type:           nce.Type,
		Mode:           ModeCalendar,
		StartDate:      nce.StartDate,
		EndDate:        nce.EndDate,
		Status:         StatusScheduled,
		OrganizationID: nce.OrganizationID,
		SessionID:      nce.SessionID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return Exam{}, 0, errors.Wrap(err, "creating exam")
	}

	grid := BuildGrid(exam.ID, nce.ClassIDs, dates, defaults)
	written, err := core.WriteInBatches(ctx, storedSlots(grid), svc.batchSize, svc.writeSlots)
	if err != nil {
		return exam, written, err
	}

	svc.logger.Info("calendar exam created", map[string]interface{}{
		"exam_id": exam.ID,
		"classes": len(nce.ClassIDs),
		"dates":   len(dates),
		"slots":   written,
	})
	return exam, written, nil
}

func (svc *Service) writeSlots(ctx context.Context, chunk []Slot) error {
	_, err := svc.slots.CreateSlots(ctx, chunk)
	return err
}

// CreateDirectExam creates the exam and one fully specified slot per subject, one at a time.
func (svc *Service) CreateDirectExam(ctx context.Context, nde NewDirectExam) (Exam, []DirectSlot, error) {
	if err := svc.checkSchedule(nde.DirectSchedule); err != nil {
		return Exam{}, nil, err
	}

	now := nowFunc()
	exam, err := svc.repo.CreateExam(ctx, Exam{
		Name:           nde.Name,
		Type:           nde.Type,
		Mode:           ModeDirect,
		StartDate:      nde.ExamDate,
		EndDate:        nde.ExamDate,
		Status:         StatusScheduled,
		OrganizationID: nde.OrganizationID,
		SessionID:      nde.SessionID,
		TotalMarks:     nde.TotalMarks(),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return Exam{}, nil, errors.Wrap(err, "creating exam")
	}

	slots, err := svc.createDirectSlots(ctx, exam, nde.DirectSchedule)
	if err != nil {
		return exam, slots, err
	}

	svc.logger.Info("direct exam created", map[string]interface{}{"exam_id": exam.ID, "slots": len(slots)})
	return exam, slots, nil
}

func (svc *Service) checkSchedule(ds DirectSchedule) error {
	if err := ds.check(); err != nil {
		return err
	}
	if len(ds.Subjects) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "subjects", Error: "this field is required"})
	}
	seen := make(map[string]struct{}, len(ds.Subjects))
	for i, sm := range ds.Subjects {
		if err := checkMarks(sm.TotalMarks, sm.passingMarks()); err != nil {
			return err
		}
		if _, ok := seen[sm.SubjectID]; ok {
			return core.NewValidationError(nil, core.FieldError{
				Field: fmt.Sprintf("subjects[%d].subject_id", i),
				Error: uniqueSubjectsText,
			})
		}
		seen[sm.SubjectID] = struct{}{}
	}
	return nil
}

func (svc *Service) createDirectSlots(ctx context.Context, exam Exam, ds DirectSchedule) ([]DirectSlot, error) {
	slots := make([]DirectSlot, 0, len(ds.Subjects))
	for i, sm := range ds.Subjects {
		subjectID := sm.SubjectID
		created, err := svc.slots.CreateSlots(ctx, []Slot{{
			ExamID:       exam.ID,
			ClassID:      ds.ClassID,
			Position:     i,
			Date:         ds.ExamDate,
			SubjectID:    &subjectID,
			StartTime:    ds.StartTime,
			EndTime:      ds.EndTime,
			Room:         ds.Room,
			TotalMarks:   sm.TotalMarks,
			PassingMarks: sm.passingMarks(),
		}})
		if err != nil {
			return slots, errors.Wrapf(err, "creating slot of subject %s", subjectID)
		}
		for _, s := range created {
			slots = append(slots, DirectSlot{s})
		}
	}
	return slots, nil
}

// UpdateDirectExam deletes every slot of a direct-mode exam and recreates them from ude.
func (svc *Service) UpdateDirectExam(ctx context.Context, id string, ude UpdateDirectExam) (Exam, []DirectSlot, error) {
	exam, err := svc.repo.GetExam(ctx, id)
	if err != nil {
		return Exam{}, nil, err
	}
	if !exam.IsDirect() {
		return Exam{}, nil, core.NewValidationError(ErrNotDirectExam)
	}
	if err = svc.checkSchedule(ude.DirectSchedule); err != nil {
		return Exam{}, nil, err
	}

	if _, err = svc.slots.DeleteSlots(ctx, exam.ID); err != nil {
		return Exam{}, nil, errors.Wrap(err, "deleting slots")
	}
	slots, err := svc.createDirectSlots(ctx, exam, ude.DirectSchedule)
	if err != nil {
		return exam, slots, err
	}

	exam.StartDate = ude.ExamDate
	exam.EndDate = ude.ExamDate
	exam.TotalMarks = ude.TotalMarks()
	exam.UpdatedAt = nowFunc()
	if exam, err = svc.repo.UpdateExam(ctx, exam); err != nil {
		return Exam{}, slots, errors.Wrap(err, "updating exam")
	}

	svc.logger.Info("direct exam slots recreated", map[string]interface{}{"exam_id": exam.ID, "slots": len(slots)})
	return exam, slots, nil
}

// Update modifies exam-level fields only; slots are never touched.
func (svc *Service) Update(ctx context.Context, id string, ue UpdateExam) (Exam, error) {
	exam, err := svc.repo.GetExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	if ue.Name != "" {
		exam.Name = ue.Name
	}
	if ue.Type != "" {
		exam.Type = ue.Type
	}
	if ue.OrganizationID != "" {
		exam.OrganizationID = ue.OrganizationID
	}
	if ue.SessionID != "" {
		exam.SessionID = ue.SessionID
	}
	exam.UpdatedAt = nowFunc()
	return svc.repo.UpdateExam(ctx, exam)
}

// SetStatus assigns any status to the exam, whatever its current status.
func (svc *Service) SetStatus(ctx context.Context, id, status string) (Exam, error) {
	status = core.CleanString(status, true /* lower */)
	if !isOneOf(status, Statuses) {
		return Exam{}, core.NewValidationError(ErrInvalidStatus, core.FieldError{Field: "status", Error: examStatusText})
	}
	exam, err := svc.repo.GetExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	exam.Status = status
	exam.UpdatedAt = nowFunc()
	return svc.repo.UpdateExam(ctx, exam)
}

// Delete removes the exam's slots, then the exam. The exam is kept when slot deletion fails.
func (svc *Service) Delete(ctx context.Context, id string) error {
	exam, err := svc.repo.GetExam(ctx, id)
	if err != nil {
		return err
	}
	n, err := svc.slots.DeleteSlots(ctx, exam.ID)
	if err != nil {
		return errors.Wrap(err, "deleting slots")
	}
	if err = svc.repo.DeleteExam(ctx, exam.ID); err != nil {
		return errors.Wrap(err, "deleting exam")
	}

	svc.logger.Info("exam deleted", map[string]interface{}{"exam_id": exam.ID, "slots": n})
	return nil
}

func (svc *Service) Get(ctx context.Context, id string) (Exam, error) {
	return svc.repo.GetExam(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Exam, error) {
	for _, ord := range ordering {
		if !isOneOf(ord.Field, OrderingFields) {
			return nil, core.NewValidationError(ErrInvalidOrdering, core.FieldError{
				Field: "ordering",
				Error: fmt.Sprintf("cannot order by %q", ord.Field),
			})
		}
	}
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryExams(ctx, filter, ordering)
}

// Slots returns the mode-specific views of the exam's slots.
func (svc *Service) Slots(ctx context.Context, exam Exam, filter SlotFilter) ([]ScheduleSlot, error) {
	filter.ExamID = exam.ID
	filter.Clean()
	stored, err := svc.slots.QuerySlots(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying slots")
	}
	slots := make([]ScheduleSlot, 0, len(stored))
	for _, s := range stored {
		slots = append(slots, SlotOf(exam, s))
	}
	return slots, nil
}

func (svc *Service) SlotCount(ctx context.Context, examID string) (int, error) {
	return svc.slots.CountSlots(ctx, examID)
}

// Grid returns the classes × dates view of a calendar-mode exam.
func (svc *Service) Grid(ctx context.Context, id string) (Grid, error) {
	exam, err := svc.repo.GetExam(ctx, id)
	if err != nil {
		return Grid{}, err
	}
	if !exam.IsCalendar() {
		return Grid{}, core.NewValidationError(ErrNotCalendarExam)
	}
	slots, err := svc.slots.QuerySlots(ctx, SlotFilter{ExamID: exam.ID})
	if err != nil {
		return Grid{}, errors.Wrap(err, "querying slots")
	}
	return NewGrid(exam, slots), nil
}

// SubjectTotalMarks returns the total marks of the subject's first slot (by position) in the exam.
func (svc *Service) SubjectTotalMarks(ctx context.Context, examID, subjectID string) (float64, error) {
	exam, err := svc.repo.GetExam(ctx, examID)
	if err != nil {
		return 0, err
	}
	slots, err := svc.slots.QuerySlots(ctx, SlotFilter{ExamID: exam.ID, SubjectID: subjectID})
	if err != nil {
		return 0, errors.Wrap(err, "querying slots")
	}
	if len(slots) == 0 {
		return 0, ErrSlotNotFound
	}
	return slots[0].TotalMarks, nil
}
