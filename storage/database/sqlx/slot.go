package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
)

const slotColumns = "id, exam_id, class_id, position, slot_date, subject_id, start_time, end_time, room, total_marks, passing_marks"

type slotRow struct {
	ID           string      `db:"id"`
	ExamID       string      `db:"exam_id"`
	ClassID      string      `db:"class_id"`
	Position     int         `db:"position"`
	Date         core.Date   `db:"slot_date"`
	SubjectID    null.String `db:"subject_id"`
	StartTime    string      `db:"start_time"`
	EndTime      string      `db:"end_time"`
	Room         string      `db:"room"`
	TotalMarks   float64     `db:"total_marks"`
	PassingMarks float64     `db:"passing_marks"`
}

type slotRepository struct {
	exec core.DBExecutor
}

var _ exam.SlotRepository = (*slotRepository)(nil) // interface compliance check

func NewSlotRepository(exec core.DBExecutor) *slotRepository {
	return &slotRepository{exec: exec}
}

func (repo slotRepository) toRow(s exam.Slot) slotRow {
	return slotRow{
		ID:           s.ID,
		ExamID:       s.ExamID,
		ClassID:      s.ClassID,
		Position:     s.Position,
		Date:         s.Date,
		SubjectID:    null.StringFromPtr(s.SubjectID),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Room:         s.Room,
		TotalMarks:   s.TotalMarks,
		PassingMarks: s.PassingMarks,
	}
}

func (repo slotRepository) fromRow(row slotRow) exam.Slot {
	return exam.Slot{
		ID:           row.ID,
		ExamID:       row.ExamID,
		ClassID:      row.ClassID,
		Position:     row.Position,
		Date:         row.Date,
		SubjectID:    row.SubjectID.Ptr(),
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		Room:         row.Room,
		TotalMarks:   row.TotalMarks,
		PassingMarks: row.PassingMarks,
	}
}

// trapNoRowsErr maps "no rows" err to exam.ErrSlotNotFound
func (repo slotRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return exam.ErrSlotNotFound
	}
	return errors.Wrap(err, msg)
}

// CreateSlots inserts all slots with a single multi-row INSERT.
func (repo slotRepository) CreateSlots(ctx context.Context, slots []exam.Slot) ([]exam.Slot, error) {
	if len(slots) == 0 {
		return []exam.Slot{}, nil
	}

	rows := make([]slotRow, 0, len(slots))
	created := make([]exam.Slot, 0, len(slots))
	for _, s := range slots {
		s.ID = uuid.New().String()
		rows = append(rows, repo.toRow(s))
		created = append(created, s)
	}

	q := `INSERT INTO schedule_slot (` + slotColumns + `) VALUES (:id, :exam_id, :class_id, :position,
		:slot_date, :subject_id, :start_time, :end_time, :room, :total_marks, :passing_marks)`
	if _, err := repo.exec.NamedExecContext(ctx, q, rows); err != nil {
		if isForeignKeyViolation(err) {
			return nil, exam.ErrExamNotFound
		}
		return nil, errors.Wrap(err, "inserting slots")
	}
	return created, nil
}

func (repo slotRepository) GetSlot(ctx context.Context, id string) (exam.Slot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return exam.Slot{}, exam.ErrSlotNotFound
	}
	var row slotRow
	q := repo.exec.Rebind(`SELECT ` + slotColumns + ` FROM schedule_slot WHERE id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, id); err != nil {
		return exam.Slot{}, repo.trapNoRowsErr(err, "finding slot by ID")
	}
	return repo.fromRow(row), nil
}

func (repo slotRepository) QuerySlots(ctx context.Context, filter exam.SlotFilter) ([]exam.Slot, error) {
	conds := []string{"exam_id = ?"}
	args := []interface{}{filter.ExamID}
	if filter.ClassID != "" {
		conds = append(conds, "class_id = ?")
		args = append(args, filter.ClassID)
	}
	if filter.SubjectID != "" {
		conds = append(conds, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if !filter.Date.IsZero() {
		conds = append(conds, "slot_date = ?")
		args = append(args, filter.Date)
	}

	var rows []slotRow
	q := repo.exec.Rebind(`SELECT ` + slotColumns + ` FROM schedule_slot` + where(conds) + ` ORDER BY position, id`)
	if err := repo.exec.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying slots")
	}

	slots := make([]exam.Slot, 0, len(rows))
	for _, row := range rows {
		slots = append(slots, repo.fromRow(row))
	}
	return slots, nil
}

func (repo slotRepository) CountSlots(ctx context.Context, examID string) (int, error) {
	var n int
	q := repo.exec.Rebind(`SELECT COUNT(*) FROM schedule_slot WHERE exam_id = ?`)
	if err := repo.exec.GetContext(ctx, &n, q, examID); err != nil {
		return 0, errors.Wrap(err, "counting slots")
	}
	return n, nil
}

// UpdateSlot saves the date, subject, times, room and marks of slot.
func (repo slotRepository) UpdateSlot(ctx context.Context, slot exam.Slot) (exam.Slot, error) {
	if _, err := uuid.Parse(slot.ID); err != nil {
		return exam.Slot{}, exam.ErrSlotNotFound
	}
	q := `UPDATE schedule_slot SET slot_date = :slot_date, subject_id = :subject_id, start_time = :start_time,
		end_time = :end_time, room = :room, total_marks = :total_marks, passing_marks = :passing_marks
		WHERE id = :id`
	res, err := repo.exec.NamedExecContext(ctx, q, repo.toRow(slot))
	if err != nil {
		return exam.Slot{}, errors.Wrap(err, "updating slot")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.Slot{}, exam.ErrSlotNotFound
	}
	return repo.GetSlot(ctx, slot.ID)
}

func (repo slotRepository) DeleteSlots(ctx context.Context, examID string) (int, error) {
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`DELETE FROM schedule_slot WHERE exam_id = ?`), examID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting slots")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted slots")
	}
	return int(n), nil
}
