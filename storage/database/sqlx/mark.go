package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/mark"
)

const markColumns = "id, test_id, student_id, subject_id, obtained_marks, total_marks, is_absent, remarks, created_at, updated_at"

type markRow struct {
	ID            string       `db:"id"`
	TestID        string       `db:"test_id"`
	StudentID     string       `db:"student_id"`
	SubjectID     string       `db:"subject_id"`
	ObtainedMarks null.Float64 `db:"obtained_marks"`
	TotalMarks    float64      `db:"total_marks"`
	IsAbsent      bool         `db:"is_absent"`
	Remarks       string       `db:"remarks"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

type markRepository struct {
	exec core.DBExecutor
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(exec core.DBExecutor) *markRepository {
	return &markRepository{exec: exec}
}

func (repo markRepository) toRow(e mark.Entry) markRow {
	return markRow{
		ID:            e.ID,
		TestID:        e.TestID,
		StudentID:     e.StudentID,
		SubjectID:     e.SubjectID,
		ObtainedMarks: null.Float64FromPtr(e.ObtainedMarks),
		TotalMarks:    e.TotalMarks,
		IsAbsent:      e.IsAbsent,
		Remarks:       e.Remarks,
		CreatedAt:     e.CreatedAt.UTC(),
		UpdatedAt:     e.UpdatedAt.UTC(),
	}
}

func (repo markRepository) fromRow(row markRow) mark.Entry {
	return mark.Entry{
		ID:            row.ID,
		TestID:        row.TestID,
		StudentID:     row.StudentID,
		SubjectID:     row.SubjectID,
		ObtainedMarks: row.ObtainedMarks.Ptr(),
		TotalMarks:    row.TotalMarks,
		IsAbsent:      row.IsAbsent,
		Remarks:       row.Remarks,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

// trapNoRowsErr maps "no rows" err to mark.ErrEntryNotFound
func (repo markRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return mark.ErrEntryNotFound
	}
	return errors.Wrap(err, msg)
}

// UpsertEntry relies on the (test_id, student_id, subject_id) unique constraint;
// a conflicting row keeps its id and created_at.
func (repo markRepository) UpsertEntry(ctx context.Context, entry mark.Entry) (mark.Entry, error) {
	entry.ID = uuid.New().String()
	q := `INSERT INTO mark_entry (` + markColumns + `) VALUES (:id, :test_id, :student_id, :subject_id,
		:obtained_marks, :total_marks, :is_absent, :remarks, :created_at, :updated_at)
		ON CONFLICT (test_id, student_id, subject_id) DO UPDATE SET
			obtained_marks = excluded.obtained_marks,
			total_marks = excluded.total_marks,
			is_absent = excluded.is_absent,
			remarks = excluded.remarks,
			updated_at = excluded.updated_at`
	if _, err := repo.exec.NamedExecContext(ctx, q, repo.toRow(entry)); err != nil {
		return mark.Entry{}, errors.Wrap(err, "upserting mark entry")
	}
	return repo.GetEntry(ctx, entry.Key())
}

func (repo markRepository) GetEntry(ctx context.Context, key mark.Key) (mark.Entry, error) {
	var row markRow
	q := repo.exec.Rebind(`SELECT ` + markColumns + ` FROM mark_entry WHERE test_id = ? AND student_id = ? AND subject_id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, key.TestID, key.StudentID, key.SubjectID); err != nil {
		return mark.Entry{}, repo.trapNoRowsErr(err, "finding mark entry")
	}
	return repo.fromRow(row), nil
}

func (repo markRepository) QueryEntries(ctx context.Context, filter mark.QueryFilter) ([]mark.Entry, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.TestID != "" {
		conds = append(conds, "test_id = ?")
		args = append(args, filter.TestID)
	}
	if filter.StudentID != "" {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conds = append(conds, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}

	var rows []markRow
	q := repo.exec.Rebind(`SELECT ` + markColumns + ` FROM mark_entry` + where(conds) + ` ORDER BY test_id, subject_id, student_id`)
	if err := repo.exec.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying mark entries")
	}

	entries := make([]mark.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, repo.fromRow(row))
	}
	return entries, nil
}
