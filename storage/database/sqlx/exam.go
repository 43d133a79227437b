package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
)

const examColumns = "id, name, type, mode, start_date, end_date, status, organization_id, session_id, total_marks, created_at, updated_at"

type examRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Type           string    `db:"type"`
	Mode           string    `db:"mode"`
	StartDate      core.Date `db:"start_date"`
	EndDate        core.Date `db:"end_date"`
	Status         string    `db:"status"`
	OrganizationID string    `db:"organization_id"`
	SessionID      string    `db:"session_id"`
	TotalMarks     float64   `db:"total_marks"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type examRepository struct {
	exec core.DBExecutor
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(exec core.DBExecutor) *examRepository {
	return &examRepository{exec: exec}
}

func (repo examRepository) toRow(e exam.Exam) examRow {
	return examRow{
		ID:             e.ID,
		Name:           e.Name,
		Type:           e.Type,
		Mode:           e.Mode,
		StartDate:      e.StartDate,
		EndDate:        e.EndDate,
		Status:         e.Status,
		OrganizationID: e.OrganizationID,
		SessionID:      e.SessionID,
		TotalMarks:     e.TotalMarks,
		CreatedAt:      e.CreatedAt.UTC(),
		UpdatedAt:      e.UpdatedAt.UTC(),
	}
}

func (repo examRepository) fromRow(row examRow) exam.Exam {
	return exam.Exam{
		ID:             row.ID,
		Name:           row.Name,
		Type:           row.Type,
		Mode:           row.Mode,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		Status:         row.Status,
		OrganizationID: row.OrganizationID,
		SessionID:      row.SessionID,
		TotalMarks:     row.TotalMarks,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

// trapNoRowsErr maps "no rows" err to exam.ErrExamNotFound
func (repo examRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return exam.ErrExamNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo examRepository) CreateExam(ctx context.Context, e exam.Exam) (exam.Exam, error) {
	e.ID = uuid.New().String()
	q := `INSERT INTO exam (` + examColumns + `) VALUES (:id, :name, :type, :mode, :start_date, :end_date,
		:status, :organization_id, :session_id, :total_marks, :created_at, :updated_at)`
	if _, err := repo.exec.NamedExecContext(ctx, q, repo.toRow(e)); err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return repo.GetExam(ctx, e.ID)
}

func (repo examRepository) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	if _, err := uuid.Parse(id); err != nil {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	var row examRow
	q := repo.exec.Rebind(`SELECT ` + examColumns + ` FROM exam WHERE id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, id); err != nil {
		return exam.Exam{}, repo.trapNoRowsErr(err, "finding exam by ID")
	}
	return repo.fromRow(row), nil
}

func (repo examRepository) QueryExams(ctx context.Context, filter *exam.QueryFilter, ordering []core.DBOrdering) ([]exam.Exam, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Type != "" {
			conds = append(conds, "type = ?")
			args = append(args, filter.Type)
		}
		if filter.Status != "" {
			conds = append(conds, "status = ?")
			args = append(args, filter.Status)
		}
		if filter.OrganizationID != "" {
			conds = append(conds, "organization_id = ?")
			args = append(args, filter.OrganizationID)
		}
		if filter.SessionID != "" {
			conds = append(conds, "session_id = ?")
			args = append(args, filter.SessionID)
		}
		// exams overlapping [From, To]
		if !filter.From.IsZero() {
			conds = append(conds, "end_date >= ?")
			args = append(args, filter.From)
		}
		if !filter.To.IsZero() {
			conds = append(conds, "start_date <= ?")
			args = append(args, filter.To)
		}
	}

	orderBy := "created_at DESC"
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		orderBy = strings.Join(orderList, ", ")
	}

	var rows []examRow
	q := repo.exec.Rebind(`SELECT ` + examColumns + ` FROM exam` + where(conds) + ` ORDER BY ` + orderBy + `, id`)
	if err := repo.exec.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}

	exams := make([]exam.Exam, 0, len(rows))
	for _, row := range rows {
		exams = append(exams, repo.fromRow(row))
	}
	return exams, nil
}

// UpdateExam saves every field but the mode and creation time.
func (repo examRepository) UpdateExam(ctx context.Context, e exam.Exam) (exam.Exam, error) {
	if _, err := uuid.Parse(e.ID); err != nil {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	q := `UPDATE exam SET name = :name, type = :type, start_date = :start_date, end_date = :end_date,
		status = :status, organization_id = :organization_id, session_id = :session_id,
		total_marks = :total_marks, updated_at = :updated_at WHERE id = :id`
	res, err := repo.exec.NamedExecContext(ctx, q, repo.toRow(e))
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	return repo.GetExam(ctx, e.ID)
}

func (repo examRepository) DeleteExam(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return exam.ErrExamNotFound
	}
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`DELETE FROM exam WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return exam.ErrExamNotFound
	}
	return nil
}
