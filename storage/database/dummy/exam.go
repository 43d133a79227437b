package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
)

type examRepository struct {
	db *examTable
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) *examRepository {
	return &examRepository{db: db.exam}
}

func (repo *examRepository) CreateExam(_ context.Context, e exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = uuid.New().String()
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *examRepository) GetExam(_ context.Context, id string) (exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return *e, nil
	}
	return exam.Exam{}, exam.ErrExamNotFound
}

func (repo *examRepository) QueryExams(_ context.Context, filter *exam.QueryFilter, ordering []core.DBOrdering) ([]exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		if filter == nil || matchExam(*e, filter) {
			exams = append(exams, *e)
		}
	}

	// newest first unless ordered otherwise
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(exams, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareExams(exams[i], exams[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return exams[i].ID < exams[j].ID
	})
	return exams, nil
}

func matchExam(e exam.Exam, filter *exam.QueryFilter) bool {
	switch {
	case filter.Type != "" && e.Type != filter.Type:
		return false
	case filter.Status != "" && e.Status != filter.Status:
		return false
	case filter.OrganizationID != "" && e.OrganizationID != filter.OrganizationID:
		return false
	case filter.SessionID != "" && e.SessionID != filter.SessionID:
		return false
	case !filter.From.IsZero() && e.EndDate.Before(filter.From):
		return false
	case !filter.To.IsZero() && e.StartDate.After(filter.To):
		return false
	}
	return true
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareExams(a, b exam.Exam, field string) int {
	switch field {
	case "name":
		return compareStrings(a.Name, b.Name)
	case "type":
		return compareStrings(a.Type, b.Type)
	case "status":
		return compareStrings(a.Status, b.Status)
	case "start_date":
		return a.StartDate.Compare(b.StartDate.Time)
	case "end_date":
		return a.EndDate.Compare(b.EndDate.Time)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func (repo *examRepository) UpdateExam(_ context.Context, e exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[e.ID]
	if !ok {
		return exam.Exam{}, exam.ErrExamNotFound
	}
	e.Mode = orig.Mode
	e.CreatedAt = orig.CreatedAt
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *examRepository) DeleteExam(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return exam.ErrExamNotFound
	}
	delete(repo.db.table, id)
	return nil
}
