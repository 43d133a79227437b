package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jounabs52/datesheet/core/mark"
)

type markRepository struct {
	db *markTable
}

var _ mark.Repository = (*markRepository)(nil) // interface compliance check

func NewMarkRepository(db *DB) *markRepository {
	return &markRepository{db: db.mark}
}

func copyEntry(e mark.Entry) mark.Entry {
	if e.ObtainedMarks != nil {
		obtained := *e.ObtainedMarks
		e.ObtainedMarks = &obtained
	}
	return e
}

func (repo *markRepository) UpsertEntry(_ context.Context, entry mark.Entry) (mark.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	entry = copyEntry(entry)
	if orig, ok := repo.db.table[entry.Key()]; ok {
		entry.ID = orig.ID
		entry.CreatedAt = orig.CreatedAt
	} else {
		entry.ID = uuid.New().String()
	}
	repo.db.table[entry.Key()] = &entry
	return copyEntry(entry), nil
}

func (repo *markRepository) GetEntry(_ context.Context, key mark.Key) (mark.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[key]; ok {
		return copyEntry(*e), nil
	}
	return mark.Entry{}, mark.ErrEntryNotFound
}

func (repo *markRepository) QueryEntries(_ context.Context, filter mark.QueryFilter) ([]mark.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]mark.Entry, 0)
	for _, e := range repo.db.table {
		switch {
		case filter.TestID != "" && e.TestID != filter.TestID:
			continue
		case filter.StudentID != "" && e.StudentID != filter.StudentID:
			continue
		case filter.SubjectID != "" && e.SubjectID != filter.SubjectID:
			continue
		}
		entries = append(entries, copyEntry(*e))
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TestID != b.TestID {
			return a.TestID < b.TestID
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.StudentID < b.StudentID
	})
	return entries, nil
}
