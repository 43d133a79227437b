package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jounabs52/datesheet/core/exam"
)

// storedSlot keeps the insertion order of slots sharing a position.
type storedSlot struct {
	exam.Slot
	seq int
}

type slotRepository struct {
	db    *slotTable
	exams *examTable
}

var _ exam.SlotRepository = (*slotRepository)(nil) // interface compliance check

func NewSlotRepository(db *DB) *slotRepository {
	return &slotRepository{db: db.slot, exams: db.exam}
}

func copySlot(s exam.Slot) exam.Slot {
	if s.SubjectID != nil {
		subjectID := *s.SubjectID
		s.SubjectID = &subjectID
	}
	return s
}

func (repo *slotRepository) CreateSlots(_ context.Context, slots []exam.Slot) ([]exam.Slot, error) {
	repo.exams.RLock()
	for _, s := range slots {
		if _, ok := repo.exams.table[s.ExamID]; !ok {
			repo.exams.RUnlock()
			return nil, exam.ErrExamNotFound
		}
	}
	repo.exams.RUnlock()

	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]exam.Slot, 0, len(slots))
	for _, s := range slots {
		s = copySlot(s)
		s.ID = uuid.New().String()
		repo.db.seq++
		repo.db.table[s.ID] = &storedSlot{Slot: s, seq: repo.db.seq}
		created = append(created, copySlot(s))
	}
	return created, nil
}

func (repo *slotRepository) GetSlot(_ context.Context, id string) (exam.Slot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return copySlot(s.Slot), nil
	}
	return exam.Slot{}, exam.ErrSlotNotFound
}

func (repo *slotRepository) QuerySlots(_ context.Context, filter exam.SlotFilter) ([]exam.Slot, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var matched []*storedSlot
	for _, s := range repo.db.table {
		switch {
		case s.ExamID != filter.ExamID:
			continue
		case filter.ClassID != "" && s.ClassID != filter.ClassID:
			continue
		case filter.SubjectID != "" && s.Subject() != filter.SubjectID:
			continue
		case !filter.Date.IsZero() && !s.Date.Equal(filter.Date):
			continue
		}
		matched = append(matched, s)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Position != matched[j].Position {
			return matched[i].Position < matched[j].Position
		}
		return matched[i].seq < matched[j].seq
	})

	slots := make([]exam.Slot, 0, len(matched))
	for _, s := range matched {
		slots = append(slots, copySlot(s.Slot))
	}
	return slots, nil
}

func (repo *slotRepository) CountSlots(_ context.Context, examID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, s := range repo.db.table {
		if s.ExamID == examID {
			n++
		}
	}
	return n, nil
}

func (repo *slotRepository) UpdateSlot(_ context.Context, slot exam.Slot) (exam.Slot, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[slot.ID]
	if !ok {
		return exam.Slot{}, exam.ErrSlotNotFound
	}
	// identity and position never change
	slot.ExamID = orig.ExamID
	slot.ClassID = orig.ClassID
	slot.Position = orig.Position
	orig.Slot = copySlot(slot)
	return copySlot(orig.Slot), nil
}

func (repo *slotRepository) DeleteSlots(_ context.Context, examID string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for id, s := range repo.db.table {
		if s.ExamID == examID {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}
