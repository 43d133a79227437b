package dummydb

import (
	"sync"

	"github.com/jounabs52/datesheet/core/exam"
	"github.com/jounabs52/datesheet/core/mark"
)

type (
	DB struct {
		exam *examTable
		slot *slotTable
		mark *markTable
	}

	examTable struct {
		sync.RWMutex
		table map[string]*exam.Exam
	}

	slotTable struct {
		sync.RWMutex
		table map[string]*storedSlot
		seq   int
	}

	markTable struct {
		sync.RWMutex
		table map[mark.Key]*mark.Entry
	}
)

func Open() (*DB, error) {
	db := &DB{
		exam: &examTable{table: make(map[string]*exam.Exam)},
		slot: &slotTable{table: make(map[string]*storedSlot)},
		mark: &markTable{table: make(map[mark.Key]*mark.Entry)},
	}
	return db, nil
}
