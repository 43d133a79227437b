package exam

import (
	"sort"

	"github.com/jounabs52/datesheet/core"
)

const (
	DefaultTotalMarks   = 100
	DefaultPassingMarks = 40
)

// GridDefaults are copied into every slot of a new grid.
type GridDefaults struct {
	StartTime    string
	EndTime      string
	Room         string
	TotalMarks   float64
	PassingMarks float64
}

func DefaultGridDefaults() GridDefaults {
	return GridDefaults{TotalMarks: DefaultTotalMarks, PassingMarks: DefaultPassingMarks}
}

func GridDefaultsFromConfig(conf core.ExamConfig) GridDefaults {
	return GridDefaults{
		StartTime:    conf.DefaultStartTime,
		EndTime:      conf.DefaultEndTime,
		Room:         conf.DefaultRoom,
		TotalMarks:   conf.DefaultTotalMarks,
		PassingMarks: conf.DefaultPassingMarks,
	}
}

// BuildGrid returns one slot per (class, date) pair, classes-major and dates-minor,
// none of them with a subject.
func BuildGrid(examID string, classIDs []string, dates []core.Date, defaults GridDefaults) []CalendarSlot {
	slots := make([]CalendarSlot, 0, len(classIDs)*len(dates))
	for _, classID := range classIDs {
		for _, date := range dates {
			slots = append(slots, CalendarSlot{Slot{
				ExamID:       examID,
				ClassID:      classID,
				Position:     len(slots),
				Date:         date,
				StartTime:    defaults.StartTime,
				EndTime:      defaults.EndTime,
				Room:         defaults.Room,
				TotalMarks:   defaults.TotalMarks,
				PassingMarks: defaults.PassingMarks,
			}})
		}
	}
	return slots
}

// Grid is the read-only classes × dates view of a calendar-mode exam.
type Grid struct {
	Exam  Exam        `json:"exam"`
	Dates []core.Date `json:"dates"`
	Rows  []GridRow   `json:"rows"`
}

// GridRow holds the slots of one class, one per grid date. A nil cell has no slot.
type GridRow struct {
	ClassID string          `json:"class_id"`
	Cells   []*CalendarSlot `json:"cells"`
}

// NewGrid lays out slots by class (in slot order) and date (ascending).
func NewGrid(e Exam, slots []Slot) Grid {
	grid := Grid{Exam: e, Dates: []core.Date{}, Rows: []GridRow{}}

	rowIdx := make(map[string]int)
	dateSet := make(map[core.Date]struct{})
	for _, s := range slots {
		if _, ok := rowIdx[s.ClassID]; !ok {
			rowIdx[s.ClassID] = len(grid.Rows)
			grid.Rows = append(grid.Rows, GridRow{ClassID: s.ClassID})
		}
		if _, ok := dateSet[s.Date]; !ok {
			dateSet[s.Date] = struct{}{}
			grid.Dates = append(grid.Dates, s.Date)
		}
	}
	sort.Slice(grid.Dates, func(i, j int) bool { return grid.Dates[i].Before(grid.Dates[j]) })

	colIdx := make(map[core.Date]int, len(grid.Dates))
	for i, d := range grid.Dates {
		colIdx[d] = i
	}
	for i := range grid.Rows {
		grid.Rows[i].Cells = make([]*CalendarSlot, len(grid.Dates))
	}
	for _, s := range slots {
		cell := CalendarSlot{s}
		grid.Rows[rowIdx[s.ClassID]].Cells[colIdx[s.Date]] = &cell
	}
	return grid
}
