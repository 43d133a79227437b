package exam_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
	dummydb "github.com/jounabs52/datesheet/storage/database/dummy"
	"github.com/jounabs52/datesheet/testutil"
)

var errStore = errors.New("store unavailable")

// flakySlots fails the failCreateAt-th CreateSlots call, and DeleteSlots when failDelete is set.
type flakySlots struct {
	exam.SlotRepository
	failCreateAt int
	failDelete   bool
	createCalls  []int // slots per CreateSlots call
}

func (f *flakySlots) CreateSlots(ctx context.Context, slots []exam.Slot) ([]exam.Slot, error) {
	f.createCalls = append(f.createCalls, len(slots))
	if len(f.createCalls) == f.failCreateAt {
		return nil, errStore
	}
	return f.SlotRepository.CreateSlots(ctx, slots)
}

func (f *flakySlots) DeleteSlots(ctx context.Context, examID string) (int, error) {
	if f.failDelete {
		return 0, errStore
	}
	return f.SlotRepository.DeleteSlots(ctx, examID)
}

type fixture struct {
	svc   *exam.Service
	exams exam.Repository
	slots *flakySlots
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	exams := dummydb.NewExamRepository(db)
	slots := &flakySlots{SlotRepository: dummydb.NewSlotRepository(db)}
	return fixture{
		svc:   exam.NewService(exams, slots, testutil.NewLogger(), core.NewTestConfig()),
		exams: exams,
		slots: slots,
	}
}

func (f fixture) count(t *testing.T, examID string) int {
	t.Helper()
	n, err := f.svc.SlotCount(context.Background(), examID)
	require.NoError(t, err)
	return n
}

func (f fixture) examCount(t *testing.T) int {
	t.Helper()
	exams, err := f.svc.Query(context.Background(), nil, nil)
	require.NoError(t, err)
	return len(exams)
}

func classIDs(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, "class-"+string(rune('a'+i)))
	}
	return ids
}

func calendarExam(classes int, start, end string, interval int) exam.NewCalendarExam {
	return exam.NewCalendarExam{
		Name:     "Mid-term",
		Type:     exam.TypeTerm,
		DateRule: exam.DateRule{StartDate: core.MustParseDate(start), EndDate: core.MustParseDate(end), Interval: interval},
		ClassIDs: classIDs(classes),
	}
}

func directExam() exam.NewDirectExam {
	return exam.NewDirectExam{
		Name: "Unit test 1",
		Type: exam.TypeUnit,
		DirectSchedule: exam.DirectSchedule{
			ExamDate:  core.MustParseDate("2025-02-03"),
			ClassID:   "class-a",
			StartTime: "10:00",
			EndTime:   "11:00",
			Subjects: []exam.SubjectMarks{
				{SubjectID: "math", TotalMarks: 50},
				{SubjectID: "physics", TotalMarks: 30, PassingMarks: testutil.Float(15)},
				{SubjectID: "french", TotalMarks: 20},
			},
		},
	}
}

func TestService_CreateCalendarExam(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	nce := calendarExam(3, "2025-01-01", "2025-01-10", 2)
	nce.DateRule.SkipSaturday = true
	nce.DateRule.SkipSunday = true

	e, written, err := f.svc.CreateCalendarExam(ctx, nce)
	require.NoError(t, err)
	assert.Equal(t, 15, written) // 3 classes × 5 dates
	assert.Equal(t, exam.ModeCalendar, e.Mode)
	assert.Equal(t, exam.StatusScheduled, e.Status)
	assert.Equal(t, 0.0, e.TotalMarks)
	assert.Equal(t, 15, f.count(t, e.ID))

	slots, err := f.svc.Slots(ctx, e, exam.SlotFilter{})
	require.NoError(t, err)
	require.Len(t, slots, 15)
	for i, s := range slots {
		cs, ok := s.(exam.CalendarSlot)
		require.True(t, ok)
		assert.False(t, cs.HasSubject())
		assert.Equal(t, i, cs.Position)
		assert.Equal(t, "09:00", cs.StartTime) // configured default
		assert.Equal(t, 100.0, cs.TotalMarks)
		assert.Equal(t, 40.0, cs.PassingMarks)
	}
	assert.Equal(t, "class-a", slots[0].Stored().ClassID)
	assert.Equal(t, "2025-01-10", slots[4].Stored().Date.String())
	assert.Equal(t, "class-b", slots[5].Stored().ClassID)

	byClass, err := f.svc.Slots(ctx, e, exam.SlotFilter{ClassID: "class-c"})
	require.NoError(t, err)
	assert.Len(t, byClass, 5)
	byDate, err := f.svc.Slots(ctx, e, exam.SlotFilter{Date: core.MustParseDate("2025-01-06")})
	require.NoError(t, err)
	assert.Len(t, byDate, 3)
}

func TestService_CreateCalendarExam_duplicateClasses(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	nce := calendarExam(0, "2025-01-06", "2025-01-07", 1)
	nce.ClassIDs = []string{"class-a", " class-a", "class-b", "class-a", ""}

	e, written, err := f.svc.CreateCalendarExam(ctx, nce)
	require.NoError(t, err)
	assert.Equal(t, 4, written) // 2 classes × 2 dates
	assert.Equal(t, 4, f.count(t, e.ID))

	grid, err := f.svc.Grid(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, "class-a", grid.Rows[0].ClassID)
	assert.Equal(t, "class-b", grid.Rows[1].ClassID)
	for _, row := range grid.Rows {
		require.Len(t, row.Cells, 2)
	}
}

func TestService_CreateCalendarExam_overrides(t *testing.T) {
	f := setup(t)

	nce := calendarExam(1, "2025-01-06", "2025-01-07", 1)
	nce.StartTime = "14:00"
	nce.Room = "Hall B"
	nce.TotalMarks = testutil.Float(80)
	nce.PassingMarks = testutil.Float(32)

	e, _, err := f.svc.CreateCalendarExam(context.Background(), nce)
	require.NoError(t, err)
	slots, err := f.svc.Slots(context.Background(), e, exam.SlotFilter{})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	s := slots[0].Stored()
	assert.Equal(t, "14:00", s.StartTime)
	assert.Equal(t, "12:00", s.EndTime)
	assert.Equal(t, "Hall B", s.Room)
	assert.Equal(t, 80.0, s.TotalMarks)
	assert.Equal(t, 32.0, s.PassingMarks)
}

func TestService_CreateCalendarExam_rejected(t *testing.T) {
	tests := []struct {
		name    string
		nce     func() exam.NewCalendarExam
		wantErr error
	}{
		{
			name:    "zero interval",
			nce:     func() exam.NewCalendarExam { return calendarExam(2, "2025-01-01", "2025-01-10", 0) },
			wantErr: exam.ErrInvalidInterval,
		},
		{
			name:    "range longer than a year",
			nce:     func() exam.NewCalendarExam { return calendarExam(2, "2025-01-01", "2027-01-01", 1) },
			wantErr: exam.ErrDateSpanTooLong,
		},
		{
			name: "no exam dates",
			nce: func() exam.NewCalendarExam {
				nce := calendarExam(2, "2025-01-04", "2025-01-05", 1)
				nce.SkipSaturday, nce.SkipSunday = true, true
				return nce
			},
			wantErr: exam.ErrNoExamDates,
		},
		{
			name: "negative passing marks",
			nce: func() exam.NewCalendarExam {
				nce := calendarExam(2, "2025-01-06", "2025-01-10", 1)
				nce.PassingMarks = testutil.Float(-1)
				return nce
			},
			wantErr: exam.ErrInvalidMarks,
		},
		{
			name: "NaN total marks",
			nce: func() exam.NewCalendarExam {
				nce := calendarExam(2, "2025-01-06", "2025-01-10", 1)
				nce.TotalMarks = testutil.Float(math.NaN())
				return nce
			},
			wantErr: exam.ErrInvalidMarks,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			e, written, err := f.svc.CreateCalendarExam(context.Background(), tt.nce())
			assert.True(t, errors.Is(err, tt.wantErr), "CreateCalendarExam() error = %v, wantErr %v", err, tt.wantErr)
			assert.True(t, core.IsValidation(err))
			assert.Empty(t, e.ID)
			assert.Equal(t, 0, written)
			assert.Equal(t, 0, f.examCount(t))
			assert.Empty(t, f.slots.createCalls)
		})
	}

	t.Run("no classes", func(t *testing.T) {
		f := setup(t)
		_, _, err := f.svc.CreateCalendarExam(context.Background(), calendarExam(0, "2025-01-06", "2025-01-10", 1))
		assert.True(t, core.IsValidation(err))
		assert.Equal(t, 0, f.examCount(t))
	})
}

func TestService_CreateCalendarExam_batches(t *testing.T) {
	ctx := context.Background()

	t.Run("all batches written", func(t *testing.T) {
		f := setup(t)
		e, written, err := f.svc.CreateCalendarExam(ctx, calendarExam(12, "2025-01-01", "2025-01-10", 1))
		require.NoError(t, err)
		assert.Equal(t, 120, written)
		assert.Equal(t, []int{50, 50, 20}, f.slots.createCalls)
		assert.Equal(t, 120, f.count(t, e.ID))
	})

	t.Run("second batch fails", func(t *testing.T) {
		f := setup(t)
		f.slots.failCreateAt = 2

		e, written, err := f.svc.CreateCalendarExam(ctx, calendarExam(12, "2025-01-01", "2025-01-10", 1))
		var batchErr *core.BatchError
		require.True(t, errors.As(err, &batchErr), "CreateCalendarExam() error = %v", err)
		assert.True(t, errors.Is(err, errStore))
		assert.Equal(t, 50, batchErr.Written)
		assert.Equal(t, 1, batchErr.Batches)
		assert.Equal(t, 120, batchErr.Total)
		assert.Equal(t, 50, written)
		assert.Equal(t, []int{50, 50}, f.slots.createCalls)

		// nothing is rolled back
		require.NotEmpty(t, e.ID)
		_, err = f.svc.Get(ctx, e.ID)
		assert.NoError(t, err)
		assert.Equal(t, 50, f.count(t, e.ID))
	})

	t.Run("configured batch size", func(t *testing.T) {
		db, err := dummydb.Open()
		require.NoError(t, err)
		slots := &flakySlots{SlotRepository: dummydb.NewSlotRepository(db)}
		conf := core.NewTestConfig()
		conf.Exam.BatchSize = 7
		svc := exam.NewService(dummydb.NewExamRepository(db), slots, testutil.NewLogger(), conf)

		_, written, err := svc.CreateCalendarExam(ctx, calendarExam(2, "2025-01-01", "2025-01-10", 1))
		require.NoError(t, err)
		assert.Equal(t, 20, written)
		assert.Equal(t, []int{7, 7, 6}, slots.createCalls)
	})

	t.Run("batch size above the bind parameter limit", func(t *testing.T) {
		db, err := dummydb.Open()
		require.NoError(t, err)
		slots := &flakySlots{SlotRepository: dummydb.NewSlotRepository(db)}
		conf := core.NewTestConfig()
		conf.Exam.BatchSize = 100000
		svc := exam.NewService(dummydb.NewExamRepository(db), slots, testutil.NewLogger(), conf)

		start := core.MustParseDate("2025-01-01")
		_, written, err := svc.CreateCalendarExam(ctx, calendarExam(20, start.String(), start.AddDays(299).String(), 1))
		require.NoError(t, err)
		assert.Equal(t, 6000, written) // 20 classes × 300 dates
		assert.Equal(t, []int{exam.MaxSlotBatchSize, 6000 - exam.MaxSlotBatchSize}, slots.createCalls)
	})
}

func TestService_CreateDirectExam(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, slots, err := f.svc.CreateDirectExam(ctx, directExam())
	require.NoError(t, err)
	assert.Equal(t, exam.ModeDirect, e.Mode)
	assert.Equal(t, 100.0, e.TotalMarks)
	assert.Equal(t, "2025-02-03", e.StartDate.String())
	assert.Equal(t, "2025-02-03", e.EndDate.String())

	// one write per subject
	assert.Equal(t, []int{1, 1, 1}, f.slots.createCalls)
	require.Len(t, slots, 3)
	assert.Equal(t, "math", slots[0].Subject())
	assert.Equal(t, 50.0, slots[0].TotalMarks)
	assert.Equal(t, 20.0, slots[0].PassingMarks) // 40% of 50
	assert.Equal(t, 15.0, slots[1].PassingMarks)
	assert.Equal(t, 8.0, slots[2].PassingMarks)
	for i, s := range slots {
		assert.Equal(t, i, s.Position)
		assert.Equal(t, "class-a", s.ClassID)
		assert.Equal(t, "10:00", s.StartTime)
		assert.True(t, s.Date.Equal(e.StartDate))
	}

	stored, err := f.svc.Slots(ctx, e, exam.SlotFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, s := range stored {
		_, ok := s.(exam.DirectSlot)
		assert.True(t, ok)
		assert.Equal(t, exam.ModeDirect, s.Mode())
	}

	total, err := f.svc.SubjectTotalMarks(ctx, e.ID, "physics")
	require.NoError(t, err)
	assert.Equal(t, 30.0, total)
	_, err = f.svc.SubjectTotalMarks(ctx, e.ID, "history")
	assert.Equal(t, exam.ErrSlotNotFound, err)
	_, err = f.svc.SubjectTotalMarks(ctx, "lol", "math")
	assert.Equal(t, exam.ErrExamNotFound, err)

	_, err = f.svc.Grid(ctx, e.ID)
	assert.True(t, errors.Is(err, exam.ErrNotCalendarExam))
}

func TestService_CreateDirectExam_rejected(t *testing.T) {
	tests := []struct {
		name   string
		modify func(nde *exam.NewDirectExam)
	}{
		{name: "no exam date", modify: func(nde *exam.NewDirectExam) { nde.ExamDate = core.Date{} }},
		{name: "no subjects", modify: func(nde *exam.NewDirectExam) { nde.Subjects = nil }},
		{name: "duplicate subject", modify: func(nde *exam.NewDirectExam) { nde.Subjects[2].SubjectID = "math" }},
		{name: "negative total", modify: func(nde *exam.NewDirectExam) { nde.Subjects[1].TotalMarks = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			nde := directExam()
			tt.modify(&nde)

			_, _, err := f.svc.CreateDirectExam(context.Background(), nde)
			assert.True(t, core.IsValidation(err), "CreateDirectExam() error = %v", err)
			assert.Equal(t, 0, f.examCount(t))
			assert.Empty(t, f.slots.createCalls)
		})
	}
}

func TestService_UpdateDirectExam(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, _, err := f.svc.CreateDirectExam(ctx, directExam())
	require.NoError(t, err)

	ude := exam.UpdateDirectExam{DirectSchedule: exam.DirectSchedule{
		ExamDate: core.MustParseDate("2025-02-05"),
		ClassID:  "class-b",
		Subjects: []exam.SubjectMarks{
			{SubjectID: "math", TotalMarks: 100},
			{SubjectID: "biology", TotalMarks: 25},
		},
	}}
	updated, slots, err := f.svc.UpdateDirectExam(ctx, e.ID, ude)
	require.NoError(t, err)
	assert.Equal(t, 125.0, updated.TotalMarks)
	assert.Equal(t, "2025-02-05", updated.StartDate.String())
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)
	require.Len(t, slots, 2)
	assert.Equal(t, 2, f.count(t, e.ID))

	stored, err := f.svc.Slots(ctx, updated, exam.SlotFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "math", stored[0].Stored().Subject())
	assert.Equal(t, "biology", stored[1].Stored().Subject())
	assert.Equal(t, "class-b", stored[1].Stored().ClassID)

	// calendar-mode exams are edited slot by slot
	cal, _, err := f.svc.CreateCalendarExam(ctx, calendarExam(1, "2025-01-06", "2025-01-07", 1))
	require.NoError(t, err)
	_, _, err = f.svc.UpdateDirectExam(ctx, cal.ID, ude)
	assert.True(t, errors.Is(err, exam.ErrNotDirectExam))
	assert.Equal(t, 2, f.count(t, cal.ID))

	_, _, err = f.svc.UpdateDirectExam(ctx, "lol", ude)
	assert.Equal(t, exam.ErrExamNotFound, err)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, _, err := f.svc.CreateCalendarExam(ctx, calendarExam(1, "2025-01-06", "2025-01-07", 1))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, e.ID, exam.UpdateExam{Name: "Finals", Type: exam.TypeFinal, SessionID: "2025"})
	require.NoError(t, err)
	assert.Equal(t, "Finals", updated.Name)
	assert.Equal(t, exam.TypeFinal, updated.Type)
	assert.Equal(t, "2025", updated.SessionID)
	assert.Equal(t, e.StartDate, updated.StartDate)
	assert.Equal(t, exam.ModeCalendar, updated.Mode)
	assert.Equal(t, 2, f.count(t, e.ID))

	_, err = f.svc.Update(ctx, "lol", exam.UpdateExam{Name: "x"})
	assert.Equal(t, exam.ErrExamNotFound, err)
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, _, err := f.svc.CreateCalendarExam(ctx, calendarExam(1, "2025-01-06", "2025-01-07", 1))
	require.NoError(t, err)

	// any status is reachable from any other
	for _, status := range []string{exam.StatusCompleted, exam.StatusScheduled, exam.StatusCancelled, exam.StatusOngoing, " Completed "} {
		updated, err := f.svc.SetStatus(ctx, e.ID, status)
		require.NoError(t, err)
		assert.Equal(t, core.CleanString(status, true), updated.Status)
	}

	_, err = f.svc.SetStatus(ctx, e.ID, "postponed")
	assert.True(t, errors.Is(err, exam.ErrInvalidStatus))
	_, err = f.svc.SetStatus(ctx, "lol", exam.StatusOngoing)
	assert.Equal(t, exam.ErrExamNotFound, err)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("slots then exam", func(t *testing.T) {
		f := setup(t)
		e, _, err := f.svc.CreateCalendarExam(ctx, calendarExam(2, "2025-01-06", "2025-01-08", 1))
		require.NoError(t, err)
		other, _, err := f.svc.CreateDirectExam(ctx, directExam())
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, e.ID))
		_, err = f.svc.Get(ctx, e.ID)
		assert.Equal(t, exam.ErrExamNotFound, err)
		assert.Equal(t, 0, f.count(t, e.ID))
		assert.Equal(t, 3, f.count(t, other.ID))

		assert.Equal(t, exam.ErrExamNotFound, f.svc.Delete(ctx, e.ID))
	})

	t.Run("exam kept when slot deletion fails", func(t *testing.T) {
		f := setup(t)
		e, _, err := f.svc.CreateCalendarExam(ctx, calendarExam(2, "2025-01-06", "2025-01-08", 1))
		require.NoError(t, err)

		f.slots.failDelete = true
		err = f.svc.Delete(ctx, e.ID)
		assert.True(t, errors.Is(err, errStore))
		_, err = f.svc.Get(ctx, e.ID)
		assert.NoError(t, err)
		assert.Equal(t, 6, f.count(t, e.ID))
	})
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	create := func(name, typ, start, end string) exam.Exam {
		nce := calendarExam(1, start, end, 1)
		nce.Name, nce.Type = name, typ
		e, _, err := f.svc.CreateCalendarExam(ctx, nce)
		require.NoError(t, err)
		return e
	}
	jan := create("January", exam.TypeTerm, "2025-01-06", "2025-01-10")
	feb := create("February", exam.TypeUnit, "2025-02-03", "2025-02-07")
	mar := create("March", exam.TypeTerm, "2025-03-03", "2025-03-07")
	_, err := f.svc.SetStatus(ctx, mar.ID, exam.StatusCancelled)
	require.NoError(t, err)

	names := func(exams []exam.Exam) []string {
		ns := make([]string, 0, len(exams))
		for _, e := range exams {
			ns = append(ns, e.Name)
		}
		return ns
	}
	byName := []core.DBOrdering{{Field: "name", Ascending: true}}

	tests := []struct {
		name     string
		filter   *exam.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all by name", ordering: byName, want: []string{feb.Name, jan.Name, mar.Name}},
		{name: "by start date desc", ordering: []core.DBOrdering{{Field: "start_date"}}, want: []string{mar.Name, feb.Name, jan.Name}},
		{name: "type", filter: &exam.QueryFilter{Type: " TERM "}, ordering: byName, want: []string{jan.Name, mar.Name}},
		{name: "status", filter: &exam.QueryFilter{Status: exam.StatusCancelled}, ordering: byName, want: []string{mar.Name}},
		{name: "window", filter: &exam.QueryFilter{From: core.MustParseDate("2025-01-08"), To: core.MustParseDate("2025-02-03")}, ordering: byName, want: []string{feb.Name, jan.Name}},
		{name: "no match", filter: &exam.QueryFilter{SessionID: "2030"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exams, err := f.svc.Query(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(exams))
		})
	}

	_, err = f.svc.Query(ctx, nil, []core.DBOrdering{{Field: "id; DROP TABLE exam"}})
	assert.True(t, errors.Is(err, exam.ErrInvalidOrdering))
}

func TestService_Grid(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	e, _, err := f.svc.CreateCalendarExam(ctx, calendarExam(2, "2025-01-06", "2025-01-08", 1))
	require.NoError(t, err)

	grid, err := f.svc.Grid(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, grid.Exam.ID)
	assert.Equal(t, dates("2025-01-06", "2025-01-07", "2025-01-08"), grid.Dates)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, "class-a", grid.Rows[0].ClassID)
	assert.Equal(t, "class-b", grid.Rows[1].ClassID)
	for _, row := range grid.Rows {
		require.Len(t, row.Cells, 3)
		for i, cell := range row.Cells {
			require.NotNil(t, cell)
			assert.Equal(t, row.ClassID, cell.ClassID)
			assert.Equal(t, grid.Dates[i], cell.Date)
		}
	}

	_, err = f.svc.Grid(ctx, "lol")
	assert.Equal(t, exam.ErrExamNotFound, err)
}
