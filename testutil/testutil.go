package testutil

import (
	"context"
	"io"
	"log"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
	logsvc "github.com/jounabs52/datesheet/services/logger"
	"github.com/jounabs52/datesheet/storage/database"
)

// PrepareDB returns a migrated in-memory sqlite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewLogger returns a logger that discards everything.
func NewLogger() *logsvc.RollbarLogger {
	l := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.NewTestConfig())
	l.Enable(false)
	return l
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	exam.InitValidators(validate, translator)
	return validate, translator
}

func Float(v float64) *float64 { return &v }

func String(s string) *string { return &s }

// CreateExam stores e as is, without slots.
func CreateExam(t *testing.T, repo exam.Repository, e exam.Exam) exam.Exam {
	t.Helper()

	if e.Mode == "" {
		e.Mode = exam.ModeCalendar
	}
	if e.Type == "" {
		e.Type = exam.TypeTerm
	}
	if e.Status == "" {
		e.Status = exam.StatusScheduled
	}
	e, err := repo.CreateExam(context.Background(), e)
	if err != nil {
		t.Fatalf("CreateExam() failed: %v", err)
	}
	return e
}
