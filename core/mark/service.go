package mark

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core"
)

var (
	// errors
	ErrEntryNotFound    = core.NewNotFoundError("mark entry")
	ErrMarksExceedTotal = errors.New("obtained marks cannot exceed total marks")
	ErrObtainedRequired = errors.New("obtained marks are required unless the student is absent")
	ErrInvalidMarks     = errors.New("marks must be a non-negative number")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		// UpsertEntry inserts the entry or replaces the one with the same Key, keeping its ID and CreatedAt.
		UpsertEntry(ctx context.Context, entry Entry) (Entry, error)
		GetEntry(ctx context.Context, key Key) (Entry, error)
		// QueryEntries applies AND operation on available QueryFilter fields.
		QueryEntries(ctx context.Context, filter QueryFilter) ([]Entry, error)
	}

	// TotalMarksResolver looks up the total marks of a subject in an exam.
	TotalMarksResolver interface {
		SubjectTotalMarks(ctx context.Context, examID, subjectID string) (float64, error)
	}

	Service struct {
		repo   Repository
		totals TotalMarksResolver
		logger core.Logger
	}
)

func NewService(repo Repository, totals TotalMarksResolver, logger core.Logger) *Service {
	return &Service{repo: repo, totals: totals, logger: logger}
}

// Submit stores one mark entry and returns it with its outcome.
// An absent student's obtained marks are dropped. Present marks above the total are rejected
// before anything is written. A resubmission for the same key replaces the prior entry.
func (svc *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	if err := sub.check(); err != nil {
		return Result{}, err
	}

	total, err := svc.totalMarks(ctx, sub)
	if err != nil {
		return Result{}, err
	}

	entry := Entry{
		TestID:     sub.TestID,
		StudentID:  sub.StudentID,
		SubjectID:  sub.SubjectID,
		TotalMarks: total,
		IsAbsent:   sub.IsAbsent,
		Remarks:    sub.Remarks,
	}
	if !sub.IsAbsent {
		obtained := *sub.ObtainedMarks
		if obtained > total {
			return Result{}, core.NewValidationError(ErrMarksExceedTotal, core.FieldError{
				Field: "obtained_marks",
				Error: fmt.Sprintf("obtained marks (%g) cannot exceed total marks (%g)", obtained, total),
			})
		}
		entry.ObtainedMarks = &obtained
	}

	now := nowFunc()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entry, err = svc.repo.UpsertEntry(ctx, entry)
	if err != nil {
		return Result{}, errors.Wrap(err, "upserting mark entry")
	}
	return NewResult(entry), nil
}

func (svc *Service) totalMarks(ctx context.Context, sub Submission) (float64, error) {
	if sub.TotalMarks != nil {
		if v := *sub.TotalMarks; math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, core.NewValidationError(ErrInvalidMarks, core.FieldError{Field: "total_marks", Error: ErrInvalidMarks.Error()})
		}
		return *sub.TotalMarks, nil
	}
	total, err := svc.totals.SubjectTotalMarks(ctx, sub.TestID, sub.SubjectID)
	if err != nil {
		if core.IsNotFound(err) {
			return 0, err
		}
		return 0, errors.Wrap(err, "looking up total marks")
	}
	return total, nil
}

func (svc *Service) Get(ctx context.Context, key Key) (Result, error) {
	entry, err := svc.repo.GetEntry(ctx, key)
	if err != nil {
		return Result{}, err
	}
	return NewResult(entry), nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Result, error) {
	filter.TestID = core.CleanString(filter.TestID)
	filter.StudentID = core.CleanString(filter.StudentID)
	filter.SubjectID = core.CleanString(filter.SubjectID)

	entries, err := svc.repo.QueryEntries(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying mark entries")
	}
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		results = append(results, NewResult(e))
	}
	return results, nil
}

// Summary aggregates the entries of one test by subject.
func (svc *Service) Summary(ctx context.Context, testID string) ([]SubjectSummary, error) {
	testID = core.CleanString(testID)
	if testID == "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "test_id", Error: "this field is required"})
	}
	entries, err := svc.repo.QueryEntries(ctx, QueryFilter{TestID: testID})
	if err != nil {
		return nil, errors.Wrap(err, "querying mark entries")
	}
	return Summarize(entries), nil
}
