package exam

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jounabs52/datesheet/core"
)

// MaxDateSpanDays is the longest range, in days from start to end, a calendar exam may cover.
const MaxDateSpanDays = 366

var (
	ErrInvalidInterval = errors.New("interval must be at least 1 day")
	ErrInvalidDates    = errors.New("invalid date range")
	ErrDateSpanTooLong = errors.New("date range is too long")
)

// DateRule describes the exam dates of a calendar-mode exam.
type DateRule struct {
	StartDate    core.Date `json:"start_date"`
	EndDate      core.Date `json:"end_date"` // inclusive
	Interval     int       `json:"interval"` // days between two accepted dates
	SkipSaturday bool      `json:"skip_saturday"`
	SkipSunday   bool      `json:"skip_sunday"`
}

// Validate checks the preconditions of GenerateDates.
// A start date after the end date is valid and produces no dates.
func (r DateRule) Validate() error {
	var flds []core.FieldError
	if r.StartDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "start_date", Error: "this field is required"})
	}
	if r.EndDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "end_date", Error: "this field is required"})
	}
	if r.Interval < 1 {
		flds = append(flds, core.FieldError{Field: "interval", Error: ErrInvalidInterval.Error()})
		return core.NewValidationError(ErrInvalidInterval, flds...)
	}
	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidDates, flds...)
	}
	if r.EndDate.After(r.StartDate.AddDays(MaxDateSpanDays)) {
		return core.NewValidationError(ErrDateSpanTooLong, core.FieldError{
			Field: "end_date",
			Error: fmt.Sprintf("end date must be at most %d days after start date", MaxDateSpanDays),
		})
	}
	return nil
}

// GenerateDates returns the ascending exam dates of r.
// Excluded weekdays move the cursor one day at a time; accepted dates move it by r.Interval.
func GenerateDates(r DateRule) ([]core.Date, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return dateSequence(r.StartDate, r.EndDate, r.Interval, r.SkipSaturday, r.SkipSunday), nil
}

// dateSequence does not terminate for interval < 1.
func dateSequence(start, end core.Date, interval int, skipSat, skipSun bool) []core.Date {
	var dates []core.Date
	for cursor := start; !cursor.After(end); {
		switch wd := cursor.Weekday(); {
		case skipSat && wd == time.Saturday, skipSun && wd == time.Sunday:
			cursor = cursor.AddDays(1)
		default:
			dates = append(dates, cursor)
			cursor = cursor.AddDays(interval)
		}
	}
	return dates
}
