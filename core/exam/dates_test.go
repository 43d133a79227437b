package exam_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
)

func dates(ss ...string) []core.Date {
	ds := make([]core.Date, 0, len(ss))
	for _, s := range ss {
		ds = append(ds, core.MustParseDate(s))
	}
	return ds
}

func TestGenerateDates(t *testing.T) {
	tests := []struct {
		name    string
		rule    exam.DateRule
		want    []core.Date
		wantErr error
	}{
		{
			name: "every other weekday",
			rule: exam.DateRule{StartDate: core.MustParseDate("2025-01-01"), EndDate: core.MustParseDate("2025-01-10"), Interval: 2, SkipSaturday: true, SkipSunday: true},
			want: dates("2025-01-01", "2025-01-03", "2025-01-06", "2025-01-08", "2025-01-10"),
		},
		{
			name: "starting on a skipped saturday",
			rule: exam.DateRule{StartDate: core.MustParseDate("2025-01-04"), EndDate: core.MustParseDate("2025-01-12"), Interval: 3, SkipSaturday: true},
			want: dates("2025-01-05", "2025-01-08", "2025-01-12"),
		},
		{
			name: "daily without exclusions",
			rule: exam.DateRule{StartDate: core.MustParseDate("2025-01-03"), EndDate: core.MustParseDate("2025-01-06"), Interval: 1},
			want: dates("2025-01-03", "2025-01-04", "2025-01-05", "2025-01-06"),
		},
		{
			name: "single day",
			rule: exam.DateRule{StartDate: core.MustParseDate("2025-01-06"), EndDate: core.MustParseDate("2025-01-06"), Interval: 7},
			want: dates("2025-01-06"),
		},
		{
			name: "weekend only range",
			rule: exam.DateRule{StartDate: core.MustParseDate("2025-01-04"), EndDate: core.MustParseDate("2025-01-05"), Interval: 1, SkipSaturday: true, SkipSunday: true},
			want: nil,
		},
		{
			name: "start after end",
			rule: exam.DateRule{StartDate: core.MustParseDate("2025-01-10"), EndDate: core.MustParseDate("2025-01-01"), Interval: 1},
			want: nil,
		},
		{
			name:    "zero interval",
			rule:    exam.DateRule{StartDate: core.MustParseDate("2025-01-01"), EndDate: core.MustParseDate("2025-01-10"), Interval: 0},
			wantErr: exam.ErrInvalidInterval,
		},
		{
			name:    "negative interval",
			rule:    exam.DateRule{StartDate: core.MustParseDate("2025-01-01"), EndDate: core.MustParseDate("2025-01-10"), Interval: -2},
			wantErr: exam.ErrInvalidInterval,
		},
		{
			name:    "missing dates",
			rule:    exam.DateRule{Interval: 1},
			wantErr: exam.ErrInvalidDates,
		},
		{
			name:    "longer than a year",
			rule:    exam.DateRule{StartDate: core.MustParseDate("2025-01-01"), EndDate: core.MustParseDate("2026-01-03"), Interval: 1},
			wantErr: exam.ErrDateSpanTooLong,
		},
		{
			name:    "whole calendar",
			rule:    exam.DateRule{StartDate: core.MustParseDate("0001-01-01"), EndDate: core.MustParseDate("9999-12-31"), Interval: 1},
			wantErr: exam.ErrDateSpanTooLong,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exam.GenerateDates(tt.rule)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "GenerateDates() error = %v, wantErr %v", err, tt.wantErr)
				assert.True(t, core.IsValidation(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateDates_longestSpan(t *testing.T) {
	start := core.MustParseDate("2024-01-01")
	got, err := exam.GenerateDates(exam.DateRule{StartDate: start, EndDate: start.AddDays(exam.MaxDateSpanDays), Interval: 1})
	require.NoError(t, err)
	require.Len(t, got, exam.MaxDateSpanDays+1)
	assert.Equal(t, "2025-01-01", got[len(got)-1].String())
}

func TestGenerateDates_properties(t *testing.T) {
	start := core.MustParseDate("2024-12-01")
	for _, days := range []int{0, 1, 6, 30, 90} {
		for interval := 1; interval <= 8; interval++ {
			for _, skip := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
				rule := exam.DateRule{StartDate: start, EndDate: start.AddDays(days), Interval: interval, SkipSaturday: skip[0], SkipSunday: skip[1]}
				got, err := exam.GenerateDates(rule)
				require.NoError(t, err)

				for i, d := range got {
					if d.Before(rule.StartDate) || d.After(rule.EndDate) {
						t.Errorf("%+v: %s is out of range", rule, d)
					}
					if i > 0 && !d.After(got[i-1]) {
						t.Errorf("%+v: %s does not follow %s", rule, d, got[i-1])
					}
					if rule.SkipSaturday && d.Weekday() == time.Saturday {
						t.Errorf("%+v: %s is a saturday", rule, d)
					}
					if rule.SkipSunday && d.Weekday() == time.Sunday {
						t.Errorf("%+v: %s is a sunday", rule, d)
					}
				}
			}
		}
	}
}
