package mark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jounabs52/datesheet/core/mark"
	"github.com/jounabs52/datesheet/testutil"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		obtained, total float64
		want            float64
	}{
		{85, 100, 85},
		{2, 3, 66.67},
		{1, 8, 12.5},
		{0, 50, 0},
		{10, 0, 0},
		{10, -5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mark.Percentage(tt.obtained, tt.total), "Percentage(%g, %g)", tt.obtained, tt.total)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		entry mark.Entry
		want  mark.Outcome
	}{
		{
			name:  "pass",
			entry: mark.Entry{ObtainedMarks: testutil.Float(85), TotalMarks: 100},
			want:  mark.Outcome{Percentage: 85, Status: mark.StatusPass},
		},
		{
			name:  "fail",
			entry: mark.Entry{ObtainedMarks: testutil.Float(30), TotalMarks: 100},
			want:  mark.Outcome{Percentage: 30, Status: mark.StatusFail},
		},
		{
			name:  "cutoff passes",
			entry: mark.Entry{ObtainedMarks: testutil.Float(20), TotalMarks: 50},
			want:  mark.Outcome{Percentage: 40, Status: mark.StatusPass},
		},
		{
			name:  "just below cutoff",
			entry: mark.Entry{ObtainedMarks: testutil.Float(39.99), TotalMarks: 100},
			want:  mark.Outcome{Percentage: 39.99, Status: mark.StatusFail},
		},
		{
			name:  "absent",
			entry: mark.Entry{ObtainedMarks: testutil.Float(90), TotalMarks: 100, IsAbsent: true},
			want:  mark.Outcome{Percentage: 0, Status: mark.StatusAbsent},
		},
		{
			name:  "zero total",
			entry: mark.Entry{ObtainedMarks: testutil.Float(0), TotalMarks: 0},
			want:  mark.Outcome{Percentage: 0, Status: mark.StatusFail},
		},
		{
			name:  "no obtained marks",
			entry: mark.Entry{TotalMarks: 100},
			want:  mark.Outcome{Percentage: 0, Status: mark.StatusFail},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mark.Evaluate(tt.entry))
		})
	}
}

func TestSummarize(t *testing.T) {
	entry := func(subject, student string, obtained float64, total float64, absent bool) mark.Entry {
		e := mark.Entry{TestID: "t1", StudentID: student, SubjectID: subject, TotalMarks: total, IsAbsent: absent}
		if !absent {
			e.ObtainedMarks = testutil.Float(obtained)
		}
		return e
	}

	got := mark.Summarize([]mark.Entry{
		entry("physics", "s1", 20, 40, false),
		entry("math", "s1", 85, 100, false),
		entry("math", "s2", 0, 100, true),
		entry("math", "s3", 30, 100, false),
	})
	want := []mark.SubjectSummary{
		{SubjectID: "math", Entries: 3, Present: 2, Absent: 1, Passed: 1, Failed: 1, AveragePercentage: 57.5, HighestPercentage: 85},
		{SubjectID: "physics", Entries: 1, Present: 1, Passed: 1, AveragePercentage: 50, HighestPercentage: 50},
	}
	assert.Equal(t, want, got)

	t.Run("all absent", func(t *testing.T) {
		got := mark.Summarize([]mark.Entry{entry("math", "s1", 0, 100, true)})
		assert.Equal(t, []mark.SubjectSummary{{SubjectID: "math", Entries: 1, Absent: 1}}, got)
	})

	t.Run("no entries", func(t *testing.T) {
		assert.Empty(t, mark.Summarize(nil))
	})
}
