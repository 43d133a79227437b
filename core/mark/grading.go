package mark

import (
	"math"
	"sort"
)

// Percentage returns obtained/total as a percentage rounded to 2 decimals, or 0 when total <= 0.
func Percentage(obtained, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return round2(obtained / total * 100)
}

// Evaluate derives the percentage and status of an entry.
func Evaluate(e Entry) Outcome {
	if e.IsAbsent {
		return Outcome{Percentage: 0, Status: StatusAbsent}
	}

	var obtained float64
	if e.ObtainedMarks != nil {
		obtained = *e.ObtainedMarks
	}
	pct := Percentage(obtained, e.TotalMarks)
	if e.TotalMarks > 0 && pct >= PassPercentage {
		return Outcome{Percentage: pct, Status: StatusPass}
	}
	return Outcome{Percentage: pct, Status: StatusFail}
}

// Summarize groups entries by subject, in subject order.
func Summarize(entries []Entry) []SubjectSummary {
	idx := make(map[string]int)
	summaries := make([]SubjectSummary, 0)
	totals := make(map[string]float64)

	for _, e := range entries {
		i, ok := idx[e.SubjectID]
		if !ok {
			i = len(summaries)
			idx[e.SubjectID] = i
			summaries = append(summaries, SubjectSummary{SubjectID: e.SubjectID})
		}
		sum := &summaries[i]
		sum.Entries++

		out := Evaluate(e)
		switch out.Status {
		case StatusAbsent:
			sum.Absent++
			continue
		case StatusPass:
			sum.Passed++
		default:
			sum.Failed++
		}
		sum.Present++
		totals[e.SubjectID] += out.Percentage
		if out.Percentage > sum.HighestPercentage {
			sum.HighestPercentage = out.Percentage
		}
	}

	for i := range summaries {
		if summaries[i].Present > 0 {
			summaries[i].AveragePercentage = round2(totals[summaries[i].SubjectID] / float64(summaries[i].Present))
		}
	}
	sort.SliceStable(summaries, func(i, j int) bool { return summaries[i].SubjectID < summaries[j].SubjectID })
	return summaries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
