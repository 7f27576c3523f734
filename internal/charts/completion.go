package charts

import (
	"sort"
	"strings"
	"time"

	"duan/internal/core"
)

// defaultSpan is the plotted duration for projects without an expected end.
const defaultSpan = 30 * 24 * time.Hour

type ganttEntry struct {
	label      string
	start      time.Time
	end        time.Time
	completion float64
}

// ProjectCompletionRate builds the Gantt series for the ten projects with
// the highest completion percentage, labelled by short name.
//
// The end of the plotted span is always the expected end date when one is
// present; the completion percentage influences the ordering only, never
// the span. Without an expected end the span defaults to thirty days. Rows
// without a start date are excluded entirely.
func ProjectCompletionRate(projects []core.Project) GanttSeries {
	return buildGanttSeries(projects, TopN)
}

// AllProjectCompletionRate is the detail variant: same ranking, no limit.
func AllProjectCompletionRate(projects []core.Project) GanttSeries {
	return buildGanttSeries(projects, 0)
}

func buildGanttSeries(projects []core.Project, limit int) GanttSeries {
	var entries []ganttEntry
	for _, p := range projects {
		label := strings.TrimSpace(p.ShortName)
		if label == "" || p.StartDate == "" {
			continue
		}
		start, err := time.Parse("2006-01-02", p.StartDate)
		if err != nil {
			continue
		}

		end := start.Add(defaultSpan)
		if expected, err := time.Parse("2006-01-02", p.ExpectedEndDate); p.ExpectedEndDate != "" && err == nil {
			end = expected
		}

		entries = append(entries, ganttEntry{
			label:      label,
			start:      start,
			end:        end,
			completion: core.Value(p.CompletionPercentage),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].completion > entries[j].completion
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	series := GanttSeries{
		Labels:     make([]string, len(entries)),
		StartDates: make([]int64, len(entries)),
		EndDates:   make([]int64, len(entries)),
	}
	for i, e := range entries {
		series.Labels[i] = e.label
		series.StartDates[i] = e.start.UnixMilli()
		series.EndDates[i] = e.end.UnixMilli()
	}
	return series
}
