package charts

import (
	"sort"
	"strings"

	"duan/internal/core"
)

type costEntry struct {
	label  string
	budget float64
	actual float64
}

// ProjectCosts compares contracted budget against executed cost for the ten
// largest projects by budget, in billions, labelled by short name.
func ProjectCosts(projects []core.Project) CostSeries {
	return buildCostSeries(projects, TopN)
}

// AllProjectCosts is the detail variant: same ranking, no limit. Its first
// ten entries always equal ProjectCosts on the same input.
func AllProjectCosts(projects []core.Project) CostSeries {
	return buildCostSeries(projects, 0)
}

func buildCostSeries(projects []core.Project, limit int) CostSeries {
	var entries []costEntry
	for _, p := range projects {
		label := strings.TrimSpace(p.ShortName)
		// Conversion to billions happens here, once, at the series boundary.
		budget := core.Value(p.ContractValue) / 1e9
		actual := core.Value(p.ExecutedValue) / 1e9
		if label == "" || (budget <= 0 && actual <= 0) {
			continue
		}
		entries = append(entries, costEntry{label: label, budget: budget, actual: actual})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].budget > entries[j].budget
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	series := CostSeries{
		Labels: make([]string, len(entries)),
		Budget: make([]float64, len(entries)),
		Actual: make([]float64, len(entries)),
	}
	for i, e := range entries {
		series.Labels[i] = e.label
		series.Budget[i] = e.budget
		series.Actual[i] = e.actual
	}
	return series
}
