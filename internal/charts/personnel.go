package charts

import (
	"sort"
	"strings"

	"duan/internal/core"
)

type personnelEntry struct {
	label string
	count int
}

// PersonnelAllocation counts directors per project for the ten most staffed
// projects. The director column holds `+`-delimited names; names are not
// deduplicated across projects.
func PersonnelAllocation(projects []core.Project) CountSeries {
	var entries []personnelEntry
	for _, p := range projects {
		code := strings.TrimSpace(p.ProjectCode)
		count := splitDirectors(p.ProjectDirector)
		if code == "" || count == 0 {
			continue
		}
		entries = append(entries, personnelEntry{label: code, count: count})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	if len(entries) > TopN {
		entries = entries[:TopN]
	}

	series := CountSeries{
		Labels: make([]string, len(entries)),
		Values: make([]int, len(entries)),
	}
	for i, e := range entries {
		series.Labels[i] = e.label
		series.Values[i] = e.count
	}
	return series
}

// splitDirectors counts the non-empty `+`-delimited names in a director
// cell: "Nguyễn A + Trần B" is two people.
func splitDirectors(directors string) int {
	count := 0
	for _, name := range strings.Split(directors, "+") {
		if strings.TrimSpace(name) != "" {
			count++
		}
	}
	return count
}
