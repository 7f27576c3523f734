package charts

import (
	"strings"

	"duan/internal/core"
)

// ProjectsByInvestor counts projects per investor. Labels appear in order of
// first appearance; rows without an investor are ignored.
func ProjectsByInvestor(projects []core.Project) CountSeries {
	counts := make(map[string]int)
	var labels []string

	for _, p := range projects {
		investor := strings.TrimSpace(p.Investor)
		if investor == "" {
			continue
		}
		if _, seen := counts[investor]; !seen {
			labels = append(labels, investor)
		}
		counts[investor]++
	}

	values := make([]int, len(labels))
	for i, label := range labels {
		values[i] = counts[label]
	}
	return CountSeries{Labels: labels, Values: values}
}

// TotalValueByInvestor sums contract values per investor in raw currency
// units. Only rows with a positive contract value participate.
func TotalValueByInvestor(projects []core.Project) ValueSeries {
	sums := make(map[string]float64)
	var labels []string

	for _, p := range projects {
		investor := strings.TrimSpace(p.Investor)
		value := core.Value(p.ContractValue)
		if investor == "" || value <= 0 {
			continue
		}
		if _, seen := sums[investor]; !seen {
			labels = append(labels, investor)
		}
		sums[investor] += value
	}

	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = sums[label]
	}
	return ValueSeries{Labels: labels, Values: values}
}

// ProjectTypeRatio counts projects per type in order of first appearance.
func ProjectTypeRatio(projects []core.Project) CountSeries {
	counts := make(map[string]int)
	var labels []string

	for _, p := range projects {
		typ := strings.TrimSpace(p.ProjectType)
		if typ == "" {
			continue
		}
		if _, seen := counts[typ]; !seen {
			labels = append(labels, typ)
		}
		counts[typ]++
	}

	values := make([]int, len(labels))
	for i, label := range labels {
		values[i] = counts[label]
	}
	return CountSeries{Labels: labels, Values: values}
}
