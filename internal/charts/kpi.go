package charts

import (
	"strings"

	"duan/internal/core"
)

// Stats computes the whole-portfolio KPI scalars in a single pass.
//
// Personnel are summed per row without deduplication: a director on three
// projects counts three times, which is the staffing load the card reports.
// The on-schedule rate averages the completion percentage over rows where
// it is present and non-negative only.
func Stats(projects []core.Project) KPIStats {
	uniqueCodes := make(map[string]struct{})
	var (
		totalContractValue  float64
		totalPersonnel      int
		completionSum       float64
		completionCount     int
		totalEstimatedValue float64
	)

	for _, p := range projects {
		if code := strings.TrimSpace(p.ProjectCode); code != "" {
			uniqueCodes[code] = struct{}{}
		}

		totalContractValue += core.Value(p.ContractValue)
		totalPersonnel += splitDirectors(p.ProjectDirector)

		if p.CompletionPercentage != nil && *p.CompletionPercentage >= 0 {
			completionSum += *p.CompletionPercentage
			completionCount++
		}

		totalEstimatedValue += core.Value(p.EstimatedBudget)
	}

	var onScheduleRate float64
	if completionCount > 0 {
		onScheduleRate = completionSum / float64(completionCount)
	}

	return KPIStats{
		TotalProjects:  len(uniqueCodes),
		TotalBudget:    totalContractValue / 1e9,
		TotalPersonnel: totalPersonnel,
		OnScheduleRate: onScheduleRate,
		EstimatedCost:  totalEstimatedValue / 1e9,
	}
}
