// Package charts contains the aggregation functions behind every dashboard
// visualization. Each aggregator is an independent pure reduction over the
// normalized record set: no shared state, fresh output on every call, rows
// lacking the fields an aggregator needs are simply ignored.
package charts

// TopN caps the summary variants of the ranked series; each has an
// unlimited detail counterpart sharing the same ordering.
const TopN = 10

type (
	// CountSeries pairs labels positionally with per-label counts.
	CountSeries struct {
		Labels []string `json:"labels"`
		Values []int    `json:"values"`
	}

	// ValueSeries pairs labels positionally with per-label sums.
	ValueSeries struct {
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
	}

	// CostSeries holds budget versus actual cost per project, in billions.
	CostSeries struct {
		Labels []string  `json:"labels"`
		Budget []float64 `json:"budget"`
		Actual []float64 `json:"actual"`
	}

	// GanttSeries holds the plotted time span per project. Start and end are
	// Unix milliseconds so the rendering layer can consume them directly.
	GanttSeries struct {
		Labels     []string `json:"labels"`
		StartDates []int64  `json:"startDates"`
		EndDates   []int64  `json:"endDates"`
	}

	// KPIStats are the whole-portfolio scalars shown on the KPI cards.
	// Monetary figures are in billions.
	KPIStats struct {
		TotalProjects  int     `json:"totalProjects"`
		TotalBudget    float64 `json:"totalBudget"`
		TotalPersonnel int     `json:"totalPersonnel"`
		OnScheduleRate float64 `json:"onScheduleRate"`
		EstimatedCost  float64 `json:"estimatedCost"`
	}
)
