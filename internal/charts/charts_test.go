package charts

import (
	"fmt"
	"reflect"
	"testing"

	"duan/internal/core"
)

func TestProjectsByInvestor(t *testing.T) {
	projects := []core.Project{
		{Investor: "A"},
		{Investor: "A"},
		{Investor: "B"},
		{Investor: "  "}, // blank investors are ignored
		{},
	}
	got := ProjectsByInvestor(projects)
	want := CountSeries{Labels: []string{"A", "B"}, Values: []int{2, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTotalValueByInvestor(t *testing.T) {
	projects := []core.Project{
		{Investor: "A", ContractValue: core.Float(1e9)},
		{Investor: "B", ContractValue: core.Float(5e8)},
		{Investor: "A", ContractValue: core.Float(2e9)},
		{Investor: "C"},                             // no value
		{Investor: "D", ContractValue: core.Float(0)}, // zero excluded
	}
	got := TotalValueByInvestor(projects)
	want := ValueSeries{Labels: []string{"A", "B"}, Values: []float64{3e9, 5e8}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestProjectTypeRatio(t *testing.T) {
	projects := []core.Project{
		{ProjectType: "Hạ tầng"},
		{ProjectType: "Dân dụng"},
		{ProjectType: "Hạ tầng"},
	}
	got := ProjectTypeRatio(projects)
	want := CountSeries{Labels: []string{"Hạ tầng", "Dân dụng"}, Values: []int{2, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func costProjects(n int) []core.Project {
	projects := make([]core.Project, n)
	for i := range projects {
		projects[i] = core.Project{
			ShortName:     fmt.Sprintf("P%02d", i),
			ContractValue: core.Float(float64(i+1) * 1e9),
			ExecutedValue: core.Float(float64(i+1) * 5e8),
		}
	}
	return projects
}

func TestProjectCosts_TopTenByBudget(t *testing.T) {
	projects := costProjects(15)
	got := ProjectCosts(projects)
	if len(got.Labels) != TopN {
		t.Fatalf("summary series must cap at %d labels, got %d", TopN, len(got.Labels))
	}
	if got.Labels[0] != "P14" {
		t.Errorf("expected largest budget first, got %q", got.Labels[0])
	}
	if got.Budget[0] != 15 {
		t.Errorf("budget must be converted to billions, got %v", got.Budget[0])
	}
	if got.Actual[0] != 7.5 {
		t.Errorf("actual must be converted to billions, got %v", got.Actual[0])
	}
}

func TestAllProjectCosts_PrefixMatchesSummary(t *testing.T) {
	projects := costProjects(15)
	all := AllProjectCosts(projects)
	top := ProjectCosts(projects)
	if len(all.Labels) != 15 {
		t.Fatalf("detail series must be unlimited, got %d", len(all.Labels))
	}
	if !reflect.DeepEqual(all.Labels[:TopN], top.Labels) ||
		!reflect.DeepEqual(all.Budget[:TopN], top.Budget) ||
		!reflect.DeepEqual(all.Actual[:TopN], top.Actual) {
		t.Fatal("the first ten detail entries must equal the summary series")
	}
}

func TestProjectCosts_SkipsZeroValueRows(t *testing.T) {
	projects := []core.Project{
		{ShortName: "empty"},
		{ContractValue: core.Float(1e9)}, // no short name
		{ShortName: "real", ContractValue: core.Float(1e9)},
	}
	got := ProjectCosts(projects)
	if len(got.Labels) != 1 || got.Labels[0] != "real" {
		t.Fatalf("got %+v", got)
	}
}

func TestProjectCompletionRate_ExpectedEndWins(t *testing.T) {
	// Regression for the documented quirk: the completion percentage never
	// shortens the plotted span, it only drives the ordering.
	projects := []core.Project{{
		ShortName:            "P1",
		StartDate:            "2024-01-01",
		ExpectedEndDate:      "2024-02-01",
		CompletionPercentage: core.Float(50),
	}}
	got := ProjectCompletionRate(projects)
	if len(got.Labels) != 1 {
		t.Fatalf("got %+v", got)
	}
	wantEnd := int64(1706745600000) // 2024-02-01T00:00:00Z
	if got.EndDates[0] != wantEnd {
		t.Fatalf("end date must be the expected end, got %d want %d", got.EndDates[0], wantEnd)
	}
}

func TestProjectCompletionRate_DefaultSpan(t *testing.T) {
	projects := []core.Project{{ShortName: "P1", StartDate: "2024-01-01"}}
	got := ProjectCompletionRate(projects)
	if len(got.Labels) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got.EndDates[0]-got.StartDates[0] != 30*24*3600*1000 {
		t.Fatalf("projects without an expected end default to a 30 day span, got %d ms",
			got.EndDates[0]-got.StartDates[0])
	}
}

func TestProjectCompletionRate_OrderingAndLimit(t *testing.T) {
	var projects []core.Project
	for i := 0; i < 12; i++ {
		projects = append(projects, core.Project{
			ShortName:            fmt.Sprintf("P%02d", i),
			StartDate:            "2024-01-01",
			CompletionPercentage: core.Float(float64(i)),
		})
	}
	// No start date: excluded regardless of completion.
	projects = append(projects, core.Project{ShortName: "late", CompletionPercentage: core.Float(99)})

	got := ProjectCompletionRate(projects)
	if len(got.Labels) != TopN {
		t.Fatalf("expected %d labels, got %d", TopN, len(got.Labels))
	}
	if got.Labels[0] != "P11" {
		t.Errorf("expected highest completion first, got %q", got.Labels[0])
	}
	all := AllProjectCompletionRate(projects)
	if len(all.Labels) != 12 {
		t.Errorf("detail variant must keep every qualifying row, got %d", len(all.Labels))
	}
}

func TestPersonnelAllocation(t *testing.T) {
	projects := []core.Project{
		{ProjectCode: "A", ProjectDirector: "Nguyễn Văn A + Trần B + Lê C"},
		{ProjectCode: "B", ProjectDirector: "Phạm D"},
		{ProjectCode: "C", ProjectDirector: " + "}, // only separators
		{ProjectCode: "D"},
	}
	got := PersonnelAllocation(projects)
	want := CountSeries{Labels: []string{"A", "B"}, Values: []int{3, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStats(t *testing.T) {
	projects := []core.Project{
		{
			ProjectCode:          "A",
			ContractValue:        core.Float(2e9),
			ProjectDirector:      "X + Y",
			CompletionPercentage: core.Float(80),
			EstimatedBudget:      core.Float(1e9),
		},
		{
			ProjectCode:          "A", // duplicate code counts once
			ContractValue:        core.Float(1e9),
			ProjectDirector:      "X", // same person, still summed
			CompletionPercentage: core.Float(40),
		},
		{
			ProjectCode: "B",
			// absent completion: excluded from the mean entirely
		},
	}
	got := Stats(projects)
	if got.TotalProjects != 2 {
		t.Errorf("totalProjects = %d, want 2", got.TotalProjects)
	}
	if got.TotalBudget != 3 {
		t.Errorf("totalBudget = %v, want 3", got.TotalBudget)
	}
	if got.TotalPersonnel != 3 {
		t.Errorf("totalPersonnel = %d, want 3", got.TotalPersonnel)
	}
	if got.OnScheduleRate != 60 {
		t.Errorf("onScheduleRate = %v, want 60", got.OnScheduleRate)
	}
	if got.EstimatedCost != 1 {
		t.Errorf("estimatedCost = %v, want 1", got.EstimatedCost)
	}
}

func TestStats_Empty(t *testing.T) {
	got := Stats(nil)
	if got.TotalProjects != 0 || got.OnScheduleRate != 0 {
		t.Fatalf("empty portfolio must produce zero stats: %+v", got)
	}
}
