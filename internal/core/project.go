package core

import "errors"

// ErrMissingIdentity is returned when a record has neither a project code
// nor a project name and therefore cannot be identified at all.
var ErrMissingIdentity = errors.New("project must have at least a project code or a project name")

// Project is one normalized portfolio entry. Field names in JSON match the
// REST API contract. Optional numerics are pointers so that absence stays
// distinguishable from zero; the KPI aggregation depends on that.
type Project struct {
	ProjectCode string `json:"projectCode"`
	ProjectName string `json:"projectName"`

	ShortName       string `json:"shortName,omitempty"`
	ProjectType     string `json:"projectType,omitempty"`
	Investor        string `json:"investor,omitempty"`
	Block           string `json:"block,omitempty"`
	ProjectDirector string `json:"projectDirector,omitempty"`
	BiddingScope    string `json:"biddingScope,omitempty"`
	InitStatus      string `json:"initStatus,omitempty"`
	ProgressStatus  string `json:"progressStatus,omitempty"`

	// Calendar dates in YYYY-MM-DD form, empty when absent.
	StartDate       string `json:"startDate,omitempty"`
	ExpectedEndDate string `json:"expectedEndDate,omitempty"`

	DurationDays         *float64 `json:"durationDays,omitempty"`
	DurationMonths       *float64 `json:"durationMonths,omitempty"`
	ContractValue        *float64 `json:"contractValue,omitempty"`
	ExecutedValue        *float64 `json:"executedValue,omitempty"`
	AcceptedValue        *float64 `json:"acceptedValue,omitempty"`
	ProposedPaymentValue *float64 `json:"proposedPaymentValue,omitempty"`
	RemainingValue       *float64 `json:"remainingValue,omitempty"`
	CompletionPercentage *float64 `json:"completionPercentage,omitempty"`

	// EstimatedBudget carries the raw "Ngân sách (VND)" column so the
	// portfolio KPI can still sum it after normalization.
	EstimatedBudget *float64 `json:"estimatedBudget,omitempty"`
}

// Normalize enforces the identity invariant: at least one of code and name
// must be set, and the missing one is derived from the other. The code
// fallback takes the first 10 characters of the name.
func (p *Project) Normalize() error {
	if p.ProjectCode == "" && p.ProjectName == "" {
		return ErrMissingIdentity
	}
	if p.ProjectCode == "" {
		p.ProjectCode = truncate(p.ProjectName, 10)
	}
	if p.ProjectName == "" {
		p.ProjectName = p.ProjectCode
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Value dereferences an optional numeric, absent reading as zero.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Float is a convenience for building optional numeric fields.
func Float(f float64) *float64 {
	return &f
}
