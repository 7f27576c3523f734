// Package mapper turns raw spreadsheet rows into normalized Project records
// using a configurable header table with case-insensitive fallback lookup.
package mapper

import (
	"fmt"
	"log/slog"
	"strings"

	"duan/internal/core"
)

// MappingError reports a row that could not be mapped to a usable record.
type MappingError struct {
	Err error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map row: %v", e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// MapRow maps one raw row onto a Project using the given header table
// (DefaultHeaderTable when nil). Lookup is exact-match first, then
// case-insensitive across the row's keys; pairs whose resolved cell is empty
// are skipped. It fails with a MappingError only when neither a project code
// nor a project name can be determined.
func MapRow(row core.RawRow, table []HeaderMapping) (core.Project, error) {
	if table == nil {
		table = DefaultHeaderTable
	}

	// Case-folded secondary index, built once per call. Exact matches hit
	// the map directly; the folded index resolves header variants like
	// "INVESTOR" without rescanning the row per table entry. First key wins
	// among case-insensitive duplicates.
	folded := make(map[string]string, len(row))
	for key := range row {
		lower := strings.ToLower(key)
		if _, exists := folded[lower]; !exists {
			folded[lower] = key
		}
	}

	var p core.Project
	for _, m := range table {
		cell, ok := row.Get(m.Header)
		if !ok {
			key, found := folded[strings.ToLower(m.Header)]
			if !found {
				continue
			}
			cell, ok = row.Get(key)
			if !ok {
				continue
			}
		}
		applyField(&p, m, cell)
	}

	if err := p.Normalize(); err != nil {
		return core.Project{}, &MappingError{Err: err}
	}
	return p, nil
}

// MapRows maps each row independently. A row that fails to map is dropped
// and logged; one bad row never aborts the batch. Callers that need to treat
// an all-invalid batch as an error check for an empty result themselves.
func MapRows(rows []core.RawRow) []core.Project {
	projects := make([]core.Project, 0, len(rows))
	for i, row := range rows {
		p, err := MapRow(row, nil)
		if err != nil {
			slog.Warn("Dropping unmappable row", "row", i+1, "error", err)
			continue
		}
		projects = append(projects, p)
	}
	return projects
}

func applyField(p *core.Project, m HeaderMapping, cell core.Cell) {
	switch m.Kind {
	case KindDate:
		date, ok := core.ParseDate(cell)
		if !ok {
			return
		}
		switch m.Field {
		case FieldStartDate:
			p.StartDate = date
		case FieldExpectedEndDate:
			p.ExpectedEndDate = date
		}
	case KindNumber:
		n, ok := core.ParseNumberOK(cell)
		if !ok {
			return
		}
		if target := numberTarget(p, m.Field); target != nil {
			*target = core.Float(n)
		}
	default:
		s := strings.TrimSpace(cell.String())
		if s == "" {
			return
		}
		if target := textTarget(p, m.Field); target != nil {
			*target = s
		}
	}
}

func textTarget(p *core.Project, f Field) *string {
	switch f {
	case FieldProjectCode:
		return &p.ProjectCode
	case FieldProjectName:
		return &p.ProjectName
	case FieldShortName:
		return &p.ShortName
	case FieldProjectType:
		return &p.ProjectType
	case FieldInvestor:
		return &p.Investor
	case FieldBlock:
		return &p.Block
	case FieldProjectDirector:
		return &p.ProjectDirector
	case FieldBiddingScope:
		return &p.BiddingScope
	case FieldInitStatus:
		return &p.InitStatus
	case FieldProgressStatus:
		return &p.ProgressStatus
	default:
		return nil
	}
}

func numberTarget(p *core.Project, f Field) **float64 {
	switch f {
	case FieldDurationDays:
		return &p.DurationDays
	case FieldDurationMonths:
		return &p.DurationMonths
	case FieldContractValue:
		return &p.ContractValue
	case FieldExecutedValue:
		return &p.ExecutedValue
	case FieldAcceptedValue:
		return &p.AcceptedValue
	case FieldProposedPaymentValue:
		return &p.ProposedPaymentValue
	case FieldRemainingValue:
		return &p.RemainingValue
	case FieldCompletionPercentage:
		return &p.CompletionPercentage
	case FieldEstimatedBudget:
		return &p.EstimatedBudget
	default:
		return nil
	}
}
