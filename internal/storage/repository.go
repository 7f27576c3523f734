// Package storage persists normalized project records in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"duan/internal/core"

	_ "modernc.org/sqlite"
)

type (
	// PageMeta describes one page of a paginated listing.
	PageMeta struct {
		Total      int `json:"total"`
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		TotalPages int `json:"totalPages"`
	}

	// ProjectPage is the paginated listing response shape.
	ProjectPage struct {
		Data []core.Project `json:"data"`
		Meta PageMeta       `json:"meta"`
	}

	// ProjectRepository is the SQLite-backed record store.
	ProjectRepository struct {
		db *sql.DB
	}
)

// NewProjectRepository opens (creating if necessary) the database at dbPath
// and applies migrations.
func NewProjectRepository(dbPath string) (*ProjectRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &ProjectRepository{db: db}, nil
}

// Close releases the underlying connection.
func (r *ProjectRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const projectColumns = `project_code, project_name, short_name, project_type, investor, block,
	project_director, bidding_scope, init_status, progress_status,
	start_date, expected_end_date,
	duration_days, duration_months, contract_value, executed_value,
	accepted_value, proposed_payment_value, remaining_value,
	completion_percentage, estimated_budget`

// Create inserts one record and returns it. Implements services.ProjectStore.
func (r *ProjectRepository) Create(ctx context.Context, p core.Project) (core.Project, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProjectCode, p.ProjectName, p.ShortName, p.ProjectType, p.Investor, p.Block,
		p.ProjectDirector, p.BiddingScope, p.InitStatus, p.ProgressStatus,
		p.StartDate, p.ExpectedEndDate,
		nullable(p.DurationDays), nullable(p.DurationMonths),
		nullable(p.ContractValue), nullable(p.ExecutedValue),
		nullable(p.AcceptedValue), nullable(p.ProposedPaymentValue),
		nullable(p.RemainingValue), nullable(p.CompletionPercentage),
		nullable(p.EstimatedBudget),
	)
	if err != nil {
		return core.Project{}, fmt.Errorf("insert project: %w", err)
	}

	slog.DebugContext(ctx, "Project saved", "code", p.ProjectCode, "name", p.ProjectName)
	return p, nil
}

// DeleteAll removes every record. Implements services.ProjectStore.
func (r *ProjectRepository) DeleteAll(ctx context.Context) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects`)
	if err != nil {
		return fmt.Errorf("delete all projects: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil {
		slog.InfoContext(ctx, "Deleted all projects", "count", n)
	}
	return nil
}

// Count returns the number of stored records.
func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return total, nil
}

// List returns one page of records in insertion order, with paging metadata.
// Page and limit are normalized to sane minimums.
func (r *ProjectRepository) List(ctx context.Context, page, limit int) (ProjectPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	total, err := r.Count(ctx)
	if err != nil {
		return ProjectPage{}, err
	}

	offset := (page - 1) * limit
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return ProjectPage{}, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects, err := scanProjects(rows)
	if err != nil {
		return ProjectPage{}, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return ProjectPage{
		Data: projects,
		Meta: PageMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	}, nil
}

// ListAll returns every record in insertion order. The aggregators consume
// this; chart series are always recomputed from the full set.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func scanProjects(rows *sql.Rows) ([]core.Project, error) {
	projects := []core.Project{}
	for rows.Next() {
		var (
			p                              core.Project
			durationDays, durationMonths   sql.NullFloat64
			contractValue, executedValue   sql.NullFloat64
			acceptedValue, proposedPayment sql.NullFloat64
			remainingValue, completionPct  sql.NullFloat64
			estimatedBudget                sql.NullFloat64
		)
		if err := rows.Scan(
			&p.ProjectCode, &p.ProjectName, &p.ShortName, &p.ProjectType, &p.Investor, &p.Block,
			&p.ProjectDirector, &p.BiddingScope, &p.InitStatus, &p.ProgressStatus,
			&p.StartDate, &p.ExpectedEndDate,
			&durationDays, &durationMonths, &contractValue, &executedValue,
			&acceptedValue, &proposedPayment, &remainingValue,
			&completionPct, &estimatedBudget,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.DurationDays = optional(durationDays)
		p.DurationMonths = optional(durationMonths)
		p.ContractValue = optional(contractValue)
		p.ExecutedValue = optional(executedValue)
		p.AcceptedValue = optional(acceptedValue)
		p.ProposedPaymentValue = optional(proposedPayment)
		p.RemainingValue = optional(remainingValue)
		p.CompletionPercentage = optional(completionPct)
		p.EstimatedBudget = optional(estimatedBudget)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func optional(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return core.Float(n.Float64)
}
