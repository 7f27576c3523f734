// Package services wires the mapping pipeline to the persistence layer.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"duan/internal/core"
	"duan/internal/mapper"
)

// ErrNoValidRows is returned when mapping a non-empty batch produces zero
// usable records; the caller surfaces it as "cannot process file".
var ErrNoValidRows = errors.New("no valid rows in import batch")

type (
	// ProjectStore is the persistence port the orchestrator drives. The
	// import never depends on a transport, only on these semantics.
	ProjectStore interface {
		Create(ctx context.Context, p core.Project) (core.Project, error)
		DeleteAll(ctx context.Context) error
	}

	// ProgressFunc is invoked after each successfully inserted record.
	ProgressFunc func(completed, total int)

	// ImportResult summarizes a finished batch.
	ImportResult struct {
		Imported int `json:"imported"`
		Total    int `json:"total"`
	}

	// ImportService runs the destructive replace-then-recreate import.
	ImportService struct {
		store ProjectStore
	}
)

// NewImportService creates an import service backed by the given store.
func NewImportService(store ProjectStore) *ImportService {
	return &ImportService{store: store}
}

// ImportBatch maps the raw rows and replaces the store's contents with the
// result: delete everything, then insert the mapped records one at a time,
// in order, calling progress after each success.
//
// Inserts run one at a time so progress is incremental. The first insert
// failure aborts the run; records inserted before it remain, so the store
// is left partially populated until the user retries (the wipe at the
// start makes a retry safe). Cancellation is honored between inserts.
func (s *ImportService) ImportBatch(ctx context.Context, rows []core.RawRow, progress ProgressFunc) (ImportResult, error) {
	projects := mapper.MapRows(rows)
	if len(projects) == 0 {
		return ImportResult{}, ErrNoValidRows
	}
	total := len(projects)

	slog.InfoContext(ctx, "Starting import batch", "rows", len(rows), "mapped", total)

	if err := s.store.DeleteAll(ctx); err != nil {
		return ImportResult{Total: total}, fmt.Errorf("delete existing records: %w", err)
	}

	for i, p := range projects {
		if err := ctx.Err(); err != nil {
			return ImportResult{Imported: i, Total: total}, fmt.Errorf("import cancelled after %d of %d records: %w", i, total, err)
		}
		if _, err := s.store.Create(ctx, p); err != nil {
			return ImportResult{Imported: i, Total: total},
				fmt.Errorf("insert record %d of %d (%s): %w", i+1, total, p.ProjectCode, err)
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	slog.InfoContext(ctx, "Import batch completed", "imported", total)
	return ImportResult{Imported: total, Total: total}, nil
}
