// Package worker executes queued import jobs.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"duan/internal/amqp"
	"duan/internal/core"
	"duan/internal/excel"
	"duan/internal/services"
	"duan/internal/sheets/google"
)

// RowLoader resolves a job message into spreadsheet rows.
type RowLoader func(ctx context.Context, msg *amqp.ImportJobMessage) ([]core.RawRow, error)

// ImportWorker resolves a job's row source and runs the import pipeline.
type ImportWorker struct {
	importer *services.ImportService
	load     RowLoader
	// removeFiles controls whether uploaded workbooks are deleted once a
	// job finishes; they are one-shot spool files.
	removeFiles bool
}

// NewImportWorker creates a worker around the given import service.
func NewImportWorker(importer *services.ImportService, removeFiles bool) *ImportWorker {
	return &ImportWorker{importer: importer, load: defaultRowLoader, removeFiles: removeFiles}
}

// HandleJob loads the rows a job points at and replaces the store contents
// with them. Returned errors cause the message to be requeued, so loading
// failures for a vanished spool file are logged and swallowed instead.
func (w *ImportWorker) HandleJob(ctx context.Context, msg *amqp.ImportJobMessage) error {
	if err := msg.Validate(); err != nil {
		slog.ErrorContext(ctx, "Discarding invalid import job", "error", err)
		return nil
	}

	rows, err := w.load(ctx, msg)
	if err != nil {
		if msg.Source == amqp.SourceFile {
			if _, statErr := os.Stat(msg.Path); os.IsNotExist(statErr) {
				slog.ErrorContext(ctx, "Spool file is gone, discarding job",
					"job_id", msg.JobID, "path", msg.Path)
				return nil
			}
		}
		return fmt.Errorf("load rows for job %s: %w", msg.JobID, err)
	}

	result, err := w.importer.ImportBatch(ctx, rows, func(done, total int) {
		if done%50 == 0 || done == total {
			slog.InfoContext(ctx, "Import progress", "job_id", msg.JobID, "done", done, "total", total)
		}
	})
	if err != nil {
		return fmt.Errorf("import job %s: %w", msg.JobID, err)
	}

	if w.removeFiles && msg.Source == amqp.SourceFile {
		if err := os.Remove(msg.Path); err != nil {
			slog.WarnContext(ctx, "Failed to remove spool file", "path", msg.Path, "error", err)
		}
	}

	slog.InfoContext(ctx, "Import job finished",
		"job_id", msg.JobID, "imported", result.Imported, "total", result.Total)
	return nil
}

func defaultRowLoader(ctx context.Context, msg *amqp.ImportJobMessage) ([]core.RawRow, error) {
	switch msg.Source {
	case amqp.SourceFile:
		return excel.ReadFile(msg.Path)
	case amqp.SourceSheet:
		client, err := google.New(ctx, msg.SpreadsheetID, msg.SheetName)
		if err != nil {
			return nil, err
		}
		return client.FetchRows(ctx)
	default:
		return nil, fmt.Errorf("unknown import source %q", msg.Source)
	}
}
