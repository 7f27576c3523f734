// Command duan-import runs one import from the command line, bypassing the
// HTTP server and the job queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"duan/internal/config"
	"duan/internal/core"
	"duan/internal/excel"
	"duan/internal/log"
	"duan/internal/services"
	"duan/internal/sheets/google"
	"duan/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		filePath  = flag.String("file", "", "path to an .xlsx workbook to import")
		sheetID   = flag.String("spreadsheet", "", "Google spreadsheet id to import (defaults to GOOGLE_SPREADSHEET_ID)")
		sheetName = flag.String("sheet", "", "sheet name inside the spreadsheet (defaults to the first sheet)")
	)
	flag.Parse()

	logger := log.New(log.Config{
		Level:     log.DefaultConfig().Level,
		Component: log.ComponentImport,
	})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()

	rows, err := loadRows(ctx, cfg, *filePath, *sheetID, *sheetName)
	if err != nil {
		logger.Error("Failed to load rows", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Rows loaded", log.FieldRowCount, len(rows))

	repo, err := storage.NewProjectRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open project repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	importer := services.NewImportService(repo)
	result, err := importer.ImportBatch(ctx, rows, func(done, total int) {
		if done%100 == 0 || done == total {
			logger.Info("Import progress", log.FieldImported, done, log.FieldRowCount, total)
		}
	})
	if err != nil {
		logger.Error("Import failed", log.FieldError, err,
			log.FieldImported, result.Imported, log.FieldRowCount, result.Total)
		os.Exit(1)
	}

	logger.Info("Import finished", log.FieldImported, result.Imported)
}

func loadRows(ctx context.Context, cfg *config.Config, filePath, sheetID, sheetName string) ([]core.RawRow, error) {
	if filePath != "" {
		return excel.ReadFile(filePath)
	}

	if sheetID == "" {
		sheetID = cfg.GoogleSpreadsheetID
	}
	if sheetName == "" {
		sheetName = cfg.GoogleSheetName
	}
	if sheetID == "" {
		return nil, fmt.Errorf("nothing to import: pass -file or -spreadsheet (or set GOOGLE_SPREADSHEET_ID)")
	}

	client, err := google.New(ctx, sheetID, sheetName)
	if err != nil {
		return nil, err
	}
	return client.FetchRows(ctx)
}
