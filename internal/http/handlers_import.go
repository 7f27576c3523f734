package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"duan/internal/amqp"
	"duan/internal/core"
	"duan/internal/excel"
	"duan/internal/log"
	"duan/internal/services"
	"duan/internal/sheets/google"
)

// maxUploadBytes caps spreadsheet uploads at 20 MiB.
const maxUploadBytes = 20 << 20

type (
	sheetImportRequest struct {
		SpreadsheetID string `json:"spreadsheetId"`
		SheetName     string `json:"sheetName"`
	}

	queuedResponse struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
)

// handleImportUpload accepts a multipart workbook upload. In sync mode the
// rows replace the store before the response is written; in queue mode the
// file is spooled to disk and a job is published.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	if s.publisher != nil {
		s.enqueueFileImport(w, r, file, header.Filename)
		return
	}

	rows, err := excel.Read(file)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Workbook decode failed",
			log.FieldOperation, log.OpImport, log.FieldError, err)
		writeError(w, http.StatusUnprocessableEntity, "cannot read workbook")
		return
	}

	s.runImport(w, r, rows)
}

// handleImportSheet pulls rows from a Google spreadsheet instead of an
// uploaded file. The request may name the spreadsheet; otherwise the
// worker or client falls back to the configured one.
func (s *Server) handleImportSheet(w http.ResponseWriter, r *http.Request) {
	var req sheetImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SpreadsheetID == "" {
		writeError(w, http.StatusBadRequest, "spreadsheetId is required")
		return
	}

	if s.publisher != nil {
		msg := amqp.NewSheetImportJob(req.SpreadsheetID, req.SheetName)
		if err := s.publisher.PublishImportJob(r.Context(), msg); err != nil {
			s.logger.ErrorContext(r.Context(), "Publishing sheet import job failed",
				log.FieldJobID, msg.JobID, log.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "failed to enqueue import")
			return
		}
		writeJSON(w, http.StatusAccepted, queuedResponse{JobID: msg.JobID, Status: "queued"})
		return
	}

	client, err := google.New(r.Context(), req.SpreadsheetID, req.SheetName)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Sheets client setup failed",
			log.FieldOperation, log.OpImport, log.FieldError, err)
		writeError(w, http.StatusBadGateway, "cannot reach spreadsheet")
		return
	}
	rows, err := client.FetchRows(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Sheet fetch failed",
			log.FieldOperation, log.OpImport, log.FieldError, err)
		writeError(w, http.StatusBadGateway, "cannot read spreadsheet")
		return
	}

	s.runImport(w, r, rows)
}

func (s *Server) enqueueFileImport(w http.ResponseWriter, r *http.Request, file io.Reader, original string) {
	name := uuid.NewString() + filepath.Ext(original)
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Spooling upload failed",
			log.FieldOperation, log.OpImport, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	msg := amqp.NewFileImportJob(path)
	if err := s.publisher.PublishImportJob(r.Context(), msg); err != nil {
		s.logger.ErrorContext(r.Context(), "Publishing file import job failed",
			log.FieldJobID, msg.JobID, log.FieldError, err)
		os.Remove(path)
		writeError(w, http.StatusServiceUnavailable, "failed to enqueue import")
		return
	}

	writeJSON(w, http.StatusAccepted, queuedResponse{JobID: msg.JobID, Status: "queued"})
}

func (s *Server) runImport(w http.ResponseWriter, r *http.Request, rows []core.RawRow) {
	result, err := s.importer.ImportBatch(r.Context(), rows, func(done, total int) {
		if done%50 == 0 || done == total {
			s.logger.InfoContext(r.Context(), "Import progress",
				log.FieldImported, done, log.FieldRowCount, total)
		}
	})
	if err != nil {
		if errors.Is(err, services.ErrNoValidRows) {
			// The batch is rejected before the wipe; the store is untouched.
			writeError(w, http.StatusUnprocessableEntity, "no valid rows in spreadsheet")
			return
		}
		// Any other failure happened after the wipe started, so cached
		// listings describe records that no longer exist.
		s.invalidateLists()
		s.logger.ErrorContext(r.Context(), "Import failed",
			log.FieldOperation, log.OpImport, log.FieldError, err)
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("import aborted after %d of %d records", result.Imported, result.Total))
		return
	}

	s.invalidateLists()
	writeJSON(w, http.StatusOK, result)
}
