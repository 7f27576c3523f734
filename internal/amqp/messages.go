package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportSource tells the worker where to load the raw rows from.
type ImportSource string

const (
	SourceFile  ImportSource = "file"
	SourceSheet ImportSource = "sheet"
)

// ImportJobMessage describes one queued import. The message carries only a
// reference to the source; the worker reads and maps the rows itself.
type ImportJobMessage struct {
	JobID         string       `json:"jobId"`
	Source        ImportSource `json:"source"`
	Path          string       `json:"path,omitempty"`
	SpreadsheetID string       `json:"spreadsheetId,omitempty"`
	SheetName     string       `json:"sheetName,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// NewFileImportJob creates a job for an uploaded workbook stored at path.
func NewFileImportJob(path string) *ImportJobMessage {
	return &ImportJobMessage{
		JobID:     uuid.NewString(),
		Source:    SourceFile,
		Path:      path,
		Timestamp: time.Now(),
	}
}

// NewSheetImportJob creates a job that pulls rows from a Google spreadsheet.
func NewSheetImportJob(spreadsheetID, sheetName string) *ImportJobMessage {
	return &ImportJobMessage{
		JobID:         uuid.NewString(),
		Source:        SourceSheet,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Timestamp:     time.Now(),
	}
}

// Validate checks that the message references a loadable source.
func (m *ImportJobMessage) Validate() error {
	switch m.Source {
	case SourceFile:
		if m.Path == "" {
			return fmt.Errorf("file import job %s has no path", m.JobID)
		}
	case SourceSheet:
		if m.SpreadsheetID == "" {
			return fmt.Errorf("sheet import job %s has no spreadsheet id", m.JobID)
		}
	default:
		return fmt.Errorf("import job %s has unknown source %q", m.JobID, m.Source)
	}
	return nil
}

// ToJSON converts the message to JSON bytes.
func (m *ImportJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportJobMessageFromJSON creates a message from JSON bytes.
func ImportJobMessageFromJSON(data []byte) (*ImportJobMessage, error) {
	var msg ImportJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
