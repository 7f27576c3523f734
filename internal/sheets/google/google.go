// Package google reads portfolio rows straight from a Google spreadsheet,
// as an alternative input to xlsx uploads.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"duan/internal/core"
)

// Client wraps the Sheets API for one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (defaults to the first sheet),
// GOOGLE_SERVICE_ACCOUNT_JSON / GOOGLE_SERVICE_ACCOUNT_FILE /
// GOOGLE_APPLICATION_CREDENTIALS for auth.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME")),
	}, nil
}

// New creates a client for a specific spreadsheet and sheet.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(serviceAccountJSON)),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	case serviceAccountFile != "":
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(serviceAccountFile),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	default:
		// Application default credentials.
		return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
}

// FetchRows reads the sheet (the configured one, or the spreadsheet's first
// sheet) and converts it to raw rows: row 1 supplies the headers.
// UNFORMATTED_VALUE keeps dates as Excel serial numbers, exactly like the
// raw xlsx path, so both inputs feed the same parser.
func (c *Client) FetchRows(ctx context.Context) ([]core.RawRow, error) {
	sheetName := c.sheetName
	if sheetName == "" {
		meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get spreadsheet metadata: %w", err)
		}
		if len(meta.Sheets) == 0 {
			return nil, errors.New("spreadsheet has no sheets")
		}
		sheetName = meta.Sheets[0].Properties.Title
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheetName).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	rows := valuesToRows(resp.Values)
	slog.InfoContext(ctx, "Fetched rows from Google Sheets",
		"spreadsheet_id", c.spreadsheetID, "sheet", sheetName, "rows", len(rows))
	return rows, nil
}
