// Package excel decodes xlsx workbooks into raw rows for the mapping
// pipeline. Only the first sheet is read; row 1 supplies the column headers.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"duan/internal/core"
)

// ReadFile decodes the workbook at path.
func ReadFile(path string) ([]core.RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f)
}

// Read decodes a workbook from a stream (an HTTP upload, typically).
func Read(r io.Reader) ([]core.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]core.RawRow, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Raw cell values keep Excel date serials numeric instead of rendering
	// them through the cell's display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := rows[0]
	out := make([]core.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw := make(core.RawRow, len(headers))
		empty := true
		for col, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" || col >= len(row) {
				continue
			}
			cell := toCell(row[col])
			if cell.IsEmpty() {
				continue
			}
			raw[header] = cell
			empty = false
		}
		if !empty {
			out = append(out, raw)
		}
	}
	return out, nil
}

// toCell classifies a raw cell string. Values that parse as numbers become
// number cells so date serials and unformatted amounts keep their type.
// The classification is lossy for numeric-looking identifiers: a code
// entered as "007" comes back as the number 7. Real project codes carry a
// non-numeric prefix, so identifier columns are unaffected in practice.
func toCell(value string) core.Cell {
	s := strings.TrimSpace(value)
	if s == "" {
		return core.EmptyCell()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return core.NumberCell(n)
	}
	return core.TextCell(value)
}
