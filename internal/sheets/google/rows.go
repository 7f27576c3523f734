package google

import (
	"fmt"
	"strings"

	"duan/internal/core"
)

// valuesToRows converts a Sheets values matrix into raw rows. The first row
// holds the column headers; rows with no usable cells are dropped.
func valuesToRows(values [][]interface{}) []core.RawRow {
	if len(values) == 0 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, v := range values[0] {
		headers[i] = strings.TrimSpace(toText(v))
	}

	rows := make([]core.RawRow, 0, len(values)-1)
	for _, rowValues := range values[1:] {
		raw := make(core.RawRow, len(headers))
		empty := true
		for col, header := range headers {
			if header == "" || col >= len(rowValues) {
				continue
			}
			cell := toCell(rowValues[col])
			if cell.IsEmpty() {
				continue
			}
			raw[header] = cell
			empty = false
		}
		if !empty {
			rows = append(rows, raw)
		}
	}
	return rows
}

// toCell classifies one API value. With UNFORMATTED_VALUE the API returns
// JSON numbers for numeric cells, so date serials arrive as float64.
func toCell(v interface{}) core.Cell {
	switch val := v.(type) {
	case nil:
		return core.EmptyCell()
	case float64:
		return core.NumberCell(val)
	case bool:
		if val {
			return core.TextCell("TRUE")
		}
		return core.TextCell("FALSE")
	case string:
		return core.TextCell(val)
	default:
		return core.TextCell(fmt.Sprint(val))
	}
}

func toText(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
