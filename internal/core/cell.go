package core

import "strings"

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

type (
	// Cell is one spreadsheet cell after decoding. Modelling the value as a
	// tagged union keeps the parser branches exhaustive instead of spreading
	// type switches over an untyped map.
	Cell struct {
		Kind CellKind
		Text string
		Num  float64
	}

	// RawRow is one spreadsheet record before normalization, keyed by the
	// column header exactly as it appears in row 1 of the sheet.
	RawRow map[string]Cell
)

// TextCell returns a text cell. Whitespace-only strings decode as empty
// cells so that padding columns in real-world sheets do not survive as
// values.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell. Excel date serials arrive through here.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Num: f}
}

// EmptyCell returns the absent cell.
func EmptyCell() Cell {
	return Cell{Kind: CellEmpty}
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell the way it would appear in the sheet.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return trimFloat(c.Num)
	default:
		return ""
	}
}

// Get looks up a column by exact header match.
func (r RawRow) Get(header string) (Cell, bool) {
	c, ok := r[header]
	if !ok || c.IsEmpty() {
		return Cell{}, false
	}
	return c, true
}
