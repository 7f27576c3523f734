// Package core holds the normalized portfolio record and the locale-aware
// cell parsing used by both the field mapper and the chart aggregators.
//
// Spreadsheets arriving here use the Vietnamese convention of `.` as the
// thousands separator ("147.000.000.000" is 147 billion), mix DD/MM/YYYY
// strings with Excel date serials, and are generally hand-edited. Parsing is
// therefore deliberately lenient and never surfaces per-cell errors.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Excel date serials are day counts since 1899-12-30. Serial 25569 is
// 1970-01-01; only the open interval (25569, 73415), roughly the years
// 1970 through 2100, is treated as a date. Anything outside is a plain
// number or a formatting artifact, not a plausible project date.
const (
	excelSerialMin = 25569
	excelSerialMax = 73415
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseNumber converts a cell to a number with aggregate-context leniency:
// numeric cells pass through, text is cleaned of everything that is not a
// digit, dot or minus sign, and the remaining dots are dropped as grouping
// separators. Unparsable values become 0 so a single bad cell can never
// abort an aggregation.
func ParseNumber(c Cell) float64 {
	n, _ := ParseNumberOK(c)
	return n
}

// ParseNumberOK is the mapping-context variant of ParseNumber: it reports
// whether the cell actually held a number, so the mapper can leave the field
// absent instead of writing a bogus zero.
func ParseNumberOK(c Cell) (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Num, true
	case CellText:
		cleaned := cleanNumeric(c.Text)
		if cleaned == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// cleanNumeric strips everything but digits, dots and minus signs, then
// removes the dots themselves: per Vietnamese convention they group
// thousands and never mark the decimal point.
func cleanNumeric(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r >= '0' && r <= '9' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseDate converts a cell to an ISO calendar date (YYYY-MM-DD).
//
// Text cells accept two shapes: DD/MM/YYYY (anything without exactly three
// slash-separated parts is rejected) and YYYY-MM-DD, which passes through
// unchanged. The slash form is rearranged structurally without semantic
// validation of the day and month slots; that matches how the sheets are
// actually filled in and keeps the function total.
//
// Numeric cells inside the plausible serial window convert using UTC
// arithmetic to avoid timezone drift.
func ParseDate(c Cell) (string, bool) {
	switch c.Kind {
	case CellText:
		s := strings.TrimSpace(c.Text)
		if strings.Contains(s, "/") {
			parts := strings.Split(s, "/")
			if len(parts) != 3 {
				return "", false
			}
			day := pad2(parts[0])
			month := pad2(parts[1])
			return fmt.Sprintf("%s-%s-%s", parts[2], month, day), true
		}
		if isoDateRe.MatchString(s) {
			return s, true
		}
		return "", false
	case CellNumber:
		if c.Num <= excelSerialMin || c.Num >= excelSerialMax {
			return "", false
		}
		utcDays := c.Num - excelSerialMin
		t := time.UnixMilli(int64(utcDays * 86400 * 1000)).UTC()
		return t.Format("2006-01-02"), true
	default:
		return "", false
	}
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// FormatBillions renders a raw VND amount as billions with at most two
// decimals, trailing zeros stripped: 12000000000 -> "12",
// 12500000000 -> "12.5".
func FormatBillions(value float64) string {
	billions := math.Round(value/1e9*100) / 100
	return strconv.FormatFloat(billions, 'f', -1, 64)
}

// trimFloat renders a number the way spreadsheet UIs do: no exponent, no
// trailing fraction zeros.
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
