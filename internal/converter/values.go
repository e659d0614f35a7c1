package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceCell converts raw cell text to a record value. Empty text is nil.
// With infer set, booleans and numbers are recognized only when the text is
// already in canonical form, so "01" or "1.50" stay strings.
func CoerceCell(s string, infer bool) any {
	if s == "" {
		return nil
	}
	if !infer {
		return s
	}

	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsNaN(f) && !math.IsInf(f, 0) && strconv.FormatFloat(f, 'f', -1, 64) == s {
			return f
		}
	}

	return s
}

// FormatCell renders a record value back to cell text.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// text is a cell read as plain text that still goes through CoerceCell.
// Readers that know a cell's type emit string, bool, int64 or float64 instead.
type text string

// cellValue finalizes a cell produced by one of the readers.
func cellValue(v any, infer bool) any {
	switch val := v.(type) {
	case text:
		return CoerceCell(string(val), infer)
	case string:
		if val == "" {
			return nil
		}
		return val
	default:
		return val
	}
}

// cellText renders a raw cell for header naming and blank checks.
func cellText(v any) string {
	if t, ok := v.(text); ok {
		return string(t)
	}
	return FormatCell(v)
}

func textRow(record []string) []any {
	row := make([]any, len(record))
	for i, s := range record {
		row[i] = text(s)
	}
	return row
}

// isBlankRow reports whether every cell of row is empty or whitespace.
func isBlankRow(row []any) bool {
	for _, cell := range row {
		if strings.TrimSpace(cellText(cell)) != "" {
			return false
		}
	}
	return true
}
