package converter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/nconklindev/tabula/internal/types"

	"github.com/xuri/excelize/v2"
)

// dateLayout renders date-formatted numeric cells.
const dateLayout = "2006-01-02 15:04:05"

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

func readXLSX(data []byte, infer bool) ([]string, [][]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &ParseError{Format: "xlsx", Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &ParseError{Format: "xlsx", Err: errors.New("workbook has no sheets")}
	}

	sr := &sheetReader{f: f, sheet: sheets[0], dates: make(map[int]bool)}
	var rows [][]any
	if infer {
		rows, err = sr.typedRows()
	} else {
		rows, err = sr.textRows()
	}
	if err != nil {
		return nil, nil, &ParseError{Format: "xlsx", Err: fmt.Errorf("read sheet %q: %w", sr.sheet, err)}
	}

	headers, body, err := splitHeader(rows, isTemplate(f, sheets))
	if err != nil {
		return nil, nil, &ParseError{Format: "xlsx", Err: err}
	}
	return headers, body, nil
}

// isTemplate reports whether the workbook was produced by the template
// builder. Its first data row holds the samples and always counts as a record.
func isTemplate(f *excelize.File, sheets []string) bool {
	if sheets[0] != types.TemplateDataSheet || !slices.Contains(sheets, types.TemplateInstructionsSheet) {
		return false
	}
	title, err := f.GetCellValue(types.TemplateInstructionsSheet, "A1")
	return err == nil && title == types.TemplateTitle
}

type sheetReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	// dates caches the date check per style index.
	dates map[int]bool
}

// textRows returns every cell as its displayed text.
func (sr *sheetReader) textRows() ([][]any, error) {
	raw, err := sr.f.GetRows(sr.sheet)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, len(raw))
	for i, r := range raw {
		rows[i] = textRow(r)
	}
	return rows, nil
}

// typedRows reads stored cell values, ignoring number formats, and maps them
// to Go values by the cell's declared type.
func (sr *sheetReader) typedRows() ([][]any, error) {
	raw, err := sr.f.GetRows(sr.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if props, err := sr.f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sr.date1904 = *props.Date1904
	}

	rows := make([][]any, len(raw))
	for r, values := range raw {
		cells := make([]any, len(values))
		for c, v := range values {
			if v == "" {
				cells[c] = nil
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if cells[c], err = sr.typed(cell, v); err != nil {
				return nil, err
			}
		}
		rows[r] = cells
	}
	return rows, nil
}

func (sr *sheetReader) typed(cell, raw string) (any, error) {
	typ, err := sr.f.GetCellType(sr.sheet, cell)
	if err != nil {
		return nil, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return raw, nil
		}
		if sr.isDate(cell) {
			if t, err := excelize.ExcelDateToTime(n, sr.date1904); err == nil {
				return t.Format(dateLayout), nil
			}
		}
		if n == math.Trunc(n) && math.Abs(n) <= maxExactInt {
			return int64(n), nil
		}
		return n, nil
	default:
		return raw, nil
	}
}

// isDate reports whether the number format applied to cell shows a date or
// time. Unreadable styles count as plain numbers.
func (sr *sheetReader) isDate(cell string) bool {
	idx, err := sr.f.GetCellStyle(sr.sheet, cell)
	if err != nil {
		return false
	}
	if v, ok := sr.dates[idx]; ok {
		return v
	}

	v := false
	if style, err := sr.f.GetStyle(idx); err == nil {
		v = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	sr.dates[idx] = v
	return v
}

func isDateFormat(id int, custom *string) bool {
	if custom != nil {
		return isDateFormatCode(*custom)
	}
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormatCode looks for date or time tokens outside quoted literals,
// bracketed sections and escaped characters.
func isDateFormatCode(code string) bool {
	var quoted, bracketed, escaped bool
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracketed:
			bracketed = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracketed = true
		case r == 'y', r == 'd', r == 'h', r == 's':
			return true
		}
	}
	return false
}
