package converter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nconklindev/tabula/internal/types"

	"github.com/extrame/xls"
)

// DefaultMaxBytes is the largest upload accepted by default (200MB).
const DefaultMaxBytes int64 = 200 << 20

// SupportedExtensions lists the file types Parse understands.
var SupportedExtensions = []string{".csv", ".xlsx", ".xlsm", ".xls"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls parsing behavior.
type Options struct {
	// MaxBytes rejects larger inputs; 0 means DefaultMaxBytes.
	MaxBytes int64
	// InferTypes turns canonical numeric and boolean text into numbers and
	// bools. Excel 2007+ cells are typed from their stored values instead, and
	// without inference they keep their displayed text.
	InferTypes bool
}

// DefaultOptions returns the 200MB cap with type inference enabled.
func DefaultOptions() Options {
	return Options{
		MaxBytes:   DefaultMaxBytes,
		InferTypes: true,
	}
}

// Converter turns uploaded tabular files into flat records.
type Converter struct {
	opts Options
}

// New creates a Converter with the given options.
func New(opts Options) *Converter {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Converter{opts: opts}
}

// MaxBytes returns the effective upload limit.
func (c *Converter) MaxBytes() int64 {
	return c.opts.MaxBytes
}

// Parse converts data with the default options.
func Parse(data []byte, filename string) ([]*types.Record, *types.Table, error) {
	return New(DefaultOptions()).Parse(data, filename)
}

// Parse decodes data according to the extension of filename and returns one
// record per data row together with the same data as a table.
func (c *Converter) Parse(data []byte, filename string) ([]*types.Record, *types.Table, error) {
	if int64(len(data)) > c.opts.MaxBytes {
		return nil, nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), c.opts.MaxBytes)
	}

	var (
		headers []string
		rows    [][]any
		err     error
	)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		headers, rows, err = readCSV(data)
	case ".xlsx", ".xlsm":
		headers, rows, err = readXLSX(data, c.opts.InferTypes)
	case ".xls":
		headers, rows, err = readXLS(data)
	default:
		return nil, nil, &ParseError{Format: strings.TrimPrefix(ext, "."), Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)}
	}
	if err != nil {
		return nil, nil, err
	}

	records, table := buildResult(headers, rows, c.opts.InferTypes)
	return records, table, nil
}

// Convert is Parse packaged as a ConversionResult.
func (c *Converter) Convert(data []byte, filename string) (*types.ConversionResult, error) {
	records, table, err := c.Parse(data, filename)
	if err != nil {
		return nil, err
	}
	return &types.ConversionResult{
		FileName: filepath.Base(filename),
		Records:  records,
		Table:    table,
	}, nil
}

// ReadFile converts the file at path, checking its size before reading it.
func (c *Converter) ReadFile(path string) (*types.ConversionResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > c.opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), c.opts.MaxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Convert(data, path)
}

func readCSV(data []byte) ([]string, [][]any, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, nil, &DecodeError{Offset: invalidUTF8Offset(data)}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	// A stray quote inside an unquoted field is kept as a literal character.
	reader.LazyQuotes = true

	var headers []string
	var rows [][]any
	var lastLine, lastCol int

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, nil, &ParseError{Format: "csv", Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, nil, &ParseError{Format: "csv", Err: err}
		}

		lastLine, lastCol = reader.FieldPos(len(record) - 1)

		row := textRow(record)
		if headers == nil {
			if isBlankRow(row) {
				continue
			}
			headers = nameHeaders(row)
			continue
		}

		if len(record) > len(headers) {
			line, _ := reader.FieldPos(0)
			return nil, nil, &ParseError{
				Format: "csv",
				Line:   line,
				Err:    fmt.Errorf("expected %d fields, saw %d", len(headers), len(record)),
			}
		}
		rows = append(rows, row)
	}

	if lastLine > 0 && unterminatedQuote(data, lastLine, lastCol) {
		return nil, nil, &ParseError{Format: "csv", Line: lastLine, Err: csv.ErrQuote}
	}
	if headers == nil {
		return nil, nil, &ParseError{Format: "csv", Err: ErrNoHeader}
	}

	return headers, rows, nil
}

// unterminatedQuote reports whether the field starting at line/col (1-based,
// columns in bytes) opens a quote that is never closed. With LazyQuotes the
// csv reader reads such a field to the end of the input instead of failing.
func unterminatedQuote(data []byte, line, col int) bool {
	off := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(data[off:], '\n')
		if i < 0 {
			return false
		}
		off += i + 1
	}
	off += col - 1
	if off >= len(data) || data[off] != '"' {
		return false
	}

	for i := off + 1; i < len(data); i++ {
		if data[i] != '"' {
			continue
		}
		if i+1 == len(data) {
			return false
		}
		switch data[i+1] {
		case '"':
			i++
		case ',', '\n', '\r':
			return false
		}
	}
	return true
}

func readXLS(data []byte) (headers []string, body [][]any, err error) {
	// extrame/xls panics on some malformed BIFF streams.
	defer func() {
		if r := recover(); r != nil {
			headers, body = nil, nil
			err = &ParseError{Format: "xls", Err: fmt.Errorf("corrupt workbook: %v", r)}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, nil, &ParseError{Format: "xls", Err: fmt.Errorf("open workbook: %w", err)}
	}
	if wb.NumSheets() == 0 {
		return nil, nil, &ParseError{Format: "xls", Err: errors.New("workbook has no sheets")}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, &ParseError{Format: "xls", Err: errors.New("first sheet is unreadable")}
	}

	var rows [][]any
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]any, row.LastCol())
		for c := range cells {
			if c < row.FirstCol() {
				cells[c] = text("")
				continue
			}
			cells[c] = text(row.Col(c))
		}
		rows = append(rows, cells)
	}

	headers, body, err = splitHeader(rows, false)
	if err != nil {
		return nil, nil, &ParseError{Format: "xls", Err: err}
	}
	return headers, body, nil
}

// xlsRow returns row i of sheet, or nil when the sheet stores no record for
// it. extrame/xls dereferences a missing row instead of reporting it.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// splitHeader takes the first non-blank row as headers, widens the header to
// the widest data row and drops blank data rows. With keepFirst the row right
// after the header is kept even when blank.
func splitHeader(rows [][]any, keepFirst bool) ([]string, [][]any, error) {
	headerIdx := findHeaderRow(rows)
	if headerIdx == -1 {
		return nil, nil, ErrNoHeader
	}

	raw := rows[headerIdx]
	width := len(raw)
	var body [][]any
	for i, row := range rows[headerIdx+1:] {
		if isBlankRow(row) && !(keepFirst && i == 0) {
			continue
		}
		if len(row) > width {
			width = len(row)
		}
		body = append(body, row)
	}
	if keepFirst && len(body) == 0 {
		body = append(body, nil)
	}

	padded := make([]any, width)
	copy(padded, raw)
	return nameHeaders(padded), body, nil
}

// findHeaderRow returns the index of the first row with a non-blank cell, or -1.
func findHeaderRow(rows [][]any) int {
	for i, row := range rows {
		if !isBlankRow(row) {
			return i
		}
	}
	return -1
}

// nameHeaders renders raw header cells, naming blank ones "Unnamed: <index>".
func nameHeaders(raw []any) []string {
	headers := make([]string, len(raw))
	for i, cell := range raw {
		h := cellText(cell)
		if strings.TrimSpace(h) == "" {
			headers[i] = fmt.Sprintf("Unnamed: %d", i)
			continue
		}
		headers[i] = h
	}
	return headers
}

// buildResult aligns rows to headers positionally. Missing trailing cells are
// nil, and for duplicate headers the last occurrence wins within a record.
func buildResult(headers []string, rows [][]any, infer bool) ([]*types.Record, *types.Table) {
	table := &types.Table{
		Columns: append([]string(nil), headers...),
		Rows:    make([][]any, 0, len(rows)),
	}
	records := make([]*types.Record, 0, len(rows))

	for _, row := range rows {
		cells := make([]any, len(headers))
		rec := types.NewRecord()
		for i, h := range headers {
			var v any
			if i < len(row) {
				v = cellValue(row[i], infer)
			}
			cells[i] = v
			rec.Set(h, v)
		}
		table.Rows = append(table.Rows, cells)
		records = append(records, rec)
	}

	return records, table
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
