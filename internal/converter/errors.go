package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHeader is returned when a file has no non-blank row to use as headers.
	ErrNoHeader = errors.New("no header row found")
	// ErrUnsupportedFormat is returned for extensions other than .csv, .xlsx and .xls.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when the input exceeds Options.MaxBytes.
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")
)

// DecodeError reports text that is not valid UTF-8.
type DecodeError struct {
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte %d: save the CSV with UTF-8 encoding", e.Offset)
}

// ParseError reports a file that could be read but not interpreted as a table.
type ParseError struct {
	Format string // "csv", "xlsx", "xls"
	Line   int    // 1-based; 0 when not tied to a line
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error [%s] line %d: %v", e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error [%s]: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
