// Package session holds the per-user working state: template columns, the
// last conversion result and whether the help panel is open.
package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/nconklindev/tabula/internal/types"
)

// ErrEmptyColumnName is returned when a column is added without a name.
var ErrEmptyColumnName = errors.New("please enter a column name")

// State is one session's state. It is safe for concurrent use.
type State struct {
	mu       sync.Mutex
	columns  []types.ColumnDefinition
	current  *types.ConversionResult
	showHelp bool
}

func New() *State {
	return &State{}
}

// ColumnRow is one line of the column list shown before generating a template.
type ColumnRow struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	SampleValue string `json:"sample_value"`
}

// AddColumn appends a column definition. Duplicate names are allowed.
func (s *State) AddColumn(name, sample string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyColumnName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = append(s.columns, types.ColumnDefinition{Name: name, SampleValue: sample})
	return nil
}

// Columns returns a copy of the column definitions in insertion order.
func (s *State) Columns() []types.ColumnDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ColumnDefinition(nil), s.columns...)
}

func (s *State) ClearColumns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = nil
}

// ColumnRows numbers the columns from 1 for display.
func (s *State) ColumnRows() []ColumnRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]ColumnRow, len(s.columns))
	for i, col := range s.columns {
		rows[i] = ColumnRow{Index: i + 1, Name: col.Name, SampleValue: col.SampleValue}
	}
	return rows
}

// SetResult replaces the last conversion result.
func (s *State) SetResult(r *types.ConversionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = r
}

func (s *State) Result() *types.ConversionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ToggleHelp flips the help panel and returns the new visibility.
func (s *State) ToggleHelp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showHelp = !s.showHelp
	return s.showHelp
}

func (s *State) ShowHelp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showHelp
}
