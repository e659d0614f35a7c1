// Package template builds downloadable spreadsheet templates from column definitions.
package template

import (
	"fmt"
	"math"
	"time"

	"github.com/nconklindev/tabula/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	FileName    = "custom_template.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	DataSheet         = types.TemplateDataSheet
	InstructionsSheet = types.TemplateInstructionsSheet

	// MinColumnWidth keeps short header names readable.
	MinColumnWidth = 15.0
	widthPerChar   = 1.2

	headerFill  = "4F81BD"
	headerFont  = "FFFFFF"
	timeLayout  = "2006-01-02 15:04:05"
	borderColor = "000000"
)

var instructionLines = []string{
	types.TemplateTitle,
	"1. Fill data in the 'Data' sheet below the headers",
	"2. Do not modify or delete the header row",
	"3. Save the file when finished",
	"4. Upload back to this tool for conversion to JSON",
	"",
	"Template Info:",
}

// Builder writes template workbooks. Now is used for the generation timestamp.
type Builder struct {
	Now func() time.Time
}

// NewBuilder returns a Builder using the wall clock.
func NewBuilder() *Builder {
	return &Builder{Now: time.Now}
}

// Build writes a template workbook with the default Builder.
func Build(columns []types.ColumnDefinition) ([]byte, error) {
	return NewBuilder().Build(columns)
}

// ColumnWidth returns the width used for a header column.
func ColumnWidth(name string) float64 {
	return math.Max(MinColumnWidth, float64(len(name))*widthPerChar)
}

// Build returns an .xlsx workbook with a styled header row and a sample row on
// the Data sheet, plus a plain Instructions sheet.
func (b *Builder) Build(columns []types.ColumnDefinition) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		return nil, fmt.Errorf("rename data sheet: %w", err)
	}

	if err := b.writeData(f, columns); err != nil {
		return nil, err
	}
	if err := b.writeInstructions(f, len(columns)); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) writeData(f *excelize.File, columns []types.ColumnDefinition) error {
	if len(columns) == 0 {
		return nil
	}

	style, err := f.NewStyle(headerStyle())
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, col := range columns {
		headerCell, _ := excelize.CoordinatesToCellName(i+1, 1)
		sampleCell, _ := excelize.CoordinatesToCellName(i+1, 2)

		if err := f.SetCellStr(DataSheet, headerCell, col.Name); err != nil {
			return fmt.Errorf("write header %q: %w", col.Name, err)
		}
		if err := f.SetCellStyle(DataSheet, headerCell, headerCell, style); err != nil {
			return fmt.Errorf("style header %q: %w", col.Name, err)
		}
		if err := f.SetCellStr(DataSheet, sampleCell, col.SampleValue); err != nil {
			return fmt.Errorf("write sample for %q: %w", col.Name, err)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(DataSheet, colName, colName, ColumnWidth(col.Name)); err != nil {
			return fmt.Errorf("set width for %q: %w", col.Name, err)
		}
	}

	return nil
}

func (b *Builder) writeInstructions(f *excelize.File, columnCount int) error {
	if _, err := f.NewSheet(InstructionsSheet); err != nil {
		return fmt.Errorf("create instructions sheet: %w", err)
	}

	lines := append([]string(nil), instructionLines...)
	lines = append(lines,
		fmt.Sprintf("Generated on: %s", b.Now().Format(timeLayout)),
		fmt.Sprintf("Total columns: %d", columnCount),
	)

	for i, line := range lines {
		if line == "" {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellStr(InstructionsSheet, cell, line); err != nil {
			return fmt.Errorf("write instructions: %w", err)
		}
	}

	return nil
}

func headerStyle() *excelize.Style {
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: borderColor, Style: 1}
	}

	return &excelize.Style{
		Font: &excelize.Font{Bold: true, Color: headerFont},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{
			WrapText: true,
			Vertical: "top",
		},
		Border: []excelize.Border{border("left"), border("top"), border("right"), border("bottom")},
	}
}

// Preview returns the template as a one-row table: headers and sample values.
func Preview(columns []types.ColumnDefinition) *types.Table {
	table := &types.Table{Columns: make([]string, len(columns))}
	row := make([]any, len(columns))
	for i, col := range columns {
		table.Columns[i] = col.Name
		row[i] = col.SampleValue
	}
	table.Rows = [][]any{row}
	return table
}
