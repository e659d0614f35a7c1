package export

import (
	"encoding/csv"
	"io"

	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/types"
)

// CSVExporter writes the table view: a header row and one row per record
type CSVExporter struct{}

// Export exports the table to UTF-8 CSV
func (e *CSVExporter) Export(result *types.ConversionResult, w io.Writer) error {
	if result.Table == nil {
		return nil
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(result.Table.Columns); err != nil {
		return err
	}

	line := make([]string, result.Table.NumCols())
	for _, row := range result.Table.Rows {
		for i := range line {
			line[i] = ""
			if i < len(row) {
				line[i] = converter.FormatCell(row[i])
			}
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}

func (e *CSVExporter) ContentType() string {
	return "text/csv"
}
