package export

import (
	"encoding/json"
	"io"

	"github.com/nconklindev/tabula/internal/types"
)

// JSONExporter writes records as a JSON array of flat objects, indented by two spaces
type JSONExporter struct{}

// Export exports the records to JSON format
func (e *JSONExporter) Export(result *types.ConversionResult, w io.Writer) error {
	records := result.Records
	if records == nil {
		records = []*types.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(records)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

func (e *JSONExporter) ContentType() string {
	return "application/json"
}
