package export

import (
	"fmt"
	"io"

	"github.com/nconklindev/tabula/internal/types"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(result *types.ConversionResult, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "csv":
		return &CSVExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, csv, yaml)", format)
	}
}

// FileName returns the download name for an exporter, e.g. converted_data.json.
func FileName(e Exporter) string {
	return "converted_data." + e.Extension()
}
