package export

import (
	"io"

	"github.com/nconklindev/tabula/internal/types"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports records as a YAML sequence of mappings
type YAMLExporter struct{}

// Export exports the records to YAML format
func (e *YAMLExporter) Export(result *types.ConversionResult, w io.Writer) error {
	records := result.Records
	if records == nil {
		records = []*types.Record{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(records)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

func (e *YAMLExporter) ContentType() string {
	return "application/yaml"
}
