package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Sheet names and title shared by the template builder and the converter,
// which treats a workbook carrying all three as a generated template.
const (
	TemplateDataSheet         = "Data"
	TemplateInstructionsSheet = "Instructions"
	TemplateTitle             = "Template Instructions"
)

// ColumnDefinition is one user-defined template column.
type ColumnDefinition struct {
	Name        string `json:"name" yaml:"name"`
	SampleValue string `json:"sample_value" yaml:"sample_value"`
}

// ConversionResult is the outcome of converting one uploaded file.
type ConversionResult struct {
	FileName string
	Records  []*Record
	Table    *Table
}

// Table is the rectangular form of converted data, kept for previews and CSV output.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Record is a flat, ordered mapping of column name to scalar value.
// Setting an existing key keeps its original position and replaces the value.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns an unordered copy of the record.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		var key, val yaml.Node
		if err := key.Encode(k); err != nil {
			return nil, err
		}
		if err := val.Encode(r.values[k]); err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}
