package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metadata keys read from a model's *_metadata.json file.
const (
	MetadataModelType  = "model_type"
	MetadataFramework  = "framework"
	MetadataTimestamp  = "timestamp"
	MetadataTrainSize  = "train_size"
	MetadataTestSize   = "test_size"
	MetadataDataset    = "dataset"
	MetadataMetrics    = "metrics"
	MetadataParameters = "parameters"
)

// Metadata is the JSON document written next to a trained model. Values are
// kept as raw JSON so they are re-emitted exactly as they were read.
type Metadata struct {
	fields map[string]json.RawMessage
}

func ParseMetadata(data []byte) (*Metadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: document is not a JSON object", ErrInvalidMetadata)
	}
	return &Metadata{fields: fields}, nil
}

// Field returns the raw value of a top-level key.
func (m *Metadata) Field(key string) (json.RawMessage, error) {
	v, ok := m.fields[key]
	if !ok {
		return nil, &MissingKeyError{Key: key}
	}
	return v, nil
}

// Metric returns metrics[name].
func (m *Metadata) Metric(name string) (json.RawMessage, error) {
	raw, err := m.Field(MetadataMetrics)
	if err != nil {
		return nil, err
	}
	var metrics map[string]json.RawMessage
	if err := json.Unmarshal(raw, &metrics); err != nil || metrics == nil {
		return nil, fmt.Errorf("%w: %q is not an object", ErrInvalidMetadata, MetadataMetrics)
	}
	v, ok := metrics[name]
	if !ok {
		return nil, &MissingKeyError{Key: MetadataMetrics + "." + name}
	}
	return v, nil
}

// ScalarText renders a raw JSON scalar for a CSV cell: strings are unquoted,
// null is empty, anything else is the compact JSON text.
func ScalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
