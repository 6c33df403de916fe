package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"mlflow-artifact-uploader/internal/core/domain"
)

type modelInfo struct {
	ModelType    json.RawMessage `json:"model_type"`
	Framework    json.RawMessage `json:"framework"`
	TrainingDate json.RawMessage `json:"training_date"`
	DatasetInfo  datasetInfo     `json:"dataset_info"`
}

type datasetInfo struct {
	TrainSize   json.RawMessage `json:"train_size"`
	TestSize    json.RawMessage `json:"test_size"`
	DatasetName json.RawMessage `json:"dataset_name"`
}

func buildModelInfo(md *domain.Metadata) ([]byte, error) {
	var info modelInfo
	targets := []struct {
		key string
		dst *json.RawMessage
	}{
		{domain.MetadataModelType, &info.ModelType},
		{domain.MetadataFramework, &info.Framework},
		{domain.MetadataTimestamp, &info.TrainingDate},
		{domain.MetadataTrainSize, &info.DatasetInfo.TrainSize},
		{domain.MetadataTestSize, &info.DatasetInfo.TestSize},
		{domain.MetadataDataset, &info.DatasetInfo.DatasetName},
	}
	for _, t := range targets {
		v, err := md.Field(t.key)
		if err != nil {
			return nil, err
		}
		*t.dst = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		return nil, fmt.Errorf("encode model info: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func buildRequirements(*domain.Metadata) ([]byte, error) {
	return []byte(domain.Requirements), nil
}

// buildMetricsCSV writes the header of metric names and one row of values,
// each terminated by CRLF.
func buildMetricsCSV(md *domain.Metadata) ([]byte, error) {
	values := make([]string, 0, len(domain.MetricNames))
	for _, name := range domain.MetricNames {
		v, err := md.Metric(name)
		if err != nil {
			return nil, err
		}
		values = append(values, domain.ScalarText(v))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.WriteAll([][]string{domain.MetricNames, values}); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func buildModelConfig(md *domain.Metadata) ([]byte, error) {
	params, err := md.Field(domain.MetadataParameters)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, params, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMetadata, err)
	}
	return buf.Bytes(), nil
}
