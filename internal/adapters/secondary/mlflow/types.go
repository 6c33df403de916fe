package mlflow

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"mlflow-artifact-uploader/internal/core/domain"
)

// int64Value accepts int64 fields encoded either as JSON numbers or as
// strings, both of which tracking servers emit.
type int64Value int64

func (v *int64Value) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse int64 %q: %w", s, err)
	}
	*v = int64Value(n)
	return nil
}

type apiExperiment struct {
	ExperimentID     string `json:"experiment_id"`
	Name             string `json:"name"`
	ArtifactLocation string `json:"artifact_location"`
	LifecycleStage   string `json:"lifecycle_stage"`
}

type getExperimentResponse struct {
	Experiment apiExperiment `json:"experiment"`
}

type apiRunInfo struct {
	RunID          string     `json:"run_id"`
	RunUUID        string     `json:"run_uuid"`
	RunName        string     `json:"run_name"`
	ExperimentID   string     `json:"experiment_id"`
	Status         string     `json:"status"`
	StartTime      int64Value `json:"start_time"`
	EndTime        int64Value `json:"end_time"`
	ArtifactURI    string     `json:"artifact_uri"`
	LifecycleStage string     `json:"lifecycle_stage"`
}

type apiRunTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type apiRunData struct {
	Tags []apiRunTag `json:"tags"`
}

type apiRun struct {
	Info apiRunInfo `json:"info"`
	Data apiRunData `json:"data"`
}

type searchRunsRequest struct {
	ExperimentIDs []string `json:"experiment_ids"`
	MaxResults    int      `json:"max_results"`
	RunViewType   string   `json:"run_view_type,omitempty"`
	PageToken     string   `json:"page_token,omitempty"`
}

type searchRunsResponse struct {
	Runs          []apiRun `json:"runs"`
	NextPageToken string   `json:"next_page_token"`
}

type updateRunRequest struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	EndTime *int64 `json:"end_time,omitempty"`
}

type apiFileInfo struct {
	Path     string     `json:"path"`
	IsDir    bool       `json:"is_dir"`
	FileSize int64Value `json:"file_size"`
}

type listArtifactsResponse struct {
	RootURI       string        `json:"root_uri"`
	Files         []apiFileInfo `json:"files"`
	NextPageToken string        `json:"next_page_token"`
}

const runNameTag = "mlflow.runName"

func toDomainExperiment(e apiExperiment) *domain.Experiment {
	return &domain.Experiment{
		ID:               e.ExperimentID,
		Name:             e.Name,
		ArtifactLocation: e.ArtifactLocation,
		LifecycleStage:   e.LifecycleStage,
	}
}

func toDomainRun(r apiRun) *domain.Run {
	id := r.Info.RunID
	if id == "" {
		id = r.Info.RunUUID
	}

	// Older servers only carry the name as a tag.
	name := r.Info.RunName
	if name == "" {
		for _, t := range r.Data.Tags {
			if t.Key == runNameTag {
				name = t.Value
				break
			}
		}
	}

	run := &domain.Run{
		ID:           id,
		Name:         name,
		ExperimentID: r.Info.ExperimentID,
		Status:       domain.RunStatus(r.Info.Status),
		ArtifactURI:  r.Info.ArtifactURI,
	}
	if r.Info.StartTime > 0 {
		run.StartTime = time.UnixMilli(int64(r.Info.StartTime))
	}
	if r.Info.EndTime > 0 {
		end := time.UnixMilli(int64(r.Info.EndTime))
		run.EndTime = &end
	}
	return run
}
