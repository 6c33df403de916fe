package domain

import "time"

type RunStatus string

const (
	RunStatusRunning  RunStatus = "RUNNING"
	RunStatusFinished RunStatus = "FINISHED"
	RunStatusFailed   RunStatus = "FAILED"
	RunStatusKilled   RunStatus = "KILLED"
)

type Experiment struct {
	ID               string `json:"experiment_id"`
	Name             string `json:"name"`
	ArtifactLocation string `json:"artifact_location"`
	LifecycleStage   string `json:"lifecycle_stage"`
}

type Run struct {
	ID           string     `json:"run_id"`
	Name         string     `json:"run_name"`
	ExperimentID string     `json:"experiment_id"`
	Status       RunStatus  `json:"status"`
	ArtifactURI  string     `json:"artifact_uri"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

// ArtifactFile is one entry of a run's artifact listing.
type ArtifactFile struct {
	Path     string `json:"path"`
	IsDir    bool   `json:"is_dir"`
	FileSize int64  `json:"file_size"`
}
