package ports

import (
	"context"

	"mlflow-artifact-uploader/internal/core/domain"
)

// TrackingClient defines the contract for the experiment-tracking server.
type TrackingClient interface {
	GetExperimentByName(ctx context.Context, name string) (*domain.Experiment, error)

	// SearchRuns returns every run of the given experiments; paging is the
	// implementation's concern.
	SearchRuns(ctx context.Context, experimentIDs []string) ([]*domain.Run, error)

	UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus) error

	// LogArtifact uploads localPath as <artifactPath>/<base name of localPath>.
	LogArtifact(ctx context.Context, run *domain.Run, localPath, artifactPath string) error

	// ListArtifacts lists the direct children of path ("" for the root).
	ListArtifacts(ctx context.Context, runID, path string) ([]domain.ArtifactFile, error)
}

// ModelStore reads the locally saved models and their metadata.
type ModelStore interface {
	MetadataPath(family domain.ModelFamily) string
	ModelPath(family domain.ModelFamily) string

	// LoadMetadata returns domain.ErrMetadataNotFound when the file is absent.
	LoadMetadata(family domain.ModelFamily) (*domain.Metadata, error)
	ModelExists(family domain.ModelFamily) bool
}

// WorkDir stages files before upload. Staged files are kept.
type WorkDir interface {
	Write(runID, name string, data []byte) (string, error)
	Copy(runID, name, src string) (string, error)
}
