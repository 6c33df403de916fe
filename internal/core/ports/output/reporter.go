package ports

import "mlflow-artifact-uploader/internal/core/domain"

// Reporter receives human-readable progress of the attachment loop.
type Reporter interface {
	RunStarted(run *domain.Run)
	MetadataMissing(run *domain.Run, path string)
	ArtifactLogged(run *domain.Run, kind domain.ArtifactKind)
	RunFailed(run *domain.Run, err error)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) RunStarted(*domain.Run) {}
func (NopReporter) MetadataMissing(*domain.Run, string) {}
func (NopReporter) ArtifactLogged(*domain.Run, domain.ArtifactKind) {}
func (NopReporter) RunFailed(*domain.Run, error) {}
