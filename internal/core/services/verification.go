package services

import (
	"context"
	"fmt"

	"mlflow-artifact-uploader/internal/core/domain"
	ports "mlflow-artifact-uploader/internal/core/ports/output"
)

// RunArtifacts is the artifact listing of one run.
type RunArtifacts struct {
	Run   *domain.Run
	Files []domain.ArtifactFile
}

// VerificationService re-reads what the server holds for each run. It does
// not compare against what was uploaded.
type VerificationService struct {
	tracking  ports.TrackingClient
	recursive bool
}

func NewVerificationService(tracking ports.TrackingClient, recursive bool) *VerificationService {
	return &VerificationService{tracking: tracking, recursive: recursive}
}

func (s *VerificationService) Verify(ctx context.Context, experimentID string) ([]RunArtifacts, error) {
	runs, err := s.tracking.SearchRuns(ctx, []string{experimentID})
	if err != nil {
		return nil, fmt.Errorf("re-list runs: %w", err)
	}

	result := make([]RunArtifacts, 0, len(runs))
	for _, run := range runs {
		files, err := s.list(ctx, run.ID, "")
		if err != nil {
			return result, err
		}
		result = append(result, RunArtifacts{Run: run, Files: files})
	}
	return result, nil
}

// list returns the direct children of dir, or every file below it when
// recursive.
func (s *VerificationService) list(ctx context.Context, runID, dir string) ([]domain.ArtifactFile, error) {
	entries, err := s.tracking.ListArtifacts(ctx, runID, dir)
	if err != nil {
		return nil, err
	}
	if !s.recursive {
		return entries, nil
	}

	var files []domain.ArtifactFile
	for _, e := range entries {
		if !e.IsDir {
			files = append(files, e)
			continue
		}
		nested, err := s.list(ctx, runID, e.Path)
		if err != nil {
			return nil, err
		}
		files = append(files, nested...)
	}
	return files, nil
}
