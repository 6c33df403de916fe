package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mlflow-artifact-uploader/internal/core/domain"
	ports "mlflow-artifact-uploader/internal/core/ports/output"
)

// DiscoveryService resolves an experiment and its runs.
type DiscoveryService struct {
	tracking ports.TrackingClient
}

func NewDiscoveryService(tracking ports.TrackingClient) *DiscoveryService {
	return &DiscoveryService{tracking: tracking}
}

// FindRuns returns every run of the named experiment, unfiltered.
// domain.ErrExperimentNotFound is returned as-is (possibly wrapped).
func (s *DiscoveryService) FindRuns(ctx context.Context, experimentName string) (*domain.Experiment, []*domain.Run, error) {
	exp, err := s.tracking.GetExperimentByName(ctx, experimentName)
	if err != nil {
		return nil, nil, err
	}

	runs, err := s.tracking.SearchRuns(ctx, []string{exp.ID})
	if err != nil {
		return exp, nil, fmt.Errorf("list runs of experiment %s: %w", exp.ID, err)
	}

	log.WithFields(log.Fields{
		"experiment":    exp.Name,
		"experiment_id": exp.ID,
		"runs":          len(runs),
	}).Info("experiment runs discovered")
	return exp, runs, nil
}
