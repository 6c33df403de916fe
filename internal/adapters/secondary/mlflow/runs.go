package mlflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"mlflow-artifact-uploader/internal/core/domain"
)

func (c *trackingClient) GetExperimentByName(ctx context.Context, name string) (*domain.Experiment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidExperimentName
	}

	params := url.Values{}
	params.Set("experiment_name", name)

	var resp getExperimentResponse
	if err := c.doJSON(ctx, http.MethodGet, "mlflow/experiments/get-by-name", params, nil, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, fmt.Errorf("%w: %s", domain.ErrExperimentNotFound, name)
		}
		return nil, fmt.Errorf("get experiment by name: %w", err)
	}
	if resp.Experiment.ExperimentID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrExperimentNotFound, name)
	}

	return toDomainExperiment(resp.Experiment), nil
}

func (c *trackingClient) SearchRuns(ctx context.Context, experimentIDs []string) ([]*domain.Run, error) {
	req := searchRunsRequest{
		ExperimentIDs: experimentIDs,
		MaxResults:    c.pageSize,
		RunViewType:   "ACTIVE_ONLY",
	}

	var runs []*domain.Run
	for page := 1; ; page++ {
		var resp searchRunsResponse
		if err := c.doJSON(ctx, http.MethodPost, "mlflow/runs/search", nil, req, &resp); err != nil {
			return nil, fmt.Errorf("search runs: %w", err)
		}
		for _, r := range resp.Runs {
			runs = append(runs, toDomainRun(r))
		}

		log.WithFields(log.Fields{
			"page":  page,
			"count": len(resp.Runs),
		}).Debug("fetched runs page")

		if resp.NextPageToken == "" || resp.NextPageToken == req.PageToken {
			break
		}
		req.PageToken = resp.NextPageToken
	}
	return runs, nil
}

func (c *trackingClient) UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus) error {
	req := updateRunRequest{
		RunID:  runID,
		Status: string(status),
	}
	switch status {
	case domain.RunStatusFinished, domain.RunStatusFailed, domain.RunStatusKilled:
		end := time.Now().UnixMilli()
		req.EndTime = &end
	}

	if err := c.doJSON(ctx, http.MethodPost, "mlflow/runs/update", nil, req, nil); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
		}
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	return nil
}
