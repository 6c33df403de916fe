package console

import (
	"errors"

	"mlflow-artifact-uploader/internal/core/domain"
)

func describeError(err error) string {
	var missing *domain.MissingKeyError

	switch {
	case errors.Is(err, domain.ErrExperimentNotFound):
		return "Experiment not found: " + err.Error()

	case errors.As(err, &missing):
		return "Metadata is missing key " + missing.Key

	case errors.Is(err, domain.ErrInvalidMetadata),
		errors.Is(err, domain.ErrUnsupportedArtifactURI),
		errors.Is(err, domain.ErrRunNotFound):
		return err.Error()

	case errors.Is(err, domain.ErrTrackingServer):
		return "Tracking server error: " + err.Error()

	default:
		return "ERROR: " + err.Error()
	}
}
