package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Tracking Errors
// ============================================================================

var (
	ErrExperimentNotFound     = errors.New("experiment not found")
	ErrInvalidExperimentName  = errors.New("experiment name is required")
	ErrRunNotFound            = errors.New("run not found")
	ErrUnsupportedArtifactURI = errors.New("unsupported artifact URI")
	ErrTrackingServer         = errors.New("tracking server error")
)

// ============================================================================
// Local Model Errors
// ============================================================================

var (
	ErrMetadataNotFound = errors.New("model metadata file not found")
	ErrInvalidMetadata  = errors.New("invalid model metadata")
)

// MissingKeyError reports a metadata key that was accessed but is absent.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("metadata key %q is missing", e.Key)
}

func (e *MissingKeyError) Unwrap() error {
	return ErrInvalidMetadata
}
