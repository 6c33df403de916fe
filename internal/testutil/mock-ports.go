package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"mlflow-artifact-uploader/internal/core/domain"
)

// MockTrackingClient is a mock of TrackingClient.
type MockTrackingClient struct {
	mock.Mock
}

func (m *MockTrackingClient) GetExperimentByName(ctx context.Context, name string) (*domain.Experiment, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Experiment), args.Error(1)
}

func (m *MockTrackingClient) SearchRuns(ctx context.Context, experimentIDs []string) ([]*domain.Run, error) {
	args := m.Called(ctx, experimentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Run), args.Error(1)
}

func (m *MockTrackingClient) UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus) error {
	args := m.Called(ctx, runID, status)
	return args.Error(0)
}

func (m *MockTrackingClient) LogArtifact(ctx context.Context, run *domain.Run, localPath, artifactPath string) error {
	args := m.Called(ctx, run, localPath, artifactPath)
	return args.Error(0)
}

func (m *MockTrackingClient) ListArtifacts(ctx context.Context, runID, path string) ([]domain.ArtifactFile, error) {
	args := m.Called(ctx, runID, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArtifactFile), args.Error(1)
}

// MockModelStore is a mock of ModelStore.
type MockModelStore struct {
	mock.Mock
}

func (m *MockModelStore) MetadataPath(family domain.ModelFamily) string {
	args := m.Called(family)
	return args.String(0)
}

func (m *MockModelStore) ModelPath(family domain.ModelFamily) string {
	args := m.Called(family)
	return args.String(0)
}

func (m *MockModelStore) LoadMetadata(family domain.ModelFamily) (*domain.Metadata, error) {
	args := m.Called(family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Metadata), args.Error(1)
}

func (m *MockModelStore) ModelExists(family domain.ModelFamily) bool {
	args := m.Called(family)
	return args.Bool(0)
}

// MockWorkDir is a mock of WorkDir.
type MockWorkDir struct {
	mock.Mock
}

func (m *MockWorkDir) Write(runID, name string, data []byte) (string, error) {
	args := m.Called(runID, name, data)
	return args.String(0), args.Error(1)
}

func (m *MockWorkDir) Copy(runID, name, src string) (string, error) {
	args := m.Called(runID, name, src)
	return args.String(0), args.Error(1)
}

// RecordingReporter keeps every Reporter event as a string.
type RecordingReporter struct {
	mu     sync.Mutex
	Events []string
}

func (r *RecordingReporter) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

func (r *RecordingReporter) RunStarted(run *domain.Run) {
	r.add("start:" + run.Name)
}

func (r *RecordingReporter) MetadataMissing(run *domain.Run, path string) {
	r.add("missing:" + run.Name)
}

func (r *RecordingReporter) ArtifactLogged(run *domain.Run, kind domain.ArtifactKind) {
	r.add("logged:" + kind.Path())
}

func (r *RecordingReporter) RunFailed(run *domain.Run, err error) {
	r.add("failed:" + run.Name)
}
