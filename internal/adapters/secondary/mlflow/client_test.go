package mlflow

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlflow-artifact-uploader/internal/config"
	"mlflow-artifact-uploader/internal/core/domain"
	"mlflow-artifact-uploader/internal/testutil"
)

func setupClient(t *testing.T) (*testutil.FakeTrackingServer, *trackingClient) {
	t.Helper()
	srv := testutil.NewFakeTrackingServer()
	t.Cleanup(srv.Close)

	c := NewTrackingClient(&config.TrackingConfig{
		URI:            srv.URL + "/",
		Timeout:        5 * time.Second,
		SearchPageSize: 1000,
	}, srv.Client())
	return srv, c.(*trackingClient)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestGetExperimentByName(t *testing.T) {
	srv, c := setupClient(t)
	id := srv.AddExperiment("Iris Classification Training")

	exp, err := c.GetExperimentByName(context.Background(), "Iris Classification Training")
	require.NoError(t, err)
	assert.Equal(t, id, exp.ID)
	assert.Equal(t, "Iris Classification Training", exp.Name)
	assert.Equal(t, "active", exp.LifecycleStage)
}

func TestGetExperimentByName_NotFound(t *testing.T) {
	_, c := setupClient(t)

	_, err := c.GetExperimentByName(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrExperimentNotFound)
}

func TestGetExperimentByName_EmptyName(t *testing.T) {
	srv, c := setupClient(t)

	_, err := c.GetExperimentByName(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidExperimentName)
	assert.Zero(t, srv.RequestCount())
}

func TestGetExperimentByName_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()
	c := NewTrackingClient(&config.TrackingConfig{URI: srv.URL}, srv.Client())

	_, err := c.GetExperimentByName(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrExperimentNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.ErrorIs(t, err, domain.ErrTrackingServer)
}

func TestSearchRuns_FollowsPages(t *testing.T) {
	srv, c := setupClient(t)
	srv.PageSize = 2
	expID := srv.AddExperiment("exp")
	other := srv.AddExperiment("other")
	names := []string{"LogisticRegression", "RandomForest", "SVM", "logistic-v2", "random-v2"}
	for _, n := range names {
		srv.AddRun(expID, n)
	}
	srv.AddRun(other, "not mine")

	runs, err := c.SearchRuns(context.Background(), []string{expID})
	require.NoError(t, err)
	require.Len(t, runs, len(names))
	for i, r := range runs {
		assert.Equal(t, names[i], r.Name)
		assert.Equal(t, expID, r.ExperimentID)
		assert.Equal(t, domain.RunStatusFinished, r.Status)
		assert.Equal(t, int64(1700000000000), r.StartTime.UnixMilli())
		assert.Contains(t, r.ArtifactURI, "mlflow-artifacts:/"+expID+"/"+r.ID)
	}
}

func TestSearchRuns_Empty(t *testing.T) {
	srv, c := setupClient(t)
	expID := srv.AddExperiment("exp")

	runs, err := c.SearchRuns(context.Background(), []string{expID})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestToDomainRun_NameFromTag(t *testing.T) {
	run := toDomainRun(apiRun{
		Info: apiRunInfo{RunUUID: "abc", Status: "RUNNING", EndTime: 1700000001000},
		Data: apiRunData{Tags: []apiRunTag{{Key: "other", Value: "x"}, {Key: runNameTag, Value: "RandomForest"}}},
	})
	assert.Equal(t, "abc", run.ID)
	assert.Equal(t, "RandomForest", run.Name)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
	require.NotNil(t, run.EndTime)
	assert.Equal(t, int64(1700000001000), run.EndTime.UnixMilli())
	assert.True(t, run.StartTime.IsZero())
}

func TestUpdateRunStatus(t *testing.T) {
	srv, c := setupClient(t)
	runID := srv.AddRun(srv.AddExperiment("exp"), "LogisticRegression")

	require.NoError(t, c.UpdateRunStatus(context.Background(), runID, domain.RunStatusRunning))
	require.NoError(t, c.UpdateRunStatus(context.Background(), runID, domain.RunStatusFinished))

	assert.Equal(t, []string{runID + ":RUNNING", runID + ":FINISHED"}, srv.StatusLog())
	assert.Equal(t, "FINISHED", srv.RunStatus(runID))
}

func TestUpdateRunStatus_UnknownRun(t *testing.T) {
	_, c := setupClient(t)

	err := c.UpdateRunStatus(context.Background(), "nope", domain.RunStatusFinished)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestLogArtifactAndList(t *testing.T) {
	srv, c := setupClient(t)
	expID := srv.AddExperiment("exp")
	runID := srv.AddRun(expID, "LogisticRegression")
	runs, err := c.SearchRuns(context.Background(), []string{expID})
	require.NoError(t, err)
	run := runs[0]

	infoPath := writeFile(t, "model_info.json", `{"a": 1}`)
	csvPath := writeFile(t, "metrics.csv", "accuracy\n1\n")
	require.NoError(t, c.LogArtifact(context.Background(), run, infoPath, "model_info"))
	require.NoError(t, c.LogArtifact(context.Background(), run, csvPath, "metrics"))

	uploads := srv.Uploads(runID)
	require.Len(t, uploads, 2)
	assert.Equal(t, "model_info/model_info.json", uploads[0].Path)
	assert.Equal(t, `{"a": 1}`, string(uploads[0].Data))
	assert.Equal(t, "metrics/metrics.csv", uploads[1].Path)

	top, err := c.ListArtifacts(context.Background(), runID, "")
	require.NoError(t, err)
	assert.Equal(t, []domain.ArtifactFile{
		{Path: "metrics", IsDir: true},
		{Path: "model_info", IsDir: true},
	}, top)

	nested, err := c.ListArtifacts(context.Background(), runID, "model_info")
	require.NoError(t, err)
	assert.Equal(t, []domain.ArtifactFile{
		{Path: "model_info/model_info.json", FileSize: 8},
	}, nested)
}

func TestLogArtifact_WithProgress(t *testing.T) {
	srv, c := setupClient(t)
	expID := srv.AddExperiment("exp")
	runID := srv.AddRun(expID, "RandomForest")
	var progress bytes.Buffer
	c.progressOut = &progress

	run := &domain.Run{ID: runID, ArtifactURI: "mlflow-artifacts:/" + expID + "/" + runID + "/artifacts"}
	modelPath := writeFile(t, "model.pkl", string(bytes.Repeat([]byte{0x80}, 4096)))
	require.NoError(t, c.LogArtifact(context.Background(), run, modelPath, "model"))

	uploads := srv.Uploads(runID)
	require.Len(t, uploads, 1)
	assert.Len(t, uploads[0].Data, 4096)
	assert.NotEmpty(t, progress.String())
}

func TestLogArtifact_ServerError(t *testing.T) {
	srv, c := setupClient(t)
	expID := srv.AddExperiment("exp")
	runID := srv.AddRun(expID, "LogisticRegression")
	srv.FailUploadsFor[runID] = true

	run := &domain.Run{ID: runID, ArtifactURI: "mlflow-artifacts:/" + expID + "/" + runID + "/artifacts"}
	err := c.LogArtifact(context.Background(), run, writeFile(t, "x.json", "{}"), "model_info")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INTERNAL_ERROR", apiErr.Code)
	assert.ErrorIs(t, err, domain.ErrTrackingServer)
}

func TestLogArtifact_MissingFile(t *testing.T) {
	srv, c := setupClient(t)
	run := &domain.Run{ID: "r", ArtifactURI: "mlflow-artifacts:/1/r/artifacts"}

	err := c.LogArtifact(context.Background(), run, filepath.Join(t.TempDir(), "absent.json"), "model_info")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, srv.RequestCount())
}

func TestArtifactURL(t *testing.T) {
	c := &trackingClient{baseURL: "http://127.0.0.1:5000"}

	tests := []struct {
		name    string
		uri     string
		want    string
		wantErr bool
	}{
		{
			name: "proxied scheme",
			uri:  "mlflow-artifacts:/1/abc/artifacts",
			want: "http://127.0.0.1:5000/api/2.0/mlflow-artifacts/artifacts/1/abc/artifacts/model_info/model_info.json",
		},
		{
			name: "proxied scheme with authority",
			uri:  "mlflow-artifacts://mlflow.labs.itmo.loc/1/abc/artifacts",
			want: "http://127.0.0.1:5000/api/2.0/mlflow-artifacts/artifacts/1/abc/artifacts/model_info/model_info.json",
		},
		{
			name: "http proxy uri",
			uri:  "https://mlflow.example.com/api/2.0/mlflow-artifacts/artifacts/1/abc/artifacts/",
			want: "https://mlflow.example.com/api/2.0/mlflow-artifacts/artifacts/1/abc/artifacts/model_info/model_info.json",
		},
		{name: "local path", uri: "/mlruns/1/abc/artifacts", wantErr: true},
		{name: "s3", uri: "s3://bucket/1/abc/artifacts", wantErr: true},
		{name: "plain http", uri: "http://files.local/abc", wantErr: true},
		{name: "empty", uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.artifactURL(&domain.Run{ArtifactURI: tt.uri}, "model_info/model_info.json")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedArtifactURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "a%20b/c%3Fd/model.pkl", escapePath("a b/c?d/model.pkl"))
}

func TestInt64Value(t *testing.T) {
	var v int64Value
	require.NoError(t, v.UnmarshalJSON([]byte(`"42"`)))
	assert.Equal(t, int64Value(42), v)
	require.NoError(t, v.UnmarshalJSON([]byte(`7`)))
	assert.Equal(t, int64Value(7), v)
	require.NoError(t, v.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, int64Value(0), v)
	assert.Error(t, v.UnmarshalJSON([]byte(`"x"`)))
}
