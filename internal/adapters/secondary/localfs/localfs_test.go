package localfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlflow-artifact-uploader/internal/core/domain"
)

func TestModelStore_Paths(t *testing.T) {
	s := NewModelStore("/tmp/mlflow_models")

	assert.Equal(t, "/tmp/mlflow_models/iris_logistic_regression_metadata.json", s.MetadataPath(domain.FamilyLogisticRegression))
	assert.Equal(t, "/tmp/mlflow_models/iris_random_forest.pkl", s.ModelPath(domain.FamilyRandomForest))
}

func TestModelStore_LoadMetadata(t *testing.T) {
	dir := t.TempDir()
	s := NewModelStore(dir)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "iris_random_forest_metadata.json"),
		[]byte(`{"model_type": "RandomForestClassifier"}`), 0o600))

	md, err := s.LoadMetadata(domain.FamilyRandomForest)
	require.NoError(t, err)
	v, err := md.Field(domain.MetadataModelType)
	require.NoError(t, err)
	assert.JSONEq(t, `"RandomForestClassifier"`, string(v))
}

func TestModelStore_LoadMetadata_Missing(t *testing.T) {
	s := NewModelStore(t.TempDir())

	_, err := s.LoadMetadata(domain.FamilyLogisticRegression)
	assert.ErrorIs(t, err, domain.ErrMetadataNotFound)
}

func TestModelStore_LoadMetadata_Malformed(t *testing.T) {
	dir := t.TempDir()
	s := NewModelStore(dir)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "iris_logistic_regression_metadata.json"), []byte(`{not json`), 0o600))

	_, err := s.LoadMetadata(domain.FamilyLogisticRegression)
	assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
}

func TestModelStore_ModelExists(t *testing.T) {
	dir := t.TempDir()
	s := NewModelStore(dir)
	assert.False(t, s.ModelExists(domain.FamilyLogisticRegression))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "iris_logistic_regression.pkl"), []byte{0x80, 0x04}, 0o600))
	assert.True(t, s.ModelExists(domain.FamilyLogisticRegression))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "iris_random_forest.pkl"), 0o755))
	assert.False(t, s.ModelExists(domain.FamilyRandomForest))
}

func TestWorkDir_WriteAndCopy(t *testing.T) {
	root := t.TempDir()
	w := NewWorkDir(root)

	p, err := w.Write("abc123", "metrics.csv", []byte("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "mlflow_artifacts_abc123", "metrics.csv"), p)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))

	src := filepath.Join(t.TempDir(), "iris_random_forest.pkl")
	require.NoError(t, os.WriteFile(src, []byte{1, 2, 3}, 0o600))
	cp, err := w.Copy("abc123", "model.pkl", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "mlflow_artifacts_abc123", "model.pkl"), cp)
	data, err = os.ReadFile(cp)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	// Staged files stay in place and a second write replaces the local copy.
	_, err = w.Write("abc123", "metrics.csv", []byte("b\n2\n"))
	require.NoError(t, err)
	data, err = os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "b\n2\n", string(data))
}

func TestWorkDir_CopyMissingSource(t *testing.T) {
	w := NewWorkDir(t.TempDir())

	_, err := w.Copy("r", "model.pkl", filepath.Join(t.TempDir(), "absent.pkl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
