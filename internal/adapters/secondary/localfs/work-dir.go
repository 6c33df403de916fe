package localfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	ports "mlflow-artifact-uploader/internal/core/ports/output"
)

type workDir struct {
	root string
}

// NewWorkDir stages files under <root>/<run id>/. Nothing is removed
// afterwards.
func NewWorkDir(root string) ports.WorkDir {
	return &workDir{root: root}
}

func (w *workDir) runDir(runID string) (string, error) {
	dir := filepath.Join(w.root, "mlflow_artifacts_"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}

func (w *workDir) Write(runID, name string, data []byte) (string, error) {
	dir, err := w.runDir(runID)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return p, nil
}

func (w *workDir) Copy(runID, name, src string) (string, error) {
	dir, err := w.runDir(runID)
	if err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	p := filepath.Join(dir, name)
	out, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copy %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return p, nil
}
