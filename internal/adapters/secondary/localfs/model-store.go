package localfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mlflow-artifact-uploader/internal/core/domain"
	ports "mlflow-artifact-uploader/internal/core/ports/output"
)

type modelStore struct {
	dir string
}

// NewModelStore reads models saved as <stem>.pkl with <stem>_metadata.json
// beside them in dir.
func NewModelStore(dir string) ports.ModelStore {
	return &modelStore{dir: dir}
}

func (s *modelStore) MetadataPath(family domain.ModelFamily) string {
	return filepath.Join(s.dir, family.MetadataFileName())
}

func (s *modelStore) ModelPath(family domain.ModelFamily) string {
	return filepath.Join(s.dir, family.ModelFileName())
}

func (s *modelStore) LoadMetadata(family domain.ModelFamily) (*domain.Metadata, error) {
	p := s.MetadataPath(family)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMetadataNotFound, p)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	md, err := domain.ParseMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return md, nil
}

func (s *modelStore) ModelExists(family domain.ModelFamily) bool {
	info, err := os.Stat(s.ModelPath(family))
	return err == nil && info.Mode().IsRegular()
}
