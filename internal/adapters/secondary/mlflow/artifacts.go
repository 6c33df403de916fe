package mlflow

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	pb "github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"

	"mlflow-artifact-uploader/internal/core/domain"
)

func (c *trackingClient) LogArtifact(ctx context.Context, run *domain.Run, localPath, artifactPath string) error {
	rel := path.Join(artifactPath, filepath.Base(localPath))
	target, err := c.artifactURL(run, rel)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	var body io.Reader = f
	if c.progressOut != nil {
		bar := pb.New64(info.Size())
		bar.Set(pb.Bytes, true)
		bar.Set("prefix", rel+":")
		bar.SetWriter(c.progressOut)
		bar.Start()
		defer bar.Finish()
		body = bar.NewProxyReader(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", contentType(rel))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", rel, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("upload %s: %w", rel, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	log.WithFields(log.Fields{
		"run_id":   run.ID,
		"artifact": rel,
		"bytes":    info.Size(),
	}).Debug("artifact uploaded")
	return nil
}

func (c *trackingClient) ListArtifacts(ctx context.Context, runID, artifactPath string) ([]domain.ArtifactFile, error) {
	params := url.Values{}
	params.Set("run_id", runID)
	if artifactPath != "" {
		params.Set("path", artifactPath)
	}

	var files []domain.ArtifactFile
	for {
		var resp listArtifactsResponse
		if err := c.doJSON(ctx, http.MethodGet, "mlflow/artifacts/list", params, nil, &resp); err != nil {
			return nil, fmt.Errorf("list artifacts of run %s: %w", runID, err)
		}
		for _, f := range resp.Files {
			files = append(files, domain.ArtifactFile{
				Path:     f.Path,
				IsDir:    f.IsDir,
				FileSize: int64(f.FileSize),
			})
		}
		if resp.NextPageToken == "" || resp.NextPageToken == params.Get("page_token") {
			break
		}
		params.Set("page_token", resp.NextPageToken)
	}
	return files, nil
}

// artifactURL maps a run's artifact root onto the server's artifact proxy.
// mlflow-artifacts URIs are always served by the configured tracking URI.
func (c *trackingClient) artifactURL(run *domain.Run, rel string) (string, error) {
	u, err := url.Parse(run.ArtifactURI)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedArtifactURI, run.ArtifactURI)
	}

	switch u.Scheme {
	case "mlflow-artifacts":
		root := strings.Trim(u.Path, "/")
		return c.baseURL + artifactsProxyPath + "/" + escapePath(path.Join(root, rel)), nil
	case "http", "https":
		if strings.Contains(u.Path, artifactsProxyPath) {
			return strings.TrimRight(run.ArtifactURI, "/") + "/" + escapePath(rel), nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedArtifactURI, run.ArtifactURI)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
