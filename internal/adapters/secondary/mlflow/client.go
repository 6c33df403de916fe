package mlflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"mlflow-artifact-uploader/internal/config"
	"mlflow-artifact-uploader/internal/core/domain"
	ports "mlflow-artifact-uploader/internal/core/ports/output"
)

const (
	apiPrefix          = "/api/2.0/"
	artifactsProxyPath = "/api/2.0/mlflow-artifacts/artifacts"
)

type trackingClient struct {
	baseURL     string
	client      *http.Client
	pageSize    int
	progressOut io.Writer
}

// NewTrackingClient creates a new MLflow tracking client adapter. The HTTP
// client is injected so TLS and header policy stay with the caller.
func NewTrackingClient(cfg *config.TrackingConfig, httpClient *http.Client) ports.TrackingClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	pageSize := cfg.SearchPageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	c := &trackingClient{
		baseURL:  strings.TrimRight(cfg.URI, "/"),
		client:   httpClient,
		pageSize: pageSize,
	}
	if cfg.Progress {
		c.progressOut = os.Stderr
	}
	return c
}

// APIError is an error response from the tracking server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("mlflow: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("mlflow: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap lets callers match any server-side failure with
// errors.Is(err, domain.ErrTrackingServer).
func (e *APIError) Unwrap() error {
	return domain.ErrTrackingServer
}

func (e *APIError) NotFound() bool {
	return e.Code == "RESOURCE_DOES_NOT_EXIST" || e.StatusCode == http.StatusNotFound
}

func (c *trackingClient) doJSON(ctx context.Context, method, endpoint string, query url.Values, in, out any) error {
	reqURL := c.baseURL + apiPrefix + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Code == "" && apiErr.Message == "") {
		apiErr.Code = ""
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
