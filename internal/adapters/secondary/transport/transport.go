package transport

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mlflow-artifact-uploader/internal/config"
)

const HeaderRequestID = "X-Request-ID"

// NewHTTPClient builds the client used for every tracking-server call. The
// Host header and TLS settings apply to this client only.
func NewHTTPClient(cfg *config.TrackingConfig, requestID string) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		// Certificate checks are off and no CA bundle is consulted.
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	if requestID == "" {
		requestID = uuid.New().String()
	}

	var rt http.RoundTripper = &loggingTransport{next: base}
	if cfg.HostHeader != "" {
		rt = &hostHeaderTransport{host: cfg.HostHeader, next: rt}
	}
	rt = &requestIDTransport{id: requestID, next: rt}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{
		Transport: rt,
		Timeout:   timeout,
	}
}

type requestIDTransport struct {
	id   string
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) != "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set(HeaderRequestID, t.id)
	return t.next.RoundTrip(req)
}

// hostHeaderTransport overrides the Host sent on the wire; net/http ignores
// a "Host" entry in req.Header.
type hostHeaderTransport struct {
	host string
	next http.RoundTripper
}

func (t *hostHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Host = t.host
	return t.next.RoundTrip(req)
}

type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	fields := log.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"host":       req.Host,
		"latency_ms": time.Since(start).Milliseconds(),
		"request_id": req.Header.Get(HeaderRequestID),
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Debug("tracking request failed")
		return nil, err
	}
	fields["status"] = resp.StatusCode
	log.WithFields(fields).Debug("tracking request completed")
	return resp, nil
}
