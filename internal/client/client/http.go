package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/metrics"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultBaseURL = "http://localhost:4000"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// HTTPClient talks to the remote auth and list services over JSON/HTTP.
// It is safe for concurrent use.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	timeout    time.Duration
	logger     logging.Logger
	metrics    *metrics.Metrics
}

var (
	_ AuthAPI = (*HTTPClient)(nil)
	_ TodoAPI = (*HTTPClient)(nil)
	_ Pinger  = (*HTTPClient)(nil)
)

// Option customises client instantiation.
type Option func(*HTTPClient)

// WithHTTPClient overrides the default HTTP client. A cookie jar is attached
// when the given client has none.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout bounds every request. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = d
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// New constructs a client pointing at base. creds may be nil when no bearer
// credential is ever sent (cookie-only sessions).
func New(base string, creds CredentialSource, opts ...Option) (*HTTPClient, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{},
		creds:      creds,
		timeout:    defaultTimeout,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// BaseURL returns the normalised service address.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// do performs one request and returns the status and the (bounded) body.
// A non-nil error means no usable HTTP response was received.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)

	if c.creds != nil {
		if token := strings.TrimSpace(c.creds.Credential(ctx)); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
		}
	}

	log := c.logger.With("method", method, "path", path, "request_id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.HTTPRequest(method, 0, time.Since(start))
		log.Debug(ctx, "request failed", "error", err)
		return 0, nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.HTTPRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		log.Debug(ctx, "reading response failed", "status", resp.StatusCode, "error", err)
		return 0, nil, mapTransportError(err)
	}

	log.Debug(ctx, "request finished", "status", resp.StatusCode, "duration", time.Since(start))
	return resp.StatusCode, data, nil
}

// Ping checks GET /health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	status, data, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return statusError(status, data)
	}
	return nil
}

func mapTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func statusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return APIError{Status: status, Message: extractMessage(body)}
	}
}

// extractMessage pulls a human message out of an error body: the "message"
// or "error" field of a JSON object, or the trimmed raw text.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	if payload.Message != "" {
		return strings.TrimSpace(payload.Message)
	}
	return strings.TrimSpace(payload.Error)
}
