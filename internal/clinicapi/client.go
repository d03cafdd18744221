package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pediclinic/portal/internal/observability/metrics"
	"github.com/pediclinic/portal/pkg/logging"
)

// AuthHeader is the header the clinic API expects the session token under.
const AuthHeader = "x-auth-token"

// APIError is a server-reported error. Msg is shown to users verbatim,
// so it is never rewritten here.
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("clinic API returned status %d", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the clinic API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsAPIError extracts the typed error when the server answered with a
// non-2xx status. Transport failures return false.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client talks to the remote clinic REST API. It owns no state beyond the
// base URL; tokens are supplied per call by the session layer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.PortalMetrics
	tracer     trace.Tracer
}

// Config holds configuration for the clinic API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logging.Logger
	Metrics *metrics.PortalMetrics
}

// New creates a clinic API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("clinicapi: BaseURL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    cfg.Metrics,
		tracer:     otel.Tracer("portal.internal.clinicapi"),
	}, nil
}

// do issues one request. token may be empty for public endpoints; out may
// be nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path, endpoint, token string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "clinicapi."+endpoint)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("clinicapi.endpoint", endpoint),
	)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("clinicapi: marshal %s request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("clinicapi: build %s request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(AuthHeader, token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveUpstream(endpoint, "transport_error", time.Since(start).Seconds())
		return fmt.Errorf("clinicapi: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(endpoint, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msgBody struct {
			Msg string `json:"msg"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &msgBody) == nil {
			apiErr.Msg = msgBody.Msg
		}
		span.RecordError(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("clinicapi: decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, endpoint, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, endpoint, token, nil, out)
}

func (c *Client) post(ctx context.Context, path, endpoint, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, endpoint, token, body, out)
}

func (c *Client) put(ctx context.Context, path, endpoint, token string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, endpoint, token, body, out)
}

func (c *Client) delete(ctx context.Context, path, endpoint, token string) error {
	return c.do(ctx, http.MethodDelete, path, endpoint, token, nil, nil)
}
