// Package apiclient is the single gateway to the LMS backend. Every request
// carries the default headers and the session's bearer token, and every
// failure is an *APIError.
package apiclient

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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	contentTypeJSON = "application/json"
	headerRequestID = "X-Request-ID"
)

// TokenSource supplies the bearer token and is told when the backend rejects it.
type TokenSource interface {
	Token() string
	Invalidate(ctx context.Context) error
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds JSON calls. Uploads and downloads are bounded by the
	// caller's context only.
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
}

// New creates a new API client. tokens may be nil for anonymous use.
func New(cfg Config, tokens TokenSource, logger zerolog.Logger) *Client {
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(base),
		},
		tokens: tokens,
		logger: logger.With().Str("component", "api-client").Logger(),
	}
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path onto the API root.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post sends in as JSON and decodes the response into out. Either may be nil.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

// Put sends in as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out)
}

// Patch sends in as JSON and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, in, out)
}

// Delete issues DELETE path and decodes the response into out, if any.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// Download streams the raw response body of GET path. The caller closes it.
func (c *Client) Download(ctx context.Context, path string) (io.ReadCloser, string, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "", "*/*")
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Upload posts a pre-encoded body, typically multipart/form-data, and
// decodes the JSON response into out.
func (c *Client) Upload(ctx context.Context, path string, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, body, contentType, contentTypeJSON)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp.Body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	resp, err := c.do(ctx, method, path, body, contentTypeJSON, contentTypeJSON)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := decode(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// do sends the request and turns non-2xx responses into *APIError. On
// success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}

	requestID := uuid.NewString()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	} else {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set(headerRequestID, requestID)

	authenticated := false
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("request failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := newAPIError(resp.StatusCode, raw)

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		if err := c.tokens.Invalidate(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear rejected session")
		}
		if authenticated {
			apiErr.Message = apiErr.cause.Error()
		}
	}

	return nil, apiErr
}

func decode(r io.Reader, out any) error {
	if out == nil {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	return nil
}

// IsClientError reports whether err is an *APIError with a 4xx status.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsClientError()
}
