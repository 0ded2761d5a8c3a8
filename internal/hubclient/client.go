package hubclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBodySize bounds how much of an error response body is read
// when extracting a message.
const maxErrorBodySize = 64 << 10 // 64KB

// Client is a REST client for a single hub.
//
// Every call takes a context and applies the configured per-request
// timeout; there are no untimed requests. Transport failures are
// reported as *ConnError, non-2xx responses as *APIError with the
// hub's error message extracted when present.
//
// All methods are safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

// New creates a client for the hub at baseURL. Trailing slashes are
// normalised away so paths can always be joined with a leading slash.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		timeout: timeout,
	}
}

// BaseURL returns the hub base URL this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes GET /health. Only the status code is consulted; any
// 2xx means the hub is alive.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do performs a JSON request against the hub.
//
// body (when non-nil) is marshalled as the JSON request body; out
// (when non-nil) receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &ConnError{URL: c.baseURL + path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(resp.Body),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// extractErrorMessage pulls a human-readable message from a JSON error
// body. Hubs report errors under varying keys; fall back to a generic
// string when none is found.
func extractErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil {
		return genericErrorMessage
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return genericErrorMessage
	}

	for _, key := range []string{"error", "detail", "message"} {
		if msg, ok := parsed[key].(string); ok && msg != "" {
			return msg
		}
	}
	return genericErrorMessage
}
