package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// requestTimeout bounds every backend round trip. Voice sessions cannot wait
// longer than this for a tool result.
const requestTimeout = 10 * time.Second

// backendError reports a non-2xx backend response.
type backendError struct {
	Status int
	Body   string
}

func (e *backendError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// isNotFound reports whether err is a backend 404.
func isNotFound(err error) bool {
	var be *backendError
	return errors.As(err, &be) && be.Status == http.StatusNotFound
}

// Client is a thin wrapper around the backend REST API shared by all
// dispatch handlers. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given backend base URL
// (e.g. "http://localhost:3001").
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("bridge: baseURL must not be empty")
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

// Get performs a GET against path (plus optional query values) and decodes
// the JSON response into out. A nil out discards the body.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("bridge: build request: %w", err)
	}
	return c.do(req, out)
}

// Post performs a POST with a JSON-encoded body and decodes the JSON
// response into out. A nil out discards the body.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bridge: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("bridge: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request and handles status and decoding uniformly.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &backendError{Status: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("bridge: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
