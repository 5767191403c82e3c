// Package api implements the HTTP client for the delivery backend. Every
// endpoint wraps its payload in a {success, data|message} envelope; this
// package decodes the envelope and maps failures onto the client error
// taxonomy (validation vs network vs expired session).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"grocli/internal/logging"
)

// Client talks to the delivery backend.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// tokenFn supplies the current auth token per request, so a logout in
	// the session store takes effect without rebuilding the client.
	tokenFn func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport (tests use this).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource wires the session store's token into outgoing requests.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.tokenFn = fn }
}

// New creates a backend client.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// do performs a request and decodes the envelope into out (out may be nil
// for operations whose payload is ignored).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokenFn != nil {
		if token := c.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logging.API("%s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIError("%s %s transport error: %v", method, path, err)
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &NetworkError{
			Op:  method + " " + path,
			Err: fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err),
		}
	}

	if !env.Success {
		// Non-2xx without a business message is a transport-level failure
		if resp.StatusCode >= 500 || env.Message == "" {
			return &NetworkError{
				Op:  method + " " + path,
				Err: fmt.Errorf("backend returned status %d: %s", resp.StatusCode, env.Message),
			}
		}
		return &ValidationError{Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &NetworkError{
				Op:  method + " " + path,
				Err: fmt.Errorf("failed to decode payload: %w", err),
			}
		}
	}

	return nil
}
