// Package api talks to the backend REST API. All business state is
// authoritative on the server; this package only moves it across the
// wire.
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
)

// Client carries the shared HTTP machinery for the REST repositories.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL. A nil transport
// uses http.DefaultTransport; callers pass an instrumented RoundTripper
// when APM is enabled.
func NewClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// doJSON performs a request with an optional JSON body and decodes the
// JSON response into out (skipped when out is nil). Mutating requests
// are stamped with a fresh Idempotency-Key so the server can replay a
// stored response instead of applying the change twice.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.New().String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
