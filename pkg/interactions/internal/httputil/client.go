// ABOUTME: Thin HTTP transport for the interactions API: JSON round-trips and SSE streams
// ABOUTME: Applies default headers, captures non-2xx bodies as StatusError; no retries

package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions/internal/sse"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 1 << 20

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s: %s", e.Status, bytes.TrimSpace(e.Body))
}

// Client wraps an http.Client with a base URL and default headers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// DefaultHTTPClient returns the transport used when the caller supplies none.
// Proxy support comes from the environment (HTTP_PROXY, HTTPS_PROXY).
// There is no overall timeout: streams stay open as long as the server sends.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// NewClient creates a client for baseURL. A nil httpClient selects DefaultHTTPClient.
func NewClient(baseURL string, headers map[string]string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = DefaultHTTPClient()
	}
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    NormalizeBaseURL(baseURL),
		headers:    h,
	}
}

// BaseURL returns the base URL configured on this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a single HTTP request. Non-2xx responses are drained, closed and
// returned as *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, accept string) (*http.Response, error) {
	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: b}
	}

	return resp, nil
}

// DoJSON marshals in (when non-nil) as the request body and decodes the
// response into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := encodeBody(in)
	if err != nil {
		return err
	}

	resp, err := c.Do(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// StreamSSE sends a request expecting an event stream and returns a reader
// over the response body. The caller must close the returned body.
func (c *Client) StreamSSE(ctx context.Context, method, path string, in any) (*sse.Reader, io.ReadCloser, error) {
	body, err := encodeBody(in)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.Do(ctx, method, path, body, "text/event-stream")
	if err != nil {
		return nil, nil, err
	}

	return sse.NewReader(resp.Body), resp.Body, nil
}

// buildRequest creates an http.Request with default headers applied.
func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s %s: %w", method, path, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func encodeBody(in any) (io.Reader, error) {
	if in == nil {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return bytes.NewReader(b), nil
}
