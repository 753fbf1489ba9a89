// ABOUTME: HTTP client for the Interactions API: create, stream, get, resume, delete and cancel
// ABOUTME: Configured with functional options; logs through zap and never retries

package interactions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions/internal/httputil"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	apiKeyHeader     = "x-goog-api-key"
	streamBufferSize = 64
)

// Client talks to the Interactions API.
type Client struct {
	http   *httputil.Client
	logger *zap.Logger
}

type clientConfig struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithBaseURL overrides DefaultBaseURL, e.g. to point at a proxy or fake.
func WithBaseURL(u string) ClientOption {
	return func(c *clientConfig) { c.baseURL = u }
}

// WithAPIKey sends key in the x-goog-api-key header.
func WithAPIKey(key string) ClientOption {
	return func(c *clientConfig) {
		if key != "" {
			c.headers[apiKeyHeader] = key
		}
	}
}

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *clientConfig) { c.headers[key] = value }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a client from opts.
func NewClient(opts ...ClientOption) *Client {
	cfg := &clientConfig{
		baseURL: DefaultBaseURL,
		headers: map[string]string{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{
		http:   httputil.NewClient(cfg.baseURL, cfg.headers, cfg.httpClient),
		logger: cfg.logger.Named("interactions"),
	}
}

// Create sends req and waits for the whole interaction.
func (c *Client) Create(ctx context.Context, req *CreateInteractionRequest) (*Interaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body := *req
	body.Stream = false

	c.logger.Debug("create interaction",
		zap.String("model", req.Model),
		zap.String("agent", req.Agent),
		zap.String("previous_interaction_id", req.PreviousInteractionID),
	)

	var out Interaction
	if err := c.http.DoJSON(ctx, http.MethodPost, httputil.ResourcePath(nil, "interactions"), body, &out); err != nil {
		return nil, c.wrap("create interaction", err)
	}
	c.logger.Debug("interaction created", zap.String("id", out.ID), zap.String("status", string(out.Status)))
	return &out, nil
}

// CreateStream sends req with streaming on. The returned stream yields one
// event per frame and ends after the complete or error chunk. An error
// chunk also ends the stream with a *StreamError.
func (c *Client) CreateStream(ctx context.Context, req *CreateInteractionRequest) *Stream[StreamEvent] {
	if err := req.Validate(); err != nil {
		return FailedStream[StreamEvent](err)
	}
	body := *req
	body.Stream = true

	c.logger.Debug("create interaction stream", zap.String("model", req.Model), zap.String("agent", req.Agent))
	path := httputil.ResourcePath(url.Values{"alt": {"sse"}}, "interactions")
	return c.openStream(ctx, http.MethodPost, path, body)
}

// Get fetches a stored interaction.
func (c *Client) Get(ctx context.Context, id string) (*Interaction, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty interaction id", ErrInvalidRequest)
	}
	var out Interaction
	if err := c.http.DoJSON(ctx, http.MethodGet, httputil.ResourcePath(nil, "interactions", id), nil, &out); err != nil {
		return nil, c.wrap("get interaction", err)
	}
	return &out, nil
}

// GetStream re-attaches to an interaction's event stream. With a non-empty
// lastEventID the server replays only the events after it.
func (c *Client) GetStream(ctx context.Context, id, lastEventID string) *Stream[StreamEvent] {
	if id == "" {
		return FailedStream[StreamEvent](fmt.Errorf("%w: empty interaction id", ErrInvalidRequest))
	}
	q := url.Values{"stream": {"true"}, "alt": {"sse"}}
	if lastEventID != "" {
		q.Set("last_event_id", lastEventID)
	}
	c.logger.Debug("resume interaction stream", zap.String("id", id), zap.String("last_event_id", lastEventID))
	return c.openStream(ctx, http.MethodGet, httputil.ResourcePath(q, "interactions", id), nil)
}

// Delete removes a stored interaction.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty interaction id", ErrInvalidRequest)
	}
	if err := c.http.DoJSON(ctx, http.MethodDelete, httputil.ResourcePath(nil, "interactions", id), nil, nil); err != nil {
		return c.wrap("delete interaction", err)
	}
	return nil
}

// Cancel stops a background interaction and returns its final state.
func (c *Client) Cancel(ctx context.Context, id string) (*Interaction, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty interaction id", ErrInvalidRequest)
	}
	var out Interaction
	if err := c.http.DoJSON(ctx, http.MethodPost, httputil.ResourcePath(nil, "interactions", id+":cancel"), nil, &out); err != nil {
		return nil, c.wrap("cancel interaction", err)
	}
	return &out, nil
}

func (c *Client) openStream(ctx context.Context, method, path string, body any) *Stream[StreamEvent] {
	stream := NewStream[StreamEvent](streamBufferSize)

	reader, respBody, err := c.http.StreamSSE(ctx, method, path, body)
	if err != nil {
		stream.Finish(c.wrap("open stream", err))
		return stream
	}

	go func() {
		defer respBody.Close()

		dec := NewStreamDecoder()
		var streamErr error
		err := pump(ctx, reader, dec, func(ev StreamEvent) bool {
			if ec, ok := ev.Chunk.(ErrorChunk); ok {
				streamErr = &StreamError{Chunk: ec}
			}
			return stream.Send(ctx, ev)
		})
		if err == nil {
			err = streamErr
		}
		if err != nil {
			c.logger.Debug("stream ended with error",
				zap.Error(err),
				zap.String("last_event_id", dec.LastEventID()),
			)
		}
		stream.Finish(err)
	}()

	return stream
}

// wrap converts transport status errors into *APIError.
func (c *Client) wrap(op string, err error) error {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		apiErr := newAPIError(se.StatusCode, se.Body)
		c.logger.Warn("api error",
			zap.String("op", op),
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}
	return fmt.Errorf("%s: %w", op, err)
}
