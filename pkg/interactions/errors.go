// ABOUTME: Error types shared by the interactions client, codec and stream decoder
// ABOUTME: APIError is parsed from the Google error envelope; UnknownTagError reports strict-mode drift

package interactions

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidRequest is wrapped by every request validation failure.
	ErrInvalidRequest = errors.New("invalid interaction request")

	// ErrStreamEndedEarly is returned when the transport closes before a
	// complete or error frame arrived. Resume with GetStream and the last event id.
	ErrStreamEndedEarly = errors.New("stream ended before interaction completed")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       int    // error.code from the envelope; 0 when absent
	Status     string // error.status, e.g. INVALID_ARGUMENT
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("interactions api: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("interactions api: %d: %s", e.StatusCode, e.Message)
}

// newAPIError parses `{"error":{"code":..,"status":..,"message":..}}`.
// Bodies that do not follow the envelope keep their raw text as the message.
func newAPIError(statusCode int, body []byte) *APIError {
	e := &APIError{StatusCode: statusCode, Body: body}
	env := gjson.GetBytes(body, "error")
	if env.IsObject() {
		e.Code = int(env.Get("code").Int())
		e.Status = env.Get("status").String()
		e.Message = env.Get("message").String()
	}
	if e.Message == "" {
		e.Message = string(body)
	}
	return e
}

// UnknownTagError is returned in strict mode when a content tag, stream
// event tag or enum value is not recognised.
type UnknownTagError struct {
	Kind string // "content", "stream event", "status", ...
	Tag  string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown %s %q (strict mode)", e.Kind, e.Tag)
}

// StreamError carries an error frame sent by the server mid-stream.
type StreamError struct {
	Chunk ErrorChunk
}

func (e *StreamError) Error() string {
	if e.Chunk.Code != "" {
		return fmt.Sprintf("stream error %s: %s", e.Chunk.Code, e.Chunk.Message)
	}
	return "stream error: " + e.Chunk.Message
}
