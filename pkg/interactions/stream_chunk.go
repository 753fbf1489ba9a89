// ABOUTME: Typed stream chunks produced from SSE frames, paired with resumable event ids
// ABOUTME: Chunks persist as {"chunk_type","data"} records for recording and replay

package interactions

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Chunk type tags used by the record/replay format.
const (
	ChunkTypeStart        = "start"
	ChunkTypeStatusUpdate = "status_update"
	ChunkTypeContentStart = "content_start"
	ChunkTypeDelta        = "delta"
	ChunkTypeContentStop  = "content_stop"
	ChunkTypeComplete     = "complete"
	ChunkTypeError        = "error"
)

// StreamChunk is one typed unit of a streamed interaction.
type StreamChunk interface {
	ChunkType() string
	isStreamChunk()
}

// StreamEvent pairs a chunk with the server's event id, which can be passed
// to Client.GetStream to resume after a disconnect.
type StreamEvent struct {
	Chunk   StreamChunk
	EventID string
}

// StartChunk opens the stream with the interaction as known so far.
type StartChunk struct {
	Interaction *Interaction
}

// StatusUpdateChunk reports a status transition.
type StatusUpdateChunk struct {
	InteractionID string            `json:"interaction_id,omitempty"`
	Status        InteractionStatus `json:"status"`
}

// ContentStartChunk announces output part Index and, when known, its type.
type ContentStartChunk struct {
	Index       int    `json:"index"`
	ContentType string `json:"content_type,omitempty"`
}

// DeltaChunk carries an incremental piece of output part Index.
type DeltaChunk struct {
	Index   int
	Content Content
}

// ContentStopChunk closes output part Index.
type ContentStopChunk struct {
	Index int `json:"index"`
}

// CompleteChunk ends the stream with the final interaction.
type CompleteChunk struct {
	Interaction *Interaction
}

// ErrorChunk ends the stream with a server-reported error.
type ErrorChunk struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// UnknownChunk preserves a frame whose event type is not recognised.
type UnknownChunk struct {
	Type string
	Data json.RawMessage
}

func (StartChunk) ChunkType() string        { return ChunkTypeStart }
func (StatusUpdateChunk) ChunkType() string { return ChunkTypeStatusUpdate }
func (ContentStartChunk) ChunkType() string { return ChunkTypeContentStart }
func (DeltaChunk) ChunkType() string        { return ChunkTypeDelta }
func (ContentStopChunk) ChunkType() string  { return ChunkTypeContentStop }
func (CompleteChunk) ChunkType() string     { return ChunkTypeComplete }
func (ErrorChunk) ChunkType() string        { return ChunkTypeError }
func (u UnknownChunk) ChunkType() string    { return u.Type }

func (StartChunk) isStreamChunk()        {}
func (StatusUpdateChunk) isStreamChunk() {}
func (ContentStartChunk) isStreamChunk() {}
func (DeltaChunk) isStreamChunk()        {}
func (ContentStopChunk) isStreamChunk()  {}
func (CompleteChunk) isStreamChunk()     {}
func (ErrorChunk) isStreamChunk()        {}
func (UnknownChunk) isStreamChunk()      {}

// IsTerminal reports whether c ends a stream.
func IsTerminal(c StreamChunk) bool {
	switch c.(type) {
	case CompleteChunk, ErrorChunk:
		return true
	}
	return false
}

type deltaRecord struct {
	Index   int             `json:"index"`
	Content json.RawMessage `json:"content"`
}

type chunkRecord struct {
	ChunkType string          `json:"chunk_type"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MarshalStreamChunk encodes c as {"chunk_type": ..., "data": ...}.
func MarshalStreamChunk(c StreamChunk) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch v := c.(type) {
	case StartChunk:
		data, err = json.Marshal(v.Interaction)
	case CompleteChunk:
		data, err = json.Marshal(v.Interaction)
	case DeltaChunk:
		var content []byte
		if content, err = EncodeContent(v.Content); err == nil {
			data, err = json.Marshal(deltaRecord{Index: v.Index, Content: content})
		}
	case UnknownChunk:
		data = v.Data
	case nil:
		return nil, fmt.Errorf("encoding stream chunk: nil chunk")
	default:
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s chunk: %w", c.ChunkType(), err)
	}
	return json.Marshal(chunkRecord{ChunkType: c.ChunkType(), Data: data})
}

// UnmarshalStreamChunk decodes a record written by MarshalStreamChunk.
// Unrecognised chunk types come back as UnknownChunk.
func UnmarshalStreamChunk(b []byte) (StreamChunk, error) {
	var rec chunkRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decoding stream chunk: %w", err)
	}
	if !gjson.GetBytes(b, "chunk_type").Exists() {
		return nil, fmt.Errorf("decoding stream chunk: missing chunk_type")
	}

	data := rec.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}

	switch rec.ChunkType {
	case ChunkTypeStart, ChunkTypeComplete:
		var in *Interaction
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("decoding %s chunk: %w", rec.ChunkType, err)
		}
		if rec.ChunkType == ChunkTypeStart {
			return StartChunk{Interaction: in}, nil
		}
		return CompleteChunk{Interaction: in}, nil
	case ChunkTypeDelta:
		var d deltaRecord
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decoding delta chunk: %w", err)
		}
		content, err := DecodeContent(d.Content)
		if err != nil {
			return nil, fmt.Errorf("decoding delta chunk: %w", err)
		}
		return DeltaChunk{Index: d.Index, Content: content}, nil
	case ChunkTypeStatusUpdate:
		return decodeChunkInto[StatusUpdateChunk](rec.ChunkType, data)
	case ChunkTypeContentStart:
		return decodeChunkInto[ContentStartChunk](rec.ChunkType, data)
	case ChunkTypeContentStop:
		return decodeChunkInto[ContentStopChunk](rec.ChunkType, data)
	case ChunkTypeError:
		return decodeChunkInto[ErrorChunk](rec.ChunkType, data)
	default:
		if StrictUnknown() {
			return nil, &UnknownTagError{Kind: "chunk type", Tag: rec.ChunkType}
		}
		return UnknownChunk{Type: rec.ChunkType, Data: rec.Data}, nil
	}
}

func decodeChunkInto[T StreamChunk](kind string, data []byte) (StreamChunk, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding %s chunk: %w", kind, err)
	}
	return v, nil
}
