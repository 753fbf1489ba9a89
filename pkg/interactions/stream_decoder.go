// ABOUTME: Stream reconstruction state machine: one SSE frame in, at most one typed chunk out
// ABOUTME: AwaitingStart -> Streaming -> Terminated; frames after complete/error are ignored

package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions/internal/sse"
)

// Wire event types carried in a frame's event_type.
const (
	EventInteractionStart        = "interaction.start"
	EventInteractionStatusUpdate = "interaction.status_update"
	EventContentStart            = "content.start"
	EventContentDelta            = "content.delta"
	EventContentStop             = "content.stop"
	EventInteractionComplete     = "interaction.complete"
	EventError                   = "error"
)

// DecoderState is the position of a StreamDecoder in its lifecycle.
type DecoderState int

const (
	StateAwaitingStart DecoderState = iota
	StateStreaming
	StateTerminated
)

func (s DecoderState) String() string {
	switch s {
	case StateAwaitingStart:
		return "awaiting_start"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("DecoderState(%d)", int(s))
	}
}

// Frame is one raw SSE event: the optional event field, the data payload
// and the optional id field.
type Frame struct {
	Type string
	Data string
	ID   string
}

// StreamDecoder turns frames into typed chunks. It does not interpret
// event ids beyond exposing them; resuming is up to the caller.
type StreamDecoder struct {
	state       DecoderState
	lastEventID string
}

func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

func (d *StreamDecoder) State() DecoderState { return d.state }

// LastEventID is the id of the most recent frame that carried one.
func (d *StreamDecoder) LastEventID() string { return d.lastEventID }

// Decode consumes one frame. It reports false when the frame produced no
// chunk: keep-alive frames with empty data, or any frame after termination.
// A payload that is not valid JSON is a transport error and terminates
// the decoder.
func (d *StreamDecoder) Decode(f Frame) (StreamEvent, bool, error) {
	if d.state == StateTerminated {
		return StreamEvent{}, false, nil
	}
	data := strings.TrimSpace(f.Data)
	if data == "" {
		return StreamEvent{}, false, nil
	}

	wf, err := decodeWireFrame([]byte(data))
	if err != nil {
		d.state = StateTerminated
		return StreamEvent{}, false, fmt.Errorf("decoding stream frame: %w", err)
	}

	eventType := wf.EventType
	if eventType == "" {
		eventType = f.Type
	}
	eventID := wf.EventID
	if eventID == "" {
		eventID = f.ID
	}

	chunk, err := chunkFromFrame(eventType, wf, data)
	if err != nil {
		d.state = StateTerminated
		return StreamEvent{}, false, fmt.Errorf("decoding %s frame: %w", eventType, err)
	}

	if eventID != "" {
		d.lastEventID = eventID
	}
	if IsTerminal(chunk) {
		d.state = StateTerminated
	} else {
		// A resumed stream starts mid-interaction, so any frame opens streaming.
		d.state = StateStreaming
	}
	return StreamEvent{Chunk: chunk, EventID: eventID}, true, nil
}

func chunkFromFrame(eventType string, wf wireFrame, data string) (StreamChunk, error) {
	switch eventType {
	case EventInteractionStart:
		in, err := frameInteraction(wf)
		if err != nil {
			return nil, err
		}
		return StartChunk{Interaction: in}, nil

	case EventInteractionStatusUpdate:
		c := StatusUpdateChunk{InteractionID: wf.InteractionID}
		if wf.Status != nil {
			if err := c.Status.UnmarshalJSON(wf.Status); err != nil {
				return nil, err
			}
		}
		return c, nil

	case EventContentStart:
		return ContentStartChunk{
			Index:       wf.Index,
			ContentType: gjson.GetBytes(wf.Content, "type").String(),
		}, nil

	case EventContentDelta:
		payload := wf.Delta
		if payload == nil {
			payload = wf.Content
		}
		if payload == nil {
			return nil, errors.New("delta frame without payload")
		}
		content, err := DecodeContent(payload)
		if err != nil {
			return nil, err
		}
		return DeltaChunk{Index: wf.Index, Content: content}, nil

	case EventContentStop:
		return ContentStopChunk{Index: wf.Index}, nil

	case EventInteractionComplete:
		in, err := frameInteraction(wf)
		if err != nil {
			return nil, err
		}
		return CompleteChunk{Interaction: in}, nil

	case EventError:
		return frameError(wf.Error), nil

	default:
		if StrictUnknown() {
			return nil, &UnknownTagError{Kind: "stream event", Tag: eventType}
		}
		tag := eventType
		if tag == "" {
			tag = MissingTypeTag
		}
		return UnknownChunk{Type: tag, Data: []byte(data)}, nil
	}
}

func frameInteraction(wf wireFrame) (*Interaction, error) {
	in := &Interaction{}
	if wf.Interaction != nil {
		if err := json.Unmarshal(wf.Interaction, in); err != nil {
			return nil, err
		}
	}
	if in.ID == "" {
		in.ID = wf.InteractionID
	}
	return in, nil
}

// frameError accepts {"message","code"} with a numeric or string code, or
// a bare string message.
func frameError(raw []byte) ErrorChunk {
	doc := gjson.ParseBytes(raw)
	if doc.Type == gjson.String {
		return ErrorChunk{Message: doc.String()}
	}
	c := ErrorChunk{
		Message: doc.Get("message").String(),
		Code:    doc.Get("code").String(),
	}
	if c.Message == "" {
		c.Message = "unknown stream error"
	}
	return c
}

// frameSource is satisfied by the SSE reader.
type frameSource interface {
	Next() (*sse.Event, error)
}

// pump feeds frames from src through a fresh decoder into emit until a
// terminal chunk, an error or the end of input. It returns
// ErrStreamEndedEarly when input ends before termination.
func pump(ctx context.Context, src frameSource, dec *StreamDecoder, emit func(StreamEvent) bool) error {
	for dec.State() != StateTerminated {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return ErrStreamEndedEarly
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("reading stream: %w", err)
		}

		out, ok, err := dec.Decode(Frame{Type: ev.Type, Data: ev.Data, ID: ev.ID})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if !emit(out) {
			return ctx.Err()
		}
	}
	return nil
}
