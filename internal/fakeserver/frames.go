// ABOUTME: Builds and writes the SSE frames of a scripted streaming turn
// ABOUTME: start, per-part content start/delta/stop, then complete or error; ids allow resumption

package fakeserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
)

type frame struct {
	id   string
	data json.RawMessage
}

// buildFrames renders the event sequence for one turn.
func buildFrames(in *interactions.Interaction, turn Turn) []frame {
	var (
		frames []frame
		seq    int
	)
	add := func(payload map[string]any) {
		seq++
		id := fmt.Sprintf("evt-%d", seq)
		if in.ID != "" {
			id = in.ID + ":" + id
		}
		data, err := json.Marshal(payload)
		if err != nil {
			data, _ = json.Marshal(map[string]any{"event_type": interactions.EventError, "error": err.Error()})
		}
		frames = append(frames, frame{id: id, data: data})
	}

	started := *in
	started.Outputs = nil
	started.Status = interactions.StatusInProgress
	add(map[string]any{"event_type": interactions.EventInteractionStart, "interaction": &started})

	if turn.StreamError != nil {
		add(map[string]any{
			"event_type": interactions.EventError,
			"error":      map[string]any{"message": turn.StreamError.Message, "code": turn.StreamError.Code},
		})
		return frames
	}

	for i, part := range in.Outputs {
		add(map[string]any{
			"event_type": interactions.EventContentStart,
			"index":      i,
			"content":    map[string]string{"type": part.ContentType()},
		})
		for _, delta := range deltasFor(part, turn.SplitArguments) {
			add(map[string]any{"event_type": interactions.EventContentDelta, "index": i, "delta": delta})
		}
		add(map[string]any{"event_type": interactions.EventContentStop, "index": i})
	}

	final := *in
	if turn.CallsOnlyInDeltas {
		final.Outputs = nil
		for _, part := range in.Outputs {
			if _, ok := part.(interactions.FunctionCallContent); !ok {
				final.Outputs = append(final.Outputs, part)
			}
		}
	}
	add(map[string]any{"event_type": interactions.EventInteractionComplete, "interaction": &final})
	return frames
}

// deltasFor splits a part into streamed deltas. Text goes out in two halves;
// function call arguments optionally become string fragments, the second
// of which carries no name.
func deltasFor(part interactions.Content, splitArgs bool) []any {
	switch p := part.(type) {
	case interactions.TextContent:
		if len(p.Text) < 2 || len(p.Annotations) > 0 {
			return []any{p}
		}
		runes := []rune(p.Text)
		half := len(runes) / 2
		return []any{interactions.NewText(string(runes[:half])), interactions.NewText(string(runes[half:]))}
	case interactions.FunctionCallContent:
		if !splitArgs || len(p.Arguments) < 2 {
			return []any{p}
		}
		args := string(p.Arguments)
		half := len(args) / 2
		return []any{
			map[string]any{"type": interactions.ContentTypeFunctionCall, "id": p.ID, "name": p.Name, "arguments": args[:half]},
			map[string]any{"type": interactions.ContentTypeFunctionCall, "arguments": args[half:]},
		}
	default:
		return []any{part}
	}
}

func writeFrames(w http.ResponseWriter, frames []frame) {
	// Keep SSE connection exempt from server WriteTimeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for _, f := range frames {
		if _, err := fmt.Fprintf(w, "id: %s\ndata: %s\n\n", f.id, f.data); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
