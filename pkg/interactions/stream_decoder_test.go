// ABOUTME: Tests for the stream decoder state machine and frame-to-chunk mapping
// ABOUTME: Verifies ordering, termination truncation, unknown frames and event id tracking

package interactions

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions/internal/sse"
)

func decodeAll(t *testing.T, frames []Frame) ([]StreamEvent, *StreamDecoder) {
	t.Helper()
	dec := NewStreamDecoder()
	var out []StreamEvent
	for _, f := range frames {
		ev, ok, err := dec.Decode(f)
		require.NoError(t, err)
		if ok {
			out = append(out, ev)
		}
	}
	return out, dec
}

func TestStreamDecoderBasicSequence(t *testing.T) {
	t.Parallel()

	frames := []Frame{
		{Data: `{"event_type":"interaction.start","interaction":{"id":"int-1","status":"in_progress"},"event_id":"e1"}`},
		{Data: `{"event_type":"content.start","index":0,"content":{"type":"text"},"event_id":"e2"}`},
		{Data: `{"event_type":"content.delta","index":0,"delta":{"type":"text","text":"Hi"},"event_id":"e3"}`},
		{Data: `{"event_type":"content.stop","index":0,"event_id":"e4"}`},
		{Data: `{"event_type":"interaction.complete","interaction":{"id":"int-1","status":"completed","outputs":[{"type":"text","text":"Hi"}]},"event_id":"e5"}`},
		{Data: `{"event_type":"content.delta","index":1,"delta":{"type":"text","text":"late"}}`},
		{Data: `{"event_type":"interaction.complete","interaction":{"id":"int-1"}}`},
	}

	events, dec := decodeAll(t, frames)
	require.Len(t, events, 5, "nothing after complete may be emitted")

	start, ok := events[0].Chunk.(StartChunk)
	require.True(t, ok)
	assert.Equal(t, "int-1", start.Interaction.ID)
	assert.Equal(t, StatusInProgress, start.Interaction.Status)

	assert.Equal(t, ContentStartChunk{Index: 0, ContentType: "text"}, events[1].Chunk)
	assert.Equal(t, DeltaChunk{Index: 0, Content: TextContent{Text: "Hi"}}, events[2].Chunk)
	assert.Equal(t, ContentStopChunk{Index: 0}, events[3].Chunk)

	complete, ok := events[4].Chunk.(CompleteChunk)
	require.True(t, ok)
	assert.Equal(t, "Hi", complete.Interaction.Text())

	for i, ev := range events {
		assert.Equal(t, "e"+string(rune('1'+i)), ev.EventID)
	}
	assert.Equal(t, StateTerminated, dec.State())
	assert.Equal(t, "e5", dec.LastEventID())
}

func TestStreamDecoderStates(t *testing.T) {
	t.Parallel()

	dec := NewStreamDecoder()
	assert.Equal(t, StateAwaitingStart, dec.State())

	_, ok, err := dec.Decode(Frame{Data: ""})
	require.NoError(t, err)
	assert.False(t, ok, "keep-alive frames yield nothing")
	assert.Equal(t, StateAwaitingStart, dec.State())

	_, ok, err = dec.Decode(Frame{Data: `{"event_type":"interaction.status_update","interaction_id":"x","status":"in_progress"}`})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateStreaming, dec.State())

	ev, ok, err := dec.Decode(Frame{Data: `{"event_type":"error","error":{"message":"quota","code":429}}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ErrorChunk{Message: "quota", Code: "429"}, ev.Chunk)
	assert.Equal(t, StateTerminated, dec.State())

	_, ok, err = dec.Decode(Frame{Data: `not even json`})
	assert.NoError(t, err, "frames after termination are not consumed")
	assert.False(t, ok)
}

func TestStreamDecoderFrameVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame Frame
		want  StreamChunk
		id    string
	}{
		{
			name:  "sse event field as discriminator",
			frame: Frame{Type: "content.stop", Data: `{"index":2}`},
			want:  ContentStopChunk{Index: 2},
		},
		{
			name:  "sse id as fallback event id",
			frame: Frame{ID: "sse-7", Data: `{"event_type":"content.stop","index":1}`},
			want:  ContentStopChunk{Index: 1},
			id:    "sse-7",
		},
		{
			name:  "payload id wins over sse id",
			frame: Frame{ID: "sse-7", Data: `{"event_type":"content.stop","event_id":"p-1"}`},
			want:  ContentStopChunk{},
			id:    "p-1",
		},
		{
			name:  "status update",
			frame: Frame{Data: `{"event_type":"interaction.status_update","interaction_id":"i","status":"requires_action"}`},
			want:  StatusUpdateChunk{InteractionID: "i", Status: StatusRequiresAction},
		},
		{
			name:  "unknown status kept",
			frame: Frame{Data: `{"event_type":"interaction.status_update","status":"warming_up"}`},
			want:  StatusUpdateChunk{Status: "warming_up"},
		},
		{
			name:  "function call delta",
			frame: Frame{Data: `{"event_type":"content.delta","index":1,"delta":{"type":"function_call","id":"c1","name":"f","arguments":{"x":1}}}`},
			want:  DeltaChunk{Index: 1, Content: FunctionCallContent{ID: "c1", Name: "f", Arguments: []byte(`{"x":1}`)}},
		},
		{
			name:  "delta under content key",
			frame: Frame{Data: `{"event_type":"content.delta","content":{"type":"thought","text":"hm"}}`},
			want:  DeltaChunk{Content: ThoughtContent{Text: "hm"}},
		},
		{
			name:  "unknown delta part",
			frame: Frame{Data: `{"event_type":"content.delta","delta":{"type":"sparkle","n":1}}`},
			want:  DeltaChunk{Content: UnknownContent{Type: "sparkle", Data: []byte(`{"n":1}`)}},
		},
		{
			name:  "string error",
			frame: Frame{Data: `{"event_type":"error","error":"overloaded"}`},
			want:  ErrorChunk{Message: "overloaded"},
		},
		{
			name:  "unknown event type",
			frame: Frame{Data: `{"event_type":"interaction.heartbeat","n":1}`},
			want:  UnknownChunk{Type: "interaction.heartbeat", Data: []byte(`{"event_type":"interaction.heartbeat","n":1}`)},
		},
		{
			name:  "no discriminator at all",
			frame: Frame{Data: `{"n":1}`},
			want:  UnknownChunk{Type: MissingTypeTag, Data: []byte(`{"n":1}`)},
		},
		{
			name:  "start without interaction body",
			frame: Frame{Data: `{"event_type":"interaction.start","interaction_id":"i-9"}`},
			want:  StartChunk{Interaction: &Interaction{ID: "i-9"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev, ok, err := NewStreamDecoder().Decode(tt.frame)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, ev.Chunk)
			assert.Equal(t, tt.id, ev.EventID)
		})
	}
}

func TestStreamDecoderUnknownFrameDoesNotTerminate(t *testing.T) {
	t.Parallel()

	events, dec := decodeAll(t, []Frame{
		{Data: `{"event_type":"interaction.start","interaction":{"id":"i"}}`},
		{Data: `{"event_type":"interaction.novel_thing"}`},
		{Data: `{"event_type":"content.delta","delta":{"type":"text","text":"still here"}}`},
	})
	require.Len(t, events, 3)
	assert.Equal(t, "interaction.novel_thing", events[1].Chunk.ChunkType())
	assert.Equal(t, StateStreaming, dec.State())
}

func TestStreamDecoderMalformedFrame(t *testing.T) {
	t.Parallel()

	dec := NewStreamDecoder()
	_, ok, err := dec.Decode(Frame{Data: `{"event_type":`})
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateTerminated, dec.State())
}

func TestStreamDecoderStrictUnknownEvent(t *testing.T) {
	strictMode(t)

	_, _, err := NewStreamDecoder().Decode(Frame{Data: `{"event_type":"interaction.novel_thing"}`})
	var tagErr *UnknownTagError
	require.ErrorAs(t, err, &tagErr)
	assert.Equal(t, "interaction.novel_thing", tagErr.Tag)
}

func TestPump(t *testing.T) {
	t.Parallel()

	t.Run("stops at complete", func(t *testing.T) {
		t.Parallel()

		input := "id: 1\ndata: {\"event_type\":\"interaction.start\",\"interaction\":{\"id\":\"i\"}}\n\n" +
			": keepalive\n\n" +
			"id: 2\ndata: {\"event_type\":\"interaction.complete\",\"interaction\":{\"id\":\"i\"}}\n\n" +
			"id: 3\ndata: {\"event_type\":\"content.delta\",\"delta\":{\"type\":\"text\",\"text\":\"x\"}}\n\n"

		var got []StreamEvent
		dec := NewStreamDecoder()
		err := pump(t.Context(), sse.NewReader(strings.NewReader(input)), dec, func(ev StreamEvent) bool {
			got = append(got, ev)
			return true
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2", dec.LastEventID())
	})

	t.Run("ends early", func(t *testing.T) {
		t.Parallel()

		input := "id: 1\ndata: {\"event_type\":\"interaction.start\"}\n\n"
		err := pump(t.Context(), sse.NewReader(strings.NewReader(input)), NewStreamDecoder(), func(StreamEvent) bool { return true })
		assert.ErrorIs(t, err, ErrStreamEndedEarly)
	})

	t.Run("reader failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection reset")
		err := pump(t.Context(), sse.NewReader(io.MultiReader(strings.NewReader("data: {}\n"), errReader{boom})), NewStreamDecoder(), func(StreamEvent) bool { return true })
		assert.ErrorIs(t, err, boom)
	})
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
