// ABOUTME: Tests for run formatters, the stream driver and markdown rendering
// ABOUTME: Uses plain styles so trace assertions compare raw text

package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions/autofunc"
)

func sampleResult() *autofunc.Result {
	return &autofunc.Result{
		Interaction: &interactions.Interaction{
			ID:      "int_2",
			Status:  interactions.StatusCompleted,
			Outputs: interactions.ContentList{interactions.NewText("It is sunny in Rome.")},
		},
		Executions: []autofunc.FunctionExecutionResult{{
			Name:     "get_weather",
			CallID:   "call_1",
			Args:     json.RawMessage(`{"location":"Rome"}`),
			Result:   json.RawMessage(`{"sky":"sunny"}`),
			Duration: 12 * time.Millisecond,
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{" json ", FormatJSON, false},
		{"stream-json", FormatStreamJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextFormatterReport(t *testing.T) {
	var out, trace bytes.Buffer
	f := New(FormatText, Options{Out: &out, Trace: &trace, Styles: PlainStyles()})

	Report(sampleResult(), f)

	assert.Equal(t, "It is sunny in Rome.\n", out.String())
	assert.Contains(t, trace.String(), `→ get_weather({"location":"Rome"})`)
	assert.Contains(t, trace.String(), `✓ get_weather {"sky":"sunny"} (12ms)`)
}

func TestTextFormatterMaxLoopsNotice(t *testing.T) {
	var out, trace bytes.Buffer
	f := New(FormatText, Options{Out: &out, Trace: &trace, Styles: PlainStyles()})

	res := sampleResult()
	res.ReachedMaxLoops = true
	Report(res, f)

	assert.Contains(t, trace.String(), "iteration limit reached")
}

func TestTextFormatterFailedCall(t *testing.T) {
	var out, trace bytes.Buffer
	f := New(FormatText, Options{Out: &out, Trace: &trace, Styles: PlainStyles()})

	f.FunctionResult(autofunc.FunctionExecutionResult{Name: "explode", Result: json.RawMessage(`{"error":"boom"}`)})

	assert.Contains(t, trace.String(), `✗ explode {"error":"boom"}`)
}

func TestTextFormatterMarkdownBuffersUntilEnd(t *testing.T) {
	var out bytes.Buffer
	f := New(FormatText, Options{Out: &out, Styles: PlainStyles(), Markdown: NewMarkdownRenderer(), Width: 60})

	f.Start()
	f.Text("# Weather\n\n")
	f.Text("It is **sunny**.")
	assert.Empty(t, out.String())

	f.End(&autofunc.Result{})
	assert.Contains(t, out.String(), "Weather")
	assert.Contains(t, out.String(), "sunny")
}

func TestJSONFormatter(t *testing.T) {
	var out bytes.Buffer
	f := New(FormatJSON, Options{Out: &out})

	Report(sampleResult(), f)

	var got jsonOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "int_2", got.InteractionID)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "It is sunny in Rome.", got.Text)
	require.Len(t, got.FunctionCalls, 1)
	assert.Equal(t, "call_1", got.FunctionCalls[0].CallID)
	assert.Equal(t, int64(12), got.FunctionCalls[0].DurationMS)
	assert.False(t, got.FunctionCalls[0].Error)
}

func TestStreamJSONFormatter(t *testing.T) {
	var out bytes.Buffer
	f := New(FormatStreamJSON, Options{Out: &out})

	f.Start()
	f.FunctionCall(autofunc.PendingCall{Name: "explode", CallID: "c1", Args: json.RawMessage(`{}`)})
	f.FunctionResult(autofunc.FunctionExecutionResult{Name: "explode", CallID: "c1", Result: json.RawMessage(`{"error":"boom"}`)})
	f.Text("done")
	f.End(&autofunc.Result{ReachedMaxLoops: true})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)

	var types []string
	for _, line := range lines {
		var l streamLine
		require.NoError(t, json.Unmarshal([]byte(line), &l))
		types = append(types, l.Type)
		if l.Type == "function_result" {
			assert.Equal(t, "boom", l.Error)
		}
	}
	assert.Equal(t, []string{"start", "function_call", "function_result", "text", "max_loops_reached"}, types)
}

func runStream(t *testing.T, events []autofunc.StreamEvent, err error) *interactions.Stream[autofunc.StreamEvent] {
	t.Helper()
	s := interactions.NewStream[autofunc.StreamEvent](len(events))
	for _, ev := range events {
		require.True(t, s.Send(context.Background(), ev))
	}
	s.Finish(err)
	return s
}

func TestDriveStreamsText(t *testing.T) {
	final := &interactions.Interaction{ID: "int_2", Status: interactions.StatusCompleted}
	exec := sampleResult().Executions[0]
	stream := runStream(t, []autofunc.StreamEvent{
		{Chunk: autofunc.ExecutingFunctionsChunk{PendingCalls: []autofunc.PendingCall{{Name: "get_weather", CallID: "call_1"}}}},
		{Chunk: autofunc.FunctionResultsChunk{Results: []autofunc.FunctionExecutionResult{exec}}},
		{Chunk: autofunc.DeltaChunk{Content: interactions.NewText("Sunny ")}},
		{Chunk: autofunc.DeltaChunk{Content: interactions.NewText("today.")}},
		{Chunk: autofunc.CompleteChunk{Interaction: final}},
	}, nil)

	var out, trace bytes.Buffer
	res, err := Drive(stream, New(FormatText, Options{Out: &out, Trace: &trace, Styles: PlainStyles()}))
	require.NoError(t, err)

	assert.Same(t, final, res.Interaction)
	require.Len(t, res.Executions, 1)
	assert.Equal(t, "Sunny today.\n", out.String())
	assert.Contains(t, trace.String(), "→ get_weather")
}

func TestDriveReportsStreamError(t *testing.T) {
	boom := errors.New("connection reset")
	stream := runStream(t, []autofunc.StreamEvent{
		{Chunk: autofunc.DeltaChunk{Content: interactions.NewText("partial")}},
	}, boom)

	var out bytes.Buffer
	res, err := Drive(stream, New(FormatJSON, Options{Out: &out}))
	require.ErrorIs(t, err, boom)
	assert.Nil(t, res)

	var got jsonOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "partial", got.Text)
	assert.Equal(t, []string{"connection reset"}, got.Errors)
}

func TestDriveWithoutTerminalChunk(t *testing.T) {
	stream := runStream(t, nil, nil)

	_, err := Drive(stream, New(FormatText, Options{Out: &bytes.Buffer{}, Styles: PlainStyles()}))
	assert.ErrorIs(t, err, interactions.ErrStreamEndedEarly)
}

func TestMarkdownRendererCache(t *testing.T) {
	r := NewMarkdownRenderer()

	first := r.Render("# Title", 40)
	second := r.Render("# Title", 40)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Title")
	assert.Len(t, r.cache, 1)

	r.Render("# Title", 60)
	assert.Len(t, r.cache, 2)

	assert.Equal(t, "  ", r.Render("  ", 40))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "a b", clip("a\n  b"))
	long := strings.Repeat("x", maxTraceValue+10)
	clipped := []rune(clip(long))
	assert.Len(t, clipped, maxTraceValue)
	assert.Equal(t, '…', clipped[len(clipped)-1])

	wide := clip(strings.Repeat("界", maxTraceValue))
	assert.LessOrEqual(t, runewidth.StringWidth(wide), maxTraceValue)
}
