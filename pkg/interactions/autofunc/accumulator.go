// ABOUTME: Folds streaming run chunks into the same Result shape Run returns
// ABOUTME: Also gathers forwarded text so callers can render without re-walking outputs

package autofunc

import (
	"strings"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
)

// Accumulator collects a streaming run. It is not safe for concurrent use.
type Accumulator struct {
	executions []FunctionExecutionResult
	final      *interactions.Interaction
	reachedMax bool
	done       bool
	text       strings.Builder
}

// Add folds one chunk.
func (a *Accumulator) Add(c Chunk) {
	switch v := c.(type) {
	case DeltaChunk:
		if t, ok := v.Content.(interactions.TextContent); ok {
			a.text.WriteString(t.Text)
		}
	case FunctionResultsChunk:
		a.executions = append(a.executions, v.Results...)
	case CompleteChunk:
		a.final, a.done = v.Interaction, true
	case MaxLoopsReachedChunk:
		a.final, a.done, a.reachedMax = v.Interaction, true, true
	}
}

// Done reports whether a terminal chunk has been folded.
func (a *Accumulator) Done() bool { return a.done }

// Text returns the streamed text seen so far across all turns.
func (a *Accumulator) Text() string { return a.text.String() }

// Result returns the folded result and whether the run reached a terminal chunk.
func (a *Accumulator) Result() (*Result, bool) {
	return &Result{
		Interaction:     a.final,
		Executions:      a.executions,
		ReachedMaxLoops: a.reachedMax,
	}, a.done
}

// Collect drains stream into a Result. A stream that ends without a terminal
// chunk and without an error reports interactions.ErrStreamEndedEarly.
func Collect(stream *interactions.Stream[StreamEvent]) (*Result, error) {
	var acc Accumulator
	for ev := range stream.Events() {
		acc.Add(ev.Chunk)
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	res, done := acc.Result()
	if !done {
		return nil, interactions.ErrStreamEndedEarly
	}
	return res, nil
}
