// ABOUTME: Feeds buffered results and streaming runs into a Formatter
// ABOUTME: Drive returns the folded result so callers see the same shape either way

package output

import (
	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions/autofunc"
)

// Report replays a buffered run.
func Report(res *autofunc.Result, f Formatter) {
	f.Start()
	for _, exec := range res.Executions {
		f.FunctionCall(autofunc.PendingCall{Name: exec.Name, CallID: exec.CallID, Args: exec.Args})
		f.FunctionResult(exec)
	}
	if res.Interaction != nil {
		f.Text(res.Interaction.Text())
	}
	f.End(res)
}

// Drive consumes a streaming run, forwarding text deltas as they arrive.
func Drive(stream *interactions.Stream[autofunc.StreamEvent], f Formatter) (*autofunc.Result, error) {
	var acc autofunc.Accumulator

	f.Start()
	for ev := range stream.Events() {
		acc.Add(ev.Chunk)
		switch c := ev.Chunk.(type) {
		case autofunc.DeltaChunk:
			if t, ok := c.Content.(interactions.TextContent); ok {
				f.Text(t.Text)
			}
		case autofunc.ExecutingFunctionsChunk:
			for _, call := range c.PendingCalls {
				f.FunctionCall(call)
			}
		case autofunc.FunctionResultsChunk:
			for _, r := range c.Results {
				f.FunctionResult(r)
			}
		}
	}

	if err := stream.Err(); err != nil {
		f.Error(err)
		f.End(nil)
		return nil, err
	}
	res, done := acc.Result()
	if !done {
		f.Error(interactions.ErrStreamEndedEarly)
		f.End(nil)
		return nil, interactions.ErrStreamEndedEarly
	}
	f.End(res)
	return res, nil
}
