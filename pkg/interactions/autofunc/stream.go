// ABOUTME: Streaming variant of the auto-function loop
// ABOUTME: Forwards deltas live, reconciles calls from the final turn with calls seen in deltas

package autofunc

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
)

// RunStream executes the loop over streamed turns. The stream ends with a
// CompleteChunk or a MaxLoopsReachedChunk on success; transport failures and
// server error chunks end it with an error.
func (r *Runner) RunStream(ctx context.Context, req *interactions.CreateInteractionRequest) *interactions.Stream[StreamEvent] {
	base, err := r.prepare(req)
	if err != nil {
		return interactions.FailedStream[StreamEvent](err)
	}

	out := interactions.NewStream[StreamEvent](streamBufferSize)
	go func() {
		out.Finish(r.runStream(ctx, base, out))
	}()
	return out
}

func (r *Runner) runStream(ctx context.Context, base *interactions.CreateInteractionRequest, out *interactions.Stream[StreamEvent]) error {
	emit := func(c Chunk, eventID string) error {
		if !out.Send(ctx, StreamEvent{Chunk: c, EventID: eventID}) {
			return fmt.Errorf("delivering %s chunk: %w", c.ChunkType(), context.Cause(ctx))
		}
		return nil
	}

	next := base
	var last *interactions.Interaction

	for iter := range r.maxIterations {
		r.metrics.iterations.Inc()

		resp, streamed, err := r.streamTurn(ctx, next, emit)
		if err != nil {
			return err
		}
		last = resp

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			calls = streamed
		}
		pending, err := pendingCalls(calls)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			r.logger.Debug("stream loop finished", zap.Int("iterations", iter+1))
			return emit(CompleteChunk{Interaction: resp}, "")
		}
		if resp.ID == "" {
			return ErrMissingInteractionID
		}

		if err := emit(ExecutingFunctionsChunk{Response: resp, PendingCalls: pending}, ""); err != nil {
			return err
		}
		results := r.execute(ctx, pending)
		if err := emit(FunctionResultsChunk{Results: results}, ""); err != nil {
			return err
		}
		next = followUp(base, resp.ID, results)
	}

	r.metrics.maxLoops.Inc()
	r.logger.Warn("iteration cap reached", zap.Int("max_iterations", r.maxIterations))
	return emit(MaxLoopsReachedChunk{Interaction: last}, "")
}

// streamTurn sends one turn, forwarding its deltas, and returns the final
// interaction plus any calls reassembled from deltas.
func (r *Runner) streamTurn(
	ctx context.Context,
	req *interactions.CreateInteractionRequest,
	emit func(Chunk, string) error,
) (*interactions.Interaction, []interactions.FunctionCallInfo, error) {
	stream := r.sender.CreateStream(ctx, req)
	deltas := newDeltaCalls()

	var (
		final     *interactions.Interaction
		startedID string
	)
	for ev := range stream.Events() {
		switch c := ev.Chunk.(type) {
		case interactions.StartChunk:
			if c.Interaction != nil {
				startedID = c.Interaction.ID
			}
		case interactions.StatusUpdateChunk:
			if startedID == "" {
				startedID = c.InteractionID
			}
		case interactions.DeltaChunk:
			deltas.add(c.Index, c.Content)
			if err := emit(DeltaChunk{Index: c.Index, Content: c.Content}, ev.EventID); err != nil {
				return nil, nil, err
			}
		case interactions.CompleteChunk:
			final = c.Interaction
		}
	}
	if err := stream.Err(); err != nil {
		return nil, nil, err
	}
	if final == nil {
		return nil, nil, fmt.Errorf("interaction stream: %w", interactions.ErrStreamEndedEarly)
	}
	if final.ID == "" && startedID != "" {
		withID := *final
		withID.ID = startedID
		final = &withID
	}
	return final, deltas.calls(), nil
}
