// ABOUTME: Result, execution record and streaming chunk types of the auto-function loop
// ABOUTME: Chunks are a sealed set; only forwarded deltas carry a server event id

package autofunc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions/functions"
)

var (
	// ErrMissingCallID means the model requested a call without a correlation
	// id; its result could never be matched, so the loop stops before running
	// anything.
	ErrMissingCallID = errors.New("function call has no id")

	// ErrMissingInteractionID means a turn requesting calls came back without
	// an id (store=false), so results cannot be chained to it.
	ErrMissingInteractionID = errors.New("interaction has no id to continue from")
)

// Sender is the transport the loop drives. *interactions.Client satisfies it.
type Sender interface {
	Create(ctx context.Context, req *interactions.CreateInteractionRequest) (*interactions.Interaction, error)
	CreateStream(ctx context.Context, req *interactions.CreateInteractionRequest) *interactions.Stream[interactions.StreamEvent]
}

var _ Sender = (*interactions.Client)(nil)

// PendingCall is a resolved call awaiting execution.
type PendingCall struct {
	Name   string          `json:"name"`
	CallID string          `json:"call_id"`
	Args   json.RawMessage `json:"args"`
}

// FunctionExecutionResult records one executed call. Failures are encoded in
// Result as {"error": ...}.
type FunctionExecutionResult struct {
	Name     string          `json:"name"`
	CallID   string          `json:"call_id"`
	Args     json.RawMessage `json:"args"`
	Result   json.RawMessage `json:"result"`
	Duration time.Duration   `json:"duration"`
}

// IsError reports whether the result is error-shaped.
func (r FunctionExecutionResult) IsError() bool { return functions.IsErrorResult(r.Result) }

// Result is the outcome of a loop. When ReachedMaxLoops is set, Interaction
// is the last turn and still holds the calls that were never answered.
type Result struct {
	Interaction     *interactions.Interaction
	Executions      []FunctionExecutionResult
	ReachedMaxLoops bool
}

// Chunk type tags.
const (
	ChunkTypeDelta              = "delta"
	ChunkTypeExecutingFunctions = "executing_functions"
	ChunkTypeFunctionResults    = "function_results"
	ChunkTypeComplete           = "complete"
	ChunkTypeMaxLoopsReached    = "max_loops_reached"
)

// Chunk is one event of a streaming run.
type Chunk interface {
	ChunkType() string
	isChunk()
}

// StreamEvent pairs a chunk with the server event id it came from, if any.
type StreamEvent struct {
	Chunk   Chunk
	EventID string
}

// DeltaChunk is an incremental output part forwarded from the server stream.
type DeltaChunk struct {
	Index   int
	Content interactions.Content
}

// ExecutingFunctionsChunk is emitted before a batch of calls runs.
type ExecutingFunctionsChunk struct {
	Response     *interactions.Interaction
	PendingCalls []PendingCall
}

// FunctionResultsChunk carries the results of one batch.
type FunctionResultsChunk struct {
	Results []FunctionExecutionResult
}

// CompleteChunk ends a run whose last turn requested no calls.
type CompleteChunk struct {
	Interaction *interactions.Interaction
}

// MaxLoopsReachedChunk ends a run that hit the iteration cap.
type MaxLoopsReachedChunk struct {
	Interaction *interactions.Interaction
}

func (DeltaChunk) ChunkType() string              { return ChunkTypeDelta }
func (ExecutingFunctionsChunk) ChunkType() string { return ChunkTypeExecutingFunctions }
func (FunctionResultsChunk) ChunkType() string    { return ChunkTypeFunctionResults }
func (CompleteChunk) ChunkType() string           { return ChunkTypeComplete }
func (MaxLoopsReachedChunk) ChunkType() string    { return ChunkTypeMaxLoopsReached }

func (DeltaChunk) isChunk()              {}
func (ExecutingFunctionsChunk) isChunk() {}
func (FunctionResultsChunk) isChunk()    {}
func (CompleteChunk) isChunk()           {}
func (MaxLoopsReachedChunk) isChunk()    {}
