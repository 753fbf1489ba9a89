// ABOUTME: Auto-function loop: send a turn, execute requested calls, chain results, repeat
// ABOUTME: Stops when a turn requests no calls or the iteration cap is hit (a result, not an error)

package autofunc

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
	"github.com/mauromedda/genai-interactions-go/pkg/interactions/functions"
)

// DefaultMaxIterations bounds how many turns one run may send.
const DefaultMaxIterations = 5

const streamBufferSize = 64

// Runner drives the auto-function loop for one registry. A Runner holds no
// per-run state and may serve concurrent runs.
type Runner struct {
	sender        Sender
	registry      *functions.Registry
	maxIterations int
	concurrency   int
	logger        *zap.Logger
	metrics       *metrics
}

type runnerConfig struct {
	maxIterations int
	concurrency   int
	logger        *zap.Logger
	registerer    prometheus.Registerer
}

// Option configures a Runner.
type Option func(*runnerConfig)

// WithMaxIterations caps the number of turns per run. Values below one are ignored.
func WithMaxIterations(n int) Option {
	return func(c *runnerConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithConcurrency limits how many calls of one turn run at once. Zero means
// no limit.
func WithConcurrency(n int) Option {
	return func(c *runnerConfig) { c.concurrency = n }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *runnerConfig) { c.logger = l }
}

// WithMetrics registers the runner's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *runnerConfig) { c.registerer = reg }
}

// New creates a Runner sending turns through sender and resolving calls in registry.
func New(sender Sender, registry *functions.Registry, opts ...Option) *Runner {
	cfg := runnerConfig{maxIterations: DefaultMaxIterations, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return &Runner{
		sender:        sender,
		registry:      registry,
		maxIterations: cfg.maxIterations,
		concurrency:   cfg.concurrency,
		logger:        cfg.logger.Named("autofunc"),
		metrics:       newMetrics(cfg.registerer),
	}
}

// MaxIterations reports the configured cap.
func (r *Runner) MaxIterations() int { return r.maxIterations }

// Run executes the loop with buffered turns. Transport errors are returned
// unmodified; function failures are fed back to the model as error results.
func (r *Runner) Run(ctx context.Context, req *interactions.CreateInteractionRequest) (*Result, error) {
	base, err := r.prepare(req)
	if err != nil {
		return nil, err
	}

	var (
		next       = base
		last       *interactions.Interaction
		executions []FunctionExecutionResult
	)

	for iter := range r.maxIterations {
		r.metrics.iterations.Inc()

		resp, err := r.sender.Create(ctx, next)
		if err != nil {
			return nil, err
		}
		last = resp

		pending, err := pendingCalls(resp.FunctionCalls())
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			r.logger.Debug("loop finished", zap.Int("iterations", iter+1), zap.Int("executions", len(executions)))
			return &Result{Interaction: resp, Executions: executions}, nil
		}
		if resp.ID == "" {
			return nil, ErrMissingInteractionID
		}

		r.logger.Debug("executing functions",
			zap.Int("iteration", iter+1),
			zap.String("interaction_id", resp.ID),
			zap.Int("calls", len(pending)),
		)
		results := r.execute(ctx, pending)
		executions = append(executions, results...)
		next = followUp(base, resp.ID, results)
	}

	r.metrics.maxLoops.Inc()
	r.logger.Warn("iteration cap reached",
		zap.Int("max_iterations", r.maxIterations),
		zap.Int("executions", len(executions)),
	)
	return &Result{Interaction: last, Executions: executions, ReachedMaxLoops: true}, nil
}

// prepare validates req and returns a copy carrying the registry's
// declarations when req declares no functions itself.
func (r *Runner) prepare(req *interactions.CreateInteractionRequest) (*interactions.CreateInteractionRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	base := *req
	if !base.HasFunctionTools() && r.registry.Len() > 0 {
		tools := make([]interactions.Tool, 0, len(base.Tools)+r.registry.Len())
		tools = append(tools, base.Tools...)
		base.Tools = append(tools, r.registry.Tools()...)
	}
	return &base, nil
}

// pendingCalls resolves the calls of a turn. Every call needs an id.
func pendingCalls(calls []interactions.FunctionCallInfo) ([]PendingCall, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	out := make([]PendingCall, 0, len(calls))
	for _, c := range calls {
		if c.ID == "" {
			return nil, fmt.Errorf("function %q: %w", c.Name, ErrMissingCallID)
		}
		args := c.Args
		if len(args) == 0 || string(args) == "null" {
			args = []byte(`{}`)
		}
		out = append(out, PendingCall{Name: c.Name, CallID: c.ID, Args: args})
	}
	return out, nil
}

// followUp builds the next turn: the original configuration chained to
// prevID, with one function result part per executed call as input.
func followUp(base *interactions.CreateInteractionRequest, prevID string, results []FunctionExecutionResult) *interactions.CreateInteractionRequest {
	parts := make([]interactions.Content, 0, len(results))
	for _, res := range results {
		parts = append(parts, interactions.NewFunctionResult(res.Name, res.CallID, res.Result))
	}
	next := *base
	next.PreviousInteractionID = prevID
	next.Input = interactions.ContentInput(parts...)
	return &next
}
