// ABOUTME: Concurrent execution of one turn's function calls via errgroup
// ABOUTME: Missing functions, errors and panics become error-shaped results instead of failures

package autofunc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions/functions"
)

// execute runs calls concurrently. results[i] answers calls[i]; each result
// carries its call id, which is what the next turn correlates on.
func (r *Runner) execute(ctx context.Context, calls []PendingCall) []FunctionExecutionResult {
	results := make([]FunctionExecutionResult, len(calls))
	if len(calls) == 1 {
		results[0] = r.executeOne(ctx, calls[0])
		return results
	}

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, call := range calls {
		g.Go(func() error {
			results[i] = r.executeOne(ctx, call)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// executeOne never fails: every outcome is encoded in the result.
func (r *Runner) executeOne(ctx context.Context, call PendingCall) FunctionExecutionResult {
	res := FunctionExecutionResult{Name: call.Name, CallID: call.CallID, Args: call.Args}
	log := r.logger.With(zap.String("function", call.Name), zap.String("call_id", call.CallID))

	fn, ok := r.registry.Lookup(call.Name)
	if !ok {
		res.Result = functions.NotAvailableResult(call.Name)
		r.metrics.calls.WithLabelValues(call.Name, outcomeNotFound).Inc()
		log.Warn("function not available", zap.Strings("did_you_mean", r.registry.Suggest(call.Name, 3)))
		return res
	}

	start := time.Now()
	out, panicked, err := invoke(ctx, fn, call.Args)
	res.Duration = time.Since(start)
	r.metrics.duration.WithLabelValues(call.Name).Observe(res.Duration.Seconds())

	outcome := outcomeOK
	switch {
	case panicked:
		outcome = outcomePanic
		res.Result = functions.ErrorResult(err.Error())
		log.Error("function panicked", zap.Error(err))
	case err != nil:
		outcome = outcomeError
		res.Result = functions.ErrorResult(err.Error())
		log.Warn("function failed", zap.Error(err), zap.Duration("duration", res.Duration))
	case len(out) == 0:
		res.Result = json.RawMessage(`{}`)
	case !json.Valid(out):
		outcome = outcomeError
		res.Result = functions.ErrorResult(call.Name + " returned invalid JSON")
		log.Warn("function returned invalid JSON")
	default:
		res.Result = out
	}
	r.metrics.calls.WithLabelValues(call.Name, outcome).Inc()
	log.Debug("function executed", zap.String("outcome", outcome), zap.Duration("duration", res.Duration))

	return res
}

func invoke(ctx context.Context, fn functions.Callable, args json.RawMessage) (out json.RawMessage, panicked bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, panicked, err = nil, true, fmt.Errorf("panic: %v", rec)
		}
	}()
	out, err = fn.Call(ctx, args)
	return out, false, err
}
