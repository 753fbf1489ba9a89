// ABOUTME: Client-side function contract for the auto-function loop
// ABOUTME: Callable pairs a declaration with an invoker; Func and Typed adapt plain Go functions

package functions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
)

// Callable is a function the model can invoke. Call receives the raw
// arguments object and returns a JSON result; implementations must tolerate
// cancellation of ctx mid-flight.
type Callable interface {
	Declaration() interactions.FunctionDeclaration
	Call(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

// CallFunc is the signature adapted by Func.
type CallFunc func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

type funcCallable struct {
	decl interactions.FunctionDeclaration
	fn   CallFunc
}

// Func wraps a raw JSON handler. parameters may be nil for functions that
// take no arguments.
func Func(name, description string, parameters json.RawMessage, fn CallFunc) Callable {
	return &funcCallable{
		decl: interactions.FunctionDeclaration{Name: name, Description: description, Parameters: parameters},
		fn:   fn,
	}
}

func (f *funcCallable) Declaration() interactions.FunctionDeclaration { return f.decl }

func (f *funcCallable) Call(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	return f.fn(ctx, args)
}

type typedCallable[In, Out any] struct {
	decl interactions.FunctionDeclaration
	fn   func(context.Context, In) (Out, error)
}

// Typed adapts a strongly typed function. The parameter schema is derived
// from In's exported fields and their json tags; Out is marshalled as the
// result.
func Typed[In, Out any](name, description string, fn func(context.Context, In) (Out, error)) (Callable, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("deriving schema for %s: %w", name, err)
	}
	params, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encoding schema for %s: %w", name, err)
	}
	return &typedCallable[In, Out]{
		decl: interactions.FunctionDeclaration{Name: name, Description: description, Parameters: params},
		fn:   fn,
	}, nil
}

// MustTyped is Typed for package-level wiring; it panics on schema errors.
func MustTyped[In, Out any](name, description string, fn func(context.Context, In) (Out, error)) Callable {
	c, err := Typed(name, description, fn)
	if err != nil {
		panic(err)
	}
	return c
}

func (t *typedCallable[In, Out]) Declaration() interactions.FunctionDeclaration { return t.decl }

func (t *typedCallable[In, Out]) Call(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var in In
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("parsing %s arguments: %w", t.decl.Name, err)
		}
	}
	out, err := t.fn(ctx, in)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding %s result: %w", t.decl.Name, err)
	}
	return raw, nil
}
