// ABOUTME: Explicit function registry built at wiring time and read during conversations
// ABOUTME: Provides Lookup/Declarations/Names plus fuzzy suggestions for misspelled calls

package functions

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions"
)

// ErrDuplicate is returned when a name is registered twice.
var ErrDuplicate = errors.New("function already registered")

// Registry maps function names to callables. Register everything before the
// first conversation; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Callable
}

// NewRegistry creates a registry holding the given callables.
func NewRegistry(callables ...Callable) (*Registry, error) {
	r := &Registry{funcs: make(map[string]Callable, len(callables))}
	for _, c := range callables {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a callable. Names must be non-empty and unique.
func (r *Registry) Register(c Callable) error {
	name := c.Declaration().Name
	if name == "" {
		return fmt.Errorf("registering function: %w", interactions.ErrInvalidRequest)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.funcs[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicate)
	}
	r.funcs[name] = c
	return nil
}

// Lookup returns the callable registered under name.
func (r *Registry) Lookup(name string) (Callable, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.funcs[name]
	return c, ok
}

// Names returns registered names sorted for deterministic output.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns every declaration, sorted by name.
func (r *Registry) Declarations() []interactions.FunctionDeclaration {
	names := r.Names()
	decls := make([]interactions.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		c, _ := r.Lookup(name)
		decls = append(decls, c.Declaration())
	}
	return decls
}

// Tools returns the declarations wrapped as function tools.
func (r *Registry) Tools() []interactions.Tool {
	decls := r.Declarations()
	tools := make([]interactions.Tool, 0, len(decls))
	for _, d := range decls {
		tools = append(tools, interactions.FunctionTool(d))
	}
	return tools
}

// Len reports how many functions are registered.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Suggest returns up to limit registered names that fuzzily match name,
// best match first. Used to enrich "not available" diagnostics.
func (r *Registry) Suggest(name string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}
	matches := fuzzy.Find(name, r.Names())
	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
