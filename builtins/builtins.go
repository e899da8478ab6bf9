// Package builtins defines the shape of the built-in filter registry that
// the expression compiler (resolve.Def) consults for every call with
// arguments and for zero-arg calls it cannot bind to a supplied argument
// name. The definition compiler (resolve.Module) does not consult it.
// The registry's contents (the actual built-in filters) are
// a host concern; this package only fixes the lookup contract and
// provides a thread-safe default implementation.
package builtins

import (
	"sync"

	"github.com/opal-lang/jaq/ir"
)

// Lookup resolves a built-in by name and arity. A returned filter uses
// ir.Filter with Kind == ir.KindArg as placeholders for the i-th call
// argument and must contain no free ir.KindVar reference — resolve.Def
// substitutes those placeholders with the translated call arguments
// before the filter is used.
type Lookup func(name string, arity int) (*ir.Filter, bool)

// key identifies a built-in by name and arity, mirroring how user defs
// are keyed in the scope manager's Children map.
type key struct {
	name  string
	arity int
}

// Registry is a concurrency-safe built-in table, in the style of a
// database/sql driver registry: built-ins are registered once at
// program startup (typically from init funcs in host packages) and
// looked up many times, possibly from concurrent compilations.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]*ir.Filter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[key]*ir.Filter)}
}

// Register adds a built-in filter template under (name, arity).
// Re-registering the same (name, arity) overwrites the previous entry.
func (r *Registry) Register(name string, arity int, filter *ir.Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key{name, arity}] = filter
}

// Lookup implements the Lookup function type so a *Registry can be
// passed directly to resolve.Def / used to build a host's combined
// lookup function.
func (r *Registry) Lookup(name string, arity int) (*ir.Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.entries[key{name, arity}]
	return f, ok
}

// Names returns every registered built-in name, for "did you mean"
// suggestions. Arity is not encoded in the result; a name may appear
// once even if registered at several arities.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(r.entries))
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		if !seen[k.name] {
			seen[k.name] = true
			names = append(names, k.name)
		}
	}
	return names
}
