// Package ops exposes the calculators as named operations that take and
// return IR objects, so the engine can journal them.
package ops

import (
	"fmt"
	"slices"

	"github.com/roach88/digilab/internal/ir"
)

// Handler runs an operation. Calculation failures are returned as
// *bits.Error; malformed arguments as *ArgError.
type Handler func(args ir.IRObject) (ir.IRObject, error)

// Op is a registered operation.
type Op struct {
	Sig     ir.OpSig
	Handler Handler
}

// Registry maps operation names to handlers.
type Registry struct {
	ops    map[string]Op
	limits Limits
}

// NewRegistry returns a registry holding every built-in operation, bounded
// by limits.
func NewRegistry(limits Limits) *Registry {
	r := &Registry{ops: make(map[string]Op), limits: limits}
	for _, b := range r.builtins() {
		if err := r.Register(b.Sig, b.Handler); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds an operation. The signature must validate and the name
// must be unused.
func (r *Registry) Register(sig ir.OpSig, h Handler) error {
	if errs := sig.Validate(); len(errs) > 0 {
		return fmt.Errorf("register %q: %w", sig.Name, errs[0])
	}
	if _, dup := r.ops[sig.Name]; dup {
		return fmt.Errorf("register %q: already registered", sig.Name)
	}
	r.ops[sig.Name] = Op{Sig: sig, Handler: h}
	return nil
}

// Lookup returns the operation called name.
func (r *Registry) Lookup(name string) (Op, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns every operation name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for n := range r.ops {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Sigs returns every signature, sorted by name.
func (r *Registry) Sigs() []ir.OpSig {
	sigs := make([]ir.OpSig, 0, len(r.ops))
	for _, n := range r.Names() {
		sigs = append(sigs, r.ops[n].Sig)
	}
	return sigs
}

// Limits returns the registry's operand limits.
func (r *Registry) Limits() Limits {
	return r.limits
}
