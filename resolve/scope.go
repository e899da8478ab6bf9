package resolve

import (
	"github.com/opal-lang/jaq/ast"
	"github.com/opal-lang/jaq/ir"
)

// childKey indexes a compiled nested def by name and arity, the same key
// a cousin call is looked up by.
type childKey struct {
	name  string
	arity int
}

// frame is a Parent scope: one open `def`, its formal parameters, the
// table slot reserved for its body, and the already-closed nested defs
// visible to calls from inside it (and from its own body, and from
// cousins further in).
type frame struct {
	name     string
	args     []ast.Arg
	id       int
	children map[childKey]int
}

// argIndex returns the position of a filter- or variable-parameter named
// name among f.args, regardless of kind: both share one index space.
func (f *frame) argIndex(name string) (int, bool) {
	for i, a := range f.args {
		if a.Name() == name {
			return i, true
		}
	}
	return 0, false
}

// varCount returns how many of f.args are variable-parameters.
func (f *frame) varCount() int {
	n := 0
	for _, a := range f.args {
		if a.IsVar() {
			n++
		}
	}
	return n
}

// scopeStack is the definition compiler's lexical state: the stack of
// open Parent frames, outer-to-inner, plus the append-only IR table
// shared across the whole compilation. A slot is reserved the moment its
// def opens so recursive calls can reference it before the body is done.
type scopeStack struct {
	frames []*frame
	table  []*ir.Filter
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

// open reserves a table slot and pushes a new frame for def(name, args).
func (s *scopeStack) open(name string, args []ast.Arg) *frame {
	id := len(s.table)
	s.table = append(s.table, nil)
	f := &frame{name: name, args: args, id: id, children: make(map[childKey]int)}
	s.frames = append(s.frames, f)
	return f
}

// close pops the innermost frame, wraps body with its variable-parameter
// binders, stores the result in the reserved slot, and registers
// (name, arity) in the new innermost frame's children (if any frame
// remains). Re-closing the same (name, arity) under one parent
// overwrites the earlier entry: last definition wins.
func (s *scopeStack) close(body *ir.Filter) int {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]

	s.table[f.id] = wrapVarBinders(f.args, body)

	if len(s.frames) > 0 {
		parent := s.frames[len(s.frames)-1]
		parent.children[childKey{f.name, len(f.args)}] = f.id
	}
	return f.id
}

// top returns the innermost open frame, or nil if none is open.
func (s *scopeStack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// allVars lists every variable-parameter name across open frames,
// outer-to-inner.
func (s *scopeStack) allVars() []string {
	var names []string
	for _, f := range s.frames {
		for _, a := range f.args {
			if a.IsVar() {
				names = append(names, a.VarName())
			}
		}
	}
	return names
}

// resolveCousin walks frames innermost-to-outermost looking for a
// compiled sibling (name, arity). localVars is the number of pipe/fold
// binders already pushed inside the current body at the call site. The
// returned cousinVars is the number of variables in scope at the call
// site that the cousin's stored body does not already account for:
// localVars plus the variable-parameter count of every frame strictly
// between the call site and the frame the cousin was found in.
func (s *scopeStack) resolveCousin(name string, arity, localVars int) (id, cousinVars int, ok bool) {
	vars := localVars
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if slot, found := f.children[childKey{name, arity}]; found {
			return slot, vars, true
		}
		vars += f.varCount()
	}
	return 0, 0, false
}

// wrapVarBinders wraps body with one Pipe(Arg(i), binds=true, ·) per
// variable-parameter in args, processed in reverse source order so the
// leftmost variable-parameter ends up outermost: the wrap for the
// rightmost variable-parameter applies first and so is nearest body,
// landing at Var(0) once the wrapping is complete.
func wrapVarBinders(args []ast.Arg, body *ir.Filter) *ir.Filter {
	acc := body
	for i := len(args) - 1; i >= 0; i-- {
		if !args[i].IsVar() {
			continue
		}
		acc = &ir.Filter{
			Kind:  ir.KindPipe,
			Left:  &ir.Filter{Kind: ir.KindArg, Index: i},
			Binds: true,
			Right: acc,
		}
	}
	return acc
}
