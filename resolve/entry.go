// Package resolve lowers a parsed ast.Module or a single def body into
// name-free ir.Filter trees: every variable, argument, and call is
// replaced by a positional reference, and nested definitions are
// compiled into a flat, append-only table addressable by slot id.
package resolve

import (
	"github.com/opal-lang/jaq/ast"
	"github.com/opal-lang/jaq/builtins"
	"github.com/opal-lang/jaq/ir"
)

// Def is the expression-compiler entry point: compile a single def body
// against an externally supplied scope — a built-in lookup, a fixed
// parameter list, and variables already bound by the caller. It applies
// the same variable-parameter wrapping Module does for a user def, so
// the result can be invoked the same way regardless of which entry
// point produced it.
func Def(lookup builtins.Lookup, preBoundVars []string, args []ast.Arg, body ast.Expr, diags *Diagnostics) *ir.Filter {
	argNames := make([]string, len(args))
	for i, a := range args {
		argNames[i] = a.Name()
	}

	t := &translator{
		diags:    diags,
		log:      newLogger(),
		argNames: argNames,
		vars:     preBoundVars,
		builtins: lookup,
	}

	bodyIR := t.translate(body, nil)
	return wrapVarBinders(args, bodyIR)
}

// Module is the definition-compiler entry point: compile every
// top-level def — and, depth-first in source order, their nested defs —
// into a flat table, then compile the module body against the fully
// populated top-level scope. Top-level defs are mutual cousins of one
// another in source order: a def may call any def that closed before
// it, never one that follows.
func Module(mod *ast.Module, diags *Diagnostics) (table []*ir.Filter, top *ir.Filter) {
	return ModuleWithLimits(mod, 0, diags)
}

// ModuleWithLimits is Module with a host-configured bound on def
// nesting depth (e.g. config.Config.MaxDefDepth). maxDefDepth <= 0
// means unbounded, matching Module's behavior. A def whose frame would
// open past the limit is left uncompiled and never registered as a
// cousin, so calls to it (and to anything nested inside it) fail to
// resolve exactly like a call to an undefined name.
func ModuleWithLimits(mod *ast.Module, maxDefDepth int, diags *Diagnostics) (table []*ir.Filter, top *ir.Filter) {
	scope := newScopeStack()
	// The root frame holds no def of its own; it only accumulates
	// top-level defs into its children map so they are visible to
	// later siblings and to the module body as cousins.
	scope.frames = append(scope.frames, &frame{children: make(map[childKey]int)})

	t := &translator{diags: diags, log: newLogger(), scope: scope, maxDefDepth: maxDefDepth}

	for _, def := range mod.Defs {
		t.compileDef(def)
	}
	top = t.translate(mod.Body, nil)
	return scope.table, top
}

// compileDef drives one def through the scope manager (§4.4): open,
// recurse into nested defs depth-first in source order, translate the
// body, close.
func (t *translator) compileDef(def *ast.Def) {
	// frames[0] is the synthetic root installed by ModuleWithLimits and
	// holds no def of its own, so it does not count against the limit: a
	// top-level def opens at depth 1.
	depth := len(t.scope.frames)
	if t.maxDefDepth > 0 && depth > t.maxDefDepth {
		t.log.Debug("def nesting exceeds configured limit", "name", def.Name, "depth", depth, "limit", t.maxDefDepth)
		t.diags.add(def.Span, "definition nesting exceeds configured limit", "")
		return
	}

	t.scope.open(def.Name, def.Args)
	for _, nested := range def.Defs {
		t.compileDef(nested)
	}
	body := t.translate(def.Body, nil)
	t.scope.close(body)
}
