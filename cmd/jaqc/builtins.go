package main

import (
	"github.com/opal-lang/jaq/ast"
	"github.com/opal-lang/jaq/builtins"
	"github.com/opal-lang/jaq/ir"
)

// defaultBuiltins returns the registry the CLI's "def" mode resolves
// calls against. A production host would register a much larger table
// (typically from init funcs in per-feature packages, per the registry's
// own doc comment); this is enough to exercise the expression-compiler
// path end to end.
func defaultBuiltins() *builtins.Registry {
	r := builtins.NewRegistry()

	// increment: .+1
	r.Register("increment", 0, &ir.Filter{
		Kind: ir.KindMath, Left: ir.Id(), MathOp: ast.MathAdd, Right: &ir.Filter{Kind: ir.KindInt, Int: 1},
	})

	// plus(x): .+x
	r.Register("plus", 1, &ir.Filter{
		Kind: ir.KindMath, Left: ir.Id(), MathOp: ast.MathAdd, Right: &ir.Filter{Kind: ir.KindArg, Index: 0},
	})

	// select(f): if f then . else . end — a stand-in for jq's select,
	// minus the "empty" sink this module's IR has no node for.
	r.Register("select", 1, &ir.Filter{
		Kind: ir.KindIte,
		If:   &ir.Filter{Kind: ir.KindArg, Index: 0},
		Then: ir.Id(),
		Else: ir.Id(),
	})

	return r
}
