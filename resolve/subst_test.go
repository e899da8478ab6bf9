package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/jaq/ast"
	"github.com/opal-lang/jaq/ir"
)

func TestSubstIdentityLeavesLiteralsAlone(t *testing.T) {
	f := &ir.Filter{Kind: ir.KindInt, Int: 7}
	got := subst(f, 0, func(_, v int) int { return v }, func(_, a int) *ir.Filter { return nil })
	assert.Same(t, f, got, "literal nodes are returned unchanged by subst")
}

func TestSubstThreadsBinderDepthThroughPipe(t *testing.T) {
	// Pipe(Var(0), binds=true, Var(0)): the left Var(0) sees vs=0, the
	// right Var(0) sees vs=1 since it is inside the new binder.
	f := &ir.Filter{
		Kind:  ir.KindPipe,
		Left:  &ir.Filter{Kind: ir.KindVar, Index: 0},
		Binds: true,
		Right: &ir.Filter{Kind: ir.KindVar, Index: 0},
	}

	var seenLeft, seenRight int
	fv := func(vs, v int) int {
		if vs == 0 {
			seenLeft = vs
		} else {
			seenRight = vs
		}
		return v
	}
	subst(f, 0, fv, func(_, a int) *ir.Filter { return nil })

	assert.Equal(t, 0, seenLeft)
	assert.Equal(t, 1, seenRight)
}

func TestSubstCousinLiftsOuterVarsPastCousinVars(t *testing.T) {
	// Cousin body `Var(0)` outside every binder of that body refers to a
	// variable bound outside the cousin, so it is lifted past the
	// cousinVars variables in scope at the call site.
	body := &ir.Filter{Kind: ir.KindVar, Index: 0}
	got := substCousin(body, 3, nil)
	require.Equal(t, ir.KindVar, got.Kind)
	assert.Equal(t, 3, got.Index, "a var bound outside the cousin is lifted by cousinVars")
}

func TestWrapVarBindersLeftmostOutermost(t *testing.T) {
	args := []ast.Arg{ast.NewVarArg("a"), ast.NewFilterArg("g"), ast.NewVarArg("b")}
	body := &ir.Filter{Kind: ir.KindVar, Index: 1} // refers to $a; $b, bound innermost, is Var(0)

	got := wrapVarBinders(args, body)

	require.Equal(t, ir.KindPipe, got.Kind)
	assert.Equal(t, 0, got.Left.Index, "leftmost variable-parameter (a) is bound outermost, at Arg(0)")
	assert.True(t, got.Binds)

	inner := got.Right
	require.Equal(t, ir.KindPipe, inner.Kind)
	assert.Equal(t, 2, inner.Left.Index, "b is the third parameter, Arg(2)")
	assert.Same(t, body, inner.Right)
}
