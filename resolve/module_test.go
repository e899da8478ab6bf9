package resolve_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opal-lang/jaq/ast"
	"github.com/opal-lang/jaq/ir"
	"github.com/opal-lang/jaq/resolve"
)

func num(text string) *ast.NumLit { return &ast.NumLit{Text: text} }

func irInt(v int) *ir.Filter      { return &ir.Filter{Kind: ir.KindInt, Int: v} }
func irFloat(v float64) *ir.Filter { return &ir.Filter{Kind: ir.KindFloat, Float: v} }

func compileModule(t *testing.T, mod *ast.Module) ([]*ir.Filter, *ir.Filter, *resolve.Diagnostics) {
	t.Helper()
	diags := &resolve.Diagnostics{}
	table, top := resolve.Module(mod, diags)
	return table, top, diags
}

func TestIdentity(t *testing.T) {
	_, top, diags := compileModule(t, &ast.Module{Body: &ast.Ident{}})
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}
	if diff := cmp.Diff(ir.Id(), top); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArithmetic(t *testing.T) {
	body := &ast.Binary{
		Op:      ast.BinMath,
		MathOpv: ast.MathAdd,
		Left:    num("1"),
		Right:   num("2.5"),
	}
	_, top, diags := compileModule(t, &ast.Module{Body: body})
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}
	want := &ir.Filter{Kind: ir.KindMath, Left: irInt(1), MathOp: ast.MathAdd, Right: irFloat(2.5)}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// def f: .+1; f
func TestNullaryDefIsAReference(t *testing.T) {
	f := &ast.Def{
		Name: "f",
		Body: &ast.Binary{Op: ast.BinMath, MathOpv: ast.MathAdd, Left: &ast.Ident{}, Right: num("1")},
	}
	mod := &ast.Module{Defs: []*ast.Def{f}, Body: &ast.Call{Name: "f"}}

	table, top, diags := compileModule(t, mod)
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}

	wantTable := []*ir.Filter{
		{Kind: ir.KindMath, Left: ir.Id(), MathOp: ast.MathAdd, Right: irInt(1)},
	}
	if diff := cmp.Diff(wantTable, table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	wantTop := &ir.Filter{Kind: ir.KindCall, Skip: 0, ID: 0}
	if diff := cmp.Diff(wantTop, top); diff != "" {
		t.Errorf("top mismatch (-want +got):\n%s", diff)
	}
}

// def f(g): g|g; f(.+1)
func TestCousinInliningWithFilterArg(t *testing.T) {
	f := &ast.Def{
		Name: "f",
		Args: []ast.Arg{ast.NewFilterArg("g")},
		Body: &ast.Binary{Op: ast.BinPipe, Left: &ast.Call{Name: "g"}, Right: &ast.Call{Name: "g"}},
	}
	arg := &ast.Binary{Op: ast.BinMath, MathOpv: ast.MathAdd, Left: &ast.Ident{}, Right: num("1")}
	mod := &ast.Module{Defs: []*ast.Def{f}, Body: &ast.Call{Name: "f", Args: []ast.Expr{arg}}}

	_, top, diags := compileModule(t, mod)
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}

	inlined := &ir.Filter{Kind: ir.KindMath, Left: ir.Id(), MathOp: ast.MathAdd, Right: irInt(1)}
	want := &ir.Filter{Kind: ir.KindPipe, Left: inlined, Binds: false, Right: inlined}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// def f($x): $x; f(1)
func TestCousinInliningWithVarArg(t *testing.T) {
	f := &ast.Def{
		Name: "f",
		Args: []ast.Arg{ast.NewVarArg("x")},
		Body: &ast.VarRef{Name: "x"},
	}
	mod := &ast.Module{Defs: []*ast.Def{f}, Body: &ast.Call{Name: "f", Args: []ast.Expr{num("1")}}}

	table, top, diags := compileModule(t, mod)
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}

	wantSlot := &ir.Filter{Kind: ir.KindPipe, Left: &ir.Filter{Kind: ir.KindArg, Index: 0}, Binds: true, Right: &ir.Filter{Kind: ir.KindVar, Index: 0}}
	if diff := cmp.Diff([]*ir.Filter{wantSlot}, table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	want := &ir.Filter{Kind: ir.KindPipe, Left: irInt(1), Binds: true, Right: &ir.Filter{Kind: ir.KindVar, Index: 0}}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("top mismatch (-want +got):\n%s", diff)
	}
}

// {a, b: 2}
func TestObjectShorthand(t *testing.T) {
	body := &ast.ObjectCons{Entries: []ast.ObjectEntry{
		{KeyStr: "a", HasKey: true},
		{KeyStr: "b", HasKey: true, Value: num("2")},
	}}
	_, top, diags := compileModule(t, &ast.Module{Body: body})
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}

	shorthand := &ir.Filter{
		Kind: ir.KindPath,
		Base: ir.Id(),
		Parts: []ir.PathPart{
			{Index: &ir.Filter{Kind: ir.KindStr, Str: "a"}},
		},
	}
	want := &ir.Filter{Kind: ir.KindObject, Entries: []ir.ObjectEntry{
		{Key: &ir.Filter{Kind: ir.KindStr, Str: "a"}, Value: shorthand},
		{Key: &ir.Filter{Kind: ir.KindStr, Str: "b"}, Value: irInt(2)},
	}}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUndefinedVariableDiagnostic(t *testing.T) {
	_, top, diags := compileModule(t, &ast.Module{Body: &ast.VarRef{Name: "x"}})

	want := &ir.Filter{Kind: ir.KindVar, Index: 0}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if len(diags.Items()) != 1 || diags.Items()[0].Message != "undefined variable" {
		t.Fatalf("expected exactly one undefined variable diagnostic, got %+v", diags.Items())
	}
}

func TestUnresolvedCallDiagnostic(t *testing.T) {
	_, top, diags := compileModule(t, &ast.Module{Body: &ast.Call{Name: "foo"}})

	if diff := cmp.Diff(ir.Id(), top); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if len(diags.Items()) != 1 || diags.Items()[0].Message != "could not find function" {
		t.Fatalf("expected exactly one could-not-find diagnostic, got %+v", diags.Items())
	}
}

func TestMalformedFloatDiagnostic(t *testing.T) {
	_, top, diags := compileModule(t, &ast.Module{Body: num("1e")})

	if diff := cmp.Diff(irFloat(0), top); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if len(diags.Items()) != 1 || diags.Items()[0].Message != "cannot interpret as floating-point number" {
		t.Fatalf("expected exactly one float-parse diagnostic, got %+v", diags.Items())
	}
}

// Open question: same-arity sibling redefinition overwrites (last wins).
func TestSameArityRedefinitionOverwrites(t *testing.T) {
	first := &ast.Def{Name: "f", Body: num("1")}
	second := &ast.Def{Name: "f", Body: num("2")}
	mod := &ast.Module{Defs: []*ast.Def{first, second}, Body: &ast.Call{Name: "f"}}

	table, top, diags := compileModule(t, mod)
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}
	if diff := cmp.Diff(irInt(2), table[1]); diff != "" {
		t.Errorf("second def mismatch (-want +got):\n%s", diff)
	}
	want := &ir.Filter{Kind: ir.KindCall, Skip: 0, ID: 1}
	if diff := cmp.Diff(want, top); diff != "" {
		t.Errorf("expected the call to resolve to the later definition:\n%s", diff)
	}
}

// Open question: self-recursion with arguments falls through to error.
func TestSelfRecursionWithArgumentsIsUnsupported(t *testing.T) {
	f := &ast.Def{
		Name: "f",
		Args: []ast.Arg{ast.NewFilterArg("x")},
		Body: &ast.Call{Name: "f", Args: []ast.Expr{&ast.Ident{}}},
	}
	mod := &ast.Module{Defs: []*ast.Def{f}, Body: &ast.Call{Name: "f", Args: []ast.Expr{&ast.Ident{}}}}

	table, _, diags := compileModule(t, mod)
	if len(diags.Items()) != 1 || diags.Items()[0].Message != "could not find function" {
		t.Fatalf("expected the recursive call inside f's own body to fail to resolve, got %+v", diags.Items())
	}
	if diff := cmp.Diff(ir.Id(), table[0]); diff != "" {
		t.Errorf("f's body mismatch (-want +got):\n%s", diff)
	}
}

// def f: if . == 0 then 0 else f end; f
func TestSelfRecursionResolvesToItself(t *testing.T) {
	f := &ast.Def{
		Name: "f",
		Body: &ast.If{
			Branches: []ast.IfThen{{
				If:   &ast.Binary{Op: ast.BinOrd, OrdOpv: ast.OrdEq, Left: &ast.Ident{}, Right: num("0")},
				Then: num("0"),
			}},
			Else: &ast.Call{Name: "f"},
		},
	}
	mod := &ast.Module{Defs: []*ast.Def{f}, Body: &ast.Call{Name: "f"}}

	table, _, diags := compileModule(t, mod)
	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}

	want := &ir.Filter{Kind: ir.KindCall, Skip: 0, ID: 0}
	if diff := cmp.Diff(want, table[0].Else); diff != "" {
		t.Errorf("recursive call mismatch (-want +got):\n%s", diff)
	}
}

// def f: def g: 1; g; f — with MaxDefDepth 1, the top-level def (depth
// 1) compiles but its nested def (depth 2) does not.
func TestModuleWithLimitsBlocksNestingPastMaxDepth(t *testing.T) {
	g := &ast.Def{Name: "g", Body: num("1")}
	f := &ast.Def{Name: "f", Defs: []*ast.Def{g}, Body: &ast.Call{Name: "g"}}
	mod := &ast.Module{Defs: []*ast.Def{f}, Body: &ast.Call{Name: "f"}}

	diags := &resolve.Diagnostics{}
	table, _ := resolve.ModuleWithLimits(mod, 1, diags)

	// g is blocked by the depth limit, then f's own call to g fails to
	// resolve exactly like a call to an undefined name.
	if len(diags.Items()) != 2 ||
		diags.Items()[0].Message != "definition nesting exceeds configured limit" ||
		diags.Items()[1].Message != "could not find function" {
		t.Fatalf("expected a nesting-limit diagnostic followed by an unresolved-call diagnostic, got %+v", diags.Items())
	}
	if len(table) != 1 {
		t.Fatalf("expected only f's frame to reserve a table slot, got %d entries", len(table))
	}
	if diff := cmp.Diff(ir.Id(), table[0]); diff != "" {
		t.Errorf("f's body mismatch (-want +got):\n%s", diff)
	}
}

// With MaxDefDepth 2, both the top-level def and its one nested def fit.
func TestModuleWithLimitsAllowsNestingUpToMaxDepth(t *testing.T) {
	g := &ast.Def{Name: "g", Body: num("1")}
	f := &ast.Def{Name: "f", Defs: []*ast.Def{g}, Body: &ast.Call{Name: "g"}}
	mod := &ast.Module{Defs: []*ast.Def{f}, Body: &ast.Call{Name: "f"}}

	diags := &resolve.Diagnostics{}
	table, top := resolve.ModuleWithLimits(mod, 2, diags)

	if !diags.Empty() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Items())
	}
	// f's slot (0) holds a reference to g's slot (1); the module body
	// references f's slot.
	wantF := &ir.Filter{Kind: ir.KindCall, Skip: 0, ID: 1}
	if diff := cmp.Diff(wantF, table[0]); diff != "" {
		t.Errorf("f's body mismatch (-want +got):\n%s", diff)
	}
	wantTop := &ir.Filter{Kind: ir.KindCall, Skip: 0, ID: 0}
	if diff := cmp.Diff(wantTop, top); diff != "" {
		t.Errorf("top mismatch (-want +got):\n%s", diff)
	}
}
