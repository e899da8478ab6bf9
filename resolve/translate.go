package resolve

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/opal-lang/jaq/ast"
	"github.com/opal-lang/jaq/builtins"
	"github.com/opal-lang/jaq/internal/invariant"
	"github.com/opal-lang/jaq/internal/suggest"
	"github.com/opal-lang/jaq/ir"
)

// translator is the single recursive expression translator shared by
// both entry points. Exactly one of the two scope representations is
// populated: scope for the definition compiler, argNames/vars/builtins
// for the expression compiler.
type translator struct {
	diags *Diagnostics
	log   *slog.Logger

	// definition-compiler mode.
	scope       *scopeStack
	maxDefDepth int // <= 0 means unbounded; see ModuleWithLimits.

	// expression-compiler mode (scope == nil).
	argNames []string
	vars     []string
	builtins builtins.Lookup
}

// translate lowers a single AST node. localVars is the ordered list of
// names bound by pipe/fold binders encountered so far while translating
// the enclosing def body; it grows only down the call tree, never
// across siblings.
func (t *translator) translate(e ast.Expr, localVars []string) *ir.Filter {
	switch n := e.(type) {
	case *ast.Ident:
		return ir.Id()

	case *ast.Recurse:
		return ir.RecurseFilter()

	case *ast.NumLit:
		return t.translateNum(n)

	case *ast.StrLit:
		return &ir.Filter{Kind: ir.KindStr, Str: n.Value}

	case *ast.VarRef:
		return t.resolveVar(n.Name, localVars, n.Position())

	case *ast.ArrayCons:
		var elem *ir.Filter
		if n.Elem != nil {
			elem = t.translate(n.Elem, localVars)
		}
		return &ir.Filter{Kind: ir.KindArray, Elem: elem}

	case *ast.ObjectCons:
		entries := make([]ir.ObjectEntry, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = t.translateObjectEntry(e, localVars)
		}
		return &ir.Filter{Kind: ir.KindObject, Entries: entries}

	case *ast.Unary:
		kind := ir.KindTry
		if n.Op == ast.UnaryNeg {
			kind = ir.KindNeg
		}
		return &ir.Filter{Kind: kind, Operand: t.translate(n.Expr, localVars)}

	case *ast.Binary:
		return t.translateBinary(n, localVars)

	case *ast.Fold:
		return t.translateFold(n, localVars)

	case *ast.If:
		return t.translateIf(n, localVars)

	case *ast.Call:
		return t.translateCall(n, localVars)

	case *ast.Path:
		return t.translatePath(n, localVars)

	default:
		invariant.Invariant(false, "unhandled ast node type %T", e)
		return ir.Id()
	}
}

func (t *translator) translateNum(n *ast.NumLit) *ir.Filter {
	if strings.ContainsAny(n.Text, ".eE") {
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			t.diags.add(n.Position(), "cannot interpret as floating-point number", "")
			return &ir.Filter{Kind: ir.KindFloat, Float: 0}
		}
		return &ir.Filter{Kind: ir.KindFloat, Float: f}
	}

	i, err := strconv.Atoi(n.Text)
	if err != nil {
		t.diags.add(n.Position(), "cannot interpret as machine-size integer", "")
		return &ir.Filter{Kind: ir.KindInt, Int: 0}
	}
	return &ir.Filter{Kind: ir.KindInt, Int: i}
}

func (t *translator) translateObjectEntry(e ast.ObjectEntry, localVars []string) ir.ObjectEntry {
	var key *ir.Filter
	if e.HasKey {
		key = &ir.Filter{Kind: ir.KindStr, Str: e.KeyStr}
	} else {
		key = t.translate(e.KeyExpr, localVars)
	}

	if e.Value != nil {
		return ir.ObjectEntry{Key: key, Value: t.translate(e.Value, localVars)}
	}

	// `{key}` shorthand: value is `.key`.
	value := &ir.Filter{
		Kind: ir.KindPath,
		Base: ir.Id(),
		Parts: []ir.PathPart{
			{Index: &ir.Filter{Kind: ir.KindStr, Str: e.KeyStr}},
		},
	}
	return ir.ObjectEntry{Key: key, Value: value}
}

func (t *translator) translateBinary(n *ast.Binary, localVars []string) *ir.Filter {
	switch n.Op {
	case ast.BinPipe:
		left := t.translate(n.Left, localVars)
		if n.HasBind {
			right := t.translate(n.Right, append(append([]string{}, localVars...), n.Bind))
			return &ir.Filter{Kind: ir.KindPipe, Left: left, Binds: true, Right: right}
		}
		return &ir.Filter{Kind: ir.KindPipe, Left: left, Binds: false, Right: t.translate(n.Right, localVars)}

	case ast.BinComma:
		return &ir.Filter{Kind: ir.KindComma, Left: t.translate(n.Left, localVars), Right: t.translate(n.Right, localVars)}

	case ast.BinAlt:
		return &ir.Filter{Kind: ir.KindAlt, Left: t.translate(n.Left, localVars), Right: t.translate(n.Right, localVars)}

	case ast.BinOr, ast.BinAnd:
		return &ir.Filter{Kind: ir.KindLogic, Left: t.translate(n.Left, localVars), Or: n.Op == ast.BinOr, Right: t.translate(n.Right, localVars)}

	case ast.BinMath:
		return &ir.Filter{Kind: ir.KindMath, Left: t.translate(n.Left, localVars), MathOp: n.MathOpv, Right: t.translate(n.Right, localVars)}

	case ast.BinOrd:
		return &ir.Filter{Kind: ir.KindOrd, Left: t.translate(n.Left, localVars), OrdOp: n.OrdOpv, Right: t.translate(n.Right, localVars)}

	case ast.BinAssign:
		return &ir.Filter{Kind: ir.KindAssign, Left: t.translate(n.Left, localVars), Right: t.translate(n.Right, localVars)}

	case ast.BinUpdate:
		return &ir.Filter{Kind: ir.KindUpdate, Left: t.translate(n.Left, localVars), Right: t.translate(n.Right, localVars)}

	case ast.BinUpdateWith:
		return &ir.Filter{Kind: ir.KindUpdateMath, Left: t.translate(n.Left, localVars), MathOp: n.MathOpv, Right: t.translate(n.Right, localVars)}

	default:
		invariant.Invariant(false, "unhandled binary op %v", n.Op)
		return ir.Id()
	}
}

func (t *translator) translateFold(n *ast.Fold, localVars []string) *ir.Filter {
	source := t.translate(n.Source, localVars)
	init := t.translate(n.Init, localVars)
	update := t.translate(n.Update, append(append([]string{}, localVars...), n.Bind))
	return &ir.Filter{Kind: ir.KindFold, FoldKind: n.Kind, Source: source, Init: init, Update: update}
}

func (t *translator) translateIf(n *ast.If, localVars []string) *ir.Filter {
	acc := t.translate(n.Else, localVars)
	for i := len(n.Branches) - 1; i >= 0; i-- {
		b := n.Branches[i]
		acc = &ir.Filter{Kind: ir.KindIte, If: t.translate(b.If, localVars), Then: t.translate(b.Then, localVars), Else: acc}
	}
	return acc
}

func (t *translator) translatePath(n *ast.Path, localVars []string) *ir.Filter {
	base := t.translate(n.BaseExpr, localVars)
	parts := make([]ir.PathPart, len(n.Parts))
	for i, p := range n.Parts {
		parts[i] = t.translatePathPart(p, localVars)
	}
	return &ir.Filter{Kind: ir.KindPath, Base: base, Parts: parts}
}

func (t *translator) translatePathPart(p ast.PathPart, localVars []string) ir.PathPart {
	if p.IsRange {
		var lower, upper *ir.Filter
		if p.Lower != nil {
			lower = t.translate(p.Lower, localVars)
		}
		if p.Upper != nil {
			upper = t.translate(p.Upper, localVars)
		}
		return ir.PathPart{IsRange: true, Lower: lower, Upper: upper, Optional: p.Optional}
	}
	return ir.PathPart{Index: t.translate(p.Index, localVars), Optional: p.Optional}
}

// baseVars is the portion of the variable environment that predates the
// expression currently being translated: the scope stack's
// variable-parameters in definition-compiler mode, or the externally
// supplied pre-bound names in expression-compiler mode.
func (t *translator) baseVars() []string {
	if t.scope != nil {
		return t.scope.allVars()
	}
	return t.vars
}

func (t *translator) resolveVar(name string, localVars []string, span ast.Span) *ir.Filter {
	all := append(append([]string{}, t.baseVars()...), localVars...)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i] == name {
			return &ir.Filter{Kind: ir.KindVar, Index: len(all) - 1 - i}
		}
	}
	t.log.Debug("undefined variable", "name", name)
	t.diags.add(span, "undefined variable", suggest.Closest(name, all))
	return &ir.Filter{Kind: ir.KindVar, Index: 0}
}

func (t *translator) translateCall(c *ast.Call, localVars []string) *ir.Filter {
	if t.scope != nil {
		return t.translateDefCall(c, localVars)
	}
	return t.translateExprCall(c, localVars)
}

// translateDefCall implements §4.2's definition-compiler resolution
// order: walk frames innermost-to-outermost, preferring a cousin match
// over an argument/self match at each frame before advancing.
func (t *translator) translateDefCall(c *ast.Call, localVars []string) *ir.Filter {
	arity := len(c.Args)
	vars := len(localVars)

	for i := len(t.scope.frames) - 1; i >= 0; i-- {
		f := t.scope.frames[i]

		if slot, ok := f.children[childKey{c.Name, arity}]; ok {
			if arity == 0 {
				// No arguments to place, so no inlining is needed: a
				// plain reference with the accumulated skip suffices.
				return &ir.Filter{Kind: ir.KindCall, Skip: vars, ID: slot}
			}
			args := make([]*ir.Filter, arity)
			for j, a := range c.Args {
				args[j] = t.translate(a, localVars)
			}
			t.log.Debug("inlining cousin", "name", c.Name, "arity", arity, "cousin_vars", vars)
			return substCousin(t.scope.table[slot], vars, args)
		}

		if arity == 0 {
			if pos, ok := f.argIndex(c.Name); ok {
				return &ir.Filter{Kind: ir.KindArg, Index: pos}
			}
			if f.name == c.Name && len(f.args) == 0 {
				return &ir.Filter{Kind: ir.KindCall, Skip: 0, ID: f.id}
			}
		}

		vars += f.varCount()
	}

	t.log.Debug("could not find function", "name", c.Name, "arity", arity)
	t.diags.add(c.Position(), "could not find function", suggest.Closest(c.Name, t.callCandidates()))
	return ir.Id()
}

func (t *translator) callCandidates() []string {
	var names []string
	for _, f := range t.scope.frames {
		if f.name != "" {
			names = append(names, f.name)
		}
		for _, a := range f.args {
			names = append(names, a.Name())
		}
		for k := range f.children {
			names = append(names, k.name)
		}
	}
	return names
}

// translateExprCall implements §4.2's expression-compiler resolution
// order: a zero-arg call first tries to bind to a supplied argument
// name, then falls back to the built-in lookup.
func (t *translator) translateExprCall(c *ast.Call, localVars []string) *ir.Filter {
	arity := len(c.Args)

	if arity == 0 {
		if pos, ok := indexOfName(t.argNames, c.Name); ok {
			if len(localVars) == 0 {
				return &ir.Filter{Kind: ir.KindArg, Index: pos}
			}
			return &ir.Filter{Kind: ir.KindSkipCtx, N: len(localVars), Operand: &ir.Filter{Kind: ir.KindArg, Index: pos}}
		}
	}

	template, ok := t.builtins(c.Name, arity)
	if !ok {
		t.log.Debug("could not find function", "name", c.Name, "arity", arity)
		t.diags.add(c.Position(), "could not find function", suggest.Closest(c.Name, t.argNames))
		return ir.Id()
	}

	args := make([]*ir.Filter, arity)
	for i, a := range c.Args {
		args[i] = t.translate(a, localVars)
	}
	return substBuiltin(template, args)
}

func indexOfName(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
