package resolve

import "github.com/opal-lang/jaq/ir"

// varMapper rewrites a Var's de Bruijn index given the current binder
// depth vs (how many binders the recursion has crossed since subst
// started).
type varMapper func(vs, v int) int

// argMapper rewrites an Arg reference given the current binder depth vs.
// Unlike varMapper it may return an entirely different subtree, not
// merely a re-indexed Arg: this is how cousin-call and built-in
// placeholders are replaced by the actual call arguments.
type argMapper func(vs, a int) *ir.Filter

// subst is the substitution homomorphism at the heart of cousin inlining
// and built-in placeholder substitution (§4.3). It rewrites every Var
// and Arg leaf via fv/fa and recurses structurally everywhere else,
// threading vs through binding nodes (Pipe with Binds, Fold's Update)
// so fv/fa see the correct binder depth at each leaf. Call nodes are
// left untouched: they address a fixed table slot and carry no free
// variable or argument reference of their own.
func subst(f *ir.Filter, vs int, fv varMapper, fa argMapper) *ir.Filter {
	if f == nil {
		return nil
	}

	switch f.Kind {
	case ir.KindId, ir.KindRecurse, ir.KindInt, ir.KindFloat, ir.KindStr:
		return f

	case ir.KindArray:
		return &ir.Filter{Kind: ir.KindArray, Elem: subst(f.Elem, vs, fv, fa)}

	case ir.KindObject:
		entries := make([]ir.ObjectEntry, len(f.Entries))
		for i, e := range f.Entries {
			entries[i] = ir.ObjectEntry{
				Key:   subst(e.Key, vs, fv, fa),
				Value: subst(e.Value, vs, fv, fa),
			}
		}
		return &ir.Filter{Kind: ir.KindObject, Entries: entries}

	case ir.KindNeg, ir.KindTry:
		return &ir.Filter{Kind: f.Kind, Operand: subst(f.Operand, vs, fv, fa)}

	case ir.KindSkipCtx:
		return &ir.Filter{Kind: ir.KindSkipCtx, N: f.N, Operand: subst(f.Operand, vs, fv, fa)}

	case ir.KindPipe:
		left := subst(f.Left, vs, fv, fa)
		next := vs
		if f.Binds {
			next++
		}
		right := subst(f.Right, next, fv, fa)
		return &ir.Filter{Kind: ir.KindPipe, Left: left, Binds: f.Binds, Right: right}

	case ir.KindComma, ir.KindAlt, ir.KindAssign, ir.KindUpdate:
		return &ir.Filter{Kind: f.Kind, Left: subst(f.Left, vs, fv, fa), Right: subst(f.Right, vs, fv, fa)}

	case ir.KindLogic:
		return &ir.Filter{Kind: ir.KindLogic, Left: subst(f.Left, vs, fv, fa), Or: f.Or, Right: subst(f.Right, vs, fv, fa)}

	case ir.KindMath:
		return &ir.Filter{Kind: ir.KindMath, Left: subst(f.Left, vs, fv, fa), MathOp: f.MathOp, Right: subst(f.Right, vs, fv, fa)}

	case ir.KindOrd:
		return &ir.Filter{Kind: ir.KindOrd, Left: subst(f.Left, vs, fv, fa), OrdOp: f.OrdOp, Right: subst(f.Right, vs, fv, fa)}

	case ir.KindUpdateMath:
		return &ir.Filter{Kind: ir.KindUpdateMath, Left: subst(f.Left, vs, fv, fa), MathOp: f.MathOp, Right: subst(f.Right, vs, fv, fa)}

	case ir.KindIte:
		return &ir.Filter{
			Kind: ir.KindIte,
			If:   subst(f.If, vs, fv, fa),
			Then: subst(f.Then, vs, fv, fa),
			Else: subst(f.Else, vs, fv, fa),
		}

	case ir.KindFold:
		return &ir.Filter{
			Kind:     ir.KindFold,
			FoldKind: f.FoldKind,
			Source:   subst(f.Source, vs, fv, fa),
			Init:     subst(f.Init, vs, fv, fa),
			Update:   subst(f.Update, vs+1, fv, fa),
		}

	case ir.KindPath:
		parts := make([]ir.PathPart, len(f.Parts))
		for i, p := range f.Parts {
			parts[i] = ir.PathPart{
				IsRange:  p.IsRange,
				Index:    subst(p.Index, vs, fv, fa),
				Lower:    subst(p.Lower, vs, fv, fa),
				Upper:    subst(p.Upper, vs, fv, fa),
				Optional: p.Optional,
			}
		}
		return &ir.Filter{Kind: ir.KindPath, Base: subst(f.Base, vs, fv, fa), Parts: parts}

	case ir.KindVar:
		return &ir.Filter{Kind: ir.KindVar, Index: fv(vs, f.Index)}

	case ir.KindArg:
		return fa(vs, f.Index)

	case ir.KindCall:
		return &ir.Filter{Kind: ir.KindCall, ID: f.ID, Skip: f.Skip}

	default:
		return f
	}
}

// substCousin inlines a compiled cousin body at a call site. cousinVars
// is the number of variables in scope at the call site that the
// cousin's stored body does not already know about (§4.3); args are the
// translated actual arguments, one per the cousin's formal parameter.
func substCousin(body *ir.Filter, cousinVars int, args []*ir.Filter) *ir.Filter {
	fv := func(vs, v int) int {
		if v < vs {
			return v
		}
		return v + cousinVars
	}
	fa := func(vs, a int) *ir.Filter {
		lifted := func(innerVs, v int) int { return v + vs }
		placeholder := func(_, a int) *ir.Filter { return &ir.Filter{Kind: ir.KindArg, Index: a} }
		return subst(args[a], 0, lifted, placeholder)
	}
	return subst(body, 0, fv, fa)
}

// substBuiltin substitutes a built-in's Arg placeholders with the
// translated call arguments. Built-ins are defined in the ambient scope
// and contain no free Var references, so no index correction is needed.
func substBuiltin(template *ir.Filter, args []*ir.Filter) *ir.Filter {
	fv := func(_, v int) int { return v }
	fa := func(_, a int) *ir.Filter { return args[a] }
	return subst(template, 0, fv, fa)
}
