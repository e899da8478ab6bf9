package main

// Wire types mirror package ast as a JSON-friendly tagged union, since
// lexing/parsing a surface syntax is out of scope: this CLI exists to
// drive resolve.Module/resolve.Def from a pre-parsed tree supplied as
// JSON, typically emitted by a test harness or an external parser.

import (
	"encoding/json"
	"fmt"

	"github.com/opal-lang/jaq/ast"
)

type wireArg struct {
	Name  string `json:"name"`
	IsVar bool   `json:"isVar"`
}

func (a wireArg) toAST() ast.Arg {
	if a.IsVar {
		return ast.NewVarArg(a.Name)
	}
	return ast.NewFilterArg(a.Name)
}

type wireDef struct {
	Name string          `json:"name"`
	Args []wireArg       `json:"args"`
	Defs []wireDef       `json:"defs"`
	Body json.RawMessage `json:"body"`
}

func (d wireDef) toAST() (*ast.Def, error) {
	body, err := decodeExpr(d.Body)
	if err != nil {
		return nil, fmt.Errorf("def %s: %w", d.Name, err)
	}
	args := make([]ast.Arg, len(d.Args))
	for i, a := range d.Args {
		args[i] = a.toAST()
	}
	nested := make([]*ast.Def, len(d.Defs))
	for i, nd := range d.Defs {
		n, err := nd.toAST()
		if err != nil {
			return nil, err
		}
		nested[i] = n
	}
	return &ast.Def{Name: d.Name, Args: args, Defs: nested, Body: body}, nil
}

type wireModule struct {
	Defs []wireDef       `json:"defs"`
	Body json.RawMessage `json:"body"`
}

// wireDefBody is the standalone-def envelope the "def" subcommand
// decodes: a single def body plus the externally supplied scope
// resolve.Def needs (no nested defs — those belong to compile_module).
type wireDefBody struct {
	PreBoundVars []string        `json:"preBoundVars"`
	Args         []wireArg       `json:"args"`
	Body         json.RawMessage `json:"body"`
}

func (d wireDefBody) toAST() (preBoundVars []string, args []ast.Arg, body ast.Expr, err error) {
	body, err = decodeExpr(d.Body)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("def body: %w", err)
	}
	args = make([]ast.Arg, len(d.Args))
	for i, a := range d.Args {
		args[i] = a.toAST()
	}
	return d.PreBoundVars, args, body, nil
}

func (m wireModule) toAST() (*ast.Module, error) {
	body, err := decodeExpr(m.Body)
	if err != nil {
		return nil, fmt.Errorf("module body: %w", err)
	}
	defs := make([]*ast.Def, len(m.Defs))
	for i, d := range m.Defs {
		def, err := d.toAST()
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}
	return &ast.Module{Defs: defs, Body: body}, nil
}

// wireExpr is the generic envelope every expression node decodes
// through; only the fields relevant to Kind are populated by the
// producer.
type wireExpr struct {
	Kind string `json:"kind"`

	Text  string `json:"text"`  // num
	Value string `json:"value"` // str
	Name  string `json:"name"`  // var, call

	Elem json.RawMessage `json:"elem"` // array

	Entries []wireObjectEntry `json:"entries"` // object

	Op   string          `json:"op"`   // math/updateWith/ord op
	Bind string          `json:"bind"` // pipe/fold binder name
	Expr json.RawMessage `json:"expr"` // unary operand
	L    json.RawMessage `json:"l"`
	R    json.RawMessage `json:"r"`

	FoldKind string          `json:"foldKind"`
	Source   json.RawMessage `json:"source"`
	Init     json.RawMessage `json:"init"`
	Update   json.RawMessage `json:"update"`

	Branches []wireIfThen    `json:"branches"`
	Else     json.RawMessage `json:"else"`

	Args []json.RawMessage `json:"args"` // call

	Base  json.RawMessage `json:"base"` // path
	Parts []wirePathPart  `json:"parts"`
}

type wireObjectEntry struct {
	KeyExpr json.RawMessage `json:"keyExpr"`
	KeyStr  string          `json:"keyStr"`
	HasKey  bool            `json:"hasKey"`
	Value   json.RawMessage `json:"value"`
}

type wireIfThen struct {
	If   json.RawMessage `json:"if"`
	Then json.RawMessage `json:"then"`
}

type wirePathPart struct {
	IsRange  bool            `json:"isRange"`
	Index    json.RawMessage `json:"index"`
	Lower    json.RawMessage `json:"lower"`
	Upper    json.RawMessage `json:"upper"`
	Optional bool            `json:"optional"`
}

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var w wireExpr
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	switch w.Kind {
	case "id":
		return &ast.Ident{}, nil
	case "recurse":
		return &ast.Recurse{}, nil
	case "num":
		return &ast.NumLit{Text: w.Text}, nil
	case "str":
		return &ast.StrLit{Value: w.Value}, nil
	case "var":
		return &ast.VarRef{Name: w.Name}, nil
	case "array":
		elem, err := decodeExpr(w.Elem)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayCons{Elem: elem}, nil
	case "object":
		entries := make([]ast.ObjectEntry, len(w.Entries))
		for i, e := range w.Entries {
			keyExpr, err := decodeExpr(e.KeyExpr)
			if err != nil {
				return nil, err
			}
			value, err := decodeExpr(e.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = ast.ObjectEntry{KeyExpr: keyExpr, KeyStr: e.KeyStr, HasKey: e.HasKey, Value: value}
		}
		return &ast.ObjectCons{Entries: entries}, nil
	case "try", "neg":
		expr, err := decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		op := ast.UnaryTry
		if w.Kind == "neg" {
			op = ast.UnaryNeg
		}
		return &ast.Unary{Op: op, Expr: expr}, nil
	case "pipe", "comma", "alt", "or", "and", "math", "ord", "assign", "update", "updateWith":
		return decodeBinary(w)
	case "fold":
		return decodeFold(w)
	case "if":
		return decodeIf(w)
	case "call":
		args := make([]ast.Expr, len(w.Args))
		for i, a := range w.Args {
			ae, err := decodeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = ae
		}
		return &ast.Call{Name: w.Name, Args: args}, nil
	case "path":
		return decodePath(w)
	default:
		return nil, fmt.Errorf("unknown expr kind %q", w.Kind)
	}
}

func decodeBinary(w wireExpr) (ast.Expr, error) {
	l, err := decodeExpr(w.L)
	if err != nil {
		return nil, err
	}
	r, err := decodeExpr(w.R)
	if err != nil {
		return nil, err
	}
	b := &ast.Binary{Left: l, Right: r}
	switch w.Kind {
	case "pipe":
		b.Op = ast.BinPipe
		if w.Bind != "" {
			b.HasBind = true
			b.Bind = w.Bind
		}
	case "comma":
		b.Op = ast.BinComma
	case "alt":
		b.Op = ast.BinAlt
	case "or":
		b.Op = ast.BinOr
	case "and":
		b.Op = ast.BinAnd
	case "math":
		b.Op = ast.BinMath
		b.MathOpv = ast.MathOp(w.Op)
	case "ord":
		b.Op = ast.BinOrd
		b.OrdOpv = ast.OrdOp(w.Op)
	case "assign":
		b.Op = ast.BinAssign
	case "update":
		b.Op = ast.BinUpdate
	case "updateWith":
		b.Op = ast.BinUpdateWith
		b.MathOpv = ast.MathOp(w.Op)
	}
	return b, nil
}

func decodeFold(w wireExpr) (ast.Expr, error) {
	source, err := decodeExpr(w.Source)
	if err != nil {
		return nil, err
	}
	init, err := decodeExpr(w.Init)
	if err != nil {
		return nil, err
	}
	update, err := decodeExpr(w.Update)
	if err != nil {
		return nil, err
	}
	kind := ast.FoldReduce
	switch w.FoldKind {
	case "for":
		kind = ast.FoldFor
	case "foreach":
		kind = ast.FoldForeach
	}
	return &ast.Fold{Kind: kind, Source: source, Bind: w.Bind, Init: init, Update: update}, nil
}

func decodeIf(w wireExpr) (ast.Expr, error) {
	branches := make([]ast.IfThen, len(w.Branches))
	for i, b := range w.Branches {
		ifE, err := decodeExpr(b.If)
		if err != nil {
			return nil, err
		}
		thenE, err := decodeExpr(b.Then)
		if err != nil {
			return nil, err
		}
		branches[i] = ast.IfThen{If: ifE, Then: thenE}
	}
	elseE, err := decodeExpr(w.Else)
	if err != nil {
		return nil, err
	}
	return &ast.If{Branches: branches, Else: elseE}, nil
}

func decodePath(w wireExpr) (ast.Expr, error) {
	base, err := decodeExpr(w.Base)
	if err != nil {
		return nil, err
	}
	parts := make([]ast.PathPart, len(w.Parts))
	for i, p := range w.Parts {
		index, err := decodeExpr(p.Index)
		if err != nil {
			return nil, err
		}
		lower, err := decodeExpr(p.Lower)
		if err != nil {
			return nil, err
		}
		upper, err := decodeExpr(p.Upper)
		if err != nil {
			return nil, err
		}
		parts[i] = ast.PathPart{IsRange: p.IsRange, Index: index, Lower: lower, Upper: upper, Optional: p.Optional}
	}
	return &ast.Path{BaseExpr: base, Parts: parts}, nil
}
