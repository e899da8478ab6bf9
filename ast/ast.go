// Package ast defines the parsed, un-resolved expression tree consumed by
// package resolve. Lexing and parsing are out of scope for this module;
// ast is the contract a parser must produce.
package ast

// Span identifies a source range for diagnostics.
type Span struct {
	File  string
	Start int
	End   int
}

// Expr is the tagged sum of filter expressions. Concrete node types in
// this package are the only implementations.
type Expr interface {
	exprNode()
	Position() Span
}

type base struct {
	Span Span
}

func (base) exprNode()        {}
func (b base) Position() Span { return b.Span }

// Ident is the identity filter `.`.
type Ident struct {
	base
}

// Recurse is the `..` placeholder.
type Recurse struct {
	base
}

// NumLit is a numeric literal in its original textual form; resolve
// decides int vs. float by inspecting the text.
type NumLit struct {
	base
	Text string
}

// StrLit is a string literal, carried through verbatim.
type StrLit struct {
	base
	Value string
}

// VarRef is a reference to a variable by name (without the `$` sigil).
type VarRef struct {
	base
	Name string
}

// ArrayCons is an array constructor; Elem is nil for the empty array `[]`.
type ArrayCons struct {
	base
	Elem Expr
}

// ObjectEntry is one key/value pair of an object constructor.
// Exactly one of (KeyExpr, KeyStr) is set. When KeyStr is set and Value
// is nil, the entry means `.key` (the absent-value shorthand).
type ObjectEntry struct {
	KeyExpr Expr
	KeyStr  string
	HasKey  bool // true when KeyStr is the form in use (vs. KeyExpr)
	Value   Expr
}

// ObjectCons is an object constructor `{...}`.
type ObjectCons struct {
	base
	Entries []ObjectEntry
}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	UnaryTry UnaryOp = iota
	UnaryNeg
)

// Unary wraps a single operand filter.
type Unary struct {
	base
	Op   UnaryOp
	Expr Expr
}

// BinOp identifies a binary operator kind.
type BinOp int

const (
	BinPipe BinOp = iota
	BinComma
	BinAlt
	BinOr
	BinAnd
	BinMath
	BinOrd
	BinAssign
	BinUpdate
	BinUpdateWith
)

// MathOp and OrdOp are carried through to ir.Filter unchanged; resolve
// does not interpret them.
type MathOp string

const (
	MathAdd MathOp = "+"
	MathSub MathOp = "-"
	MathMul MathOp = "*"
	MathDiv MathOp = "/"
	MathMod MathOp = "%"
)

type OrdOp string

const (
	OrdLt OrdOp = "<"
	OrdLe OrdOp = "<="
	OrdGt OrdOp = ">"
	OrdGe OrdOp = ">="
	OrdEq OrdOp = "=="
	OrdNe OrdOp = "!="
)

// Binary is a binary expression. Bind is only meaningful when Op ==
// BinPipe; it is the name bound by `L as $x | R` (empty when absent).
// MathOpv / OrdOpv are only meaningful for BinMath / BinUpdateWith and
// BinOrd respectively.
type Binary struct {
	base
	Op     BinOp
	Bind   string
	HasBind bool
	Left   Expr
	Right  Expr
	MathOpv MathOp
	OrdOpv  OrdOp
}

// FoldKind identifies reduce/for/foreach.
type FoldKind int

const (
	FoldReduce FoldKind = iota
	FoldFor
	FoldForeach
)

// Fold is a reduce/for/foreach expression.
type Fold struct {
	base
	Kind   FoldKind
	Source Expr
	Bind   string
	Init   Expr
	Update Expr
}

// IfThen is one (if, then) pair of a conditional.
type IfThen struct {
	If   Expr
	Then Expr
}

// If is a non-empty chain of (if,then) pairs plus a trailing else.
type If struct {
	base
	Branches []IfThen
	Else     Expr
}

// Call is a call-by-name with zero or more argument filters.
type Call struct {
	base
	Name string
	Args []Expr
}

// PathPart is one segment of a Path: either an index filter or a
// lower/upper range, each with an Optional flag (the `?` suffix).
type PathPart struct {
	IsRange  bool
	Index    Expr // set when !IsRange
	Lower    Expr // set when IsRange; nil means open-ended
	Upper    Expr // set when IsRange; nil means open-ended
	Optional bool
}

// Path is a base filter followed by a sequence of index/slice parts.
type Path struct {
	base
	BaseExpr Expr
	Parts    []PathPart
}

// Arg is a formal parameter of a Def: either a filter-parameter (plain
// name) or a variable-parameter (`$name`).
type Arg struct {
	isVar   bool
	name    string // sigil-free in both cases
}

// NewFilterArg builds a filter-parameter named name.
func NewFilterArg(name string) Arg { return Arg{isVar: false, name: name} }

// NewVarArg builds a variable-parameter named name (sigil-free).
func NewVarArg(name string) Arg { return Arg{isVar: true, name: name} }

// IsVar reports whether this argument binds a variable (vs. a filter).
func (a Arg) IsVar() bool { return a.isVar }

// Name returns the argument's name without any sigil, regardless of kind.
func (a Arg) Name() string { return a.name }

// VarName returns the argument's name; only meaningful when IsVar().
func (a Arg) VarName() string { return a.name }

// Def is one `def name(args): body;` form, with nested defs compiled
// before the body (depth-first, source order).
type Def struct {
	Name string
	Args []Arg
	Defs []*Def
	Body Expr
	Span Span
}

// Module is a top-level unit: a list of top-level defs plus the body
// expression to evaluate against input.
type Module struct {
	Defs []*Def
	Body Expr
}
