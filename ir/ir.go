// Package ir defines the resolved, name-free intermediate representation
// produced by package resolve. Every Var/Arg/Call reference is a
// positional index; nothing in a Filter carries a source-level name.
package ir

import "github.com/opal-lang/jaq/ast"

// Kind discriminates the Filter variants. Only the fields documented for
// a given Kind are populated; the rest are zero.
type Kind int

const (
	KindId Kind = iota
	KindInt
	KindFloat
	KindStr
	KindArray
	KindObject
	KindNeg
	KindTry
	KindPipe
	KindComma
	KindAlt
	KindLogic
	KindMath
	KindOrd
	KindAssign
	KindUpdate
	KindUpdateMath
	KindIte
	KindFold
	KindPath
	KindVar
	KindArg
	KindCall
	KindSkipCtx
	KindRecurse
)

// ObjectEntry is one (key filter, value filter) pair of a resolved
// object constructor.
type ObjectEntry struct {
	Key   *Filter
	Value *Filter
}

// PathPart is one resolved path segment.
type PathPart struct {
	IsRange  bool
	Index    *Filter
	Lower    *Filter // nil: open lower bound
	Upper    *Filter // nil: open upper bound
	Optional bool
}

// Filter is the unified IR node. It is built once and never mutated in
// place; resolve.subst builds new nodes for everything it rewrites and
// returns payload-only leaves (Id, Recurse, Int, Float, Str) as is.
type Filter struct {
	Kind Kind

	// KindInt
	Int int

	// KindFloat
	Float float64

	// KindStr
	Str string

	// KindArray: nil Elem means the empty array literal.
	Elem *Filter

	// KindObject
	Entries []ObjectEntry

	// KindNeg, KindTry: the wrapped operand.
	Operand *Filter

	// KindPipe, KindComma, KindAlt, KindLogic, KindMath, KindOrd,
	// KindAssign, KindUpdate, KindUpdateMath: Left/Right operands.
	Left  *Filter
	Right *Filter

	// KindPipe: whether the value flowing through Left is bound as a
	// new variable visible to Right.
	Binds bool

	// KindLogic: true for ||, false for &&.
	Or bool

	// KindMath, KindUpdateMath
	MathOp ast.MathOp

	// KindOrd
	OrdOp ast.OrdOp

	// KindIte: If/Then/Else; Else may itself be a KindIte (chained
	// elif) or any other filter (terminal else).
	If   *Filter
	Then *Filter
	Else *Filter

	// KindFold
	FoldKind ast.FoldKind
	Source   *Filter
	Init     *Filter
	Update   *Filter

	// KindPath
	Base  *Filter
	Parts []PathPart

	// KindVar: de Bruijn index, innermost = 0.
	// KindArg: positional index into the enclosing def's parameters.
	// KindCall: ID is the table slot, Skip is how many surrounding
	// variables the evaluator must pop before entering the callee's
	// frame.
	// KindSkipCtx: N is how many innermost variables to hide from
	// Operand while evaluating it.
	Index int
	Skip  int
	ID    int
	N     int
}

var idFilter = &Filter{Kind: KindId}

// Id returns the shared identity filter.
func Id() *Filter { return idFilter }

var recurseFilter = &Filter{Kind: KindRecurse}

// RecurseFilter returns the shared `..` filter. It carries no payload
// and no instance is ever mutated, so sharing one value across every
// occurrence is safe.
func RecurseFilter() *Filter { return recurseFilter }
