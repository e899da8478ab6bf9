package resolve

import "github.com/opal-lang/jaq/ast"

// Diagnostic is a single non-fatal resolution error.
type Diagnostic struct {
	Span ast.Span
	// Message is one of the canonical strings: "could not find
	// function", "undefined variable", "cannot interpret as
	// floating-point number", "cannot interpret as machine-size
	// integer" — or, from ModuleWithLimits only, the non-canonical
	// "definition nesting exceeds configured limit". Hint, if non-empty, is a "did you mean" suggestion
	// appended for display purposes only; it is never compared against
	// the canonical message set.
	Message string
	Hint    string
}

// Diagnostics accumulates errors across an entire translation. Adding a
// diagnostic never aborts translation: the caller keeps going and emits
// a placeholder IR node so later errors can still be found in the same
// pass.
type Diagnostics struct {
	items []Diagnostic
}

// Items returns every diagnostic recorded so far, in emission order.
func (d *Diagnostics) Items() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.items
}

// Empty reports whether no diagnostics were recorded. A nil *Diagnostics
// (the caller chose not to collect them) counts as empty.
func (d *Diagnostics) Empty() bool {
	return d == nil || len(d.items) == 0
}

func (d *Diagnostics) add(span ast.Span, message, hint string) {
	if d == nil {
		return
	}
	d.items = append(d.items, Diagnostic{Span: span, Message: message, Hint: hint})
}
