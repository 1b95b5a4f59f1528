// Package mlast implements the Target-ML AST and emitter of spec §6:
// the downstream contract the ML transformer (internal/mltransform)
// produces and this package's Emit renders to source text. Adapted
// from the teacher's internal/typedast/typed_ast.go (a small algebraic
// node set with a String()-driven pretty printer) and
// internal/iface's registry-keyed sharing pattern, reused here for the
// arity-indexed interface cache (objectcache.go).
package mlast

import (
	"fmt"
	"strings"
)

// Expr is the Target-ML expression interface of §6: Variable, Lambda,
// Call, If, Let, Tuple, Make, Match, Ref, Deref, Assign, RawExpr,
// RawValue, MLString.
type Expr interface {
	String() string
	mlExpr()
}

// Variable references a bound name.
type Variable struct{ Name string }

func (*Variable) mlExpr()        {}
func (v *Variable) String() string { return v.Name }

// Param is a Lambda/FunBind formal: either a bare Named binder or a
// Patterned destructuring match, per §6.
type Param struct {
	Named     string // "" when Pattern is set
	Pattern   string // pre-rendered target pattern text; "" when Named is set
}

func (p Param) String() string {
	if p.Named != "" {
		return p.Named
	}
	// A destructuring pattern in curried parameter position needs its
	// own parentheses: fun f (Ctor (x)) = ...
	return "(" + p.Pattern + ")"
}

// Lambda is a (possibly multi-argument, curried in the emitter)
// function literal.
type Lambda struct {
	Params []Param
	Body   Expr
}

func (*Lambda) mlExpr() {}
func (l *Lambda) String() string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.String()
	}
	return fmt.Sprintf("(fn %s => %s)", strings.Join(names, " "), l.Body)
}

// Call applies Fn to Args in left-to-right curried application.
type Call struct {
	Fn   Expr
	Args []Expr
}

func (*Call) mlExpr() {}
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s %s)", c.Fn, strings.Join(parts, " "))
}

// If is a conditional expression.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*If) mlExpr() {}
func (i *If) String() string { return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else) }

// LetBinding is one binding inside a Let: a plain value binding when
// Params is nil, or a local (self-recursion-capable) function binding
// "fun Name Params = Val" when Params is non-empty. A local Def inside
// a Lifted IR Scope that calls itself needs the latter: SML has no
// other way to let a closure reference its own name, and §4.5.1's
// mutual-recursion rejection already guarantees no local function
// group needs the "and"-chaining a true mutually-recursive SML `fun`
// group would require.
type LetBinding struct {
	Name   string
	Params []Param
	Val    Expr
}

// Let sequences Bindings ahead of Body, SML-style.
type Let struct {
	Bindings []LetBinding
	Body     Expr
}

func (*Let) mlExpr() {}
func (l *Let) String() string {
	var b strings.Builder
	b.WriteString("let ")
	for _, bind := range l.Bindings {
		if len(bind.Params) > 0 {
			names := make([]string, len(bind.Params))
			for i, p := range bind.Params {
				names[i] = p.String()
			}
			fmt.Fprintf(&b, "fun %s %s = %s ", bind.Name, strings.Join(names, " "), bind.Val)
			continue
		}
		fmt.Fprintf(&b, "val %s = %s ", bind.Name, bind.Val)
	}
	fmt.Fprintf(&b, "in %s end", l.Body)
	return b.String()
}

// Tuple is a fixed-arity product value.
type Tuple struct{ Elems []Expr }

func (*Tuple) mlExpr() {}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// Make applies a data constructor to an optional payload.
type Make struct {
	Ctor    string
	Payload Expr // nil for a nullary constructor
}

func (*Make) mlExpr() {}
func (m *Make) String() string {
	if m.Payload == nil {
		return m.Ctor
	}
	return fmt.Sprintf("(%s %s)", m.Ctor, m.Payload)
}

// MatchClause pairs one pre-rendered target pattern with its body.
type MatchClause struct {
	Pattern string
	Body    Expr
}

// Match dispatches Scrutinee against Clauses, falling through to
// Default when no clause's pattern is known to be exhaustive.
type Match struct {
	Scrutinee Expr
	Clauses   []MatchClause
	Default   Expr // nil when the transformer proved exhaustiveness
}

func (*Match) mlExpr() {}
func (m *Match) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(case %s of ", m.Scrutinee)
	for i, c := range m.Clauses {
		if i > 0 {
			b.WriteString(" | ")
		}
		fmt.Fprintf(&b, "%s => %s", c.Pattern, c.Body)
	}
	if m.Default != nil {
		fmt.Fprintf(&b, " | _ => %s", m.Default)
	}
	b.WriteString(")")
	return b.String()
}

// Ref allocates a mutable cell.
type Ref struct{ Init Expr }

func (*Ref) mlExpr() {}
func (r *Ref) String() string { return fmt.Sprintf("(ref %s)", r.Init) }

// Deref reads a mutable cell.
type Deref struct{ Cell Expr }

func (*Deref) mlExpr() {}
func (d *Deref) String() string { return fmt.Sprintf("(!%s)", d.Cell) }

// Assign writes a mutable cell.
type Assign struct {
	Cell  Expr
	Value Expr
}

func (*Assign) mlExpr() {}
func (a *Assign) String() string { return fmt.Sprintf("(%s := %s)", a.Cell, a.Value) }

// RawExpr splices verbatim target-language text into expression
// position; used for extern bodies (§6).
type RawExpr struct{ Text string }

func (*RawExpr) mlExpr()        {}
func (r *RawExpr) String() string { return r.Text }

// RawValue is like RawExpr but marks text known to already be a value
// (no further evaluation implied); the transformer uses it for numeric
// literals. It renders exactly like RawExpr.
type RawValue struct{ Text string }

func (*RawValue) mlExpr()        {}
func (r *RawValue) String() string { return r.Text }

// MLString is a string literal, escaped by the emitter, not by the
// transformer that constructs this node.
type MLString struct{ Value string }

func (*MLString) mlExpr()        {}
func (s *MLString) String() string { return fmt.Sprintf("%q", s.Value) }
