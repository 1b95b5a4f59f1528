// Package lifted implements the Lifted IR of spec §3: the passive data
// model the (external) elaborator produces and the ML transformer
// (internal/mltransform) consumes. It carries no behavior of its own
// beyond String() rendering, mirroring the teacher's internal/core
// package: interface-per-variant ANF nodes with a shared position-
// carrying base and a coreExpr()-style marker method.
package lifted

import (
	"fmt"
	"strings"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

// Term is the interface every Lifted IR term satisfies, mirroring the
// teacher's CoreExpr (ID()/Span()/String()/coreExpr()) but dropping
// the NodeID indirection: every term already carries whatever Symbol
// the front end minted for it, so no separate node-id space is needed
// downstream.
type Term interface {
	Position() ast.Pos
	String() string
	termNode()
}

type termBase struct{ Pos ast.Pos }

func (t termBase) Position() ast.Pos { return t.Pos }

// Return lifts a computed value into statement position; it is the
// Lifted IR's tail form, analogous to ast.Return in the resolved tree
// but now final (nothing is checked against it any further).
type Return struct {
	termBase
	Value Atom
}

func (*Return) termNode() {}
func (r *Return) String() string { return fmt.Sprintf("return %s", r.Value) }

// App applies a block to type and value arguments; in ANF, per the
// teacher's own Core.App, every argument is atomic.
type App struct {
	termBase
	Block Block
	TArgs []types.ValueType
	Args  []Atom
}

func (*App) termNode() {}
func (a *App) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.Block, strings.Join(parts, ", "))
}

// If is the Lifted IR conditional; the scrutinee is atomic.
type If struct {
	termBase
	Cond Atom
	Then Term
	Else Term
}

func (*If) termNode() {}
func (i *If) String() string { return fmt.Sprintf("if %s then %s else %s", i.Cond, i.Then, i.Else) }

// Val is a non-recursive binding: bind computes Bound, binds it to
// Binder (nil for a wildcard), and continues into Body.
type Val struct {
	termBase
	Binder *ast.Symbol
	Bound  Term
	Body   Term
}

func (*Val) termNode() {}
func (v *Val) String() string {
	name := "_"
	if v.Binder != nil {
		name = v.Binder.Name
	}
	return fmt.Sprintf("val %s = %s; %s", name, v.Bound, v.Body)
}

// MatchClause pairs one pattern with the term to run when it fires.
type MatchClause struct {
	Pattern ast.Pattern
	Body    Term
}

// Match dispatches on a scrutinee against an ordered list of clauses,
// falling through to Default (nil when the Typer proved exhaustive
// coverage some other way; §4.3 notes exhaustiveness is stubbed, so
// Default is almost always present in practice).
type Match struct {
	termBase
	Scrutinee Atom
	Clauses   []MatchClause
	Default   Term
}

func (*Match) termNode() {}
func (m *Match) String() string { return fmt.Sprintf("match %s {%d clause(s)}", m.Scrutinee, len(m.Clauses)) }

// Hole marks a not-yet-implemented branch (§4.3, §6): it type-checks
// against anything and lowers to a runtime trap in the back end.
type Hole struct{ termBase }

func (*Hole) termNode()      {}
func (*Hole) String() string { return "<hole>" }

// Scope introduces a set of mutually-dependent local Definitions ahead
// of Body; per §3's invariant, Definitions form a DAG under value
// dependency (Let bindings still observe source order).
type Scope struct {
	termBase
	Definitions []Definition
	Body        Term
}

func (*Scope) termNode() {}
func (s *Scope) String() string { return fmt.Sprintf("scope(%d defs); %s", len(s.Definitions), s.Body) }

// State introduces one mutable cell in Region (the global region if
// nil), carrying the Evidence needed to reach that region's prompt at
// the point of allocation.
type State struct {
	termBase
	Binder   *ast.Symbol
	Init     Atom
	Region   *ast.Symbol
	Evidence Evidence
	Body     Term
}

func (*State) termNode() {}
func (s *State) String() string { return fmt.Sprintf("state %s = %s; %s", s.Binder.Name, s.Init, s.Body) }

// Try installs a set of Handlers around Body, the Lifted IR's
// counterpart of ast.TryHandle once the Typer has resolved every
// handler against its interface.
type Try struct {
	termBase
	Body     Term
	Handlers []HandlerImpl
}

func (*Try) termNode() {}
func (t *Try) String() string { return fmt.Sprintf("try %s with %d handler(s)", t.Body, len(t.Handlers)) }

// HandlerImpl is one resolved handler implementation: the interface it
// implements, its type arguments, and its operation clauses.
type HandlerImpl struct {
	// Symbol is the binder the enclosing Try installs this handler's
	// capability object under, so a Member occurrence inside the
	// handled body (a VarRef to this same Symbol) can reach it; the
	// typer/elaborator mints one handler symbol per handler clause in
	// a TryHandle, mirroring how a Scope's Def binders work.
	Symbol  *ast.Symbol
	Effect  *ast.Symbol
	TArgs   []types.ValueType
	Clauses []OpClauseImpl
}

// OpClauseImpl is one resolved operation body inside a HandlerImpl.
type OpClauseImpl struct {
	Op     *ast.Symbol
	Params []*ast.Symbol
	Resume *ast.Symbol
	Body   Term
}

// Shift captures the current continuation up to the prompt named by
// Evidence and applies BlockLit to it; per §3's invariant, BlockLit
// must take exactly one block parameter (the continuation itself).
type Shift struct {
	termBase
	Evidence Evidence
	BlockLit *BlockLit
}

func (*Shift) termNode() {}
func (s *Shift) String() string { return fmt.Sprintf("shift[%s] %s", s.Evidence, s.BlockLit) }

// Region opens a new local region for the lifetime of Body.
type Region struct {
	termBase
	Symbol *ast.Symbol
	Body   Term
}

func (*Region) termNode() {}
func (r *Region) String() string { return fmt.Sprintf("region %s { %s }", r.Symbol.Name, r.Body) }

// Atom is any Lifted IR expression simple enough to recur without
// further sequencing: a literal, a variable reference, a boxed or
// unboxed block value, a pure application, a record field selection,
// or an inline capability object (New).
type Atom interface {
	Term
	atomNode()
}

// Literal is an atomic constant value.
type Literal struct {
	termBase
	Kind  ast.LitKind
	Value any
}

func (*Literal) termNode()      {}
func (*Literal) atomNode()      {}
func (l *Literal) String() string { return fmt.Sprintf("%v", l.Value) }

// VarRef is an atomic reference to a bound value symbol.
type VarRef struct {
	termBase
	Symbol *ast.Symbol
}

func (*VarRef) termNode()      {}
func (*VarRef) atomNode()      {}
func (v *VarRef) String() string { return v.Symbol.Name }

// Boxed wraps Block into a first-class value; atomic because the
// block value itself carries no further effect.
type Boxed struct {
	termBase
	Block Block
}

func (*Boxed) termNode()      {}
func (*Boxed) atomNode()      {}
func (b *Boxed) String() string { return fmt.Sprintf("box(%s)", b.Block) }

// PureApp applies a pure callable (a data/record constructor or an
// effect-free extern) to atomic arguments. Unlike App it is itself
// an Atom: nothing inside it can suspend, so no continuation is
// threaded through it.
type PureApp struct {
	termBase
	Fn    *ast.Symbol
	TArgs []types.ValueType
	Args  []Atom
}

func (*PureApp) termNode() {}
func (*PureApp) atomNode() {}
func (p *PureApp) String() string {
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", p.Fn.Name, strings.Join(parts, ", "))
}

// Select projects field Index (0-based, declaration order) out of a
// record value built by the single constructor Ctor.
type Select struct {
	termBase
	Record Atom
	Ctor   *ast.Symbol
	Index  int
}

func (*Select) termNode() {}
func (*Select) atomNode() {}
func (s *Select) String() string { return fmt.Sprintf("%s.%d", s.Record, s.Index) }

// Unbox recovers a callable block from a boxed atom at a call site.
type Unbox struct {
	termBase
	Value Atom
}

func (*Unbox) termNode()      {}
func (*Unbox) atomNode()      {}
func (u *Unbox) String() string { return fmt.Sprintf("unbox(%s)", u.Value) }

// New constructs a first-class capability value implementing Impl's
// interface inline (the structural object encoding of §4.5.5).
type New struct {
	termBase
	Impl HandlerImpl
}

func (*New) termNode()      {}
func (*New) atomNode()      {}
func (n *New) String() string { return fmt.Sprintf("new %s", n.Impl.Effect.Name) }
