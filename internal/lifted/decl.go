package lifted

import (
	"fmt"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

// Decl is a module-level declaration flowing into the ML transformer
// alongside Definitions: a Data, an Interface, or an Extern.
type Decl interface {
	declNode()
}

// Ctor is one data constructor, already typed (the Typer's dealiased
// field types, not the surface ValueTypeRefs of ast.Constructor).
type Ctor struct {
	Symbol *ast.Symbol
	Fields []types.ValueType
}

// Data declares a (possibly parameterized) sum type.
type Data struct {
	Symbol     *ast.Symbol
	TypeParams []*ast.Symbol
	Ctors      []Ctor
}

func (*Data) declNode() {}

// Op is one resolved interface operation signature.
type Op struct {
	Symbol        *ast.Symbol
	TypeParams    []*ast.Symbol
	Fn            *types.FunctionType
	Bidirectional bool
}

// Interface declares a capability type: a named, parameterized set of
// operations, already typed.
type Interface struct {
	Symbol     *ast.Symbol
	TypeParams []*ast.Symbol
	Ops        []Op
}

func (*Interface) declNode() {}

// Extern declares a foreign binding whose body is verbatim target
// text, re-emitted unchanged by the transformer. Fn is the declared
// signature; the back end rejects polymorphic and higher-order
// externs as structural errors before emitting anything.
type Extern struct {
	Symbol *ast.Symbol
	Fn     *types.FunctionType
	Text   string
}

func (*Extern) declNode() {}

// Definition is a binding inside a Scope, mirroring ast.Definition but
// over Lifted IR terms/blocks.
type Definition interface {
	definitionNode()
}

// Let is a side-effecting binding; Let bindings observe source order
// (§3 invariant).
type Let struct {
	Binder *ast.Symbol // nil => wildcard
	Value  Term
}

func (*Let) definitionNode() {}

// Def is a (possibly mutually recursive) block binding.
type Def struct {
	Symbol *ast.Symbol
	Block  Block
}

func (*Def) definitionNode() {}

// LiftKind distinguishes the three shapes an Evidence entry can take.
type LiftKind int

const (
	LiftTry LiftKind = iota
	LiftReg
	LiftVar
)

// Lift is one entry of an Evidence list: a Try-prompt lift, a Reg
// (region) lift, or a Var lift naming the symbol whose evidence
// parameter is threaded through.
type Lift struct {
	Kind   LiftKind
	Symbol *ast.Symbol // set only for LiftVar
}

func (l Lift) String() string {
	switch l.Kind {
	case LiftTry:
		return "try"
	case LiftReg:
		return "reg"
	case LiftVar:
		return fmt.Sprintf("var(%s)", l.Symbol.Name)
	default:
		return "?"
	}
}

// Evidence is a possibly-empty ordered list of lifts threading a
// computation through the handler/region prompts it needs to reach
// (§3, §4.5.4).
type Evidence []Lift

func (e Evidence) String() string {
	s := ""
	for i, l := range e {
		if i > 0 {
			s += "."
		}
		s += l.String()
	}
	return s
}

// Compose appends other's lifts after e's, yielding one evidence path
// that reaches through both.
func (e Evidence) Compose(other Evidence) Evidence {
	out := make(Evidence, 0, len(e)+len(other))
	out = append(out, e...)
	out = append(out, other...)
	return out
}
