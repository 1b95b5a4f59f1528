// Package types implements the data model of spec §3: value types,
// block types, effects, and capture sets, plus the typing context of
// §4.1. It is adapted from the teacher's internal/types/types.go
// (interface-per-variant, String()/Equals()/Substitute() triad) but
// the variant set itself follows this spec's §3, not the teacher's.
package types

import (
	"fmt"
	"strings"

	"github.com/fabled/effectc/internal/ast"
)

// ValueType is the interface common to every value-type variant named
// in §3: Var, UnificationVar, Constructor, Boxed, Builtin, TypeAlias,
// Bottom.
type ValueType interface {
	String() string
	valueType()
}

// Var is a rigid type variable bound by a surrounding type parameter
// or handler existential.
type Var struct {
	Symbol *ast.Symbol
}

func (*Var) valueType()       {}
func (v *Var) String() string { return v.Symbol.Name }

// Scope is the unification-region a UnificationVar was minted in; see
// internal/unify for enterScope/leaveScope semantics.
type Scope uint64

// UnificationVar is a solver metavariable, stamped with the scope that
// created it so escape checks can compare depths.
type UnificationVar struct {
	ID      uint64
	InScope Scope
}

func (*UnificationVar) valueType()       {}
func (u *UnificationVar) String() string { return fmt.Sprintf("?t%d", u.ID) }

// Constructor applies a user type constructor (data/record/alias head)
// to arguments. Constructors are invariant in their arguments (§4.2).
type Constructor struct {
	Symbol *ast.Symbol
	Args   []ValueType
}

func (*Constructor) valueType() {}
func (c *Constructor) String() string {
	if len(c.Args) == 0 {
		return c.Symbol.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", c.Symbol.Name, strings.Join(parts, ", "))
}

// Boxed wraps a block type into a first-class value, carrying the
// capture set of everything the block closes over.
type Boxed struct {
	Block    *FunctionType
	Captures *CaptureSet
}

func (*Boxed) valueType() {}
func (b *Boxed) String() string {
	return fmt.Sprintf("box[%s]%s", b.Block.String(), b.Captures.String())
}

// BuiltinKind enumerates the primitive value types.
type BuiltinKind int

const (
	Int BuiltinKind = iota
	Bool
	Unit
	Double
	String
)

func (k BuiltinKind) String() string {
	switch k {
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case Unit:
		return "Unit"
	case Double:
		return "Double"
	case String:
		return "String"
	default:
		return "<unknown-builtin>"
	}
}

type Builtin struct {
	Kind BuiltinKind
}

func (*Builtin) valueType()       {}
func (b *Builtin) String() string { return b.Kind.String() }

var (
	TInt    = &Builtin{Kind: Int}
	TBool   = &Builtin{Kind: Bool}
	TUnit   = &Builtin{Kind: Unit}
	TDouble = &Builtin{Kind: Double}
	TString = &Builtin{Kind: String}
)

// TypeAlias must be dealiased (via Dealias below) before any
// comparison; it must never appear inside a concrete type or effect
// (§3 invariant).
type TypeAlias struct {
	Symbol     *ast.Symbol
	TypeParams []*ast.Symbol
	RHS        ValueType
	Args       []ValueType // instantiation arguments at this occurrence
}

func (*TypeAlias) valueType() {}
func (a *TypeAlias) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	if len(parts) == 0 {
		return a.Symbol.Name
	}
	return fmt.Sprintf("%s[%s]", a.Symbol.Name, strings.Join(parts, ", "))
}

// Bottom is the type of a non-terminating/diverging expression; it is
// a subtype of everything.
type Bottom struct{}

func (*Bottom) valueType()     {}
func (*Bottom) String() string { return "Bottom" }

// Dealias fully expands TypeAlias occurrences, substituting each
// alias's type parameters with the arguments present at this
// occurrence. Every other ValueType constructor is returned as-is
// (after recursively dealiasing its arguments).
func Dealias(t ValueType) ValueType {
	switch t := t.(type) {
	case *TypeAlias:
		subst := make(map[*ast.Symbol]ValueType, len(t.TypeParams))
		for i, p := range t.TypeParams {
			if i < len(t.Args) {
				subst[p] = t.Args[i]
			}
		}
		return Dealias(substituteVars(t.RHS, subst))
	case *Constructor:
		args := make([]ValueType, len(t.Args))
		for i, a := range t.Args {
			args[i] = Dealias(a)
		}
		return &Constructor{Symbol: t.Symbol, Args: args}
	case *Boxed:
		return &Boxed{Block: dealiasFunction(t.Block), Captures: t.Captures}
	default:
		return t
	}
}

func dealiasFunction(fn *FunctionType) *FunctionType {
	result := Dealias(fn.Result)
	params := make([]ValueType, len(fn.ValueParams))
	for i, p := range fn.ValueParams {
		params[i] = Dealias(p)
	}
	return &FunctionType{
		TypeParams:    fn.TypeParams,
		CaptureParams: fn.CaptureParams,
		ValueParams:   params,
		BlockParams:   fn.BlockParams,
		Result:        result,
		Effects:       fn.Effects,
	}
}

func substituteVars(t ValueType, subst map[*ast.Symbol]ValueType) ValueType {
	switch t := t.(type) {
	case *Var:
		if r, ok := subst[t.Symbol]; ok {
			return r
		}
		return t
	case *Constructor:
		args := make([]ValueType, len(t.Args))
		for i, a := range t.Args {
			args[i] = substituteVars(a, subst)
		}
		return &Constructor{Symbol: t.Symbol, Args: args}
	case *Boxed:
		fn := t.Block
		params := make([]ValueType, len(fn.ValueParams))
		for i, p := range fn.ValueParams {
			params[i] = substituteVars(p, subst)
		}
		return &Boxed{
			Block: &FunctionType{
				TypeParams:    fn.TypeParams,
				CaptureParams: fn.CaptureParams,
				ValueParams:   params,
				BlockParams:   fn.BlockParams,
				Result:        substituteVars(fn.Result, subst),
				Effects:       fn.Effects,
			},
			Captures: t.Captures,
		}
	default:
		return t
	}
}
