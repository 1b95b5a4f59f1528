// Package typer implements the bidirectional type-and-effect checker
// of spec §4.3: checkExpr/checkStmt, the two-pass definition phase,
// overload resolution, handler elaboration, and pattern checking. It
// is adapted from the teacher's internal/types/typechecker_core.go
// (a single checker struct dispatching on concrete AST node type,
// threading errors into an accumulator) but rebuilt against this
// compiler's own ast/types/unify/diag packages rather than the
// teacher's Core IR and row-polymorphic Type/Scheme model.
package typer

import (
	"fmt"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
	"github.com/fabled/effectc/internal/unify"
)

// Result is the outcome of checking one expression or statement: its
// value type and the concrete effects it performs (§4.3: "Result
// (ValueType, ConcreteEffects)").
type Result struct {
	Type    types.ValueType
	Effects *types.Effects
}

// dataInfo records a DataDecl/RecordDecl's shape so constructor calls
// and TagPatterns can look up return types and field types.
type dataInfo struct {
	symbol     *ast.Symbol
	typeParams []*ast.Symbol
}

// ctorInfo records one data constructor's field types and owning data
// declaration, keyed by the constructor symbol. fieldNames is set
// only for record constructors, whose fields are addressable by name
// through Select.
type ctorInfo struct {
	data       *dataInfo
	fields     []ast.ValueTypeRef
	fieldNames []*ast.Symbol
}

// ifaceInfo records an InterfaceDecl's shape for handler elaboration
// and effect-reference resolution.
type ifaceInfo struct {
	symbol     *ast.Symbol
	typeParams []*ast.Symbol
	operations []ast.Operation
}

// Typer holds everything threaded through a single compilation: the
// typing context, the unification engine, the accumulating diagnostic
// buffer, and the declaration registries built by the definition
// phase's precheck pass.
type Typer struct {
	Ctx  *types.Context
	Eng  *unify.Engine
	Diag *diag.Buffer

	ifaces  map[*ast.Symbol]*ifaceInfo
	ctors   map[*ast.Symbol]*ctorInfo
	data    map[*ast.Symbol]*dataInfo
	aliases map[*ast.Symbol]*types.TypeAlias
	effAlias map[*ast.Symbol]*types.EffectAlias

	// callTArgs records, per call node, the type-argument list the
	// committed candidate was instantiated with; its length always
	// equals the callee's type-parameter count. Kept out of the ast
	// package so the resolved tree stays a pure front-end contract.
	callTArgs map[*ast.Call][]types.ValueType
}

// New creates a Typer over a fresh typing context and unification
// engine. db is the cross-module lookup database (§4.1); nil is
// accepted and always misses.
func New(db types.GlobalDB) *Typer {
	return &Typer{
		Ctx:      types.NewContext(db),
		Eng:      unify.NewEngine(),
		Diag:     diag.NewBuffer(),
		ifaces:   map[*ast.Symbol]*ifaceInfo{},
		ctors:    map[*ast.Symbol]*ctorInfo{},
		data:     map[*ast.Symbol]*dataInfo{},
		aliases:  map[*ast.Symbol]*types.TypeAlias{},
		effAlias: map[*ast.Symbol]*types.EffectAlias{},
		callTArgs: map[*ast.Call][]types.ValueType{},
	}
}

// TypeArgsAt returns the type-argument list annotated on a resolved
// call node, nil if the call never committed a candidate.
func (t *Typer) TypeArgsAt(c *ast.Call) []types.ValueType {
	return t.callTArgs[c]
}

// fail reports a buffered diagnostic and returns a sentinel error the
// caller can use to short-circuit only the current node; callers that
// want fail-fast semantics wrap this in diag.Fail after the phase.
func (t *Typer) fail(pos ast.Pos, kind diag.Kind, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	t.Diag.Report(&diag.Diagnostic{Kind: kind, Severity: diag.SeverityError, Pos: pos, Message: msg})
	return fmt.Errorf("%s", msg)
}

func (t *Typer) warn(pos ast.Pos, kind diag.Kind, format string, args ...any) {
	t.Diag.Report(&diag.Diagnostic{Kind: kind, Severity: diag.SeverityWarning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// tparamScope maps a declaration's own type parameters to their
// meaning at the current occurrence while resolving its syntactic
// ValueTypeRefs: rigid Vars when checking the declaration itself,
// concrete instantiation arguments when projecting out of an
// already-typed value (checkSelect).
type tparamScope map[*ast.Symbol]types.ValueType

func newTparamScope(params []*ast.Symbol) tparamScope {
	s := make(tparamScope, len(params))
	for _, p := range params {
		s[p] = &types.Var{Symbol: p}
	}
	return s
}

// resolveType turns a syntactic type reference into a ValueType,
// substituting any of scope's rigid variables and wrapping a known
// alias as a TypeAlias occurrence with its resolved arguments,
// unexpanded (dealiasing happens lazily via types.Dealias at
// comparison sites).
func (t *Typer) resolveType(ref ast.ValueTypeRef, scope tparamScope) (types.ValueType, error) {
	if ref.Builtin != "" {
		switch ref.Builtin {
		case "Int":
			return types.TInt, nil
		case "Bool":
			return types.TBool, nil
		case "Unit":
			return types.TUnit, nil
		case "Double":
			return types.TDouble, nil
		case "String":
			return types.TString, nil
		default:
			return nil, t.fail(ref.Pos, diag.KindResolution, "unknown builtin type %q", ref.Builtin)
		}
	}
	if ref.Symbol == nil {
		return nil, t.fail(ref.Pos, diag.KindResolution, "type reference has neither a builtin name nor a symbol")
	}
	if v, ok := scope[ref.Symbol]; ok {
		return v, nil
	}
	if alias, ok := t.aliases[ref.Symbol]; ok {
		args := make([]types.ValueType, len(ref.Args))
		for i, a := range ref.Args {
			rt, err := t.resolveType(a, scope)
			if err != nil {
				return nil, err
			}
			args[i] = rt
		}
		return &types.TypeAlias{Symbol: alias.Symbol, TypeParams: alias.TypeParams, RHS: alias.RHS, Args: args}, nil
	}
	if _, ok := t.data[ref.Symbol]; ok {
		args := make([]types.ValueType, len(ref.Args))
		for i, a := range ref.Args {
			rt, err := t.resolveType(a, scope)
			if err != nil {
				return nil, err
			}
			args[i] = rt
		}
		return &types.Constructor{Symbol: ref.Symbol, Args: args}, nil
	}
	// Unknown symbol: treat as an opaque nullary constructor rather
	// than aborting resolution; a downstream unification failure will
	// surface the real problem with better context.
	args := make([]types.ValueType, len(ref.Args))
	for i, a := range ref.Args {
		rt, err := t.resolveType(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = rt
	}
	return &types.Constructor{Symbol: ref.Symbol, Args: args}, nil
}

// effectsFromRefs resolves a list of syntactic effect refs (each
// naming an interface, possibly applied) into a concrete Effects set.
func (t *Typer) effectsFromRefs(refs []ast.ValueTypeRef, scope tparamScope) (*types.Effects, error) {
	elems := make([]types.EffectElem, 0, len(refs))
	for _, r := range refs {
		if alias, ok := t.effAlias[r.Symbol]; ok {
			elems = append(elems, alias)
			continue
		}
		args := make([]types.ValueType, len(r.Args))
		for i, a := range r.Args {
			rt, err := t.resolveType(a, scope)
			if err != nil {
				return nil, err
			}
			args[i] = rt
		}
		elems = append(elems, &types.EffectInterface{Symbol: r.Symbol, Args: args})
	}
	eff := types.NewEffects(elems...)
	return types.DealiasEffects(eff), nil
}
