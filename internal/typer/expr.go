package typer

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
)

// checkExpr is the bidirectional entry point of §4.3: expected == nil
// means synthesis, otherwise the result is required to match (via
// RequireSubtype) before returning. Dispatch is by concrete node
// type, following the teacher's typechecker_core.go switch shape.
func (t *Typer) checkExpr(e ast.Expr, expected *types.ValueType) (Result, error) {
	// Calls get the expected type pushed all the way into
	// checkCallTo, where it is unified against the instantiated
	// return type before arguments are checked (§4.3.1) — it steers
	// overload trials instead of merely vetting the committed result.
	if c, ok := e.(*ast.Call); ok {
		return t.checkCall(c, expected)
	}
	res, err := t.synthExpr(e)
	if err != nil {
		return Result{}, err
	}
	if expected != nil {
		if err := t.Eng.RequireSubtype(res.Type, *expected); err != nil {
			return Result{}, t.fail(e.Position(), diag.KindTypeMismatch, "expected %s, found %s: %v", (*expected).String(), res.Type.String(), err)
		}
	}
	return res, nil
}

func (t *Typer) synthExpr(e ast.Expr) (Result, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return Result{Type: literalType(e.Kind), Effects: types.EmptyEffects()}, nil

	case *ast.Var:
		if e.Symbol.Kind == ast.BlockSymbolKind {
			return Result{}, t.fail(e.Position(), diag.KindTypeMismatch,
				"%q names a block and cannot be used as a value; wrap it with box", e.Symbol.Name)
		}
		vt, ok := t.Ctx.LookupValue(e.Symbol)
		if !ok {
			return Result{}, t.fail(e.Position(), diag.KindResolution, "unbound value %q", e.Symbol.Name)
		}
		return Result{Type: t.Eng.Substitute(vt), Effects: types.EmptyEffects()}, nil

	case *ast.Box:
		fn, captures, err := t.checkBlock(e.Block)
		if err != nil {
			return Result{}, err
		}
		return Result{Type: &types.Boxed{Block: fn, Captures: captures}, Effects: types.EmptyEffects()}, nil

	case *ast.Unbox:
		res, err := t.checkExpr(e.Value, nil)
		if err != nil {
			return Result{}, err
		}
		boxed, ok := types.Dealias(res.Type).(*types.Boxed)
		if !ok {
			return Result{}, t.fail(e.Position(), diag.KindTypeMismatch, "unbox requires a boxed function value, found %s", res.Type.String())
		}
		return Result{Type: &types.Boxed{Block: boxed.Block, Captures: boxed.Captures}, Effects: res.Effects}, nil

	case *ast.If:
		cond, err := t.checkExpr(e.Cond, typeRefPtr(types.TBool))
		if err != nil {
			return Result{}, err
		}
		thenR, err := t.checkExpr(e.Then, nil)
		if err != nil {
			return Result{}, err
		}
		elseR, err := t.checkExpr(e.Else, nil)
		if err != nil {
			return Result{}, err
		}
		joined, err := t.Eng.Join([]types.ValueType{thenR.Type, elseR.Type})
		if err != nil {
			return Result{}, t.fail(e.Position(), diag.KindTypeMismatch, "if branches disagree: %v", err)
		}
		return Result{Type: joined, Effects: cond.Effects.Union(thenR.Effects).Union(elseR.Effects)}, nil

	case *ast.Match:
		return t.checkMatch(e)

	case *ast.Select:
		return t.checkSelect(e)

	case *ast.Assign:
		if e.Target == nil {
			return Result{}, t.fail(e.Position(), diag.KindTypeMismatch, "assignment target must be a mutable local")
		}
		targetType, bound := t.Ctx.LookupValue(e.Target.Symbol)
		if !bound {
			return Result{}, t.fail(e.Position(), diag.KindResolution, "unbound mutable local %q", e.Target.Symbol.Name)
		}
		valR, err := t.checkExpr(e.Value, &targetType)
		if err != nil {
			return Result{}, err
		}
		return Result{Type: types.TUnit, Effects: valR.Effects}, nil

	case *ast.Call:
		return t.checkCall(e, nil)

	case *ast.TryHandle:
		return t.checkTryHandle(e)

	case *ast.Run:
		return t.checkStmt(e.Body, nil)

	default:
		return Result{}, t.fail(e.Position(), diag.KindInternalInvariant, "unrecognized expression node %T", e)
	}
}

func literalType(k ast.LitKind) types.ValueType {
	switch k {
	case ast.LitInt:
		return types.TInt
	case ast.LitDouble:
		return types.TDouble
	case ast.LitBool:
		return types.TBool
	case ast.LitString:
		return types.TString
	default:
		return types.TUnit
	}
}

func typeRefPtr(t types.ValueType) *types.ValueType { return &t }

// checkSelect resolves a named field selection against a record type
// (a data type with exactly one, name-carrying constructor): the
// field name becomes a positional index, and the field's declared
// type is resolved with the record's type parameters mapped to the
// receiver's concrete instantiation arguments.
func (t *Typer) checkSelect(s *ast.Select) (Result, error) {
	recvR, err := t.checkExpr(s.Receiver, nil)
	if err != nil {
		return Result{}, err
	}
	ctor, ok := types.Dealias(t.Eng.Substitute(recvR.Type)).(*types.Constructor)
	if !ok {
		return Result{}, t.fail(s.Position(), diag.KindTypeMismatch, "field selection requires a record value, found %s", recvR.Type.String())
	}
	info, ok := t.ctors[ctor.Symbol]
	if !ok || info.fieldNames == nil {
		return Result{}, t.fail(s.Position(), diag.KindTypeMismatch, "%q is not a record type", ctor.Symbol.Name)
	}
	idx := -1
	for i, name := range info.fieldNames {
		if name.Equal(s.Field) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}, t.fail(s.Position(), diag.KindResolution, "%q has no field named %q", ctor.Symbol.Name, s.Field.Name)
	}
	scope := make(tparamScope, len(info.data.typeParams))
	for i, tp := range info.data.typeParams {
		if i < len(ctor.Args) {
			scope[tp] = ctor.Args[i]
		}
	}
	fieldType, err := t.resolveType(info.fields[idx], scope)
	if err != nil {
		return Result{}, err
	}
	return Result{Type: fieldType, Effects: recvR.Effects}, nil
}

// checkMatch joins every clause's body type under the scrutinee's
// type, threading each clause's pattern bindings locally.
func (t *Typer) checkMatch(m *ast.Match) (Result, error) {
	scrutR, err := t.checkExpr(m.Scrutinee, nil)
	if err != nil {
		return Result{}, err
	}
	var branchTypes []types.ValueType
	eff := scrutR.Effects
	for _, clause := range m.Clauses {
		mark := t.Ctx.Backup()
		bindings, err := t.checkPattern(scrutR.Type, clause.Pattern)
		if err != nil {
			t.Ctx.Restore(mark)
			continue
		}
		for sym, vt := range bindings {
			t.Ctx.BindValue(sym, vt)
		}
		bodyR, err := t.checkExpr(clause.Body, nil)
		t.Ctx.Restore(mark)
		if err != nil {
			continue
		}
		branchTypes = append(branchTypes, bodyR.Type)
		eff = eff.Union(bodyR.Effects)
	}
	joined, err := t.Eng.Join(branchTypes)
	if err != nil {
		return Result{}, t.fail(m.Position(), diag.KindTypeMismatch, "match clauses disagree: %v", err)
	}
	return Result{Type: joined, Effects: eff}, nil
}
