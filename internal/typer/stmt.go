package typer

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
	"github.com/fabled/effectc/internal/unify"
)

// checkStmt is checkExpr's statement-side counterpart (§4.3); the two
// stay separate because several statement forms (Val, Scope, State)
// have no expression analogue and need to thread bindings through the
// context rather than just compute a value.
func (t *Typer) checkStmt(s ast.Stmt, expected *types.ValueType) (Result, error) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return t.checkExpr(s.Expr, expected)

	case *ast.Val:
		boundR, err := t.checkStmt(s.Bound, nil)
		if err != nil {
			return Result{}, err
		}
		mark := t.Ctx.Backup()
		if s.Binder != nil {
			t.Ctx.BindValue(s.Binder, boundR.Type)
		}
		bodyR, err := t.checkStmt(s.Body, expected)
		t.Ctx.Restore(mark)
		if err != nil {
			return Result{}, err
		}
		return Result{Type: bodyR.Type, Effects: boundR.Effects.Union(bodyR.Effects)}, nil

	case *ast.Scope:
		mark := t.Ctx.Backup()
		defEff, err := t.checkDefinitions(s.Definitions)
		if err != nil {
			t.Ctx.Restore(mark)
			return Result{}, err
		}
		bodyR, err := t.checkStmt(s.Body, expected)
		t.Ctx.Restore(mark)
		if err != nil {
			return Result{}, err
		}
		return Result{Type: bodyR.Type, Effects: defEff.Union(bodyR.Effects)}, nil

	case *ast.State:
		initR, err := t.checkExpr(s.Init, nil)
		if err != nil {
			return Result{}, err
		}
		region := s.Region
		t.Eng.EnterRegion(s.Binder, region)
		mark := t.Ctx.Backup()
		if s.Binder != nil {
			t.Ctx.BindValue(s.Binder, initR.Type)
		}
		bodyR, err := t.checkStmt(s.Body, expected)
		t.Ctx.Restore(mark)
		if err != nil {
			return Result{}, err
		}
		if err := t.Eng.RequireSubregion(s.Binder, region); err != nil {
			return Result{}, err
		}
		return Result{Type: bodyR.Type, Effects: initR.Effects.Union(bodyR.Effects)}, nil

	case *ast.RegionStmt:
		t.Eng.EnterRegion(s.Symbol, unify.GlobalRegion)
		return t.checkStmt(s.Body, expected)

	case *ast.Hole:
		if expected != nil {
			return Result{Type: *expected, Effects: types.EmptyEffects()}, nil
		}
		return Result{Type: &types.Bottom{}, Effects: types.EmptyEffects()}, nil

	case *ast.Return:
		return t.checkExpr(s.Value, expected)

	default:
		return Result{}, t.fail(s.Position(), diag.KindInternalInvariant, "unrecognized statement node %T", s)
	}
}
