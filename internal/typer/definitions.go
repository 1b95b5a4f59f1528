package typer

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
)

// CheckModule runs the full definition phase of §4.3 over m: a
// precheck pass that binds every fully annotated declaration ahead of
// any body being walked (enabling mutual recursion among annotated
// functions), then a synth pass that checks each function body and
// reports unhandled control effects at the owning definition.
func (t *Typer) CheckModule(m *ast.Module) error {
	var funcs []*ast.FuncDecl
	for _, d := range m.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			funcs = append(funcs, fd)
			if !t.precheckFunc(fd) {
				// Unannotated; synth pass will both infer and bind.
			}
			continue
		}
		t.registerDecl(d)
	}
	for _, e := range m.Externs {
		t.registerDecl(e)
	}

	for _, fd := range funcs {
		t.synthFunc(fd)
	}

	if _, err := t.checkDefinitions(m.Definitions); err != nil {
		return err
	}
	return diag.Fail("typecheck", t.Diag)
}

// synthFunc re-walks one function's body against its (possibly
// already precheck-bound) signature, reporting any effect performed
// by the body but not listed in its own declared effect set.
func (t *Typer) synthFunc(d *ast.FuncDecl) {
	scope := newTparamScope(d.TypeParams)

	fn, alreadyBound := t.Ctx.LookupFunctionType(d.Symbol)
	if !alreadyBound {
		vparams := make([]types.ValueType, len(d.ValueParams))
		for i, p := range d.ValueParams {
			if p.Type != nil {
				vt, err := t.resolveType(*p.Type, scope)
				if err != nil {
					return
				}
				vparams[i] = vt
			} else {
				vparams[i] = t.Eng.FreshValueVar(t.Eng.CurrentScope())
			}
		}
		fn = &types.FunctionType{TypeParams: d.TypeParams, CaptureParams: d.CParams, ValueParams: vparams, Effects: types.EmptyEffects()}
	}

	mark := t.Ctx.Backup()
	for i, p := range d.ValueParams {
		t.Ctx.BindValue(p.Symbol, fn.ValueParams[i])
	}

	var expected *types.ValueType
	if fn.Result != nil {
		expected = &fn.Result
	}
	res, err := t.checkStmt(d.Body, expected)
	t.Ctx.Restore(mark)
	if err != nil {
		return
	}

	if !alreadyBound {
		fn.Result = res.Type
		fn.Effects = res.Effects
		t.Ctx.BindBlock(d.Symbol, fn)
		return
	}

	declared := types.DealiasEffects(fn.Effects)
	actual := types.DealiasEffects(res.Effects)
	for _, el := range actual.Elems() {
		if !declared.Contains(el) {
			t.fail(d.Position(), diag.KindUnhandledControlEffect,
				"function %q performs effect %s not listed in its signature", d.Symbol.Name, el.String())
		}
	}
}

// checkDefinitions processes a Scope's (or a module's top-level)
// definition list in source order: Lets bind immediately; Defs
// synthesize their block's type and bind it. A forward reference from
// an earlier Def to a later, unannotated one surfaces as the ordinary
// "no function type yet" resolution failure described in §4.1 — local
// scopes do not get the top-level's two-pass precheck treatment.
func (t *Typer) checkDefinitions(defs []ast.Definition) (*types.Effects, error) {
	eff := types.EmptyEffects()
	for _, d := range defs {
		switch d := d.(type) {
		case *ast.Let:
			res, err := t.checkStmtAsExpr(d.Value)
			if err != nil {
				return nil, err
			}
			if d.Binder != nil {
				t.Ctx.BindValue(d.Binder, res.Type)
			}
			eff = eff.Union(res.Effects)

		case *ast.Def:
			fn, captures, err := t.checkBlock(d.Block)
			if err != nil {
				return nil, err
			}
			t.Ctx.BindBlock(d.Symbol, fn)
			t.Ctx.BindCaptures(d.Symbol, captures)
		}
	}
	return eff, nil
}

// checkStmtAsExpr is the Let-binding special case: its "value" is
// whatever expression the front end attached as Value, wrapped so it
// reuses checkExpr's result shape.
func (t *Typer) checkStmtAsExpr(e ast.Expr) (Result, error) {
	return t.checkExpr(e, nil)
}
