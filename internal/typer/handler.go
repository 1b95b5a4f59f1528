package typer

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
)

// checkTryHandle implements §4.3 "Handlers (TryHandle)". The body is
// checked first, under the handled effects pushed into the lexical
// list, which fixes ret (the handler's own result type) to the body's
// synthesized type; every operation clause is then checked against
// that same ret.
func (t *Typer) checkTryHandle(th *ast.TryHandle) (Result, error) {
	handledSet := types.EmptyEffects()
	for _, h := range th.Handlers {
		handledSet = handledSet.Union(types.NewEffects(&types.EffectInterface{Symbol: h.Effect}))
	}

	mark := t.Ctx.Backup()
	for _, el := range handledSet.Elems() {
		t.Ctx.PushEffect(el)
	}
	bodyR, err := t.checkStmt(th.Body, nil)
	t.Ctx.Restore(mark)
	if err != nil {
		return Result{}, err
	}
	ret := bodyR.Type

	handlerEffsUnion := types.EmptyEffects()
	usedHandled := types.EmptyEffects()

	for _, h := range th.Handlers {
		info, ok := t.ifaces[h.Effect]
		if !ok {
			t.fail(h.Pos, diag.KindResolution, "%q is not a known capability", h.Effect.Name)
			continue
		}

		declared := map[*ast.Symbol]bool{}
		for _, op := range info.operations {
			declared[op.Symbol] = true
		}
		seen := map[*ast.Symbol]int{}
		for _, clause := range h.Clauses {
			seen[clause.Op]++
		}
		for sym := range declared {
			if seen[sym] == 0 {
				t.fail(h.Pos, diag.KindMissingOperation, "handler for %q is missing operation %q", h.Effect.Name, sym.Name)
			}
		}
		for sym, count := range seen {
			if !declared[sym] {
				t.fail(h.Pos, diag.KindMissingOperation, "%q declares no operation %q", h.Effect.Name, sym.Name)
				continue
			}
			if count > 1 {
				t.fail(h.Pos, diag.KindDuplicateOperation, "operation %q implemented %d times in this handler", sym.Name, count)
			}
		}

		// The interface's own type parameters stay rigid for the
		// lifetime of this handler; h.TArgs picks their instantiation
		// at the TryHandle's own call site, which the ML transformer
		// resolves later when lowering the handler's evidence — the
		// Typer only needs a consistent rigid scope to type each
		// clause against.
		ifaceScope := newTparamScope(info.typeParams)

		handlerEff := types.EmptyEffects()
		for _, clause := range h.Clauses {
			var op *ast.Operation
			for i := range info.operations {
				if info.operations[i].Symbol.Equal(clause.Op) {
					op = &info.operations[i]
					break
				}
			}
			if op == nil {
				continue
			}
			otherEffs, opErr := t.checkOpClause(clause, *op, ifaceScope, ret)
			if opErr != nil {
				continue
			}
			handlerEff = handlerEff.Union(otherEffs)
		}
		handlerEffsUnion = handlerEffsUnion.Union(handlerEff)
		usedHandled.Add(&types.EffectInterface{Symbol: h.Effect})
	}

	for _, el := range handledSet.Elems() {
		if !usedHandled.Contains(el) {
			t.warn(th.Position(), diag.KindUnhandledControlEffect, "handled effect %s is never used", el.String())
		}
	}

	effectsOut := bodyR.Effects.Minus(handledSet).Union(handlerEffsUnion)
	return Result{Type: ret, Effects: effectsOut}, nil
}

// checkOpClause checks one operation implementation, binding its
// parameters and a resume continuation of the shape §4.3 describes,
// then checking its body against ret. It returns the clause body's
// effects together with the "otherEffects" the bidirectional
// continuation type exposed to the body; both contribute to the
// handler's overall effectsOut.
func (t *Typer) checkOpClause(clause ast.OpClause, op ast.Operation, ifaceScope tparamScope, ret types.ValueType) (*types.Effects, error) {
	existScope := make(tparamScope, len(ifaceScope)+len(op.TypeParams))
	for k, v := range ifaceScope {
		existScope[k] = v
	}
	for _, tp := range op.TypeParams {
		existScope[tp] = &types.Var{Symbol: tp}
	}

	opFn, err := t.operationFunctionType(op, existScope)
	if err != nil {
		return nil, err
	}

	if len(clause.Params) != len(opFn.ValueParams) {
		t.fail(clause.Pos, diag.KindArity, "operation %q expects %d parameter(s), clause has %d", op.Symbol.Name, len(opFn.ValueParams), len(clause.Params))
	}

	mark := t.Ctx.Backup()
	defer t.Ctx.Restore(mark)

	n := len(clause.Params)
	if len(opFn.ValueParams) < n {
		n = len(opFn.ValueParams)
	}
	for i := 0; i < n; i++ {
		t.Ctx.BindValue(clause.Params[i], opFn.ValueParams[i])
	}

	otherEffs := types.EmptyEffects()
	if clause.Resume != nil {
		var resumeFn *types.FunctionType
		if op.Bidirectional {
			inner := &types.FunctionType{Result: opFn.Result, Effects: otherEffs}
			resumeFn = &types.FunctionType{
				Result:  &types.Boxed{Block: inner, Captures: types.EmptyCaptureSet()},
				Effects: types.EmptyEffects(),
			}
		} else {
			resumeFn = &types.FunctionType{ValueParams: []types.ValueType{opFn.Result}, Result: ret, Effects: types.EmptyEffects()}
		}
		t.Ctx.BindBlock(clause.Resume, resumeFn)
		t.Ctx.BindCaptures(clause.Resume, types.EmptyCaptureSet())
	}

	expected := &ret
	bodyR, err := t.checkStmt(clause.Body, expected)
	if err != nil {
		return nil, err
	}

	for _, tp := range op.TypeParams {
		for _, el := range bodyR.Effects.Elems() {
			if iface, ok := el.(*types.EffectInterface); ok {
				for _, a := range iface.Args {
					if v, ok := a.(*types.Var); ok && v.Symbol.Equal(tp) {
						t.fail(clause.Pos, diag.KindEscapingEffect, "existential type parameter %q of operation %q escapes into the handler body's effects", tp.Name, op.Symbol.Name)
					}
				}
			}
		}
	}

	return bodyR.Effects.Union(otherEffs), nil
}
