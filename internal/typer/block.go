package typer

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
)

// checkBlock synthesizes a block value's type and its capture set.
// Dispatch mirrors synthExpr: BlockVar reads the context's function
// binding, BlockLit checks its own body against a fresh scope,
// Member projects one operation off a capability-typed receiver.
func (t *Typer) checkBlock(b ast.Block) (*types.FunctionType, *types.CaptureSet, error) {
	switch b := b.(type) {
	case *ast.BlockVar:
		fn, ok := t.Ctx.LookupFunctionType(b.Symbol)
		if !ok {
			return nil, nil, t.fail(b.Position(), diag.KindResolution,
				"%q has no function type yet (mutual recursion requires an annotation)", b.Symbol.Name)
		}
		captures, _ := t.Ctx.LookupCaptures(b.Symbol)
		if captures == nil {
			captures = types.NewCaptureSet(&types.CaptureOf{Block: b.Symbol})
		}
		return fn, captures, nil

	case *ast.BlockLit:
		return t.checkBlockLit(b)

	case *ast.Member:
		recvR, err := t.checkExpr(b.Receiver, nil)
		if err != nil {
			return nil, nil, err
		}
		iface, ok := types.Dealias(recvR.Type).(*types.Constructor)
		if !ok {
			return nil, nil, t.fail(b.Position(), diag.KindTypeMismatch, "member selection requires a capability value, found %s", recvR.Type.String())
		}
		info, ok := t.ifaces[iface.Symbol]
		if !ok {
			return nil, nil, t.fail(b.Position(), diag.KindResolution, "%q is not a known capability", iface.Symbol.Name)
		}
		for _, op := range info.operations {
			if op.Symbol.Equal(b.Op) {
				scope := newTparamScope(append(append([]*ast.Symbol{}, info.typeParams...), op.TypeParams...))
				fn, err := t.operationFunctionType(op, scope)
				if err != nil {
					return nil, nil, err
				}
				return fn, types.EmptyCaptureSet(), nil
			}
		}
		return nil, nil, t.fail(b.Position(), diag.KindMissingOperation, "%q has no operation named %q", iface.Symbol.Name, b.Op.Name)

	default:
		return nil, nil, t.fail(b.Position(), diag.KindInternalInvariant, "unrecognized block node %T", b)
	}
}

// operationFunctionType turns an Operation's syntactic signature into
// a FunctionType, used both by Member projection and by handler
// elaboration (§4.3 Handlers).
func (t *Typer) operationFunctionType(op ast.Operation, scope tparamScope) (*types.FunctionType, error) {
	vparams := make([]types.ValueType, len(op.ValueParams))
	for i, p := range op.ValueParams {
		vt, err := t.resolveType(p, scope)
		if err != nil {
			return nil, err
		}
		vparams[i] = vt
	}
	result, err := t.resolveType(op.Result, scope)
	if err != nil {
		return nil, err
	}
	return &types.FunctionType{TypeParams: op.TypeParams, ValueParams: vparams, Result: result, Effects: types.EmptyEffects()}, nil
}

// checkBlockLit checks a literal block's body in a fresh unification
// scope so its parameters' metavariables (when unannotated) cannot
// escape into the enclosing function's own solving.
func (t *Typer) checkBlockLit(b *ast.BlockLit) (*types.FunctionType, *types.CaptureSet, error) {
	scope := newTparamScope(b.TypeParams)
	uscope := t.Eng.EnterScope()

	vparams := make([]types.ValueType, len(b.Params))
	mark := t.Ctx.Backup()
	for i, p := range b.Params {
		var vt types.ValueType
		if p.Type.Symbol != nil || p.Type.Builtin != "" {
			resolved, err := t.resolveType(p.Type, scope)
			if err != nil {
				t.Ctx.Restore(mark)
				t.Eng.LeaveScope(uscope)
				return nil, nil, err
			}
			vt = resolved
		} else {
			vt = t.Eng.FreshValueVar(uscope)
		}
		vparams[i] = vt
		t.Ctx.BindValue(p.Symbol, vt)
	}

	res, err := t.checkStmt(b.Body, nil)
	t.Ctx.Restore(mark)
	if errs := t.Eng.LeaveScope(uscope); len(errs) > 0 {
		for _, e := range errs {
			t.fail(b.Position(), diag.KindEscapingSkolem, "%v", e)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	fn := &types.FunctionType{
		TypeParams:  b.TypeParams,
		ValueParams: vparams,
		Result:      res.Type,
		Effects:     res.Effects,
	}
	return fn, types.EmptyCaptureSet(), nil
}
