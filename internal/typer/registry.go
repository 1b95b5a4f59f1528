package typer

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
)

// registerDecl adds one top-level declaration to the appropriate
// registry and, for the shapes that carry a full type on their own,
// binds that type directly into the context. Grounded on the
// teacher's two-pass global-binding setup in
// typechecker_core.go's InferWithConstraints (globalTypes populated
// ahead of body inference).
func (t *Typer) registerDecl(d ast.Decl) {
	switch d := d.(type) {
	case *ast.DataDecl:
		info := &dataInfo{symbol: d.Symbol, typeParams: d.TypeParams}
		t.data[d.Symbol] = info
		for _, c := range d.Constructors {
			t.ctors[c.Symbol] = &ctorInfo{data: info, fields: c.Fields}
			t.bindConstructor(c.Symbol, info, c.Fields)
		}

	case *ast.RecordDecl:
		info := &dataInfo{symbol: d.Symbol, typeParams: d.TypeParams}
		t.data[d.Symbol] = info
		fields := make([]ast.ValueTypeRef, len(d.Fields))
		names := make([]*ast.Symbol, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = f.Type
			names[i] = f.Name
		}
		t.ctors[d.Symbol] = &ctorInfo{data: info, fields: fields, fieldNames: names}
		t.bindConstructor(d.Symbol, info, fields)

	case *ast.InterfaceDecl:
		t.ifaces[d.Symbol] = &ifaceInfo{symbol: d.Symbol, typeParams: d.TypeParams, operations: d.Operations}

	case *ast.TypeAliasDecl:
		scope := newTparamScope(d.TypeParams)
		rhs, err := t.resolveType(d.RHS, scope)
		if err != nil {
			return
		}
		t.aliases[d.Symbol] = &types.TypeAlias{Symbol: d.Symbol, TypeParams: d.TypeParams, RHS: rhs}

	case *ast.EffectAliasDecl:
		scope := newTparamScope(d.TypeParams)
		eff, err := t.effectsFromRefs(d.Effects, scope)
		if err != nil {
			return
		}
		t.effAlias[d.Symbol] = &types.EffectAlias{Symbol: d.Symbol, TypeParams: d.TypeParams, Effects: eff.Elems()}

	case *ast.ExternDecl:
		scope := tparamScope{}
		vt, err := t.resolveType(d.Type, scope)
		if err != nil {
			return
		}
		if fn, ok := boxedFunctionType(vt); ok {
			// Early, buffered versions of the back end's fatal
			// structural checks (§7), so the programmer hears about a
			// bad extern signature before the transformer aborts on it.
			if len(fn.TypeParams) > 0 {
				t.fail(d.Position(), diag.KindArity, "extern %q may not be polymorphic", d.Symbol.Name)
			}
			if len(fn.BlockParams) > 0 {
				t.fail(d.Position(), diag.KindArity, "extern %q may not take block parameters", d.Symbol.Name)
			}
			for _, p := range fn.ValueParams {
				if _, boxed := types.Dealias(p).(*types.Boxed); boxed {
					t.fail(d.Position(), diag.KindArity, "extern %q may not take function-valued parameters", d.Symbol.Name)
					break
				}
			}
			t.Ctx.BindBlock(d.Symbol, fn)
		} else {
			t.Ctx.BindValue(d.Symbol, vt)
		}
	}
}

// bindConstructor gives a data/record constructor a callable function
// type (one value parameter per field, returning the applied data
// type) so an identifier-headed Call to the constructor symbol
// resolves through the same overload machinery as any other call.
func (t *Typer) bindConstructor(sym *ast.Symbol, info *dataInfo, fields []ast.ValueTypeRef) {
	scope := newTparamScope(info.typeParams)
	vparams := make([]types.ValueType, len(fields))
	for i, f := range fields {
		vt, err := t.resolveType(f, scope)
		if err != nil {
			return
		}
		vparams[i] = vt
	}
	retArgs := make([]types.ValueType, len(info.typeParams))
	for i, tp := range info.typeParams {
		retArgs[i] = scope[tp]
	}
	t.Ctx.BindBlock(sym, &types.FunctionType{
		TypeParams:  info.typeParams,
		ValueParams: vparams,
		Result:      &types.Constructor{Symbol: info.symbol, Args: retArgs},
		Effects:     types.EmptyEffects(),
	})
}

// boxedFunctionType unwraps a Boxed(FunctionType) value type, the
// shape a syntactic function-typed extern resolves to.
func boxedFunctionType(vt types.ValueType) (*types.FunctionType, bool) {
	b, ok := vt.(*types.Boxed)
	if !ok {
		return nil, false
	}
	return b.Block, true
}

// precheckFunc attempts to assemble a FuncDecl's function type purely
// from its own annotations, binding it so that mutually recursive
// definitions that annotate their signatures resolve on first lookup
// (§4.3 "Definition phase", pass 1).
func (t *Typer) precheckFunc(d *ast.FuncDecl) bool {
	if d.Result == nil {
		return false
	}
	for _, p := range d.ValueParams {
		if p.Type == nil {
			return false
		}
	}
	scope := newTparamScope(d.TypeParams)
	vparams := make([]types.ValueType, len(d.ValueParams))
	for i, p := range d.ValueParams {
		vt, err := t.resolveType(*p.Type, scope)
		if err != nil {
			return false
		}
		vparams[i] = vt
	}
	result, err := t.resolveType(*d.Result, scope)
	if err != nil {
		return false
	}
	eff, err := t.effectsFromRefs(d.Effects, scope)
	if err != nil {
		return false
	}
	fn := &types.FunctionType{
		TypeParams:    d.TypeParams,
		CaptureParams: d.CParams,
		ValueParams:   vparams,
		Result:        result,
		Effects:       eff,
	}
	t.Ctx.BindBlock(d.Symbol, fn)
	return true
}
