package typer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

var nextID uint64

func sym(name string, kind ast.SymbolKind) *ast.Symbol {
	nextID++
	return ast.NewSymbol(nextID, name, kind)
}

func lit(v int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, Value: v}
}

func TestLiteralSynthesizesBuiltinType(t *testing.T) {
	tr := New(nil)
	res, err := tr.checkExpr(lit(1), nil)
	require.NoError(t, err)
	assert.Same(t, types.TInt, res.Type)
	assert.True(t, res.Effects.Empty())
}

func TestIfJoinsBranchTypes(t *testing.T) {
	tr := New(nil)
	expr := &ast.If{
		Cond: &ast.Literal{Kind: ast.LitBool, Value: true},
		Then: lit(1),
		Else: lit(2),
	}
	res, err := tr.checkExpr(expr, nil)
	require.NoError(t, err)
	assert.Same(t, types.TInt, res.Type)
}

func TestIfBranchMismatchIsError(t *testing.T) {
	tr := New(nil)
	expr := &ast.If{
		Cond: &ast.Literal{Kind: ast.LitBool, Value: true},
		Then: lit(1),
		Else: &ast.Literal{Kind: ast.LitString, Value: "x"},
	}
	_, err := tr.checkExpr(expr, nil)
	assert.Error(t, err)
}

func TestVarOnBlockSymbolIsHardError(t *testing.T) {
	tr := New(nil)
	blockSym := sym("doIt", ast.BlockSymbolKind)
	_, err := tr.checkExpr(&ast.Var{Symbol: blockSym}, nil)
	require.Error(t, err)
	assert.Len(t, tr.Diag.Items(), 1)
	assert.Equal(t, "type_mismatch", string(tr.Diag.Items()[0].Kind))
}

func TestUnboundValueReportsResolutionError(t *testing.T) {
	tr := New(nil)
	valueSym := sym("x", ast.ValueSymbolKind)
	_, err := tr.checkExpr(&ast.Var{Symbol: valueSym}, nil)
	require.Error(t, err)
	assert.Equal(t, "resolution_error", string(tr.Diag.Items()[0].Kind))
}

func TestBoundValueResolves(t *testing.T) {
	tr := New(nil)
	valueSym := sym("x", ast.ValueSymbolKind)
	tr.Ctx.BindValue(valueSym, types.TString)
	res, err := tr.checkExpr(&ast.Var{Symbol: valueSym}, nil)
	require.NoError(t, err)
	assert.Same(t, types.TString, res.Type)
}

func TestOverloadResolutionCommitsUniqueCandidate(t *testing.T) {
	tr := New(nil)
	good := sym("plus.int", ast.BlockSymbolKind)
	bad := sym("plus.str", ast.BlockSymbolKind)
	tr.Ctx.BindBlock(good, &types.FunctionType{
		ValueParams: []types.ValueType{types.TInt, types.TInt},
		Result:      types.TInt,
		Effects:     types.EmptyEffects(),
	})
	tr.Ctx.BindBlock(bad, &types.FunctionType{
		ValueParams: []types.ValueType{types.TString, types.TString},
		Result:      types.TString,
		Effects:     types.EmptyEffects(),
	})

	call := &ast.Call{
		Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{good, bad}}},
		ValueArgs: []ast.Expr{lit(1), lit(2)},
	}
	res, err := tr.checkExpr(call, nil)
	require.NoError(t, err)
	assert.Same(t, types.TInt, res.Type)
	assert.True(t, call.Resolved.Equal(good))
}

func TestOverloadResolutionFallsThroughToOuterLayer(t *testing.T) {
	tr := New(nil)
	inner := sym("shadow", ast.BlockSymbolKind)
	outer := sym("shadow.outer", ast.BlockSymbolKind)
	tr.Ctx.BindBlock(inner, &types.FunctionType{
		ValueParams: []types.ValueType{types.TString},
		Result:      types.TString,
		Effects:     types.EmptyEffects(),
	})
	tr.Ctx.BindBlock(outer, &types.FunctionType{
		ValueParams: []types.ValueType{types.TInt},
		Result:      types.TInt,
		Effects:     types.EmptyEffects(),
	})

	call := &ast.Call{
		Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{inner}, {outer}}},
		ValueArgs: []ast.Expr{lit(1)},
	}
	res, err := tr.checkExpr(call, nil)
	require.NoError(t, err)
	assert.Same(t, types.TInt, res.Type)
	assert.True(t, call.Resolved.Equal(outer))
}

func TestOverloadResolutionAmbiguousWhenBothSucceed(t *testing.T) {
	tr := New(nil)
	a := sym("a", ast.BlockSymbolKind)
	b := sym("b", ast.BlockSymbolKind)
	same := &types.FunctionType{ValueParams: []types.ValueType{types.TInt}, Result: types.TInt, Effects: types.EmptyEffects()}
	tr.Ctx.BindBlock(a, same)
	tr.Ctx.BindBlock(b, same)

	call := &ast.Call{
		Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{a, b}}},
		ValueArgs: []ast.Expr{lit(1)},
	}
	_, err := tr.checkExpr(call, nil)
	require.Error(t, err)
	assert.Equal(t, "ambiguous", string(tr.Diag.Items()[0].Kind))
}

func TestOverloadResolutionUsesExpectedReturnType(t *testing.T) {
	tr := New(nil)
	asInt := sym("parse.int", ast.BlockSymbolKind)
	asDouble := sym("parse.double", ast.BlockSymbolKind)
	tr.Ctx.BindBlock(asInt, &types.FunctionType{
		ValueParams: []types.ValueType{types.TString},
		Result:      types.TInt,
		Effects:     types.EmptyEffects(),
	})
	tr.Ctx.BindBlock(asDouble, &types.FunctionType{
		ValueParams: []types.ValueType{types.TString},
		Result:      types.TDouble,
		Effects:     types.EmptyEffects(),
	})

	call := &ast.Call{
		Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{asInt, asDouble}}},
		ValueArgs: []ast.Expr{&ast.Literal{Kind: ast.LitString, Value: "1"}},
	}
	expected := types.ValueType(types.TDouble)
	res, err := tr.checkExpr(call, &expected)
	require.NoError(t, err)
	assert.Same(t, types.TDouble, res.Type)
	assert.True(t, call.Resolved.Equal(asDouble))
}

func TestFailedTrialLeavesNoSolverResidue(t *testing.T) {
	tr := New(nil)
	alpha := sym("a", ast.TypeSymbolKind)
	generic := sym("id", ast.BlockSymbolKind)
	tr.Ctx.BindBlock(generic, &types.FunctionType{
		TypeParams:  []*ast.Symbol{alpha},
		ValueParams: []types.ValueType{&types.Var{Symbol: alpha}},
		Result:      &types.Var{Symbol: alpha},
		Effects:     types.EmptyEffects(),
	})
	concrete := sym("asBool", ast.BlockSymbolKind)
	tr.Ctx.BindBlock(concrete, &types.FunctionType{
		ValueParams: []types.ValueType{types.TInt},
		Result:      types.TBool,
		Effects:     types.EmptyEffects(),
	})

	// The generic candidate is tried first (lower symbol id): it
	// solves its metavariable to Bool from the expected return, then
	// fails on the Int argument. That solution must not survive into
	// the committed candidate's run.
	call := &ast.Call{
		Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{generic, concrete}}},
		ValueArgs: []ast.Expr{lit(1)},
	}
	expected := types.ValueType(types.TBool)
	res, err := tr.checkExpr(call, &expected)
	require.NoError(t, err)
	assert.Same(t, types.TBool, res.Type)
	assert.True(t, call.Resolved.Equal(concrete))
	assert.False(t, tr.Diag.HasErrors())
}

func TestCommittedCallIsAnnotatedWithInferredTypeArgs(t *testing.T) {
	tr := New(nil)
	alpha := sym("a", ast.TypeSymbolKind)
	identity := sym("identity", ast.BlockSymbolKind)
	tr.Ctx.BindBlock(identity, &types.FunctionType{
		TypeParams:  []*ast.Symbol{alpha},
		ValueParams: []types.ValueType{&types.Var{Symbol: alpha}},
		Result:      &types.Var{Symbol: alpha},
		Effects:     types.EmptyEffects(),
	})

	call := &ast.Call{
		Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{identity}}},
		ValueArgs: []ast.Expr{lit(7)},
	}
	res, err := tr.checkExpr(call, nil)
	require.NoError(t, err)
	assert.Same(t, types.TInt, res.Type)

	targs := tr.TypeArgsAt(call)
	require.Len(t, targs, 1)
	assert.Same(t, types.TInt, targs[0])
}

func TestHandlerReportsMissingOperation(t *testing.T) {
	tr := New(nil)
	ifaceSym := sym("Console", ast.TypeSymbolKind)
	printOp := sym("print", ast.ValueSymbolKind)
	readOp := sym("read", ast.ValueSymbolKind)
	tr.ifaces[ifaceSym] = &ifaceInfo{
		symbol: ifaceSym,
		operations: []ast.Operation{
			{Symbol: printOp, ValueParams: []ast.ValueTypeRef{{Builtin: "String"}}, Result: ast.ValueTypeRef{Builtin: "Unit"}},
			{Symbol: readOp, Result: ast.ValueTypeRef{Builtin: "String"}},
		},
	}

	clauseParam := sym("s", ast.ValueSymbolKind)
	resumeSym := sym("k", ast.ValueSymbolKind)
	th := &ast.TryHandle{
		Body: &ast.Return{Value: lit(1)},
		Handlers: []ast.Handler{
			{
				Effect: ifaceSym,
				Clauses: []ast.OpClause{
					{Op: printOp, Params: []*ast.Symbol{clauseParam}, Resume: resumeSym, Body: &ast.Return{Value: lit(1)}},
				},
			},
		},
	}
	_, err := tr.checkExpr(th, nil)
	require.NoError(t, err)
	found := false
	for _, d := range tr.Diag.Items() {
		if string(d.Kind) == "missing_operation" {
			found = true
		}
	}
	assert.True(t, found, "expected a missing_operation diagnostic for the unimplemented read operation")
}

func TestConstructorCallSynthesizesTheAppliedDataType(t *testing.T) {
	tr := New(nil)
	optionSym := sym("Option", ast.TypeSymbolKind)
	alpha := sym("a", ast.TypeSymbolKind)
	someSym := sym("Some", ast.BlockSymbolKind)
	decl := &ast.DataDecl{
		Symbol:     optionSym,
		TypeParams: []*ast.Symbol{alpha},
		Constructors: []ast.Constructor{
			{Symbol: someSym, Fields: []ast.ValueTypeRef{{Symbol: alpha}}},
		},
	}
	tr.registerDecl(decl)

	call := &ast.Call{
		Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{someSym}}},
		ValueArgs: []ast.Expr{lit(1)},
	}
	res, err := tr.checkExpr(call, nil)
	require.NoError(t, err)
	ctor, ok := res.Type.(*types.Constructor)
	require.True(t, ok)
	assert.True(t, ctor.Symbol.Equal(optionSym))
	require.Len(t, ctor.Args, 1)
	assert.Same(t, types.TInt, ctor.Args[0])
}

func TestSelectResolvesARecordFieldByName(t *testing.T) {
	tr := New(nil)
	pairSym := sym("Pair", ast.TypeSymbolKind)
	firstField := sym("first", ast.ValueSymbolKind)
	secondField := sym("second", ast.ValueSymbolKind)
	decl := &ast.RecordDecl{
		Symbol: pairSym,
		Fields: []ast.RecordField{
			{Name: firstField, Type: ast.ValueTypeRef{Builtin: "Int"}},
			{Name: secondField, Type: ast.ValueTypeRef{Builtin: "String"}},
		},
	}
	tr.registerDecl(decl)

	p := sym("p", ast.ValueSymbolKind)
	tr.Ctx.BindValue(p, &types.Constructor{Symbol: pairSym})

	res, err := tr.checkExpr(&ast.Select{Receiver: &ast.Var{Symbol: p}, Field: secondField}, nil)
	require.NoError(t, err)
	assert.Same(t, types.TString, res.Type)
}

func TestSelectOnAnUnknownFieldIsAResolutionError(t *testing.T) {
	tr := New(nil)
	pairSym := sym("Pair", ast.TypeSymbolKind)
	firstField := sym("first", ast.ValueSymbolKind)
	decl := &ast.RecordDecl{
		Symbol: pairSym,
		Fields: []ast.RecordField{{Name: firstField, Type: ast.ValueTypeRef{Builtin: "Int"}}},
	}
	tr.registerDecl(decl)

	p := sym("p", ast.ValueSymbolKind)
	tr.Ctx.BindValue(p, &types.Constructor{Symbol: pairSym})

	ghost := sym("ghost", ast.ValueSymbolKind)
	_, err := tr.checkExpr(&ast.Select{Receiver: &ast.Var{Symbol: p}, Field: ghost}, nil)
	require.Error(t, err)
	assert.Equal(t, "resolution_error", string(tr.Diag.Items()[0].Kind))
}

func TestTagPatternBindsNestedFields(t *testing.T) {
	tr := New(nil)
	dataSym := sym("Option", ast.TypeSymbolKind)
	someSym := sym("Some", ast.ValueSymbolKind)
	info := &dataInfo{symbol: dataSym}
	tr.data[dataSym] = info
	tr.ctors[someSym] = &ctorInfo{data: info, fields: []ast.ValueTypeRef{{Builtin: "Int"}}}

	inner := sym("x", ast.ValueSymbolKind)
	pattern := &ast.TagPattern{Constructor: someSym, Nested: []ast.Pattern{&ast.AnyPattern{Symbol: inner}}}

	scrutinee := &types.Constructor{Symbol: dataSym}
	bindings, err := tr.checkPattern(scrutinee, pattern)
	require.NoError(t, err)
	assert.Same(t, types.TInt, bindings[inner])
}

func TestTagPatternArityMismatchReportsButDoesNotAbort(t *testing.T) {
	tr := New(nil)
	dataSym := sym("Option", ast.TypeSymbolKind)
	someSym := sym("Some", ast.ValueSymbolKind)
	info := &dataInfo{symbol: dataSym}
	tr.data[dataSym] = info
	tr.ctors[someSym] = &ctorInfo{data: info, fields: []ast.ValueTypeRef{{Builtin: "Int"}}}

	pattern := &ast.TagPattern{Constructor: someSym, Nested: []ast.Pattern{}}
	scrutinee := &types.Constructor{Symbol: dataSym}
	_, err := tr.checkPattern(scrutinee, pattern)
	require.NoError(t, err)
	assert.Equal(t, "arity", string(tr.Diag.Items()[0].Kind))
}

func TestModulePrecheckEnablesMutualRecursion(t *testing.T) {
	tr := New(nil)
	isEven := sym("isEven", ast.BlockSymbolKind)
	isOdd := sym("isOdd", ast.BlockSymbolKind)
	n := sym("n", ast.ValueSymbolKind)

	intRef := func() *ast.ValueTypeRef { return &ast.ValueTypeRef{Builtin: "Int"} }
	boolResult := ast.ValueTypeRef{Builtin: "Bool"}

	isEvenDecl := &ast.FuncDecl{
		Symbol:      isEven,
		ValueParams: []ast.FuncParam{{Symbol: n, Type: intRef()}},
		Result:      &boolResult,
		Body: &ast.Return{Value: &ast.Call{
			Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{isOdd}}},
			ValueArgs: []ast.Expr{&ast.Var{Symbol: n}},
		}},
	}
	isOddDecl := &ast.FuncDecl{
		Symbol:      isOdd,
		ValueParams: []ast.FuncParam{{Symbol: n, Type: intRef()}},
		Result:      &boolResult,
		Body: &ast.Return{Value: &ast.Call{
			Target:    ast.CallTarget{IDLayers: [][]*ast.Symbol{{isEven}}},
			ValueArgs: []ast.Expr{&ast.Var{Symbol: n}},
		}},
	}

	m := &ast.Module{Decls: []ast.Decl{isEvenDecl, isOddDecl}}
	err := tr.CheckModule(m)
	assert.NoError(t, err)
}
