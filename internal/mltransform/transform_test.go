package mltransform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/cps"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
	"github.com/fabled/effectc/internal/types"
)

func TestReturnAppliesTheContinuationToItsValue(t *testing.T) {
	term := &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 42}}
	out := cps.Run(toMLExpr(New(), term))
	assert.Equal(t, "42", out.String())
}

func TestValBindsBoundAheadOfLoweringBody(t *testing.T) {
	x := ast.NewSymbol(1, "x", ast.ValueSymbolKind)
	term := &lifted.Val{
		Binder: x,
		Bound:  &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 1}},
		Body:   &lifted.Return{Value: &lifted.VarRef{Symbol: x}},
	}
	out := cps.Run(toMLExpr(New(), term))
	let, ok := out.(*mlast.Let)
	require.True(t, ok)
	assert.Equal(t, "x", let.Bindings[0].Name)
	assert.Equal(t, "1", let.Bindings[0].Val.String())
	assert.Equal(t, "x", let.Body.String())
}

func TestIfMaterializesTheIdentityContinuationOnceAcrossBothArms(t *testing.T) {
	term := &lifted.If{
		Cond: &lifted.Literal{Kind: ast.LitBool, Value: true},
		Then: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 1}},
		Else: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 2}},
	}
	out := cps.Run(toMLExpr(New(), term))
	let, ok := out.(*mlast.Let)
	require.True(t, ok, "a static continuation forced across an if's two arms must be named once")
	require.Len(t, let.Bindings, 1)
	ifExpr, ok := let.Body.(*mlast.If)
	require.True(t, ok)
	assert.Contains(t, ifExpr.Then.String(), let.Bindings[0].Name)
	assert.Contains(t, ifExpr.Else.String(), let.Bindings[0].Name)
}

func TestIfPassesThroughAnAlreadyDynamicContinuationWithoutRebinding(t *testing.T) {
	term := &lifted.If{
		Cond: &lifted.Literal{Kind: ast.LitBool, Value: true},
		Then: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 1}},
		Else: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 2}},
	}
	out := toMLExpr(New(), term)(cps.FromExpr(&mlast.Variable{Name: "k"}))
	assert.NotContains(t, out.String(), "let")
	assert.Contains(t, out.String(), "k 1")
	assert.Contains(t, out.String(), "k 2")
}

func TestStateGetAndPutLowerToDerefAndAssignDirectly(t *testing.T) {
	cell := ast.NewSymbol(1, "cell", ast.ValueSymbolKind)
	get := ast.NewSymbol(2, "get", ast.BlockSymbolKind)
	getTerm := &lifted.App{Block: &lifted.Member{Receiver: &lifted.VarRef{Symbol: cell}, Op: get}}
	out := cps.Run(toMLExpr(New(), getTerm))
	_, ok := out.(*mlast.Deref)
	assert.True(t, ok)

	put := ast.NewSymbol(3, "put", ast.BlockSymbolKind)
	putTerm := &lifted.App{
		Block: &lifted.Member{Receiver: &lifted.VarRef{Symbol: cell}, Op: put},
		Args:  []lifted.Atom{&lifted.Literal{Kind: ast.LitInt, Value: 9}},
	}
	out2 := cps.Run(toMLExpr(New(), putTerm))
	assign, ok := out2.(*mlast.Assign)
	require.True(t, ok)
	assert.Equal(t, "9", assign.Value.String())
}

func TestOrdinaryApplicationAppendsTheReifiedContinuationAsALastArgument(t *testing.T) {
	f := ast.NewSymbol(1, "f", ast.BlockSymbolKind)
	term := &lifted.App{
		Block: &lifted.BlockVar{Symbol: f},
		Args:  []lifted.Atom{&lifted.Literal{Kind: ast.LitInt, Value: 1}},
	}
	out := cps.Run(toMLExpr(New(), term))
	call, ok := out.(*mlast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "1", call.Args[0].String())
}

func TestTryBindsEachHandlerCapabilityAheadOfTheBody(t *testing.T) {
	h := ast.NewSymbol(1, "h", ast.CaptureSymbolKind)
	eff := ast.NewSymbol(2, "Eff", ast.TypeSymbolKind)
	op := ast.NewSymbol(3, "op", ast.BlockSymbolKind)
	resume := ast.NewSymbol(4, "resume", ast.ValueSymbolKind)
	handler := lifted.HandlerImpl{
		Symbol: h,
		Effect: eff,
		Clauses: []lifted.OpClauseImpl{
			{Op: op, Resume: resume, Body: &lifted.Return{Value: &lifted.VarRef{Symbol: resume}}},
		},
	}
	term := &lifted.Try{
		Body:     &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 0}},
		Handlers: []lifted.HandlerImpl{handler},
	}
	out := cps.Run(toMLExpr(New(), term))
	let, ok := out.(*mlast.Let)
	require.True(t, ok)
	assert.Equal(t, "h", let.Bindings[0].Name)
}

func TestScopeLowersALocalSelfRecursiveDefAsAFunBinding(t *testing.T) {
	loop := ast.NewSymbol(1, "loop", ast.BlockSymbolKind)
	body := &lifted.App{Block: &lifted.BlockVar{Symbol: loop}}
	def := &lifted.Def{Symbol: loop, Block: &lifted.BlockLit{Body: body}}
	scope := &lifted.Scope{
		Definitions: []lifted.Definition{def},
		Body:        &lifted.Return{Value: &lifted.Literal{Kind: ast.LitUnit}},
	}

	out := cps.Run(toMLExpr(New(), scope))
	let, ok := out.(*mlast.Let)
	require.True(t, ok)
	assert.Equal(t, "loop", let.Bindings[0].Name)
	assert.NotEmpty(t, let.Bindings[0].Params, "a self-recursive local def needs fun, not val, binding")
}

func TestLowerDataSingleConstructorEmitsARecordAndItsAccessors(t *testing.T) {
	dataSym := ast.NewSymbol(1, "pair", ast.TypeSymbolKind)
	ctorSym := ast.NewSymbol(2, "Pair", ast.ValueSymbolKind)
	data := &lifted.Data{
		Symbol: dataSym,
		Ctors:  []lifted.Ctor{{Symbol: ctorSym, Fields: []types.ValueType{types.TInt, types.TString}}},
	}
	binds, err := LowerDecl(New(), data)
	require.NoError(t, err)
	require.Len(t, binds, 3)
	db, ok := binds[0].(*mlast.DataBind)
	require.True(t, ok)
	assert.Equal(t, "pair", db.Name)
	fn1, ok := binds[1].(*mlast.FunBind)
	require.True(t, ok)
	assert.Equal(t, "Pair_field1", fn1.Name)
	fn2, ok := binds[2].(*mlast.FunBind)
	require.True(t, ok)
	assert.Equal(t, "Pair_field2", fn2.Name)
}

func TestLowerDataMultipleConstructorsEmitsNoAccessors(t *testing.T) {
	dataSym := ast.NewSymbol(1, "shape", ast.TypeSymbolKind)
	data := &lifted.Data{
		Symbol: dataSym,
		Ctors: []lifted.Ctor{
			{Symbol: ast.NewSymbol(2, "Circle", ast.ValueSymbolKind), Fields: []types.ValueType{types.TDouble}},
			{Symbol: ast.NewSymbol(3, "Square", ast.ValueSymbolKind), Fields: []types.ValueType{types.TDouble}},
		},
	}
	binds, err := LowerDecl(New(), data)
	require.NoError(t, err)
	require.Len(t, binds, 1)
	db, ok := binds[0].(*mlast.DataBind)
	require.True(t, ok)
	assert.Len(t, db.Ctors, 2)
}

func TestTwoInterfacesOfTheSameArityShareOneObjectTypeFamily(t *testing.T) {
	tr := New()
	iface1 := &lifted.Interface{
		Symbol: ast.NewSymbol(1, "Reader", ast.TypeSymbolKind),
		Ops:    []lifted.Op{{Symbol: ast.NewSymbol(2, "read", ast.BlockSymbolKind)}},
	}
	iface2 := &lifted.Interface{
		Symbol: ast.NewSymbol(3, "Emitter", ast.TypeSymbolKind),
		Ops:    []lifted.Op{{Symbol: ast.NewSymbol(4, "emit", ast.BlockSymbolKind)}},
	}
	first, err := LowerDecl(tr, iface1)
	require.NoError(t, err)
	second, err := LowerDecl(tr, iface2)
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.Empty(t, second, "a second interface of an already-declared arity registers no further bindings")
	assert.Equal(t, tr.arity[iface1.Symbol], tr.arity[iface2.Symbol])
}

func TestTransformModuleAppliesMainToTwoIdentityContinuations(t *testing.T) {
	main := ast.NewSymbol(1, "main", ast.BlockSymbolKind)
	def := &lifted.Def{
		Symbol: main,
		Block: &lifted.BlockLit{
			Params: nil,
			Body:   &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 0}},
		},
	}
	tl, err := TransformModule(New(), nil, []lifted.Definition{def}, main)
	require.NoError(t, err)
	require.NotNil(t, tl.MainCall)
	call, ok := tl.MainCall.(*mlast.Call)
	require.True(t, ok)
	assert.Equal(t, "main", call.Fn.String())
	require.Len(t, call.Args, 2)
	assert.Equal(t, "(fn x => x)", call.Args[0].String())
}

func registerShape(t *testing.T, tr *Transformer) (some, none, pair *ast.Symbol) {
	t.Helper()
	some = ast.NewSymbol(10, "Some", ast.ValueSymbolKind)
	none = ast.NewSymbol(11, "None", ast.ValueSymbolKind)
	pair = ast.NewSymbol(12, "Pair", ast.ValueSymbolKind)
	optSym := ast.NewSymbol(13, "option", ast.TypeSymbolKind)
	pairSym := ast.NewSymbol(14, "pair", ast.TypeSymbolKind)
	_, err := LowerDecl(tr, &lifted.Data{Symbol: optSym, Ctors: []lifted.Ctor{
		{Symbol: none},
		{Symbol: some, Fields: []types.ValueType{types.TInt}},
	}})
	require.NoError(t, err)
	_, err = LowerDecl(tr, &lifted.Data{Symbol: pairSym, Ctors: []lifted.Ctor{
		{Symbol: pair, Fields: []types.ValueType{types.TInt, types.TString}},
	}})
	require.NoError(t, err)
	return some, none, pair
}

func TestConstructorApplicationLowersToMake(t *testing.T) {
	tr := New()
	some, none, pair := registerShape(t, tr)

	nullary := lowerAtom(tr, &lifted.PureApp{Fn: none})
	assert.Equal(t, "None", nullary.String())

	single := lowerAtom(tr, &lifted.PureApp{Fn: some, Args: []lifted.Atom{&lifted.Literal{Kind: ast.LitInt, Value: 1}}})
	assert.Equal(t, "(Some 1)", single.String(), "single-field constructors omit tupling")

	multi := lowerAtom(tr, &lifted.PureApp{Fn: pair, Args: []lifted.Atom{
		&lifted.Literal{Kind: ast.LitInt, Value: 1},
		&lifted.Literal{Kind: ast.LitString, Value: "x"},
	}})
	assert.Equal(t, `(Pair (1, "x"))`, multi.String(), "multi-field payloads are tupled")
}

func TestConstructorInAppPositionTakesNoContinuation(t *testing.T) {
	tr := New()
	some, _, _ := registerShape(t, tr)

	term := &lifted.App{
		Block: &lifted.BlockVar{Symbol: some},
		Args:  []lifted.Atom{&lifted.Literal{Kind: ast.LitInt, Value: 7}},
	}
	out := cps.Run(toMLExpr(tr, term))
	mk, ok := out.(*mlast.Make)
	require.True(t, ok, "a constructor application is a pure Make, never a CPS call")
	assert.Equal(t, "Some", mk.Ctor)
}

func TestSelectLowersToTheGeneratedAccessor(t *testing.T) {
	tr := New()
	_, _, pair := registerShape(t, tr)
	p := ast.NewSymbol(20, "p", ast.ValueSymbolKind)

	out := lowerAtom(tr, &lifted.Select{Record: &lifted.VarRef{Symbol: p}, Ctor: pair, Index: 1})
	assert.Equal(t, "(Pair_field2 p)", out.String())
}

func TestExternLowersToRawBind(t *testing.T) {
	tr := New()
	ext := &lifted.Extern{
		Symbol: ast.NewSymbol(1, "printInt", ast.BlockSymbolKind),
		Fn:     &types.FunctionType{ValueParams: []types.ValueType{types.TInt}, Result: types.TUnit, Effects: types.EmptyEffects()},
		Text:   "fun printInt x = print (Int.toString x)",
	}
	binds, err := LowerDecl(tr, ext)
	require.NoError(t, err)
	require.Len(t, binds, 1)
	raw, ok := binds[0].(*mlast.RawBind)
	require.True(t, ok)
	assert.Equal(t, "fun printInt x = print (Int.toString x)", raw.Text)
}

func TestPolymorphicExternAbortsTheCompilation(t *testing.T) {
	tr := New()
	alpha := ast.NewSymbol(1, "a", ast.TypeSymbolKind)
	ext := &lifted.Extern{
		Symbol: ast.NewSymbol(2, "poly", ast.BlockSymbolKind),
		Fn: &types.FunctionType{
			TypeParams:  []*ast.Symbol{alpha},
			ValueParams: []types.ValueType{&types.Var{Symbol: alpha}},
			Result:      &types.Var{Symbol: alpha},
			Effects:     types.EmptyEffects(),
		},
		Text: "fun poly x = x",
	}
	_, err := LowerDecl(tr, ext)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "polymorphic")
}

func TestHigherOrderExternAbortsTheCompilation(t *testing.T) {
	tr := New()
	inner := &types.FunctionType{ValueParams: []types.ValueType{types.TInt}, Result: types.TInt, Effects: types.EmptyEffects()}
	ext := &lifted.Extern{
		Symbol: ast.NewSymbol(1, "apply", ast.BlockSymbolKind),
		Fn: &types.FunctionType{
			ValueParams: []types.ValueType{&types.Boxed{Block: inner, Captures: types.EmptyCaptureSet()}},
			Result:      types.TInt,
			Effects:     types.EmptyEffects(),
		},
		Text: "fun apply f = f 1",
	}
	_, err := LowerDecl(tr, ext)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "higher-order")
}

func TestEvidenceLowersToNestedLiftComposition(t *testing.T) {
	h := ast.NewSymbol(1, "h", ast.CaptureSymbolKind)

	assert.Equal(t, "here", lowerEvidence(nil).String())
	assert.Equal(t, "lift", lowerEvidence(lifted.Evidence{{Kind: lifted.LiftTry}}).String())
	assert.Equal(t, "h", lowerEvidence(lifted.Evidence{{Kind: lifted.LiftVar, Symbol: h}}).String())
	// Reg lifts share Try's runtime lift.
	assert.Equal(t, "lift", lowerEvidence(lifted.Evidence{{Kind: lifted.LiftReg}}).String())

	three := lifted.Evidence{{Kind: lifted.LiftTry}, {Kind: lifted.LiftVar, Symbol: h}, {Kind: lifted.LiftTry}}
	assert.Equal(t, "(nested lift, (nested h, lift))", lowerEvidence(three).String())
}

func TestTransformModuleEmitsDeterministicTargetText(t *testing.T) {
	dataSym := ast.NewSymbol(1, "counter", ast.TypeSymbolKind)
	ctorSym := ast.NewSymbol(2, "Counter", ast.ValueSymbolKind)
	main := ast.NewSymbol(3, "main", ast.BlockSymbolKind)

	build := func() string {
		decl := &lifted.Data{
			Symbol: dataSym,
			Ctors:  []lifted.Ctor{{Symbol: ctorSym, Fields: []types.ValueType{types.TInt}}},
		}
		def := &lifted.Def{
			Symbol: main,
			Block: &lifted.BlockLit{
				Body: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitInt, Value: 42}},
			},
		}
		tl, err := TransformModule(New(), []lifted.Decl{decl}, []lifted.Definition{def}, main)
		require.NoError(t, err)
		return mlast.Emit(tl)
	}

	first := build()
	second := build()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("re-running the transformer over the same module changed its output (-first +second):\n%s", diff)
	}
	assert.Contains(t, first, "datatype counter = Counter of int")
	assert.Contains(t, first, "fun Counter_field1 (Counter (arg)) = arg")
	assert.Contains(t, first, "fun main")
}

func TestTransformModuleReportsMutualRecursionAsACompilationFailure(t *testing.T) {
	f := ast.NewSymbol(1, "f", ast.BlockSymbolKind)
	g := ast.NewSymbol(2, "g", ast.BlockSymbolKind)
	defs := []lifted.Definition{defOf(f, g), defOf(g, f)}

	_, err := TransformModule(New(), nil, defs, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mltransform")
}
