package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

func TestRequireEqualSolvesUnificationVar(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()
	v := e.FreshValueVar(scope)

	require.NoError(t, e.RequireEqual(v, types.TInt))
	assert.Same(t, types.TInt, e.Substitute(v))
}

func TestRequireEqualFailsOnBuiltinMismatch(t *testing.T) {
	e := NewEngine()
	err := e.RequireEqual(types.TInt, types.TBool)
	require.Error(t, err)
	var failure *UnificationFailure
	assert.ErrorAs(t, err, &failure)
}

func TestConstructorArgsAreInvariant(t *testing.T) {
	e := NewEngine()
	list := ast.NewSymbol(1, "List", ast.TypeSymbolKind)
	a := &types.Constructor{Symbol: list, Args: []types.ValueType{types.TInt}}
	b := &types.Constructor{Symbol: list, Args: []types.ValueType{types.TBool}}
	assert.Error(t, e.RequireEqual(a, b))
}

func TestBottomUnifiesWithAnythingUnderSubtype(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.RequireSubtype(&types.Bottom{}, types.TInt))
}

func TestOccursCheckRejectsInfiniteType(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()
	v := e.FreshValueVar(scope)
	list := ast.NewSymbol(2, "List", ast.TypeSymbolKind)
	self := &types.Constructor{Symbol: list, Args: []types.ValueType{v}}
	assert.Error(t, e.RequireEqual(v, self))
}

func TestLeaveScopeEscapingUnsolvedVarAtOutermost(t *testing.T) {
	e := NewEngine()
	inner := e.EnterScope()
	_ = e.FreshValueVar(inner)
	errs := e.LeaveScope(inner)
	// One more LeaveScope would close the outermost scope; do that to
	// surface the escape.
	errs = append(errs, e.LeaveScope(e.CurrentScope())...)
	require.NotEmpty(t, errs)
	var esc *EscapingSkolem
	assert.ErrorAs(t, errs[0], &esc)
}

func TestInstantiateReplacesTypeAndCaptureParams(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()
	alpha := ast.NewSymbol(3, "a", ast.TypeSymbolKind)
	capParam := ast.NewSymbol(4, "io", ast.CaptureSymbolKind)
	fn := &types.FunctionType{
		TypeParams:    []*ast.Symbol{alpha},
		CaptureParams: []*ast.Symbol{capParam},
		ValueParams:   []types.ValueType{&types.Var{Symbol: alpha}},
		Result:        &types.Var{Symbol: alpha},
		Effects:       types.EmptyEffects(),
	}
	typeArgs, captureArgs, concrete, err := e.Instantiate(fn, scope, nil)
	require.NoError(t, err)
	require.Len(t, typeArgs, 1)
	require.Len(t, captureArgs, 1)
	_, isUVar := typeArgs[0].(*types.UnificationVar)
	assert.True(t, isUVar)
	_, isConcreteUVar := concrete.ValueParams[0].(*types.UnificationVar)
	assert.True(t, isConcreteUVar)
}

func TestInstantiateWithExplicitTypeArgs(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()
	alpha := ast.NewSymbol(5, "a", ast.TypeSymbolKind)
	fn := &types.FunctionType{
		TypeParams:  []*ast.Symbol{alpha},
		ValueParams: []types.ValueType{&types.Var{Symbol: alpha}},
		Result:      types.TUnit,
		Effects:     types.EmptyEffects(),
	}
	_, _, concrete, err := e.Instantiate(fn, scope, []types.ValueType{types.TString})
	require.NoError(t, err)
	assert.Same(t, types.TString, concrete.ValueParams[0])
}

func TestJoinUnifiesNonBottomBranches(t *testing.T) {
	e := NewEngine()
	joined, err := e.Join([]types.ValueType{&types.Bottom{}, types.TInt})
	require.NoError(t, err)
	assert.Same(t, types.TInt, joined)
}

func TestJoinFailsOnDivergentBranches(t *testing.T) {
	e := NewEngine()
	_, err := e.Join([]types.ValueType{types.TInt, types.TBool})
	assert.Error(t, err)
}

func TestRestoreUnwindsSolutionsRecordedSinceBackup(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()
	v := e.FreshValueVar(scope)

	mark := e.Backup()
	require.NoError(t, e.RequireEqual(v, types.TInt))
	assert.Same(t, types.TInt, e.Substitute(v))

	e.Restore(mark)
	assert.Same(t, v, e.Substitute(v), "a solution recorded inside the trial must not survive the restore")
}

func TestRestoreDropsVariablesMintedSinceBackup(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()

	mark := e.Backup()
	_ = e.FreshValueVar(scope)
	_ = e.FreshCaptureVar(scope)
	e.Restore(mark)

	assert.Empty(t, e.pendingValue[scope])
	assert.Empty(t, e.pendingCapture[scope])
}

func TestBackupRestoreIsIdentityOnUntouchedState(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()
	v := e.FreshValueVar(scope)
	require.NoError(t, e.RequireEqual(v, types.TBool))

	e.Restore(e.Backup())
	assert.Same(t, types.TBool, e.Substitute(v))
}

func TestSubstituteEffectsResolvesEmbeddedVariables(t *testing.T) {
	e := NewEngine()
	scope := e.CurrentScope()
	v := e.FreshValueVar(scope)
	reader := ast.NewSymbol(9, "Reader", ast.TypeSymbolKind)
	eff := types.NewEffects(&types.EffectInterface{Symbol: reader, Args: []types.ValueType{v}})
	require.NoError(t, e.RequireEqual(v, types.TInt))

	out := e.SubstituteEffects(eff)
	assert.False(t, out.ContainsUnificationVar())
}

func TestFunctionEffectsComparedBySetEquality(t *testing.T) {
	e := NewEngine()
	io := &types.BuiltinEffect{Name: "IO"}
	net := &types.BuiltinEffect{Name: "Net"}
	a := &types.FunctionType{Result: types.TUnit, Effects: types.NewEffects(io)}
	b := &types.FunctionType{Result: types.TUnit, Effects: types.NewEffects(net)}
	assert.Error(t, e.unifyFunction(a, b, true))
}
