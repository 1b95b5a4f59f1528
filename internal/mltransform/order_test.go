package mltransform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/lifted"
)

func defOf(sym *ast.Symbol, calls ...*ast.Symbol) *lifted.Def {
	body := lifted.Term(&lifted.Return{Value: &lifted.Literal{Kind: ast.LitUnit}})
	for _, c := range calls {
		body = &lifted.App{Block: &lifted.BlockVar{Symbol: c}}
	}
	return &lifted.Def{Symbol: sym, Block: &lifted.BlockLit{Body: body}}
}

func TestOrderSortsADependencyRunBeforeItsDependents(t *testing.T) {
	a := ast.NewSymbol(1, "a", ast.BlockSymbolKind)
	b := ast.NewSymbol(2, "b", ast.BlockSymbolKind)
	// b calls a, so a must come first.
	defs := []lifted.Definition{defOf(b, a), defOf(a)}

	out, err := order(New(), defs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, a, out[0].(*lifted.Def).Symbol)
	assert.Equal(t, b, out[1].(*lifted.Def).Symbol)
}

func TestOrderKeepsLetBindingsInSourcePosition(t *testing.T) {
	x := ast.NewSymbol(1, "x", ast.ValueSymbolKind)
	a := ast.NewSymbol(2, "a", ast.BlockSymbolKind)
	let := &lifted.Let{Binder: x, Value: &lifted.Return{Value: &lifted.Literal{Kind: ast.LitUnit}}}
	defs := []lifted.Definition{let, defOf(a)}

	out, err := order(New(), defs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Same(t, let, out[0])
}

func TestOrderRejectsMutualRecursionAndSurfacesBothNames(t *testing.T) {
	f := ast.NewSymbol(1, "f", ast.BlockSymbolKind)
	g := ast.NewSymbol(2, "g", ast.BlockSymbolKind)
	defs := []lifted.Definition{defOf(f, g), defOf(g, f)}

	tr := New()
	_, err := order(tr, defs)
	require.Error(t, err)
	assert.True(t, tr.Diag.HasErrors())
	items := tr.Diag.Items()
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Message, "f")
	assert.Contains(t, items[0].Message, "g")
}
