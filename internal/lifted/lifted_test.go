package lifted

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabled/effectc/internal/ast"
)

func TestValStringRendersWildcardBinder(t *testing.T) {
	v := &Val{Bound: &Literal{Value: 1}, Body: &Return{Value: &Literal{Value: 2}}}
	assert.Contains(t, v.String(), "val _ =")
}

func TestValStringRendersNamedBinder(t *testing.T) {
	sym := ast.NewSymbol(1, "x", ast.ValueSymbolKind)
	v := &Val{Binder: sym, Bound: &Literal{Value: 1}, Body: &Return{Value: &VarRef{Symbol: sym}}}
	assert.Contains(t, v.String(), "val x =")
}

func TestEvidenceComposeAppendsInOrder(t *testing.T) {
	sym := ast.NewSymbol(2, "h", ast.CaptureSymbolKind)
	a := Evidence{{Kind: LiftTry}}
	b := Evidence{{Kind: LiftVar, Symbol: sym}}
	composed := a.Compose(b)
	assert.Equal(t, "try.var(h)", composed.String())
}

func TestShiftBlockLitHasExactlyOneParamByConstruction(t *testing.T) {
	cont := ast.NewSymbol(3, "k", ast.ValueSymbolKind)
	lit := &BlockLit{Params: []BlockParam{{Symbol: cont}}}
	shift := &Shift{BlockLit: lit}
	assert.Len(t, shift.BlockLit.Params, 1)
}

func TestAtomInterfaceIsAlsoATerm(t *testing.T) {
	var a Atom = &Literal{Value: 42}
	var term Term = a
	assert.Equal(t, "42", term.String())
}
