package mltransform

import (
	"fmt"

	"github.com/fabled/effectc/internal/cps"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
)

// lowerDefinition implements §4.5.6's top-level definition rule: a Def
// bound to a BlockLit becomes a FunBind (its lambda's already-built
// params and body, including the trailing continuation parameter
// lowerBlockLit appends), a Def bound to anything else (a bare alias
// to another block) becomes a ValBind; a Let with a real binder
// becomes a ValBind, a wildcard Let becomes an AnonBind run purely for
// effect.
func lowerDefinition(t *Transformer, d lifted.Definition) mlast.Binding {
	switch n := d.(type) {
	case *lifted.Def:
		if lit, ok := n.Block.(*lifted.BlockLit); ok {
			lam := lowerBlockLit(t, lit)
			return &mlast.FunBind{Name: mlast.NormalizeName(n.Symbol.Name), Params: lam.Params, Body: lam.Body}
		}
		return &mlast.ValBind{Name: mlast.NormalizeName(n.Symbol.Name), Val: lowerBlock(t, n.Block)}
	case *lifted.Let:
		val := cps.Run(toMLExpr(t, n.Value))
		if n.Binder == nil {
			return &mlast.AnonBind{Val: val}
		}
		return &mlast.ValBind{Name: mlast.NormalizeName(n.Binder.Name), Val: val}
	default:
		panic(fmt.Sprintf("mltransform: unknown definition %T", d))
	}
}

// lowerLocalDefinition is lowerDefinition's counterpart for a
// Scope-local run of Definitions (§4.5.3's scope rule): the same three
// shapes, rendered as one mlast.LetBinding apiece instead of a
// top-level Binding, so a Scope lowers to a single nested SML let.
func lowerLocalDefinition(t *Transformer, d lifted.Definition) mlast.LetBinding {
	switch n := d.(type) {
	case *lifted.Def:
		if lit, ok := n.Block.(*lifted.BlockLit); ok {
			lam := lowerBlockLit(t, lit)
			return mlast.LetBinding{Name: n.Symbol.Name, Params: lam.Params, Val: lam.Body}
		}
		return mlast.LetBinding{Name: n.Symbol.Name, Val: lowerBlock(t, n.Block)}
	case *lifted.Let:
		val := cps.Run(toMLExpr(t, n.Value))
		name := "_"
		if n.Binder != nil {
			name = n.Binder.Name
		}
		return mlast.LetBinding{Name: name, Val: val}
	default:
		panic(fmt.Sprintf("mltransform: unknown definition %T", d))
	}
}
