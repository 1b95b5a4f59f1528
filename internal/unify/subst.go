package unify

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

// tsubst maps a rigid type parameter to its instantiation; it is used
// by Instantiate and by substituteFunctionTypeValues below. csubst
// maps a capture parameter to the capture atom that replaces it; no
// function in this package applies one.
type tsubst map[*ast.Symbol]types.ValueType
type csubst map[*ast.Symbol]types.Capture

func substituteValueType(t types.ValueType, ts tsubst) types.ValueType {
	switch t := t.(type) {
	case *types.Var:
		if r, ok := ts[t.Symbol]; ok {
			return r
		}
		return t
	case *types.Constructor:
		args := make([]types.ValueType, len(t.Args))
		for i, a := range t.Args {
			args[i] = substituteValueType(a, ts)
		}
		return &types.Constructor{Symbol: t.Symbol, Args: args}
	case *types.Boxed:
		return &types.Boxed{
			Block:    substituteFunctionTypeValues(t.Block, ts),
			Captures: t.Captures,
		}
	case *types.TypeAlias:
		args := make([]types.ValueType, len(t.Args))
		for i, a := range t.Args {
			args[i] = substituteValueType(a, ts)
		}
		return &types.TypeAlias{Symbol: t.Symbol, TypeParams: t.TypeParams, RHS: t.RHS, Args: args}
	default:
		return t
	}
}

func substituteBlockType(b types.BlockType, ts tsubst) types.BlockType {
	switch b := b.(type) {
	case *types.FunctionType:
		return substituteFunctionTypeValues(b, ts)
	case *types.Interface:
		args := make([]types.ValueType, len(b.Args))
		for i, a := range b.Args {
			args[i] = substituteValueType(a, ts)
		}
		return &types.Interface{Symbol: b.Symbol, Args: args}
	default:
		return b
	}
}

func substituteEffects(e *types.Effects, ts tsubst) *types.Effects {
	out := types.NewEffects()
	for _, el := range e.Elems() {
		switch el := el.(type) {
		case *types.EffectInterface:
			args := make([]types.ValueType, len(el.Args))
			for i, a := range el.Args {
				args[i] = substituteValueType(a, ts)
			}
			out.Add(&types.EffectInterface{Symbol: el.Symbol, Args: args})
		case *types.BlockTypeApp:
			args := make([]types.ValueType, len(el.Args))
			for i, a := range el.Args {
				args[i] = substituteValueType(a, ts)
			}
			out.Add(&types.BlockTypeApp{Iface: el.Iface, Args: args})
		default:
			out.Add(el)
		}
	}
	return out
}

// substituteFunctionTypeValues substitutes only type parameters,
// leaving capture parameters untouched; used where the caller hasn't
// also instantiated captures (e.g. inside a Boxed value type that is
// itself being substituted, not freshly instantiated).
func substituteFunctionTypeValues(fn *types.FunctionType, ts tsubst) *types.FunctionType {
	vparams := make([]types.ValueType, len(fn.ValueParams))
	for i, p := range fn.ValueParams {
		vparams[i] = substituteValueType(p, ts)
	}
	bparams := make([]types.BlockType, len(fn.BlockParams))
	for i, p := range fn.BlockParams {
		bparams[i] = substituteBlockType(p, ts)
	}
	return &types.FunctionType{
		TypeParams:    fn.TypeParams,
		CaptureParams: fn.CaptureParams,
		ValueParams:   vparams,
		BlockParams:   bparams,
		Result:        substituteValueType(fn.Result, ts),
		Effects:       substituteEffects(fn.Effects, ts),
	}
}

// Substitute applies the engine's currently-solved value and capture
// substitution to t, recursively, leaving rigid Vars and unsolved
// UnificationVars untouched.
func (e *Engine) Substitute(t types.ValueType) types.ValueType {
	switch t := t.(type) {
	case *types.UnificationVar:
		if r, ok := e.valueSolved[t.ID]; ok {
			return e.Substitute(r)
		}
		return t
	case *types.Constructor:
		args := make([]types.ValueType, len(t.Args))
		for i, a := range t.Args {
			args[i] = e.Substitute(a)
		}
		return &types.Constructor{Symbol: t.Symbol, Args: args}
	case *types.Boxed:
		return &types.Boxed{Block: e.SubstituteFunctionType(t.Block), Captures: e.SubstituteCaptures(t.Captures)}
	case *types.TypeAlias:
		args := make([]types.ValueType, len(t.Args))
		for i, a := range t.Args {
			args[i] = e.Substitute(a)
		}
		return &types.TypeAlias{Symbol: t.Symbol, TypeParams: t.TypeParams, RHS: t.RHS, Args: args}
	default:
		return t
	}
}

func (e *Engine) SubstituteFunctionType(fn *types.FunctionType) *types.FunctionType {
	vparams := make([]types.ValueType, len(fn.ValueParams))
	for i, p := range fn.ValueParams {
		vparams[i] = e.Substitute(p)
	}
	bparams := make([]types.BlockType, len(fn.BlockParams))
	for i, p := range fn.BlockParams {
		if f, ok := p.(*types.FunctionType); ok {
			bparams[i] = e.SubstituteFunctionType(f)
		} else {
			bparams[i] = p
		}
	}
	return &types.FunctionType{
		TypeParams:    fn.TypeParams,
		CaptureParams: fn.CaptureParams,
		ValueParams:   vparams,
		BlockParams:   bparams,
		Result:        e.Substitute(fn.Result),
		Effects:       fn.Effects,
	}
}

// SubstituteEffects applies the engine's solved substitution to the
// argument types embedded in eff's elements. The Typer runs stored
// effect sets through this before annotating a tree node, since a
// concrete effect may not contain an unsolved metavariable (§3, §8).
func (e *Engine) SubstituteEffects(eff *types.Effects) *types.Effects {
	out := types.NewEffects()
	for _, el := range eff.Elems() {
		switch el := el.(type) {
		case *types.EffectInterface:
			args := make([]types.ValueType, len(el.Args))
			for i, a := range el.Args {
				args[i] = e.Substitute(a)
			}
			out.Add(&types.EffectInterface{Symbol: el.Symbol, Args: args})
		case *types.BlockTypeApp:
			args := make([]types.ValueType, len(el.Args))
			for i, a := range el.Args {
				args[i] = e.Substitute(a)
			}
			out.Add(&types.BlockTypeApp{Iface: el.Iface, Args: args})
		default:
			out.Add(el)
		}
	}
	return out
}

// SubstituteCaptures resolves any CaptureUnificationVar in cs that the
// engine has solved.
func (e *Engine) SubstituteCaptures(cs *types.CaptureSet) *types.CaptureSet {
	out := types.EmptyCaptureSet()
	for _, c := range cs.Elems() {
		if uv, ok := c.(*types.CaptureUnificationVar); ok {
			if solved, ok := e.captureSolved[uv.ID]; ok {
				for _, s := range solved.Elems() {
					out.Add(s)
				}
				continue
			}
		}
		out.Add(c)
	}
	return out
}
