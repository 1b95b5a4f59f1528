package unify

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

// RequireEqual unifies two value types exactly, solving any
// unification variables encountered and failing with
// *UnificationFailure if the heads disagree.
func (e *Engine) RequireEqual(a, b types.ValueType) error {
	return e.unify(a, b, true)
}

// RequireSubtype records a subtype obligation. Value-type
// constructors are invariant in their arguments (§4.2), so subtyping
// only has bite at Bottom (a subtype of everything) and at function
// types, where effects are compared by set equality (also invariant,
// per §4.2: "effect constructors are invariant"). Everywhere else
// RequireSubtype degrades to RequireEqual.
func (e *Engine) RequireSubtype(sub, sup types.ValueType) error {
	return e.unify(sub, sup, false)
}

// unify is the shared engine for RequireEqual/RequireSubtype. asEqual
// disables only the leading Bottom shortcut: a Bottom on the left
// still unifies with anything through the Bottom case below, while a
// Bottom on the right unifies only with a unification variable or
// another Bottom, in either mode.
func (e *Engine) unify(a, b types.ValueType, asEqual bool) error {
	a = types.Dealias(e.Substitute(a))
	b = types.Dealias(e.Substitute(b))

	if !asEqual {
		if _, ok := a.(*types.Bottom); ok {
			return nil
		}
	}

	switch av := a.(type) {
	case *types.UnificationVar:
		return e.bindValueVar(av, b)
	}
	switch bv := b.(type) {
	case *types.UnificationVar:
		return e.bindValueVar(bv, a)
	}

	switch av := a.(type) {
	case *types.Var:
		bv, ok := b.(*types.Var)
		if !ok || !av.Symbol.Equal(bv.Symbol) {
			return &UnificationFailure{Left: a, Right: b, Cause: "rigid type variables differ"}
		}
		return nil

	case *types.Builtin:
		bv, ok := b.(*types.Builtin)
		if !ok || av.Kind != bv.Kind {
			return &UnificationFailure{Left: a, Right: b, Cause: "builtin types differ"}
		}
		return nil

	case *types.Bottom:
		// Bottom unifies with anything under RequireEqual's semantics
		// too: a diverging branch's type is compatible with whatever
		// its sibling branch produced.
		return nil

	case *types.Constructor:
		bv, ok := b.(*types.Constructor)
		if !ok || !headEqual(av.Symbol, bv.Symbol) {
			return &UnificationFailure{Left: a, Right: b, Cause: "constructor heads differ"}
		}
		if len(av.Args) != len(bv.Args) {
			return &UnificationFailure{Left: a, Right: b, Cause: "constructor arity differs"}
		}
		for i := range av.Args {
			// Constructors are invariant in their arguments.
			if err := e.unify(av.Args[i], bv.Args[i], true); err != nil {
				return err
			}
		}
		return nil

	case *types.Boxed:
		bv, ok := b.(*types.Boxed)
		if !ok {
			return &UnificationFailure{Left: a, Right: b, Cause: "expected a boxed function value"}
		}
		return e.unifyFunction(av.Block, bv.Block, asEqual)

	default:
		return &UnificationFailure{Left: a, Right: b, Cause: "unsupported value type shape"}
	}
}

func headEqual(a, b *ast.Symbol) bool { return a.Equal(b) }

func (e *Engine) unifyFunction(a, b *types.FunctionType, asEqual bool) error {
	if len(a.ValueParams) != len(b.ValueParams) {
		return &UnificationFailure{Cause: "function arity differs"}
	}
	for i := range a.ValueParams {
		// Parameters are checked contravariantly when subtyping, but
		// this spec's functions are invariant in their value
		// parameters too (no variance annotations in §3), so both
		// paths unify exactly.
		if err := e.unify(a.ValueParams[i], b.ValueParams[i], true); err != nil {
			return err
		}
	}
	if len(a.BlockParams) != len(b.BlockParams) {
		return &UnificationFailure{Cause: "block-parameter arity differs"}
	}
	for i := range a.BlockParams {
		fa, aok := a.BlockParams[i].(*types.FunctionType)
		fb, bok := b.BlockParams[i].(*types.FunctionType)
		if aok && bok {
			if err := e.unifyFunction(fa, fb, true); err != nil {
				return err
			}
			continue
		}
		if a.BlockParams[i].String() != b.BlockParams[i].String() {
			return &UnificationFailure{Cause: "block parameter shapes differ"}
		}
	}
	// Effects on function types are compared by set equality, not
	// subset, even under RequireSubtype (§4.2: "effects... are
	// compared by set equality (effect constructors are invariant)").
	aEff := types.DealiasEffects(a.Effects)
	bEff := types.DealiasEffects(b.Effects)
	if !aEff.Equal(bEff) {
		return &UnificationFailure{Cause: "effect sets differ"}
	}
	if err := e.unify(a.Result, b.Result, asEqual); err != nil {
		return err
	}
	return nil
}

func (e *Engine) bindValueVar(v *types.UnificationVar, other types.ValueType) error {
	if ov, ok := other.(*types.UnificationVar); ok && ov.ID == v.ID {
		return nil
	}
	if ov, ok := other.(*types.UnificationVar); ok {
		// Tie-break: solve the deeper-scoped variable into the
		// shallower one (§4.2).
		if e.depthOf(ov.InScope) > e.depthOf(v.InScope) {
			e.solveValue(ov.ID, v)
			return nil
		}
		e.solveValue(v.ID, ov)
		return nil
	}
	if occursInValueType(v.ID, other) {
		return &UnificationFailure{Left: v, Right: other, Cause: "occurs check failed"}
	}
	e.solveValue(v.ID, other)
	return nil
}

func (e *Engine) solveValue(id uint64, t types.ValueType) {
	e.valueSolved[id] = t
	e.trail = append(e.trail, trailEntry{kind: trailSolveValue, id: id})
}

func occursInValueType(id uint64, t types.ValueType) bool {
	switch t := t.(type) {
	case *types.UnificationVar:
		return t.ID == id
	case *types.Constructor:
		for _, a := range t.Args {
			if occursInValueType(id, a) {
				return true
			}
		}
		return false
	case *types.Boxed:
		for _, p := range t.Block.ValueParams {
			if occursInValueType(id, p) {
				return true
			}
		}
		return occursInValueType(id, t.Block.Result)
	default:
		return false
	}
}
