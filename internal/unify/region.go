package unify

import "github.com/fabled/effectc/internal/ast"

// EnterRegion opens a new local region nested one level inside outer.
// A nil symbol denotes the global region, which is always open at
// depth 0 (§3 Glossary: "Region").
func (e *Engine) EnterRegion(sym *ast.Symbol, outer *ast.Symbol) {
	e.regionDepth[sym] = e.regionDepth[outer] + 1
}

// RequireSubregion checks that inner's state is permitted to be
// allocated relative to outer, by nesting depth alone: it fails when
// outer is deeper than inner, and does not check that outer is an
// ancestor of inner. The ML transformer uses this
// only indirectly (it never needs to reject a correctly-scoped
// program); the Typer uses it to reject a `state` cell escaping into
// an enclosing, shorter-lived region.
func (e *Engine) RequireSubregion(inner, outer *ast.Symbol) error {
	di, ok := e.regionDepth[inner]
	if !ok {
		di = 0
	}
	do, ok := e.regionDepth[outer]
	if !ok {
		do = 0
	}
	if do > di {
		return &UnificationFailure{Cause: "region does not outlive the state cell allocated within it"}
	}
	return nil
}

// GlobalRegion is the canonical nil-symbol handle for the top-level
// region named in §3's Glossary.
var GlobalRegion *ast.Symbol
