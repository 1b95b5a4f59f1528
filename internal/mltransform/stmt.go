package mltransform

import (
	"fmt"

	"github.com/fabled/effectc/internal/cps"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
)

// toMLExpr implements §4.5.3's term-level CPS lowering: every Lifted
// IR Term becomes a meta-level CPS computation (internal/cps.M) that,
// applied to the continuation representing the rest of the enclosing
// computation, yields the Target-ML expression for the whole thing.
func toMLExpr(t *Transformer, term lifted.Term) cps.M {
	switch n := term.(type) {
	case *lifted.Return:
		return cps.Pure(lowerAtom(t, n.Value))
	case *lifted.App:
		return lowerApp(t, n)
	case *lifted.If:
		return lowerIf(t, n)
	case *lifted.Val:
		return lowerVal(t, n)
	case *lifted.Match:
		return lowerMatch(t, n)
	case *lifted.Scope:
		return lowerScope(t, n)
	case *lifted.State:
		return lowerState(t, n)
	case *lifted.Try:
		return lowerTry(t, n)
	case *lifted.Shift:
		return lowerShift(t, n)
	case *lifted.Region:
		return lowerRegion(t, n)
	case *lifted.Hole:
		return lowerHole(t, n)
	default:
		panic(fmt.Sprintf("mltransform: unknown term %T", term))
	}
}

// lowerApp implements §4.5.3's application rule, plus the special
// cases carved out around it: a constructor in block position is a
// pure Make, a Member application of "get" dereferences its receiver
// directly, and "put" assigns it. None of these take a trailing
// continuation argument since they run to completion without
// suspending. Every other application passes its
// own reified continuation as a final argument, per the Lifted IR's
// convention that every callable block already expects one (built by
// lowerBlockLit/lowerOpClause).
func lowerApp(t *Transformer, a *lifted.App) cps.M {
	if bv, ok := a.Block.(*lifted.BlockVar); ok && t.ctors[bv.Symbol] {
		// Constructor application is pure: no continuation argument,
		// just the Make (§4.5.5).
		args := make([]mlast.Expr, len(a.Args))
		for i, arg := range a.Args {
			args[i] = lowerAtom(t, arg)
		}
		return cps.Pure(makeCtor(bv.Symbol, args))
	}
	if mem, ok := a.Block.(*lifted.Member); ok {
		switch mem.Op.Name {
		case "get":
			return cps.Pure(&mlast.Deref{Cell: lowerAtom(t, mem.Receiver)})
		case "put":
			if len(a.Args) == 1 {
				return cps.Pure(&mlast.Assign{Cell: lowerAtom(t, mem.Receiver), Value: lowerAtom(t, a.Args[0])})
			}
		}
	}
	return cps.Inline(func(k cps.Continuation) mlast.Expr {
		args := make([]mlast.Expr, 0, len(a.Args)+1)
		for _, arg := range a.Args {
			args = append(args, lowerAtom(t, arg))
		}
		args = append(args, cps.Reify(t.Gen, k))
		return &mlast.Call{Fn: lowerBlock(t, a.Block), Args: args}
	})
}

// lowerIf implements §4.5.3's if rule: the surrounding continuation is
// forced Dynamic via Join before either arm lowers, so a continuation
// with work of its own is emitted once, ahead of the branch, rather
// than duplicated into both arms.
func lowerIf(t *Transformer, i *lifted.If) cps.M {
	return cps.Inline(func(k cps.Continuation) mlast.Expr {
		return cps.Join(t.Gen, k, func(k2 cps.Continuation) mlast.Expr {
			return &mlast.If{
				Cond: lowerAtom(t, i.Cond),
				Then: toMLExpr(t, i.Then)(k2),
				Else: toMLExpr(t, i.Else)(k2),
			}
		})
	})
}

// lowerVal implements §4.5.3's val rule: Bound is sequenced ahead of
// Body via FlatMap, binding its result to Binder's name (or "_" for a
// wildcard) in a let wrapping Body's own lowering.
func lowerVal(t *Transformer, v *lifted.Val) cps.M {
	name := "_"
	if v.Binder != nil {
		name = v.Binder.Name
	}
	return cps.FlatMap(toMLExpr(t, v.Bound), func(bound mlast.Expr) cps.M {
		return func(k cps.Continuation) mlast.Expr {
			rest := toMLExpr(t, v.Body)(k)
			return &mlast.Let{
				Bindings: []mlast.LetBinding{{Name: name, Val: bound}},
				Body:     rest,
			}
		}
	})
}

// lowerMatch implements §4.5.3's match rule: like If, a control-flow
// join across more than one clause, so the continuation is forced
// Dynamic once ahead of the dispatch rather than duplicated per clause.
func lowerMatch(t *Transformer, m *lifted.Match) cps.M {
	return cps.Inline(func(k cps.Continuation) mlast.Expr {
		return cps.Join(t.Gen, k, func(k2 cps.Continuation) mlast.Expr {
			scrut := lowerAtom(t, m.Scrutinee)
			clauses := make([]mlast.MatchClause, len(m.Clauses))
			for i, c := range m.Clauses {
				clauses[i] = mlast.MatchClause{
					Pattern: lowerPattern(c.Pattern),
					Body:    toMLExpr(t, c.Body)(k2),
				}
			}
			var def mlast.Expr
			if m.Default != nil {
				def = toMLExpr(t, m.Default)(k2)
			}
			return &mlast.Match{Scrutinee: scrut, Clauses: clauses, Default: def}
		})
	})
}

// lowerScope implements §4.5.3's scope rule: the Kahn ordering §4.5.1
// already applies at module level (order.go) is reused unchanged here
// over the Scope's own local Definitions, since a local mutually-
// recursive run is exactly as ill-formed as a top-level one.
func lowerScope(t *Transformer, s *lifted.Scope) cps.M {
	return cps.Inline(func(k cps.Continuation) mlast.Expr {
		ordered, err := order(t, s.Definitions)
		if err != nil {
			return &mlast.RawExpr{Text: `raise Fail "mutual recursion unsupported"`}
		}
		binds := make([]mlast.LetBinding, len(ordered))
		for i, d := range ordered {
			binds[i] = lowerLocalDefinition(t, d)
		}
		body := toMLExpr(t, s.Body)(k)
		if len(binds) == 0 {
			return body
		}
		return &mlast.Let{Bindings: binds, Body: body}
	})
}

// lowerHole implements §4.3/§6's hole rule: a not-yet-implemented
// branch lowers to a runtime trap rather than a type it can't actually
// produce.
func lowerHole(*Transformer, *lifted.Hole) cps.M {
	return cps.Inline(func(cps.Continuation) mlast.Expr {
		return &mlast.RawExpr{Text: `raise Fail "hole"`}
	})
}
