package mltransform

import (
	"github.com/fabled/effectc/internal/cps"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
)

// lowerLift implements one entry of §4.5.4's lift translation: Try ->
// the runtime lift primitive, Var(x) -> x's own evidence parameter
// (a plain variable reference), and Reg -> lift as well, the
// approximation §9 flags explicitly ("The current treatment of
// Lift.Reg() is approximate (aliased to Lift.Try())").
func lowerLift(l lifted.Lift) mlast.Expr {
	switch l.Kind {
	case lifted.LiftVar:
		return &mlast.Variable{Name: l.Symbol.Name}
	default:
		return &mlast.Variable{Name: mlast.RuntimeLift}
	}
}

// lowerEvidence implements §4.5.4's Evidence translation: the empty
// list is the identity lift "here"; a singleton passes its one lift
// through unchanged; longer lists right-associate under the runtime
// "nested" combinator.
func lowerEvidence(ev lifted.Evidence) mlast.Expr {
	switch len(ev) {
	case 0:
		return &mlast.Variable{Name: mlast.RuntimeHere}
	case 1:
		return lowerLift(ev[0])
	default:
		return nestEvidence(ev)
	}
}

func nestEvidence(ev lifted.Evidence) mlast.Expr {
	if len(ev) == 1 {
		return lowerLift(ev[0])
	}
	return &mlast.Call{
		Fn:   &mlast.Variable{Name: mlast.RuntimeNested},
		Args: []mlast.Expr{lowerLift(ev[0]), nestEvidence(ev[1:])},
	}
}

// lowerImplObject builds the structural capability object (§4.5.2,
// §4.5.5) shared by a direct New atom and by a Try's handler
// bindings: one ObjectN value whose i'th slot is the i'th operation
// clause's implementation lambda.
func lowerImplObject(t *Transformer, impl lifted.HandlerImpl) mlast.Expr {
	arity := len(impl.Clauses)
	elems := make([]mlast.Expr, arity)
	for i, c := range impl.Clauses {
		elems[i] = lowerOpClause(t, c)
	}
	if arity == 1 {
		return &mlast.Make{Ctor: t.Objects.TypeName(arity), Payload: elems[0]}
	}
	return &mlast.Make{Ctor: t.Objects.TypeName(arity), Payload: &mlast.Tuple{Elems: elems}}
}

// lowerTry implements §4.5.3's try rule: each handler is bound ahead
// of the body to the symbol the elaborator assigned it (so Member
// occurrences inside body resolve to it), the body runs to completion
// under its own prompt (Reset), and the result is handed to the
// surrounding continuation.
func lowerTry(t *Transformer, tr *lifted.Try) cps.M {
	return cps.Inline(func(k cps.Continuation) mlast.Expr {
		var binds []mlast.LetBinding
		for _, h := range tr.Handlers {
			name := "_"
			if h.Symbol != nil {
				name = h.Symbol.Name
			}
			binds = append(binds, mlast.LetBinding{Name: name, Val: lowerImplObject(t, h)})
		}
		bodyVal := cps.Run(cps.Reset(toMLExpr(t, tr.Body)))
		result := bodyVal
		if len(binds) > 0 {
			result = &mlast.Let{Bindings: binds, Body: bodyVal}
		}
		return k.Apply(result)
	})
}

// lowerShift implements §4.5.3's shift rule. The captured continuation
// kparam is bound to a function of (ev, a) that forwards a through the
// outer continuation k1 and then through the evidence lift ev that
// reaches back to the installing prompt; body then runs to completion
// (under the identity continuation, "reify"-ing it into a plain
// value), and the whole thing is threaded through the Shift's own
// Evidence by applying the composed evidence function to it.
func lowerShift(t *Transformer, s *lifted.Shift) cps.M {
	return cps.Inline(func(k1 cps.Continuation) mlast.Expr {
		kparam := s.BlockLit.Params[0].Symbol
		evName := t.Gen.Fresh("ev")
		aName := t.Gen.Fresh("a")
		k1Expr := cps.Reify(t.Gen, k1)
		kFn := &mlast.Lambda{
			Params: []mlast.Param{{Named: evName}, {Named: aName}},
			Body: &mlast.Call{
				Fn:   &mlast.Variable{Name: evName},
				Args: []mlast.Expr{&mlast.Call{Fn: k1Expr, Args: []mlast.Expr{&mlast.Variable{Name: aName}}}},
			},
		}
		bodyExpr := cps.Run(toMLExpr(t, s.BlockLit.Body))
		letBody := &mlast.Let{
			Bindings: []mlast.LetBinding{{Name: kparam.Name, Val: kFn}},
			Body:     bodyExpr,
		}
		return &mlast.Call{Fn: lowerEvidence(s.Evidence), Args: []mlast.Expr{letBody}}
	})
}

// lowerState implements §4.5.3's two state-allocation rules: a
// global-region cell is a plain target ref; a local-region cell goes
// through the runtime's region-scoped "fresh" allocator instead.
func lowerState(t *Transformer, s *lifted.State) cps.M {
	return cps.Inline(func(k cps.Continuation) mlast.Expr {
		init := lowerAtom(t, s.Init)
		var cell mlast.Expr
		if s.Region == nil {
			cell = &mlast.Ref{Init: init}
		} else {
			cell = &mlast.Call{
				Fn:   &mlast.Variable{Name: mlast.RuntimeFresh},
				Args: []mlast.Expr{&mlast.Variable{Name: s.Region.Name}, init},
			}
		}
		body := toMLExpr(t, s.Body)(k)
		return &mlast.Let{
			Bindings: []mlast.LetBinding{{Name: s.Binder.Name, Val: cell}},
			Body:     body,
		}
	})
}

// lowerRegion implements §4.5.3's region rule: withRegion receives a
// function binding the fresh region handle for the lifetime of body,
// and the whole allocation is itself threaded through the surrounding
// continuation exactly like any other block application.
func lowerRegion(t *Transformer, r *lifted.Region) cps.M {
	return cps.Inline(func(k cps.Continuation) mlast.Expr {
		bodyLambda := &mlast.Lambda{
			Params: []mlast.Param{{Named: r.Symbol.Name}},
			Body:   cps.Run(toMLExpr(t, r.Body)),
		}
		withCall := &mlast.Call{Fn: &mlast.Variable{Name: mlast.RuntimeWithRegion}, Args: []mlast.Expr{bodyLambda}}
		return &mlast.Call{Fn: withCall, Args: []mlast.Expr{cps.Reify(t.Gen, k)}}
	})
}
