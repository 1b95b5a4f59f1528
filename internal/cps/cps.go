// Package cps implements the two-level continuation combinator layer
// of §4.5.3: a meta-level (Go-side) continuation-passing builder over
// internal/mlast expressions, used by internal/mltransform to lower
// Lifted IR statement sequencing into Target-ML without materializing
// every intermediate step as its own named binding.
//
// The "two levels" are Static continuations, ordinary Go closures
// substituted inline wherever they're applied, and Dynamic
// continuations, already bound to a target-level function name so
// applying them twice costs nothing more than two calls. Join is the
// combinator that promotes the former into the latter at a
// control-flow join (an If or Match with more than one arm): inlining
// a large static continuation into every arm would duplicate the rest
// of the computation's target code once per arm, so Join instead
// binds it once as a target function ahead of the branch.
//
// Distinct from the teacher's domain (no Go package in
// internal/ast..internal/typer models continuations), so this layer
// is grounded on hayabusa-cloud-kont's Cont[R, A] = func(func(A) R) R
// shape and its Return/Suspend/Bind combinator names, here
// specialized to a fixed R = A = mlast.Expr domain (the only thing
// ever produced is a target expression) and extended with the
// Static/Dynamic split and Join, which kont's single continuation type
// has no use for since its continuations run at the same host-level
// Go call, not across an emitted target program.
package cps

import (
	"fmt"

	"github.com/fabled/effectc/internal/mlast"
)

// M is a meta-level CPS computation: applied to the continuation
// representing the rest of the computation, it produces the target
// expression for the whole thing.
type M func(Continuation) mlast.Expr

// Continuation is the receiving side of an M: Static continuations
// are plain Go closures, Dynamic ones are already a named target-level
// function.
type Continuation interface {
	Apply(v mlast.Expr) mlast.Expr
	static() bool
}

type staticCont func(mlast.Expr) mlast.Expr

func (f staticCont) Apply(v mlast.Expr) mlast.Expr { return f(v) }
func (staticCont) static() bool                    { return true }

type dynamicCont struct{ name string }

func (d dynamicCont) Apply(v mlast.Expr) mlast.Expr {
	return &mlast.Call{Fn: &mlast.Variable{Name: d.name}, Args: []mlast.Expr{v}}
}
func (dynamicCont) static() bool { return false }

// Gen mints fresh target-level names deterministically (no time- or
// randomness-based naming), so re-running the transformer over the
// same Lifted IR always emits byte-identical target source.
type Gen struct{ n int }

// NewGen returns a counter starting at zero.
func NewGen() *Gen { return &Gen{} }

// Fresh returns a new name built from prefix, unique within this Gen.
func (g *Gen) Fresh(prefix string) string {
	g.n++
	return fmt.Sprintf("%s_%d", prefix, g.n)
}

// Pure lifts an already-computed target value into M: applying the
// continuation to it is the entire computation, no sequencing emitted.
func Pure(v mlast.Expr) M {
	return func(k Continuation) mlast.Expr { return k.Apply(v) }
}

// Inline is the primitive M constructor for a computation that needs
// direct access to its own continuation, e.g. a Lifted IR Shift.
func Inline(f func(Continuation) mlast.Expr) M { return M(f) }

// FlatMap sequences m, then threads its result into f to obtain the
// next computation; the monadic bind of this layer.
func FlatMap(m M, f func(mlast.Expr) M) M {
	return func(k Continuation) mlast.Expr {
		return m(staticCont(func(v mlast.Expr) mlast.Expr {
			return f(v)(k)
		}))
	}
}

// Run closes m under the identity continuation, yielding the final
// target expression. Every top-level lowering ends in a Run.
func Run(m M) mlast.Expr {
	return m(staticCont(func(v mlast.Expr) mlast.Expr { return v }))
}

// Reset delimits m: it runs to completion under its own identity
// continuation, and the resulting value is handed onward as a Pure
// value rather than threading the surrounding continuation through
// it. This is the boundary a Try's body needs: the handler installed
// around it must not see past its own prompt.
func Reset(m M) M { return Pure(Run(m)) }

// Lift sequences an effectful target expression ahead of the rest of
// the computation by binding it to a fresh name exactly once, so a
// continuation that uses the result more than once never duplicates
// the effect itself.
func Lift(g *Gen, e mlast.Expr) M {
	return func(k Continuation) mlast.Expr {
		name := g.Fresh("t")
		return &mlast.Let{
			Bindings: []mlast.LetBinding{{Name: name, Val: e}},
			Body:     k.Apply(&mlast.Variable{Name: name}),
		}
	}
}

// Join forces a Static k into a Dynamic one before calling body,
// whenever k is about to be applied from more than one control-flow
// branch; a k that is already Dynamic passes through untouched since
// duplicating a variable reference is free.
func Join(g *Gen, k Continuation, body func(Continuation) mlast.Expr) mlast.Expr {
	if !k.static() {
		return body(k)
	}
	name := g.Fresh("k")
	param := g.Fresh("v")
	lam := &mlast.Lambda{
		Params: []mlast.Param{{Named: param}},
		Body:   k.Apply(&mlast.Variable{Name: param}),
	}
	return &mlast.Let{
		Bindings: []mlast.LetBinding{{Name: name, Val: lam}},
		Body:     body(dynamicCont{name: name}),
	}
}

// IdentityCont is the continuation Run closes computations under,
// exposed so callers composing Join by hand can pass it along
// explicitly.
func IdentityCont() Continuation {
	return staticCont(func(v mlast.Expr) mlast.Expr { return v })
}

// FromExpr wraps an already-built target expression as a Dynamic
// continuation, applying it by emitted call exactly like a
// dynamicCont built by Join. Used when a Lifted IR node already names
// a target-level continuation binder directly (a handler's resume
// parameter, a Shift's captured k) rather than a Go-side closure.
func FromExpr(e mlast.Expr) Continuation {
	if v, ok := e.(*mlast.Variable); ok {
		return dynamicCont{name: v.Name}
	}
	return exprCont{e: e}
}

type exprCont struct{ e mlast.Expr }

func (c exprCont) Apply(v mlast.Expr) mlast.Expr {
	return &mlast.Call{Fn: c.e, Args: []mlast.Expr{v}}
}
func (exprCont) static() bool { return false }

// Reify implements k.reify() of §4.4: a Dynamic continuation is
// already a target expression (returned as-is); a Static one is
// turned into a target-level lambda by applying it to a fresh
// parameter, per "static -> emit λa. f(a)".
func Reify(g *Gen, k Continuation) mlast.Expr {
	switch c := k.(type) {
	case dynamicCont:
		return &mlast.Variable{Name: c.name}
	case exprCont:
		return c.e
	default:
		param := g.Fresh("a")
		return &mlast.Lambda{
			Params: []mlast.Param{{Named: param}},
			Body:   k.Apply(&mlast.Variable{Name: param}),
		}
	}
}

// Reflect implements k.reflect() of §4.4, the inverse of Reify: a
// Dynamic continuation is turned into a Static one that calls its
// underlying expression; a Static continuation already is that
// closure and passes through unchanged.
func Reflect(k Continuation) Continuation {
	switch c := k.(type) {
	case dynamicCont:
		name := c.name
		return staticCont(func(v mlast.Expr) mlast.Expr {
			return &mlast.Call{Fn: &mlast.Variable{Name: name}, Args: []mlast.Expr{v}}
		})
	case exprCont:
		e := c.e
		return staticCont(func(v mlast.Expr) mlast.Expr {
			return &mlast.Call{Fn: e, Args: []mlast.Expr{v}}
		})
	default:
		return k
	}
}
