package cps

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabled/effectc/internal/mlast"
)

func TestPureAppliesContinuationDirectly(t *testing.T) {
	v := &mlast.Variable{Name: "x"}
	out := Run(Pure(v))
	assert.Same(t, v, out)
}

func TestFlatMapSequencesInOrder(t *testing.T) {
	m := Pure(&mlast.Variable{Name: "a"})
	out := Run(FlatMap(m, func(v mlast.Expr) M {
		return Pure(&mlast.Call{Fn: &mlast.Variable{Name: "f"}, Args: []mlast.Expr{v}})
	}))
	assert.Equal(t, "(f a)", out.String())
}

func TestLiftBindsEffectExactlyOnce(t *testing.T) {
	g := NewGen()
	eff := &mlast.Call{Fn: &mlast.Variable{Name: "readRef"}, Args: nil}
	out := Run(FlatMap(Lift(g, eff), func(v mlast.Expr) M {
		return Pure(&mlast.Tuple{Elems: []mlast.Expr{v, v}})
	}))
	let, ok := out.(*mlast.Let)
	assert.True(t, ok)
	assert.Len(t, let.Bindings, 1)
	assert.Same(t, eff, let.Bindings[0].Val)
}

func TestResetDelimitsBeforeContinuing(t *testing.T) {
	g := NewGen()
	inner := Lift(g, &mlast.Call{Fn: &mlast.Variable{Name: "op"}})
	delimited := Reset(inner)
	out := Run(FlatMap(delimited, func(v mlast.Expr) M {
		return Pure(&mlast.Call{Fn: &mlast.Variable{Name: "after"}, Args: []mlast.Expr{v}})
	}))
	assert.Contains(t, out.String(), "after")
	assert.Contains(t, out.String(), "op")
}

func TestJoinMaterializesStaticContinuationOnce(t *testing.T) {
	g := NewGen()
	used := 0
	k := staticCont(func(v mlast.Expr) mlast.Expr {
		used++
		return &mlast.Call{Fn: &mlast.Variable{Name: "k"}, Args: []mlast.Expr{v}}
	})
	out := Join(g, k, func(dyn Continuation) mlast.Expr {
		branch1 := dyn.Apply(&mlast.Variable{Name: "a"})
		branch2 := dyn.Apply(&mlast.Variable{Name: "b"})
		return &mlast.If{Cond: &mlast.Variable{Name: "c"}, Then: branch1, Else: branch2}
	})
	assert.Equal(t, 1, used, "the static continuation body itself should be built exactly once")
	s := out.String()
	assert.Contains(t, s, "let")
	assert.Contains(t, s, "k_1")
}

func TestJoinPassesThroughAlreadyDynamicContinuation(t *testing.T) {
	g := NewGen()
	dyn := dynamicCont{name: "resume"}
	out := Join(g, dyn, func(k Continuation) mlast.Expr {
		return k.Apply(&mlast.Variable{Name: "v"})
	})
	assert.Equal(t, "(resume v)", out.String())
}

func TestIdentityContReturnsItsArgumentUnchanged(t *testing.T) {
	v := &mlast.Variable{Name: "z"}
	assert.Same(t, v, IdentityCont().Apply(v))
}

func TestReifyOfDynamicContinuationReturnsItsExprDirectly(t *testing.T) {
	k := FromExpr(&mlast.Variable{Name: "resume"})
	g := NewGen()
	assert.Equal(t, "resume", Reify(g, k).String())
}

func TestReifyOfStaticContinuationEmitsLambda(t *testing.T) {
	g := NewGen()
	k := staticCont(func(v mlast.Expr) mlast.Expr {
		return &mlast.Call{Fn: &mlast.Variable{Name: "k"}, Args: []mlast.Expr{v}}
	})
	out := Reify(g, k)
	lam, ok := out.(*mlast.Lambda)
	assert.True(t, ok)
	assert.Len(t, lam.Params, 1)
	assert.Contains(t, lam.Body.String(), "k")
}

func TestReflectOfDynamicContinuationAppliesByCall(t *testing.T) {
	k := FromExpr(&mlast.Variable{Name: "resume"})
	reflected := Reflect(k)
	assert.True(t, reflected.static())
	out := reflected.Apply(&mlast.Variable{Name: "v"})
	assert.Equal(t, "(resume v)", out.String())
}

func TestReflectOfStaticContinuationPassesThrough(t *testing.T) {
	k := staticCont(func(v mlast.Expr) mlast.Expr { return v })
	out := Reflect(k)
	assert.True(t, out.static())
	v := &mlast.Variable{Name: "v"}
	assert.Same(t, v, out.Apply(v))
}

func TestGenFreshNamesAreUniqueAndDeterministic(t *testing.T) {
	g := NewGen()
	a := g.Fresh("t")
	b := g.Fresh("t")
	assert.NotEqual(t, a, b)

	g2 := NewGen()
	assert.Equal(t, a, g2.Fresh("t"))
}
