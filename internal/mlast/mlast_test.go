package mlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLambdaStringRendersCurriedParams(t *testing.T) {
	l := &Lambda{
		Params: []Param{{Named: "x"}, {Named: "y"}},
		Body:   &Variable{Name: "x"},
	}
	assert.Equal(t, "(fn x y => x)", l.String())
}

func TestCallStringRendersArgsInOrder(t *testing.T) {
	c := &Call{Fn: &Variable{Name: "f"}, Args: []Expr{&Variable{Name: "a"}, &Variable{Name: "b"}}}
	assert.Equal(t, "(f a, b)", c.String())
}

func TestMakeWithNoPayloadOmitsParens(t *testing.T) {
	m := &Make{Ctor: "None"}
	assert.Equal(t, "None", m.String())
}

func TestMakeWithPayloadWrapsInParens(t *testing.T) {
	m := &Make{Ctor: "Some", Payload: &Variable{Name: "x"}}
	assert.Equal(t, "(Some x)", m.String())
}

func TestMatchFallsThroughToDefault(t *testing.T) {
	m := &Match{
		Scrutinee: &Variable{Name: "v"},
		Clauses:   []MatchClause{{Pattern: "Some x", Body: &Variable{Name: "x"}}},
		Default:   &Variable{Name: "fallback"},
	}
	assert.Contains(t, m.String(), "| _ => fallback")
}

func TestFunBindRendersEachParam(t *testing.T) {
	fb := &FunBind{Name: "f", Params: []Param{{Named: "x"}, {Named: "y"}}, Body: &Variable{Name: "x"}}
	assert.Equal(t, "fun f x y = x", fb.String())
}

func TestDataBindRendersAllConstructors(t *testing.T) {
	db := &DataBind{Name: "Option", TypeParams: []string{"'a"}, Ctors: []CtorSig{
		{Name: "None"},
		{Name: "Some", FieldType: "'a"},
	}}
	assert.Equal(t, "datatype 'a Option = None | Some of 'a", db.String())
}

func TestToplevelEmitsBindingsThenMainCall(t *testing.T) {
	tl := &Toplevel{
		Bindings: []Binding{&ValBind{Name: "x", Val: &Variable{Name: "y"}}},
		MainCall: &Call{Fn: &Variable{Name: "run"}, Args: nil},
	}
	out := Emit(tl)
	assert.Contains(t, out, "val x = y")
	assert.Contains(t, out, "val _ = (run )")
}

func TestObjectCacheDeclareIsOnceOnly(t *testing.T) {
	c := NewObjectCache()
	assert.True(t, c.Declare(3))
	assert.False(t, c.Declare(3))
	assert.True(t, c.Declare(2))
}

func TestObjectCacheTypeNameIsArityIndexed(t *testing.T) {
	c := NewObjectCache()
	assert.Equal(t, "Object3", c.TypeName(3))
	assert.Equal(t, "Object1", c.TypeName(1))
}

func TestObjectCacheBindingProducesSingleConstructorOverTuple(t *testing.T) {
	c := NewObjectCache()
	db := c.Binding(2, "int -> int")
	assert.Len(t, db.Ctors, 1)
	assert.Equal(t, "Object2", db.Ctors[0].Name)
	assert.Equal(t, "int -> int * int -> int", db.Ctors[0].FieldType)
}

func TestObjectCacheProjectPicksRequestedSlot(t *testing.T) {
	c := NewObjectCache()
	expr := c.Project(&Variable{Name: "obj"}, 1, 3)
	s := expr.String()
	assert.Contains(t, s, "Object3")
	assert.Contains(t, s, "_, x, _")
}

func TestOutputFileFlattensModulePath(t *testing.T) {
	assert.Equal(t, "out/foo_bar_baz.sml", OutputFile("out", "foo/bar/baz"))
}

func TestNormalizeIdentIsIdempotent(t *testing.T) {
	once := NormalizeIdent("café")
	twice := NormalizeIdent(once)
	assert.Equal(t, once, twice)
}
