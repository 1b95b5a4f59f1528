package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabled/effectc/internal/ast"
)

// EffectElem is one element of an Effects set: Interface,
// BuiltinEffect, BlockTypeApp, or EffectAlias (§3).
type EffectElem interface {
	String() string
	key() string // dedup key, used by Effects' set semantics
	effectElem()
}

// EffectInterface names a capability type used as an effect, together
// with the type arguments it is applied to at this occurrence; the
// arguments are part of its String() and of its set-membership key.
type EffectInterface struct {
	Symbol *ast.Symbol
	Args   []ValueType
}

func (*EffectInterface) effectElem() {}
func (e *EffectInterface) String() string {
	if len(e.Args) == 0 {
		return e.Symbol.Name
	}
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", e.Symbol.Name, strings.Join(parts, ", "))
}
func (e *EffectInterface) key() string { return "iface:" + e.String() }

// BuiltinEffect is a primitive, non-user-defined effect.
type BuiltinEffect struct {
	Name string
}

func (*BuiltinEffect) effectElem()      {}
func (b *BuiltinEffect) String() string { return b.Name }
func (b *BuiltinEffect) key() string    { return "builtin:" + b.Name }

// BlockTypeApp is an effect arising from applying an interface's
// operation as a block type (used when an operation's own type
// parameters are instantiated at a use site distinct from the
// handler's).
type BlockTypeApp struct {
	Iface *ast.Symbol
	Args  []ValueType
}

func (*BlockTypeApp) effectElem() {}
func (b *BlockTypeApp) String() string {
	parts := make([]string, len(b.Args))
	for i, a := range b.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s![%s]", b.Iface.Name, strings.Join(parts, ", "))
}
func (b *BlockTypeApp) key() string { return "app:" + b.String() }

// EffectAlias names a fixed set of effects; like TypeAlias it must
// never survive into a concrete effect set (§3 invariant) and is
// expanded by DealiasEffects below.
type EffectAlias struct {
	Symbol     *ast.Symbol
	TypeParams []*ast.Symbol
	Effects    []EffectElem
	Args       []ValueType
}

func (*EffectAlias) effectElem()      {}
func (a *EffectAlias) String() string { return a.Symbol.Name }
func (a *EffectAlias) key() string    { return "alias:" + a.Symbol.Name }

// Effects is a set of effect elements, deduplicated by key (§3).
type Effects struct {
	elems []EffectElem
	seen  map[string]bool
}

// EmptyEffects is the effect set of a pure expression.
func EmptyEffects() *Effects {
	return &Effects{seen: map[string]bool{}}
}

// NewEffects builds an Effects set from elems, deduplicating by key.
// It does not dealias or check concreteness; use NewConcreteEffects
// at sites where the spec requires a concrete result (§3, §4.1).
func NewEffects(elems ...EffectElem) *Effects {
	e := &Effects{seen: map[string]bool{}}
	for _, el := range elems {
		e.Add(el)
	}
	return e
}

func (e *Effects) Add(el EffectElem) {
	k := el.key()
	if e.seen[k] {
		return
	}
	e.seen[k] = true
	e.elems = append(e.elems, el)
}

func (e *Effects) Elems() []EffectElem {
	if e == nil {
		return nil
	}
	return e.elems
}

func (e *Effects) Empty() bool { return e == nil || len(e.elems) == 0 }

// Union returns a new Effects containing every element of e and o.
func (e *Effects) Union(o *Effects) *Effects {
	out := NewEffects(e.Elems()...)
	for _, el := range o.Elems() {
		out.Add(el)
	}
	return out
}

// Minus returns e with every element whose key appears in o removed,
// used by §4.3's `effectsOut = (bodyEffs − handledSet) ∪ …`.
func (e *Effects) Minus(o *Effects) *Effects {
	out := &Effects{seen: map[string]bool{}}
	remove := map[string]bool{}
	for _, el := range o.Elems() {
		remove[el.key()] = true
	}
	for _, el := range e.Elems() {
		if !remove[el.key()] {
			out.Add(el)
		}
	}
	return out
}

// Contains reports whether an element with the same key as el is
// present.
func (e *Effects) Contains(el EffectElem) bool {
	if e == nil {
		return false
	}
	return e.seen[el.key()]
}

// ContainsUnificationVar walks every effect element (recursing into
// argument value types) looking for an embedded UnificationVar.
// Concreteness (§3: "Concrete effects are effects in which no
// unification variable appears") requires this to be false.
func (e *Effects) ContainsUnificationVar() bool {
	if e == nil {
		return false
	}
	for _, el := range e.elems {
		if elemContainsUVar(el) {
			return true
		}
	}
	return false
}

func elemContainsUVar(el EffectElem) bool {
	switch el := el.(type) {
	case *EffectInterface:
		return anyContainsUVar(el.Args)
	case *BuiltinEffect:
		return false
	case *BlockTypeApp:
		return anyContainsUVar(el.Args)
	case *EffectAlias:
		return anyContainsUVar(el.Args)
	default:
		return false
	}
}

func anyContainsUVar(ts []ValueType) bool {
	for _, t := range ts {
		if typeContainsUVar(t) {
			return true
		}
	}
	return false
}

func typeContainsUVar(t ValueType) bool {
	switch t := t.(type) {
	case *UnificationVar:
		return true
	case *Constructor:
		return anyContainsUVar(t.Args)
	case *Boxed:
		if anyContainsUVar(t.Block.ValueParams) {
			return true
		}
		if typeContainsUVar(t.Block.Result) {
			return true
		}
		return t.Block.Effects.ContainsUnificationVar()
	case *TypeAlias:
		return anyContainsUVar(t.Args)
	default:
		return false
	}
}

// NewConcreteEffects builds an Effects set and panics with an
// InternalInvariant-class error if the result is not concrete. The
// typer builds its effect sets with NewEffects and EmptyEffects and
// does not call this constructor.
func NewConcreteEffects(elems ...EffectElem) *Effects {
	e := NewEffects(elems...)
	if e.ContainsUnificationVar() {
		panic(fmt.Sprintf("internal invariant violated: non-concrete effects constructed: %s", e))
	}
	return e
}

// String renders effects in a stable, sorted order so two
// semantically-equal sets never print differently (needed for
// deterministic diagnostics, §5).
func (e *Effects) String() string {
	if e.Empty() {
		return "{}"
	}
	strs := make([]string, len(e.elems))
	for i, el := range e.elems {
		strs[i] = el.String()
	}
	sort.Strings(strs)
	return "{" + strings.Join(strs, ", ") + "}"
}

// Equal implements the set-based equality §4.2 requires for effects
// on function types: effect constructors are invariant, so equality
// is exact set equality over keys, valid only for concrete effects.
func (e *Effects) Equal(o *Effects) bool {
	ek := map[string]bool{}
	for _, el := range e.Elems() {
		ek[el.key()] = true
	}
	ok := map[string]bool{}
	for _, el := range o.Elems() {
		ok[el.key()] = true
	}
	if len(ek) != len(ok) {
		return false
	}
	for k := range ek {
		if !ok[k] {
			return false
		}
	}
	return true
}

// DealiasEffects expands every EffectAlias element in e, recursively,
// so the result never contains an EffectAlias (§3 invariant).
func DealiasEffects(e *Effects) *Effects {
	out := &Effects{seen: map[string]bool{}}
	for _, el := range e.Elems() {
		expandEffectElem(el, out)
	}
	return out
}

func expandEffectElem(el EffectElem, out *Effects) {
	alias, ok := el.(*EffectAlias)
	if !ok {
		out.Add(el)
		return
	}
	subst := make(map[*ast.Symbol]ValueType, len(alias.TypeParams))
	for i, p := range alias.TypeParams {
		if i < len(alias.Args) {
			subst[p] = alias.Args[i]
		}
	}
	for _, inner := range alias.Effects {
		expandEffectElem(substituteEffectElem(inner, subst), out)
	}
}

func substituteEffectElem(el EffectElem, subst map[*ast.Symbol]ValueType) EffectElem {
	switch el := el.(type) {
	case *EffectInterface:
		args := make([]ValueType, len(el.Args))
		for i, a := range el.Args {
			args[i] = substituteVars(a, subst)
		}
		return &EffectInterface{Symbol: el.Symbol, Args: args}
	default:
		return el
	}
}
