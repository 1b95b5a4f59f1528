package mlast

import "fmt"

// ObjectCache is the arity-indexed interface-sharing registry of
// §4.5.2/§9: every capability interface of a given operation count N
// is encoded as the same structural record type ObjectN, with each
// operation addressed by its declaration-order position rather than
// by name, so two unrelated interfaces that happen to share an arity
// share a target-ML type too. Grounded on the teacher's
// internal/iface.Iface, which keys its Exports/Constructors/Types
// maps by name rather than by arity; this cache narrows that registry
// idiom down to the one key dimension the structural encoding needs.
type ObjectCache struct {
	declared map[int]bool
}

// NewObjectCache returns an empty cache.
func NewObjectCache() *ObjectCache {
	return &ObjectCache{declared: make(map[int]bool)}
}

// TypeName returns the shared record type name for an N-operation
// interface, e.g. "Object3".
func (*ObjectCache) TypeName(arity int) string {
	return fmt.Sprintf("Object%d", arity)
}

// FieldName returns the field name of the i'th operation (0-based)
// inside an N-operation object record, e.g. "member1of3".
func (*ObjectCache) FieldName(i, arity int) string {
	return fmt.Sprintf("member%dof%d", i+1, arity)
}

// Declare marks arity as needing its ObjectN record type emitted, and
// reports whether this is the first time arity has been requested
// (the caller uses that to know whether it still owes a DataBind for
// this arity).
func (c *ObjectCache) Declare(arity int) (isNew bool) {
	if c.declared[arity] {
		return false
	}
	c.declared[arity] = true
	return true
}

// Binding builds the DataBind for an N-operation structural object
// type: a single constructor wrapping an N-tuple, one slot per
// operation, so member projection (FieldName) becomes a tuple
// position instead of a named field. rawFieldType is pre-rendered by
// the transformer (every slot shares one function-type shape since
// evidence-passing has already made each operation's signature
// uniform at this encoding's boundary).
func (c *ObjectCache) Binding(arity int, rawFieldType string) *DataBind {
	name := c.TypeName(arity)
	tuple := ""
	for i := 0; i < arity; i++ {
		if i > 0 {
			tuple += " * "
		}
		tuple += rawFieldType
	}
	return &DataBind{Name: name, Ctors: []CtorSig{{Name: name, FieldType: tuple}}}
}

// Project builds the expression that extracts the i'th (0-based)
// operation out of an object value built by Binding, via a
// single-clause Match that pattern-matches the wrapping constructor
// and tuple position i.
func (c *ObjectCache) Project(obj Expr, i, arity int) Expr {
	name := c.TypeName(arity)
	slots := make([]string, arity)
	for j := range slots {
		slots[j] = "_"
	}
	slots[i] = "x"
	pattern := fmt.Sprintf("%s (%s)", name, joinComma(slots))
	return &Match{
		Scrutinee: obj,
		Clauses:   []MatchClause{{Pattern: pattern, Body: &Variable{Name: "x"}}},
	}
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
