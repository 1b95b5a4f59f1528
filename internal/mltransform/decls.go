package mltransform

import (
	"fmt"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
	"github.com/fabled/effectc/internal/types"
)

// LowerDecl dispatches one module-level declaration to its §4.5.2
// lowering and returns the zero-or-more top-level Bindings it
// contributes; interface lowering returns nothing past the first
// interface sharing a given arity (the datatype and accessor family
// are already in scope). A structurally ill-formed extern is fatal to
// the whole compilation, same as a mutual-recursion cycle in order().
func LowerDecl(t *Transformer, d lifted.Decl) ([]mlast.Binding, error) {
	switch n := d.(type) {
	case *lifted.Data:
		for _, c := range n.Ctors {
			t.ctors[c.Symbol] = true
		}
		return lowerData(t, n), nil
	case *lifted.Interface:
		t.RegisterInterface(n)
		return lowerInterfaceArity(t, n), nil
	case *lifted.Extern:
		return lowerExtern(t, n)
	default:
		return nil, nil
	}
}

// lowerExtern re-emits an extern's verbatim target text as a RawBind,
// after the structural checks the back end owns: a polymorphic or
// higher-order extern has no sound first-order rendering in the
// target, so either aborts the compilation immediately.
func lowerExtern(t *Transformer, e *lifted.Extern) ([]mlast.Binding, error) {
	if e.Fn != nil && len(e.Fn.TypeParams) > 0 {
		t.Diag.Report(&diag.Diagnostic{
			Kind:     diag.KindArity,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("extern %q is polymorphic and cannot be emitted", e.Symbol.Name),
		})
		return nil, diag.Fail("mltransform.extern", t.Diag)
	}
	if e.Fn != nil && higherOrder(e.Fn) {
		t.Diag.Report(&diag.Diagnostic{
			Kind:     diag.KindArity,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("extern %q is higher-order and cannot be emitted", e.Symbol.Name),
		})
		return nil, diag.Fail("mltransform.extern", t.Diag)
	}
	return []mlast.Binding{&mlast.RawBind{Text: e.Text}}, nil
}

// higherOrder reports whether fn takes a block parameter or a boxed
// function value parameter.
func higherOrder(fn *types.FunctionType) bool {
	if len(fn.BlockParams) > 0 {
		return true
	}
	for _, p := range fn.ValueParams {
		if _, ok := types.Dealias(p).(*types.Boxed); ok {
			return true
		}
	}
	return false
}

// lowerData implements §4.5.2's two data-declaration shapes. A single
// constructor is a "record data type": the datatype plus one accessor
// function per field, matching the single constructor and projecting
// the i'th tuple slot (Lifted IR constructors carry field types only,
// not field names, so accessors are named positionally off the
// constructor's own name). More than one constructor is a "sum data
// type": one constructor per variant, multi-field payloads tupled.
func lowerData(t *Transformer, d *lifted.Data) []mlast.Binding {
	tparamNames := make([]string, len(d.TypeParams))
	for i, p := range d.TypeParams {
		tparamNames[i] = p.Name
	}

	ctors := make([]mlast.CtorSig, len(d.Ctors))
	for i, c := range d.Ctors {
		ctors[i] = mlast.CtorSig{Name: mlast.NormalizeName(c.Symbol.Name), FieldType: renderFields(c.Fields)}
	}
	bind := &mlast.DataBind{
		Name:       mlast.NormalizeName(d.Symbol.Name),
		TypeParams: renderTypeParams(tparamNames),
		Ctors:      ctors,
	}

	out := []mlast.Binding{bind}
	if len(d.Ctors) == 1 {
		out = append(out, recordAccessors(d.Ctors[0])...)
	}
	return out
}

func renderFields(fields []types.ValueType) string {
	if len(fields) == 0 {
		return ""
	}
	s := renderType(fields[0])
	for _, f := range fields[1:] {
		s += " * " + renderType(f)
	}
	return s
}

// accessorName is the record field accessor's binder name, shared by
// the declaration side (recordAccessors) and the use side (a Select
// atom's lowering in expr.go) so the two can never drift apart.
func accessorName(ctor *ast.Symbol, i int) string {
	return fmt.Sprintf("%s_field%d", mlast.NormalizeName(ctor.Name), i+1)
}

// recordAccessors builds one FunBind per field of a single-constructor
// record, matching pattern (_, ..., arg, ..., _) per §4.5.2.
func recordAccessors(c lifted.Ctor) []mlast.Binding {
	n := len(c.Fields)
	if n == 0 {
		return nil
	}
	ctorName := mlast.NormalizeName(c.Symbol.Name)
	out := make([]mlast.Binding, n)
	for i := 0; i < n; i++ {
		slots := make([]string, n)
		for j := range slots {
			slots[j] = "_"
		}
		slots[i] = "arg"
		pattern := fmt.Sprintf("%s (%s)", ctorName, joinComma(slots))
		name := accessorName(c.Symbol, i)
		out[i] = &mlast.FunBind{
			Name:   name,
			Params: []mlast.Param{{Pattern: pattern}},
			Body:   &mlast.Variable{Name: "arg"},
		}
	}
	return out
}

// lowerInterfaceArity implements §4.5.2/§9's interface-sharing-by-
// arity rule: the first interface of a given operation count emits
// ObjectN's datatype and its member accessor family; every later
// interface of the same arity registers nothing further, since
// dispatch is positional rather than nominal in the Lifted IR.
func lowerInterfaceArity(t *Transformer, iface *lifted.Interface) []mlast.Binding {
	arity := len(iface.Ops)
	if !t.Objects.Declare(arity) {
		return nil
	}
	out := []mlast.Binding{t.Objects.Binding(arity, functionTypeName)}
	typeName := t.Objects.TypeName(arity)
	for i := 0; i < arity; i++ {
		slots := make([]string, arity)
		for j := range slots {
			slots[j] = "_"
		}
		slots[i] = "arg"
		pattern := fmt.Sprintf("%s (%s)", typeName, joinComma(slots))
		out = append(out, &mlast.FunBind{
			Name:   t.Objects.FieldName(i, arity),
			Params: []mlast.Param{{Pattern: pattern}},
			Body:   &mlast.Variable{Name: "arg"},
		})
	}
	return out
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
