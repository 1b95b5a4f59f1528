package mlast

import "fmt"

// Binding is one top-level Target-ML declaration, the downstream
// contract's Binding variant set (§6): ValBind, AnonBind, FunBind,
// DataBind, RawBind.
type Binding interface {
	String() string
	mlBinding()
}

// ValBind is a named, non-function top-level value.
type ValBind struct {
	Name string
	Val  Expr
}

func (*ValBind) mlBinding()        {}
func (b *ValBind) String() string { return fmt.Sprintf("val %s = %s", b.Name, b.Val) }

// AnonBind evaluates Val purely for effect (or to force an evidence
// application) and binds nothing.
type AnonBind struct{ Val Expr }

func (*AnonBind) mlBinding()        {}
func (b *AnonBind) String() string { return fmt.Sprintf("val _ = %s", b.Val) }

// FunBind is a top-level function; Params is non-empty by
// construction (a BlockLit definition always carries at least its
// trailing continuation parameter, per §4.5.6).
type FunBind struct {
	Name   string
	Params []Param
	Body   Expr
}

func (*FunBind) mlBinding() {}
func (b *FunBind) String() string {
	s := fmt.Sprintf("fun %s", b.Name)
	for _, p := range b.Params {
		s += " " + p.String()
	}
	return s + fmt.Sprintf(" = %s", b.Body)
}

// CtorSig is one constructor signature inside a DataBind.
type CtorSig struct {
	Name      string
	FieldType string // "" for a nullary constructor; pre-rendered target type text otherwise
}

// DataBind declares a datatype; TypeParams names the type's own
// parameters ("'a", "'b", ...), already rendered by the transformer.
type DataBind struct {
	Name       string
	TypeParams []string
	Ctors      []CtorSig
}

func (*DataBind) mlBinding() {}
func (b *DataBind) String() string {
	s := "datatype "
	for _, tp := range b.TypeParams {
		s += tp + " "
	}
	s += b.Name + " = "
	for i, c := range b.Ctors {
		if i > 0 {
			s += " | "
		}
		s += c.Name
		if c.FieldType != "" {
			s += " of " + c.FieldType
		}
	}
	return s
}

// RawBind splices verbatim target-language text at top level; used
// for extern declarations and the runtime preamble (§6).
type RawBind struct{ Text string }

func (*RawBind) mlBinding()        {}
func (b *RawBind) String() string { return b.Text }

// Toplevel is the downstream contract's root value (§6): an ordered
// list of Bindings followed by the module's MainCall, the expression
// run for its effect once every binding is in scope.
type Toplevel struct {
	Bindings []Binding
	MainCall Expr
}
