package ast

// Decl is a top-level declaration: a data type, record, interface
// (effect), type alias, effect alias, or extern signature.
type Decl interface {
	Position() Pos
	declNode()
}

type declBase struct{ Pos Pos }

func (d declBase) Position() Pos { return d.Pos }

// Constructor is one data-constructor of a DataDecl.
type Constructor struct {
	Symbol *Symbol
	Fields []ValueTypeRef
}

// DataDecl declares a (possibly parameterized) sum type. Exactly one
// constructor makes it a "record data type" for §4.5.2's accessor
// generation.
type DataDecl struct {
	declBase
	Symbol       *Symbol
	TypeParams   []*Symbol
	Constructors []Constructor
}

func (*DataDecl) declNode() {}

// RecordDecl is sugar for a DataDecl with exactly one constructor
// whose fields are named; kept distinct because the front end already
// tells us which spelling the programmer used.
type RecordField struct {
	Name *Symbol
	Type ValueTypeRef
}

type RecordDecl struct {
	declBase
	Symbol     *Symbol
	TypeParams []*Symbol
	Fields     []RecordField
}

func (*RecordDecl) declNode() {}

// Operation is one member of an interface (effect signature).
type Operation struct {
	Symbol        *Symbol
	TypeParams    []*Symbol // existentials beyond the interface's own
	ValueParams   []ValueTypeRef
	Result        ValueTypeRef
	Bidirectional bool // resume takes a block, not a value (§4.3 handlers)
}

// InterfaceDecl declares a capability type (an "effect" in source
// terms): a named, parameterized set of operations.
type InterfaceDecl struct {
	declBase
	Symbol     *Symbol
	TypeParams []*Symbol
	Operations []Operation
}

func (*InterfaceDecl) declNode() {}

// TypeAliasDecl must be dealiased before any comparison (§3 invariant).
type TypeAliasDecl struct {
	declBase
	Symbol     *Symbol
	TypeParams []*Symbol
	RHS        ValueTypeRef
}

func (*TypeAliasDecl) declNode() {}

// EffectAliasDecl names a fixed set of effects.
type EffectAliasDecl struct {
	declBase
	Symbol     *Symbol
	TypeParams []*Symbol
	Effects    []ValueTypeRef
}

func (*EffectAliasDecl) declNode() {}

// ExternDecl is a foreign signature with a raw target-language body;
// the back end must reject externs that are polymorphic or
// higher-order in their parameters (§7 taxonomy: these are structural
// errors, fatal-to-compilation).
type ExternDecl struct {
	declBase
	Symbol      *Symbol
	Type        ValueTypeRef
	TargetText  string
}

func (*ExternDecl) declNode() {}

// FuncParam is one value parameter of a FuncDecl, with its optional
// source-level type annotation.
type FuncParam struct {
	Symbol *Symbol
	Type   *ValueTypeRef // nil when unannotated
}

// FuncDecl is a top-level function (or handler/operation-backing
// block) definition.
type FuncDecl struct {
	declBase
	Symbol     *Symbol
	TypeParams []*Symbol
	CParams    []*Symbol // capture/capability parameters
	ValueParams []FuncParam
	Result     *ValueTypeRef // nil when fully inferred
	Effects    []ValueTypeRef
	Body       Stmt
}

func (*FuncDecl) declNode() {}

// Definition is a binding inside a Scope: either a side-effecting
// Let (kept in source order) or a (possibly mutually recursive) Def.
type Definition interface {
	definitionNode()
}

type Let struct {
	Binder *Symbol // nil => wildcard
	Value  Expr
}

func (*Let) definitionNode() {}

type Def struct {
	Symbol *Symbol
	Block  Block
}

func (*Def) definitionNode() {}
