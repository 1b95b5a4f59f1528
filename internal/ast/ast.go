// Package ast models the resolved tree handed down by the (external)
// front end: every identifier has already been resolved to a Symbol,
// so this package carries no name-resolution logic of its own.
package ast

import "fmt"

// Pos is a source position. The front end that produced the resolved
// tree owns the File/Line/Column values; this compiler only threads
// them through to diagnostics.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// SymbolKind distinguishes the four symbol namespaces named in the
// data model: values, blocks (second-class functions/handlers/ops),
// types, and captures.
type SymbolKind int

const (
	ValueSymbolKind SymbolKind = iota
	BlockSymbolKind
	TypeSymbolKind
	CaptureSymbolKind
)

func (k SymbolKind) String() string {
	switch k {
	case ValueSymbolKind:
		return "value"
	case BlockSymbolKind:
		return "block"
	case TypeSymbolKind:
		return "type"
	case CaptureSymbolKind:
		return "capture"
	default:
		return "unknown"
	}
}

// Symbol is a globally unique identity assigned once during name
// resolution. Symbols carry only their immutable name and kind; the
// types attached to a symbol live in the typing context, never here.
type Symbol struct {
	id   uint64
	Name string
	Kind SymbolKind
}

// NewSymbol constructs a symbol with a process-unique id. The front
// end is expected to call this once per binder; apart from the debug
// REPL in cmd/efc, which mints one symbol per name it binds, this
// compiler mints no symbols of its own (it only allocates fresh
// *type* variables, which live in internal/unify).
func NewSymbol(id uint64, name string, kind SymbolKind) *Symbol {
	return &Symbol{id: id, Name: name, Kind: kind}
}

func (s *Symbol) ID() uint64 { return s.id }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s/%s#%d", s.Name, s.Kind, s.id)
}

// Equal compares symbols by identity, not name: two symbols with the
// same surface name in different scopes are always distinct.
func (s *Symbol) Equal(other *Symbol) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.id == other.id
}

// Module is the unit the emitter maps to a single output file (§6).
type Module struct {
	Path        string
	Decls       []Decl
	Externs     []*ExternDecl
	Definitions []Definition
}
