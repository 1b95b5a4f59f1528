package ast

// Pattern is the resolved-tree pattern interface consumed by
// checkPattern (§4.3 Patterns).
type Pattern interface {
	Position() Pos
	patternNode()
}

type patternBase struct{ Pos Pos }

func (p patternBase) Position() Pos { return p.Pos }

// IgnorePattern ("_") binds nothing.
type IgnorePattern struct{ patternBase }

func (*IgnorePattern) patternNode() {}

// AnyPattern binds the scrutinee to Symbol unconditionally.
type AnyPattern struct {
	patternBase
	Symbol *Symbol
}

func (*AnyPattern) patternNode() {}

// LiteralPattern checks the scrutinee equals Value.
type LiteralPattern struct {
	patternBase
	Kind  LitKind
	Value any
}

func (*LiteralPattern) patternNode() {}

// TagPattern matches a data constructor and recurses into its fields.
// Existential type parameters on the constructor are not permitted
// here (§4.3).
type TagPattern struct {
	patternBase
	Constructor *Symbol
	Nested      []Pattern
}

func (*TagPattern) patternNode() {}
