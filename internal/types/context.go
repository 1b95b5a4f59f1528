package types

import (
	"fmt"

	"github.com/fabled/effectc/internal/ast"
)

// GlobalDB is the already-checked-dependencies database a Context
// falls back to when a lookup misses locally — the cross-module
// resolution path named in §4.1. It is populated by whatever drives
// the compiler across a module graph; this package only consumes it.
type GlobalDB interface {
	ValueType(sym *ast.Symbol) (ValueType, bool)
	FunctionType(sym *ast.Symbol) (*FunctionType, bool)
	Captures(sym *ast.Symbol) (*CaptureSet, bool)
}

// emptyGlobalDB is used when no cross-module database is supplied.
type emptyGlobalDB struct{}

func (emptyGlobalDB) ValueType(*ast.Symbol) (ValueType, bool)       { return nil, false }
func (emptyGlobalDB) FunctionType(*ast.Symbol) (*FunctionType, bool) { return nil, false }
func (emptyGlobalDB) Captures(*ast.Symbol) (*CaptureSet, bool)       { return nil, false }

// logEntry journals one mutation so backup/restore can replay it in
// reverse without needing a persistent (immutable) map implementation
// (§9: "back the typing context with a journaled map").
type logEntry struct {
	kind   logKind
	sym    *ast.Symbol
	hadOld bool // false => no previous binding existed
	oldVT  ValueType
	oldBT  *FunctionType
	oldCS  *CaptureSet
}

type logKind int

const (
	logValue logKind = iota
	logBlock
	logCapture
	logEffectPush
)

// Context is the typing context of §4.1: three maps — value, block
// (function), and capture — plus an ordered lexical-effect list, with
// snapshot/restore deep enough to roll back all four.
type Context struct {
	values   map[*ast.Symbol]ValueType
	blocks   map[*ast.Symbol]*FunctionType
	captures map[*ast.Symbol]*CaptureSet
	effects  []EffectElem // lexically in scope, outermost first

	log []logEntry
	db  GlobalDB
}

// NewContext creates an empty typing context. db may be nil, in which
// case cross-module lookups always miss.
func NewContext(db GlobalDB) *Context {
	if db == nil {
		db = emptyGlobalDB{}
	}
	return &Context{
		values:   map[*ast.Symbol]ValueType{},
		blocks:   map[*ast.Symbol]*FunctionType{},
		captures: map[*ast.Symbol]*CaptureSet{},
		db:       db,
	}
}

// BindValue records sym's value type, journaling the previous binding (if
// any) so Restore can undo it.
func (c *Context) BindValue(sym *ast.Symbol, t ValueType) {
	old, had := c.values[sym]
	c.log = append(c.log, logEntry{kind: logValue, sym: sym, hadOld: had, oldVT: old})
	c.values[sym] = t
}

func (c *Context) BindBlock(sym *ast.Symbol, t *FunctionType) {
	old, had := c.blocks[sym]
	c.log = append(c.log, logEntry{kind: logBlock, sym: sym, hadOld: had, oldBT: old})
	c.blocks[sym] = t
}

func (c *Context) BindCaptures(sym *ast.Symbol, cs *CaptureSet) {
	old, had := c.captures[sym]
	c.log = append(c.log, logEntry{kind: logCapture, sym: sym, hadOld: had, oldCS: old})
	c.captures[sym] = cs
}

// PushEffect adds an effect to the lexically-in-scope list (e.g. when
// entering a handler body whose operations are ambiently available).
func (c *Context) PushEffect(e EffectElem) {
	c.log = append(c.log, logEntry{kind: logEffectPush})
	c.effects = append(c.effects, e)
}

// LexicalEffects returns the effects lexically in scope at the
// current point, outermost first.
func (c *Context) LexicalEffects() []EffectElem {
	return c.effects
}

// LookupValue finds sym's value type, falling back to the global
// already-checked-dependencies database on a local miss.
func (c *Context) LookupValue(sym *ast.Symbol) (ValueType, bool) {
	if t, ok := c.values[sym]; ok {
		return t, true
	}
	return c.db.ValueType(sym)
}

// LookupFunctionType finds sym's function type. Per §4.1, a miss here
// signals mutual recursion without an annotation and must be surfaced
// by the caller as such, not silently treated as unbound.
func (c *Context) LookupFunctionType(sym *ast.Symbol) (*FunctionType, bool) {
	if t, ok := c.blocks[sym]; ok {
		return t, true
	}
	return c.db.FunctionType(sym)
}

func (c *Context) LookupCaptures(sym *ast.Symbol) (*CaptureSet, bool) {
	if cs, ok := c.captures[sym]; ok {
		return cs, true
	}
	return c.db.Captures(sym)
}

// Mark is an opaque snapshot handle (§5: "Snapshot/restore that is
// O(small)... a change-log that can be replayed").
type Mark int

// Backup returns a mark that Restore can roll back to. O(1).
func (c *Context) Backup() Mark { return Mark(len(c.log)) }

// Restore undoes every mutation recorded since mark, replaying the
// journal in reverse (§9). Restoring to a mark beyond the current log
// length (one already unwound by an earlier Restore) is a programmer
// error and panics.
func (c *Context) Restore(mark Mark) {
	if int(mark) > len(c.log) {
		panic(fmt.Sprintf("internal invariant violated: restore mark %d beyond log length %d", mark, len(c.log)))
	}
	for i := len(c.log) - 1; i >= int(mark); i-- {
		e := c.log[i]
		switch e.kind {
		case logValue:
			if e.hadOld {
				c.values[e.sym] = e.oldVT
			} else {
				delete(c.values, e.sym)
			}
		case logBlock:
			if e.hadOld {
				c.blocks[e.sym] = e.oldBT
			} else {
				delete(c.blocks, e.sym)
			}
		case logCapture:
			if e.hadOld {
				c.captures[e.sym] = e.oldCS
			} else {
				delete(c.captures, e.sym)
			}
		case logEffectPush:
			c.effects = c.effects[:len(c.effects)-1]
		}
	}
	c.log = c.log[:mark]
}
