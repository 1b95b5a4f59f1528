// Package unify implements the scope-based constraint solver of spec
// §4.2. It is grounded on the teacher's
// internal/types/unification.go solver (switch-on-head-constructor
// unification threading a substitution, with an occurs check) but
// generalized to scopes, subtyping, capture sets, and the
// join/instantiate operations this spec's Typer needs.
package unify

import (
	"fmt"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

// UnificationFailure is raised by any require* operation and lifted by
// the Typer into a diagnostic at the current focus (§4.2, §7).
type UnificationFailure struct {
	Left, Right types.ValueType
	Cause       string
}

func (e *UnificationFailure) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Cause)
}

// EscapingSkolem is raised when a unification variable created inside
// a scope remains unsolved when that scope closes and cannot be
// promoted to the enclosing scope (§4.2).
type EscapingSkolem struct {
	Var *types.UnificationVar
}

func (e *EscapingSkolem) Error() string {
	return fmt.Sprintf("unification variable %s escapes its scope", e.Var)
}

type scopeInfo struct {
	depth int
}

// Engine is the unification engine of §4.2: enterScope/leaveScope
// bracket a region, freshValueVar/freshCaptureVar mint metavariables
// stamped with the creating scope, and instantiate/requireSubtype/
// requireEqual/join/substitute operate against the live substitution.
type Engine struct {
	nextScope uint64
	nextVar   uint64
	stack     []types.Scope
	scopeInfo map[types.Scope]scopeInfo

	valueSolved   map[uint64]types.ValueType
	captureSolved map[uint64]*types.CaptureSet

	// pending tracks which unification variables were created in which
	// scope, so leaveScope can find what needs solving or promoting.
	pendingValue   map[types.Scope][]*types.UnificationVar
	pendingCapture map[types.Scope][]*types.CaptureUnificationVar

	// trail journals solutions and fresh-variable creation so
	// Backup/Restore can roll a speculative trial back (§5: overload
	// resolution "snapshots mutable state (typing context, unification
	// solver, diagnostics)"). Same change-log discipline as
	// types.Context, applied to the solver side.
	trail []trailEntry

	regionDepth map[*ast.Symbol]int // nil-keyed entry is the global region
}

type trailKind int

const (
	trailSolveValue trailKind = iota
	trailFreshValue
	trailFreshCapture
)

type trailEntry struct {
	kind  trailKind
	id    uint64
	scope types.Scope
}

// NewEngine creates an engine with the global scope already open.
func NewEngine() *Engine {
	e := &Engine{
		scopeInfo:      map[types.Scope]scopeInfo{},
		valueSolved:    map[uint64]types.ValueType{},
		captureSolved:  map[uint64]*types.CaptureSet{},
		pendingValue:   map[types.Scope][]*types.UnificationVar{},
		pendingCapture: map[types.Scope][]*types.CaptureUnificationVar{},
		regionDepth:    map[*ast.Symbol]int{nil: 0},
	}
	e.EnterScope()
	return e
}

// EnterScope opens a new unification region and returns its handle.
func (e *Engine) EnterScope() types.Scope {
	e.nextScope++
	s := types.Scope(e.nextScope)
	e.scopeInfo[s] = scopeInfo{depth: len(e.stack)}
	e.stack = append(e.stack, s)
	return s
}

// LeaveScope closes the most recently opened scope. Any value
// unification variable created inside it that is still unsolved is
// either:
//   - promoted into the parent scope, if one is still open (variables
//     can legitimately outlive a nested trial), or
//   - reported as an EscapingSkolem, if there is no parent to promote
//     into (i.e. the outermost scope is closing).
//
// Unsolved capture variables are promoted the same way, but are
// dropped without a report when the outermost scope closes.
//
// Returns the escaping variables' errors, if any.
func (e *Engine) LeaveScope(s types.Scope) []error {
	if len(e.stack) == 0 || e.stack[len(e.stack)-1] != s {
		panic("internal invariant violated: LeaveScope called out of order")
	}
	e.stack = e.stack[:len(e.stack)-1]

	var errs []error
	unresolved := e.pendingValue[s]
	delete(e.pendingValue, s)
	if len(e.stack) == 0 {
		for _, v := range unresolved {
			if _, solved := e.valueSolved[v.ID]; !solved {
				errs = append(errs, &EscapingSkolem{Var: v})
			}
		}
	} else {
		parent := e.stack[len(e.stack)-1]
		for _, v := range unresolved {
			if _, solved := e.valueSolved[v.ID]; !solved {
				e.pendingValue[parent] = append(e.pendingValue[parent], v)
			}
		}
	}

	unresolvedC := e.pendingCapture[s]
	delete(e.pendingCapture, s)
	if len(e.stack) > 0 {
		parent := e.stack[len(e.stack)-1]
		for _, v := range unresolvedC {
			if _, solved := e.captureSolved[v.ID]; !solved {
				e.pendingCapture[parent] = append(e.pendingCapture[parent], v)
			}
		}
	}
	return errs
}

// FreshValueVar mints a value-type unification variable stamped with
// the given scope.
func (e *Engine) FreshValueVar(scope types.Scope) *types.UnificationVar {
	e.nextVar++
	v := &types.UnificationVar{ID: e.nextVar, InScope: scope}
	e.pendingValue[scope] = append(e.pendingValue[scope], v)
	e.trail = append(e.trail, trailEntry{kind: trailFreshValue, id: v.ID, scope: scope})
	return v
}

// FreshCaptureVar mints a capture unification variable stamped with
// the given scope.
func (e *Engine) FreshCaptureVar(scope types.Scope) *types.CaptureUnificationVar {
	e.nextVar++
	v := &types.CaptureUnificationVar{ID: e.nextVar}
	e.pendingCapture[scope] = append(e.pendingCapture[scope], v)
	e.trail = append(e.trail, trailEntry{kind: trailFreshCapture, id: v.ID, scope: scope})
	return v
}

// Mark is an opaque snapshot handle over the solver's trail, the
// counterpart of types.Mark on the typing context.
type Mark int

// Backup returns a mark Restore can roll the solver back to. O(1).
func (e *Engine) Backup() Mark { return Mark(len(e.trail)) }

// Restore unwinds every solution recorded and every variable minted
// since mark, replaying the trail in reverse. Scope entries/exits are
// not journaled: a trial is expected to leave every scope it entered
// before restoring, which checkBlockLit already guarantees.
func (e *Engine) Restore(mark Mark) {
	if int(mark) > len(e.trail) {
		panic(fmt.Sprintf("internal invariant violated: restore mark %d beyond trail length %d", mark, len(e.trail)))
	}
	for i := len(e.trail) - 1; i >= int(mark); i-- {
		t := e.trail[i]
		switch t.kind {
		case trailSolveValue:
			delete(e.valueSolved, t.id)
		case trailFreshValue:
			e.dropPendingValue(t.id, t.scope)
		case trailFreshCapture:
			e.dropPendingCapture(t.id, t.scope)
		}
	}
	e.trail = e.trail[:mark]
}

// dropPendingValue removes the variable with the given id from its
// scope's pending list; if LeaveScope already promoted it elsewhere,
// every list is scanned.
func (e *Engine) dropPendingValue(id uint64, scope types.Scope) {
	if e.removePendingValue(id, scope) {
		return
	}
	for s := range e.pendingValue {
		if e.removePendingValue(id, s) {
			return
		}
	}
}

func (e *Engine) removePendingValue(id uint64, scope types.Scope) bool {
	vs := e.pendingValue[scope]
	for i := len(vs) - 1; i >= 0; i-- {
		if vs[i].ID == id {
			e.pendingValue[scope] = append(vs[:i], vs[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) dropPendingCapture(id uint64, scope types.Scope) {
	if e.removePendingCapture(id, scope) {
		return
	}
	for s := range e.pendingCapture {
		if e.removePendingCapture(id, s) {
			return
		}
	}
}

func (e *Engine) removePendingCapture(id uint64, scope types.Scope) bool {
	vs := e.pendingCapture[scope]
	for i := len(vs) - 1; i >= 0; i-- {
		if vs[i].ID == id {
			e.pendingCapture[scope] = append(vs[:i], vs[i+1:]...)
			return true
		}
	}
	return false
}

// CurrentScope returns the innermost open scope.
func (e *Engine) CurrentScope() types.Scope {
	return e.stack[len(e.stack)-1]
}

func (e *Engine) depthOf(s types.Scope) int { return e.scopeInfo[s].depth }
