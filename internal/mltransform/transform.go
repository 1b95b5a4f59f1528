// Package mltransform implements the ML Transformer of §4.5: it walks
// the Lifted IR (internal/lifted) and, using the CPS combinator layer
// (internal/cps), lowers it to a Target-ML Toplevel (internal/mlast).
//
// Grounded on the teacher's internal/elaborate package for the
// top-level shape of a tree-walking lowering pass operating over an
// already-typed IR (elaborate.go's per-declaration dispatch,
// scc.go's call-graph/cycle-detection idiom reused here for §4.5.1's
// mutual-recursion check) and on internal/iface.Iface's registry
// pattern for the arity-indexed interface cache (already adapted once
// in internal/mlast.ObjectCache; this package is the cache's caller).
package mltransform

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/cps"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
)

// Transformer carries the state threaded through one module's
// lowering: the name generator, the arity-indexed interface cache,
// and the map from an interface's own declared operations to their
// position (needed by §4.5.2's "looked up by position, not name").
type Transformer struct {
	Gen     *cps.Gen
	Objects *mlast.ObjectCache
	arity   map[*ast.Symbol]int                  // interface symbol -> operation count
	opIndex map[*ast.Symbol]map[*ast.Symbol]int  // interface symbol -> (op symbol -> position)
	opToIface map[*ast.Symbol]*ast.Symbol        // op symbol -> owning interface symbol
	ctors   map[*ast.Symbol]bool                 // data/record constructor symbols
	Diag    *diag.Buffer
}

// New returns a Transformer with fresh, empty caches.
func New() *Transformer {
	return &Transformer{
		Gen:       cps.NewGen(),
		Objects:   mlast.NewObjectCache(),
		arity:     make(map[*ast.Symbol]int),
		opIndex:   make(map[*ast.Symbol]map[*ast.Symbol]int),
		opToIface: make(map[*ast.Symbol]*ast.Symbol),
		ctors:     make(map[*ast.Symbol]bool),
		Diag:      diag.NewBuffer(),
	}
}

// RegisterInterface records iface's operation arity and positions so
// later Member/New lowering can address operations positionally
// rather than by name, per §4.5.2.
func (t *Transformer) RegisterInterface(iface *lifted.Interface) {
	idx := make(map[*ast.Symbol]int, len(iface.Ops))
	for i, op := range iface.Ops {
		idx[op.Symbol] = i
		t.opToIface[op.Symbol] = iface.Symbol
	}
	t.arity[iface.Symbol] = len(iface.Ops)
	t.opIndex[iface.Symbol] = idx
}

// TransformModule lowers a whole module into the downstream Toplevel
// contract: Decls (data/interface declarations, §4.5.2) are lowered
// first since record accessors and the arity-shared object family
// must already be registered before any Definition can reference
// them, then Definitions are Kahn-sorted (§4.5.1) and lowered in that
// order.
func TransformModule(t *Transformer, decls []lifted.Decl, defs []lifted.Definition, mainCall *ast.Symbol) (*mlast.Toplevel, error) {
	var bindings []mlast.Binding
	for _, d := range decls {
		bs, err := LowerDecl(t, d)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, bs...)
	}
	ordered, err := order(t, defs)
	if err != nil {
		return nil, err
	}
	for _, d := range ordered {
		bindings = append(bindings, lowerDefinition(t, d))
	}
	tl := &mlast.Toplevel{Bindings: bindings}
	if mainCall != nil {
		tl.MainCall = runMain(mainCall)
	}
	if err := diag.Fail("mltransform", t.Diag); err != nil {
		return nil, err
	}
	return tl, nil
}

// identityLambda is the "fn x => x" value §4.5.7's runMain(m) = m(id, id)
// applies the module's entry point to; it is inlined at each call site
// rather than named, since no runtime primitive of §6 supplies it.
func identityLambda() mlast.Expr {
	return &mlast.Lambda{Params: []mlast.Param{{Named: "x"}}, Body: &mlast.Variable{Name: "x"}}
}

// runMain implements §4.5.7: runMain(m) = m(id, id), applying the
// module's entry point to two identity continuations (the outer
// prompt and the outer continuation).
func runMain(main *ast.Symbol) mlast.Expr {
	return &mlast.Call{
		Fn:   &mlast.Variable{Name: main.Name},
		Args: []mlast.Expr{identityLambda(), identityLambda()},
	}
}
