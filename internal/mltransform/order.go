package mltransform

import (
	"fmt"
	"sort"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/lifted"
)

// order implements §4.5.1: Let bindings are kept in source position;
// each maximal run of consecutive Def bindings between Lets is
// reordered into a Kahn-style topological order over its internal
// dependency graph (free variables intersected with that run's own
// definition ids). A run with no legal linear order (a cycle) is
// fatal; every symbol left unresolved when Kahn's algorithm stalls is
// reported together, mirroring the teacher's scc.go practice of
// collecting every function caught up in a call-graph cycle rather
// than naming just one.
func order(t *Transformer, defs []lifted.Definition) ([]lifted.Definition, error) {
	var out []lifted.Definition
	i := 0
	for i < len(defs) {
		if let, ok := defs[i].(*lifted.Let); ok {
			out = append(out, let)
			i++
			continue
		}
		j := i
		var run []*lifted.Def
		for j < len(defs) {
			d, ok := defs[j].(*lifted.Def)
			if !ok {
				break
			}
			run = append(run, d)
			j++
		}
		sorted, err := kahn(run)
		if err != nil {
			t.Diag.Report(&diag.Diagnostic{
				Kind:     diag.KindMutualRecursion,
				Severity: diag.SeverityError,
				Pos:      run[0].Block.Position(),
				Message:  err.Error(),
			})
			return nil, diag.Fail("mltransform.order", t.Diag)
		}
		for _, d := range sorted {
			out = append(out, d)
		}
		i = j
	}
	return out, nil
}

// kahn topologically sorts one run of mutually-visible Def bindings.
// Ties are broken by symbol id so the ordering is deterministic
// across runs with the same dependency shape.
func kahn(run []*lifted.Def) ([]*lifted.Def, error) {
	ids := make(map[*ast.Symbol]bool, len(run))
	for _, d := range run {
		ids[d.Symbol] = true
	}

	deps := make(map[*ast.Symbol][]*ast.Symbol, len(run))
	indegree := make(map[*ast.Symbol]int, len(run))
	bySymbol := make(map[*ast.Symbol]*lifted.Def, len(run))
	for _, d := range run {
		bySymbol[d.Symbol] = d
		free := freeVars(blockBody(d.Block))
		for dep := range free {
			if dep != d.Symbol && ids[dep] {
				deps[dep] = append(deps[dep], d.Symbol)
				indegree[d.Symbol]++
			}
		}
	}

	var ready []*ast.Symbol
	for _, d := range run {
		if indegree[d.Symbol] == 0 {
			ready = append(ready, d.Symbol)
		}
	}
	sort.Slice(ready, func(a, b int) bool { return ready[a].ID() < ready[b].ID() })

	var out []*lifted.Def
	for len(ready) > 0 {
		sym := ready[0]
		ready = ready[1:]
		out = append(out, bySymbol[sym])
		next := append([]*ast.Symbol{}, deps[sym]...)
		sort.Slice(next, func(a, b int) bool { return next[a].ID() < next[b].ID() })
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(out) == len(run) {
		return out, nil
	}

	var cycle []string
	for _, d := range run {
		if indegree[d.Symbol] > 0 {
			cycle = append(cycle, d.Symbol.Name)
		}
	}
	return nil, fmt.Errorf("mutual recursion unsupported among: %v", cycle)
}

// blockBody extracts the term a Def's block would run, for the
// purpose of free-variable scanning only; BlockLit is the only block
// shape a Def legitimately binds (a bare BlockVar/Member alias carries
// no body of its own to scan, so it contributes no internal edges).
func blockBody(b lifted.Block) lifted.Term {
	if lit, ok := b.(*lifted.BlockLit); ok {
		return lit.Body
	}
	return nil
}
