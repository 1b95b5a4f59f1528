package mltransform

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/lifted"
)

// freeVars collects every value/block symbol term or block t
// references, used by order() to build the Def dependency graph of
// §4.5.1 ("free variables ∩ definition ids"). It is a syntactic
// over-approximation: a symbol bound inside t (e.g. a Val's binder)
// is not subtracted out, since the only thing order() cares about is
// whether t mentions one of the sibling Def ids at all, and sibling
// Def ids are never also bound locally inside another Def's body.
func freeVars(t lifted.Term) map[*ast.Symbol]bool {
	out := make(map[*ast.Symbol]bool)
	walkTerm(t, out)
	return out
}

func walkTerm(t lifted.Term, out map[*ast.Symbol]bool) {
	if t == nil {
		return
	}
	switch n := t.(type) {
	case *lifted.Return:
		walkAtom(n.Value, out)
	case *lifted.App:
		walkBlock(n.Block, out)
		for _, a := range n.Args {
			walkAtom(a, out)
		}
	case *lifted.If:
		walkAtom(n.Cond, out)
		walkTerm(n.Then, out)
		walkTerm(n.Else, out)
	case *lifted.Val:
		walkTerm(n.Bound, out)
		walkTerm(n.Body, out)
	case *lifted.Match:
		walkAtom(n.Scrutinee, out)
		for _, c := range n.Clauses {
			walkTerm(c.Body, out)
		}
		walkTerm(n.Default, out)
	case *lifted.Hole:
		// no references
	case *lifted.Scope:
		for _, d := range n.Definitions {
			walkDefinition(d, out)
		}
		walkTerm(n.Body, out)
	case *lifted.State:
		walkAtom(n.Init, out)
		walkTerm(n.Body, out)
	case *lifted.Try:
		walkTerm(n.Body, out)
		for _, h := range n.Handlers {
			for _, c := range h.Clauses {
				walkTerm(c.Body, out)
			}
		}
	case *lifted.Shift:
		walkBlock(n.BlockLit, out)
	case *lifted.Region:
		walkTerm(n.Body, out)
	case *lifted.Literal, *lifted.VarRef, *lifted.Boxed, *lifted.Unbox, *lifted.New,
		*lifted.PureApp, *lifted.Select:
		walkAtom(t.(lifted.Atom), out)
	}
}

func walkAtom(a lifted.Atom, out map[*ast.Symbol]bool) {
	if a == nil {
		return
	}
	switch n := a.(type) {
	case *lifted.Literal:
	case *lifted.VarRef:
		out[n.Symbol] = true
	case *lifted.PureApp:
		out[n.Fn] = true
		for _, arg := range n.Args {
			walkAtom(arg, out)
		}
	case *lifted.Select:
		walkAtom(n.Record, out)
	case *lifted.Boxed:
		walkBlock(n.Block, out)
	case *lifted.Unbox:
		walkAtom(n.Value, out)
	case *lifted.New:
		for _, c := range n.Impl.Clauses {
			walkTerm(c.Body, out)
		}
	}
}

func walkBlock(b lifted.Block, out map[*ast.Symbol]bool) {
	if b == nil {
		return
	}
	switch n := b.(type) {
	case *lifted.BlockVar:
		out[n.Symbol] = true
	case *lifted.BlockLit:
		walkTerm(n.Body, out)
	case *lifted.Member:
		walkAtom(n.Receiver, out)
	}
}

func walkDefinition(d lifted.Definition, out map[*ast.Symbol]bool) {
	switch n := d.(type) {
	case *lifted.Let:
		walkTerm(n.Value, out)
	case *lifted.Def:
		walkBlock(n.Block, out)
	}
}
