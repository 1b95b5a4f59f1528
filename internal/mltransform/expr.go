package mltransform

import (
	"fmt"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/cps"
	"github.com/fabled/effectc/internal/lifted"
	"github.com/fabled/effectc/internal/mlast"
)

// lowerAtom implements the atom half of §4.5.5: ValueVar/Literal
// lookup, and the Box/Unbox identities documented (and flagged
// unsound, §9) as pass-through at the target level.
func lowerAtom(t *Transformer, a lifted.Atom) mlast.Expr {
	switch n := a.(type) {
	case *lifted.Literal:
		return lowerLiteral(n.Kind, n.Value)
	case *lifted.VarRef:
		return &mlast.Variable{Name: n.Symbol.Name}
	case *lifted.PureApp:
		return lowerPureApp(t, n)
	case *lifted.Select:
		return &mlast.Call{
			Fn:   &mlast.Variable{Name: accessorName(n.Ctor, n.Index)},
			Args: []mlast.Expr{lowerAtom(t, n.Record)},
		}
	case *lifted.Boxed:
		return lowerBlock(t, n.Block)
	case *lifted.Unbox:
		return lowerAtom(t, n.Value)
	case *lifted.New:
		return lowerNew(t, n)
	default:
		panic(fmt.Sprintf("mltransform: unknown atom %T", a))
	}
}

// lowerPureApp implements §4.5.5's PureApp rule: a constructor
// application becomes Make over its (tupled-if-multiple) payload,
// with Data and Record constructors taking the same path; anything
// else is an ordinary pure call. No continuation is involved either
// way.
func lowerPureApp(t *Transformer, p *lifted.PureApp) mlast.Expr {
	args := make([]mlast.Expr, len(p.Args))
	for i, a := range p.Args {
		args[i] = lowerAtom(t, a)
	}
	if t.ctors[p.Fn] {
		return makeCtor(p.Fn, args)
	}
	return &mlast.Call{Fn: &mlast.Variable{Name: p.Fn.Name}, Args: args}
}

// makeCtor builds the Make for one constructor application: no
// payload when nullary, the bare argument when single-field (§8:
// "single-field constructors omit tupling"), a tuple otherwise.
func makeCtor(sym *ast.Symbol, args []mlast.Expr) mlast.Expr {
	name := mlast.NormalizeName(sym.Name)
	switch len(args) {
	case 0:
		return &mlast.Make{Ctor: name}
	case 1:
		return &mlast.Make{Ctor: name, Payload: args[0]}
	default:
		return &mlast.Make{Ctor: name, Payload: &mlast.Tuple{Elems: args}}
	}
}

// lowerLiteral renders a constant, using the target's unary-minus
// syntax for negative numerals per §8's boundary cases, and the
// runtime's boolean/unit sentinels (§6) rather than inventing
// constructors of our own.
func lowerLiteral(kind ast.LitKind, value any) mlast.Expr {
	switch kind {
	case ast.LitInt:
		return &mlast.RawValue{Text: renderInt(value)}
	case ast.LitDouble:
		return &mlast.RawValue{Text: renderFloat(value)}
	case ast.LitBool:
		if b, _ := value.(bool); b {
			return &mlast.Variable{Name: mlast.RuntimeTrueVal}
		}
		return &mlast.Variable{Name: mlast.RuntimeFalseVal}
	case ast.LitString:
		return &mlast.MLString{Value: fmt.Sprintf("%v", value)}
	case ast.LitUnit:
		return &mlast.Variable{Name: mlast.RuntimeUnitVal}
	default:
		return &mlast.Variable{Name: mlast.RuntimeUnitVal}
	}
}

func renderInt(v any) string {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case int32:
		n = int64(x)
	default:
		return fmt.Sprintf("%v", v)
	}
	if n < 0 {
		return fmt.Sprintf("~%d", -n)
	}
	return fmt.Sprintf("%d", n)
}

func renderFloat(v any) string {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return fmt.Sprintf("%v", v)
	}
	if f < 0 {
		return fmt.Sprintf("~%v", -f)
	}
	return fmt.Sprintf("%v", f)
}

// lowerNew implements §4.5.5's New(Implementation(iface, ops)) rule:
// the structural object encoding shared with §4.5.2's arity-indexed
// ObjectN datatype. Each operation clause lowers like a BlockLit
// taking its own value params plus (when the clause names one) a
// resume param, plus a trailing continuation.
func lowerNew(t *Transformer, n *lifted.New) mlast.Expr {
	arity := len(n.Impl.Clauses)
	elems := make([]mlast.Expr, arity)
	for i, c := range n.Impl.Clauses {
		elems[i] = lowerOpClause(t, c)
	}
	payload := mlast.Expr(&mlast.Tuple{Elems: elems})
	if arity == 1 {
		payload = elems[0]
	}
	return &mlast.Make{Ctor: t.Objects.TypeName(arity), Payload: payload}
}

func lowerOpClause(t *Transformer, c lifted.OpClauseImpl) mlast.Expr {
	params := make([]mlast.Param, 0, len(c.Params)+2)
	for _, p := range c.Params {
		params = append(params, mlast.Param{Named: p.Name})
	}
	if c.Resume != nil {
		params = append(params, mlast.Param{Named: c.Resume.Name})
	}
	kname := t.Gen.Fresh("k")
	params = append(params, mlast.Param{Named: kname})
	body := toMLExpr(t, c.Body)(cps.FromExpr(&mlast.Variable{Name: kname}))
	return &mlast.Lambda{Params: params, Body: body}
}

// lowerBlock implements the block half of §4.5.5: BlockVar lookup,
// BlockLit's continuation-appending lambda, and Member's positional
// accessor projection off the arity-shared object encoding (§4.5.2).
func lowerBlock(t *Transformer, b lifted.Block) mlast.Expr {
	switch n := b.(type) {
	case *lifted.BlockVar:
		return &mlast.Variable{Name: n.Symbol.Name}
	case *lifted.BlockLit:
		return lowerBlockLit(t, n)
	case *lifted.Member:
		return lowerMember(t, n)
	default:
		panic(fmt.Sprintf("mltransform: unknown block %T", b))
	}
}

func lowerBlockLit(t *Transformer, lit *lifted.BlockLit) *mlast.Lambda {
	params := make([]mlast.Param, 0, len(lit.Params)+1)
	for _, p := range lit.Params {
		params = append(params, mlast.Param{Named: p.Symbol.Name})
	}
	kname := t.Gen.Fresh("k")
	params = append(params, mlast.Param{Named: kname})
	body := toMLExpr(t, lit.Body)(cps.FromExpr(&mlast.Variable{Name: kname}))
	return &mlast.Lambda{Params: params, Body: body}
}

// lowerMember implements §4.5.2's "operations are looked up by
// position, not name": Member carries only the operation symbol, so
// the owning interface (and hence its arity and this operation's
// index within it) is recovered from the Transformer's registry built
// by RegisterInterface.
func lowerMember(t *Transformer, m *lifted.Member) mlast.Expr {
	ifaceSym, ok := t.opToIface[m.Op]
	if !ok {
		panic(fmt.Sprintf("mltransform: member %s references an unregistered interface operation", m.Op.Name))
	}
	arity := t.arity[ifaceSym]
	idx := t.opIndex[ifaceSym][m.Op]
	receiver := lowerAtom(t, m.Receiver)
	return &mlast.Call{Fn: &mlast.Variable{Name: t.Objects.FieldName(idx, arity)}, Args: []mlast.Expr{receiver}}
}
