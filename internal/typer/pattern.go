package typer

import (
	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
)

// checkPattern implements §4.3 Patterns: it returns the bindings a
// pattern introduces against scrutineeType, without mutating the
// context itself (callers bind/restore around clause bodies).
// Arity mismatches are reported but do not abort — the caller still
// gets back whatever bindings could be salvaged.
func (t *Typer) checkPattern(scrutineeType types.ValueType, p ast.Pattern) (map[*ast.Symbol]types.ValueType, error) {
	switch p := p.(type) {
	case *ast.IgnorePattern:
		return map[*ast.Symbol]types.ValueType{}, nil

	case *ast.AnyPattern:
		return map[*ast.Symbol]types.ValueType{p.Symbol: scrutineeType}, nil

	case *ast.LiteralPattern:
		lt := literalType(p.Kind)
		if err := t.Eng.RequireEqual(scrutineeType, lt); err != nil {
			return nil, t.fail(p.Position(), diag.KindTypeMismatch, "pattern literal has type %s, scrutinee has %s", lt.String(), scrutineeType.String())
		}
		return map[*ast.Symbol]types.ValueType{}, nil

	case *ast.TagPattern:
		info, ok := t.ctors[p.Constructor]
		if !ok {
			return nil, t.fail(p.Position(), diag.KindResolution, "unknown constructor %q", p.Constructor.Name)
		}
		// Existentials on constructors are not permitted (§4.3); every
		// constructor's own type parameters come from its owning data
		// declaration, instantiated to rigid variables for this match.
		scope := newTparamScope(info.data.typeParams)
		args := make([]types.ValueType, len(info.data.typeParams))
		for i, tp := range info.data.typeParams {
			args[i] = scope[tp]
		}
		retType := types.ValueType(&types.Constructor{Symbol: info.data.symbol, Args: args})
		if err := t.Eng.RequireSubtype(scrutineeType, retType); err != nil {
			return nil, t.fail(p.Position(), diag.KindTypeMismatch, "constructor %q does not match scrutinee type %s: %v", p.Constructor.Name, scrutineeType.String(), err)
		}

		if len(p.Nested) != len(info.fields) {
			t.fail(p.Position(), diag.KindArity, "constructor %q expects %d field(s), pattern has %d", p.Constructor.Name, len(info.fields), len(p.Nested))
		}
		bindings := map[*ast.Symbol]types.ValueType{}
		n := len(p.Nested)
		if len(info.fields) < n {
			n = len(info.fields)
		}
		for i := 0; i < n; i++ {
			fieldType, err := t.resolveType(info.fields[i], scope)
			if err != nil {
				continue
			}
			sub, err := t.checkPattern(fieldType, p.Nested[i])
			if err != nil {
				continue
			}
			for sym, vt := range sub {
				bindings[sym] = vt
			}
		}
		return bindings, nil

	default:
		return nil, t.fail(p.Position(), diag.KindInternalInvariant, "unrecognized pattern node %T", p)
	}
}
