package mltransform

import (
	"fmt"
	"strings"

	"github.com/fabled/effectc/internal/types"
)

// renderType produces the pre-rendered target-type text §6's DataBind
// and CtorSig fields expect (e.g. DataBind.TypeParams, CtorSig.FieldType):
// a best-effort SML-style postfix type application ("'a list" rather
// than "list['a]"). The emitter never re-parses this text; it is
// spliced in verbatim, so this function owns the entire surface
// syntax for value types that survive into Target-ML.
func renderType(t types.ValueType) string {
	switch v := t.(type) {
	case *types.Builtin:
		return renderBuiltin(v.Kind)
	case *types.Var:
		return "'" + strings.ToLower(v.Symbol.Name)
	case *types.UnificationVar:
		return fmt.Sprintf("'u%d", v.ID)
	case *types.Constructor:
		if len(v.Args) == 0 {
			return strings.ToLower(v.Symbol.Name)
		}
		parts := make([]string, len(v.Args))
		for i, a := range v.Args {
			parts[i] = renderType(a)
		}
		if len(parts) == 1 {
			return fmt.Sprintf("%s %s", parts[0], strings.ToLower(v.Symbol.Name))
		}
		return fmt.Sprintf("(%s) %s", strings.Join(parts, ", "), strings.ToLower(v.Symbol.Name))
	case *types.Boxed:
		return functionTypeName
	case *types.TypeAlias:
		return renderType(types.Dealias(v))
	case *types.Bottom:
		return "'bottom"
	default:
		return "unit"
	}
}

// functionTypeName is the placeholder type text used for a Boxed
// value type occurring in a structural position (constructor field,
// object slot): a block is lowered to a plain target function at the
// expression level (§4.5.5), so its type-level shape is always "the
// uniform function type", never spelled out argument-by-argument,
// matching §4.5.2's remark that every object slot "shares one
// function-type shape since evidence-passing has already made each
// operation's signature uniform at this encoding's boundary".
const functionTypeName = "(unit -> unit)"

func renderBuiltin(k types.BuiltinKind) string {
	switch k {
	case types.Int:
		return "int"
	case types.Bool:
		return "bool"
	case types.Unit:
		return "unit"
	case types.Double:
		return "real"
	case types.String:
		return "string"
	default:
		return "unit"
	}
}

// renderTypeParams renders a data/record declaration's own type
// parameters into SML's "'a, 'b, ..." prefix list form.
func renderTypeParams(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "'" + strings.ToLower(n)
	}
	return out
}
