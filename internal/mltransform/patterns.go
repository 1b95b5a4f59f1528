package mltransform

import (
	"fmt"
	"strings"

	"github.com/fabled/effectc/internal/ast"
)

// lowerPattern renders a resolved-tree pattern into Target-ML pattern
// text (the pre-rendered string mlast.MatchClause.Pattern expects):
// IgnorePattern -> "_", AnyPattern -> its binder's name, LiteralPattern
// -> the literal's own text, TagPattern -> "Ctor(nested...)".
func lowerPattern(p ast.Pattern) string {
	switch n := p.(type) {
	case *ast.IgnorePattern:
		return "_"
	case *ast.AnyPattern:
		return n.Symbol.Name
	case *ast.LiteralPattern:
		return lowerLiteral(n.Kind, n.Value).String()
	case *ast.TagPattern:
		if len(n.Nested) == 0 {
			return n.Constructor.Name
		}
		parts := make([]string, len(n.Nested))
		for i, sub := range n.Nested {
			parts[i] = lowerPattern(sub)
		}
		return fmt.Sprintf("%s (%s)", n.Constructor.Name, strings.Join(parts, ", "))
	default:
		return "_"
	}
}
