package types

import (
	"fmt"
	"strings"

	"github.com/fabled/effectc/internal/ast"
)

// BlockType is the interface for the two block-type variants of §3:
// Function and Interface (a capability type).
type BlockType interface {
	String() string
	blockType()
}

// FunctionType is the type of a (second-class) function or handler
// block: type parameters, capture parameters, value parameters, block
// parameters, a result, and a concrete effect set.
type FunctionType struct {
	TypeParams    []*ast.Symbol
	CaptureParams []*ast.Symbol
	ValueParams   []ValueType
	BlockParams   []BlockType
	Result        ValueType
	Effects       *Effects
}

func (*FunctionType) blockType() {}
func (f *FunctionType) String() string {
	var tparams string
	if len(f.TypeParams) > 0 {
		names := make([]string, len(f.TypeParams))
		for i, p := range f.TypeParams {
			names[i] = p.Name
		}
		tparams = fmt.Sprintf("[%s]", strings.Join(names, ", "))
	}
	vparams := make([]string, len(f.ValueParams))
	for i, p := range f.ValueParams {
		vparams[i] = p.String()
	}
	bparams := make([]string, len(f.BlockParams))
	for i, p := range f.BlockParams {
		bparams[i] = "{" + p.String() + "}"
	}
	params := append(append([]string{}, vparams...), bparams...)
	effStr := ""
	if f.Effects != nil && !f.Effects.Empty() {
		effStr = " / " + f.Effects.String()
	}
	return fmt.Sprintf("%s(%s) => %s%s", tparams, strings.Join(params, ", "), f.Result.String(), effStr)
}

// Interface is a capability (effect) type applied to arguments.
type Interface struct {
	Symbol *ast.Symbol
	Args   []ValueType
}

func (*Interface) blockType() {}
func (i *Interface) String() string {
	if len(i.Args) == 0 {
		return i.Symbol.Name
	}
	parts := make([]string, len(i.Args))
	for j, a := range i.Args {
		parts[j] = a.String()
	}
	return fmt.Sprintf("%s[%s]", i.Symbol.Name, strings.Join(parts, ", "))
}
