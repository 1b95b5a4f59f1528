package lifted

import (
	"fmt"
	"strings"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/types"
)

// Block is anything occupying block position in the Lifted IR: a
// reference to a block symbol, a literal, or a member projection off
// a capability value.
type Block interface {
	Position() ast.Pos
	String() string
	blockNode()
}

type blockBase struct{ Pos ast.Pos }

func (b blockBase) Position() ast.Pos { return b.Pos }

// BlockVar references a previously bound block (a top-level function,
// a Def, or a handler operation symbol).
type BlockVar struct {
	blockBase
	Symbol *ast.Symbol
}

func (*BlockVar) blockNode()      {}
func (b *BlockVar) String() string { return b.Symbol.Name }

// BlockParam names one formal parameter of a BlockLit along with its
// solved type, needed by the ML transformer to materialize a target
// lambda parameter.
type BlockParam struct {
	Symbol *ast.Symbol
	Type   types.ValueType
}

// BlockLit is a literal function/handler-operation-backing block.
type BlockLit struct {
	blockBase
	TypeParams []*ast.Symbol
	Params     []BlockParam
	Body       Term
}

func (*BlockLit) blockNode() {}
func (b *BlockLit) String() string {
	names := make([]string, len(b.Params))
	for i, p := range b.Params {
		names[i] = p.Symbol.Name
	}
	return fmt.Sprintf("λ(%s). %s", strings.Join(names, ", "), b.Body)
}

// Member projects operation Op off a capability-typed Receiver, typed
// as Tpe (the operation's instantiated function type at this
// occurrence).
type Member struct {
	blockBase
	Receiver Atom
	Op       *ast.Symbol
	Tpe      *types.FunctionType
}

func (*Member) blockNode() {}
func (m *Member) String() string { return fmt.Sprintf("%s.%s", m.Receiver, m.Op.Name) }
