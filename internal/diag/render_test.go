package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fabled/effectc/internal/ast"
)

func TestRenderAllPrintsOkForAnEmptyBuffer(t *testing.T) {
	var buf bytes.Buffer
	RenderAll(&buf, NewBuffer())
	assert.Contains(t, buf.String(), "ok")
}

func TestRenderAllPrintsEachDiagnosticsMessage(t *testing.T) {
	b := NewBuffer()
	b.Reportf(KindTypeMismatch, SeverityError, ast.Pos{Line: 3, Column: 5}, "expected int, got bool")
	var buf bytes.Buffer
	RenderAll(&buf, b)
	assert.Contains(t, buf.String(), "expected int, got bool")
	assert.Contains(t, buf.String(), "error")
}
