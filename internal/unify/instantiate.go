package unify

import (
	"fmt"

	"github.com/fabled/effectc/internal/types"
)

// Instantiate replaces fn's type parameters with fresh unification
// variables (or with targs, if supplied) and its capture parameters
// with fresh capture variables, all stamped with scope. It returns
// the type arguments used, the capture arguments used, and the
// resulting concrete function type (§4.2).
func (e *Engine) Instantiate(fn *types.FunctionType, scope types.Scope, targs []types.ValueType) ([]types.ValueType, []types.Capture, *types.FunctionType, error) {
	if targs != nil && len(targs) != len(fn.TypeParams) {
		return nil, nil, nil, fmt.Errorf("type-argument count %d does not match type-parameter count %d", len(targs), len(fn.TypeParams))
	}

	ts := tsubst{}
	typeArgs := make([]types.ValueType, len(fn.TypeParams))
	for i, p := range fn.TypeParams {
		var arg types.ValueType
		if targs != nil {
			arg = targs[i]
		} else {
			arg = e.FreshValueVar(scope)
		}
		ts[p] = arg
		typeArgs[i] = arg
	}

	captureArgs := make([]types.Capture, len(fn.CaptureParams))
	for i := range fn.CaptureParams {
		captureArgs[i] = e.FreshCaptureVar(scope)
	}

	concrete := substituteFunctionTypeValues(fn, ts)
	return typeArgs, captureArgs, concrete, nil
}
