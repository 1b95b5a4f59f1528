package typer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fabled/effectc/internal/ast"
	"github.com/fabled/effectc/internal/diag"
	"github.com/fabled/effectc/internal/types"
)

// checkCall dispatches a Call node to either overload resolution
// (identifier-headed target) or direct application of a boxed
// function value (expression-headed target), per §4.3 "Calls".
// expected, when non-nil, is unified against the callee's return type
// inside checkCallTo so that it constrains inference and candidate
// selection, not just the committed result.
func (t *Typer) checkCall(c *ast.Call, expected *types.ValueType) (Result, error) {
	if c.Target.Expr != nil {
		res, err := t.checkExpr(c.Target.Expr, nil)
		if err != nil {
			return Result{}, err
		}
		boxed, ok := types.Dealias(res.Type).(*types.Boxed)
		if !ok {
			return Result{}, t.fail(c.Position(), diag.KindTypeMismatch, "call target must be a boxed function value, found %s", res.Type.String())
		}
		callR, err := t.checkCallTo(boxed.Block, c, expected)
		if err != nil {
			return Result{}, err
		}
		callR.Effects = callR.Effects.Union(res.Effects)
		return callR, nil
	}
	return t.resolveOverload(c, expected)
}

// resolveOverload implements §4.3.1: layered candidate sets, trying
// each layer in full before falling through to the next. Candidates
// within a layer are tried in symbol-identity order (§5 determinism),
// each under a snapshot of the typing context, the unification
// engine, and a local diagnostic buffer, and rolled back whether the
// trial succeeded or failed — so no candidate ever sees another's
// residue. A layer's unique winner is then re-checked once against
// the clean state to commit its bindings, solutions, and diagnostics.
func (t *Typer) resolveOverload(c *ast.Call, expected *types.ValueType) (Result, error) {
	var lastFailures []error
	var lastCandidates []*ast.Symbol

	for _, layer := range c.Target.IDLayers {
		cands := append([]*ast.Symbol{}, layer...)
		sort.Slice(cands, func(i, j int) bool { return cands[i].ID() < cands[j].ID() })

		ctxMark := t.Ctx.Backup()
		engMark := t.Eng.Backup()

		var winners []*ast.Symbol
		var winnerTypes []string
		var failures []error
		var failedSyms []*ast.Symbol

		for _, sym := range cands {
			fn, ok := t.Ctx.LookupFunctionType(sym)
			if !ok {
				failures = append(failures, fmt.Errorf("%q has no function type yet", sym.Name))
				failedSyms = append(failedSyms, sym)
				continue
			}
			committed := t.Diag
			t.Diag = diag.NewBuffer()

			_, err := t.checkCallTo(fn, c, expected)

			localDiag := t.Diag
			t.Diag = committed
			t.Ctx.Restore(ctxMark)
			t.Eng.Restore(engMark)

			if err != nil || localDiag.HasErrors() {
				if err == nil {
					err = fmt.Errorf("candidate %q failed typechecking", sym.Name)
				}
				failures = append(failures, err)
				failedSyms = append(failedSyms, sym)
				continue
			}
			winners = append(winners, sym)
			winnerTypes = append(winnerTypes, fn.String())
		}

		if len(winners) == 1 {
			sym := winners[0]
			fn, _ := t.Ctx.LookupFunctionType(sym)
			res, err := t.checkCallTo(fn, c, expected)
			if err != nil {
				return Result{}, err
			}
			c.Resolved = sym
			return res, nil
		}
		if len(winners) > 1 {
			parts := make([]string, len(winners))
			for i, sym := range winners {
				parts[i] = fmt.Sprintf("%s: %s", sym.Name, winnerTypes[i])
			}
			return Result{}, t.fail(c.Position(), diag.KindAmbiguous, "ambiguous reference: candidates %s all typecheck", strings.Join(parts, "; "))
		}

		lastFailures = failures
		lastCandidates = failedSyms
	}

	if len(lastFailures) == 1 {
		return Result{}, t.fail(c.Position(), diag.KindResolution, "%v", lastFailures[0])
	}
	if len(lastFailures) > 1 {
		var b strings.Builder
		for i, f := range lastFailures {
			fmt.Fprintf(&b, "possible overload %s: %v; ", lastCandidates[i].Name, f)
		}
		return Result{}, t.fail(c.Position(), diag.KindResolution, "no overload of this call typechecks: %s", b.String())
	}
	return Result{}, t.fail(c.Position(), diag.KindResolution, "call target has no candidates")
}

// checkCallTo instantiates fn, unifies the call's explicit type
// arguments (if any) into the fresh metavariables and the expected
// return type (if provided) against the instantiated result, then
// checks value and block arguments against the partly-solved
// parameter types, accumulating effects, and finally adds fn's own.
// The inferred type-argument list is annotated on the call node via
// the Typer's side table (TypeArgsAt).
func (t *Typer) checkCallTo(fn *types.FunctionType, c *ast.Call, expected *types.ValueType) (Result, error) {
	scope := t.Eng.CurrentScope()

	var explicitArgs []types.ValueType
	if len(c.TypeArgs) > 0 {
		if len(c.TypeArgs) != len(fn.TypeParams) {
			return Result{}, t.fail(c.Position(), diag.KindArity, "expected %d type argument(s), found %d", len(fn.TypeParams), len(c.TypeArgs))
		}
		explicitArgs = make([]types.ValueType, len(c.TypeArgs))
		for i, ref := range c.TypeArgs {
			vt, err := t.resolveType(ref, tparamScope{})
			if err != nil {
				return Result{}, err
			}
			explicitArgs[i] = vt
		}
	}

	typeArgs, _, concrete, err := t.Eng.Instantiate(fn, scope, explicitArgs)
	if err != nil {
		return Result{}, t.fail(c.Position(), diag.KindArity, "%v", err)
	}

	if expected != nil {
		if err := t.Eng.RequireSubtype(concrete.Result, *expected); err != nil {
			return Result{}, t.fail(c.Position(), diag.KindTypeMismatch, "call result %s does not match expected %s: %v", concrete.Result.String(), (*expected).String(), err)
		}
	}

	if len(c.ValueArgs) != len(concrete.ValueParams) {
		return Result{}, t.fail(c.Position(), diag.KindArity, "expected %d value argument(s), found %d", len(concrete.ValueParams), len(c.ValueArgs))
	}
	eff := types.EmptyEffects()
	for i, arg := range c.ValueArgs {
		expectedParam := concrete.ValueParams[i]
		res, err := t.checkExpr(arg, &expectedParam)
		if err != nil {
			return Result{}, err
		}
		eff = eff.Union(res.Effects)
	}

	if len(c.BlockArgs) != len(concrete.BlockParams) {
		return Result{}, t.fail(c.Position(), diag.KindArity, "expected %d block argument(s), found %d", len(concrete.BlockParams), len(c.BlockArgs))
	}
	for i, barg := range c.BlockArgs {
		argFn, _, err := t.checkBlock(barg)
		if err != nil {
			return Result{}, err
		}
		expectedFn, ok := concrete.BlockParams[i].(*types.FunctionType)
		if !ok {
			continue
		}
		if err := t.Eng.RequireSubtype(&types.Boxed{Block: argFn}, &types.Boxed{Block: expectedFn}); err != nil {
			return Result{}, t.fail(barg.Position(), diag.KindTypeMismatch, "block argument %d: %v", i, err)
		}
	}

	solved := make([]types.ValueType, len(typeArgs))
	for i, a := range typeArgs {
		solved[i] = t.Eng.Substitute(a)
	}
	t.callTArgs[c] = solved

	result := t.Eng.Substitute(concrete.Result)
	eff = eff.Union(t.Eng.SubstituteEffects(concrete.Effects))
	return Result{Type: result, Effects: eff}, nil
}
