package unify

import "github.com/fabled/effectc/internal/types"

// Join returns a least upper bound of ts under the current constraint
// set (§4.2), used to combine the branches of an If/Match. Bottom
// (the type of a diverging branch) joins to whatever the other
// branches produce; otherwise every non-Bottom branch must unify to
// exactly the same type, since value-type constructors are invariant
// and this spec has no subtyping lattice beyond Bottom.
func (e *Engine) Join(ts []types.ValueType) (types.ValueType, error) {
	var result types.ValueType
	for _, t := range ts {
		dt := types.Dealias(e.Substitute(t))
		if _, isBottom := dt.(*types.Bottom); isBottom {
			continue
		}
		if result == nil {
			result = dt
			continue
		}
		if err := e.RequireEqual(result, dt); err != nil {
			return nil, err
		}
	}
	if result == nil {
		return &types.Bottom{}, nil
	}
	return e.Substitute(result), nil
}
