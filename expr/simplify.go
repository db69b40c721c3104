// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package expr

import (
	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/payload"
)

// Cast appends a cast-to-target stage, collapsing the trivial cases
// spec.md §1 calls out as the one optimization worth doing ahead of
// evaluation ("simplifying nested no-op casts"):
//
//   - if e is already a resolved leaf carrying exactly target's tag, Cast
//     returns e itself rather than allocating a stage that would have
//     been an identity cast anyway (dynamic.ArrOk.Cast already special-
//     cases this at eval time; skipping it here additionally avoids the
//     allocation of the chain node).
//   - if e's most recent pending stage is itself a Cast to target, Cast
//     returns e unchanged instead of stacking a second redundant cast on
//     top, since repeating the same cast cannot change the result.
//
// Any other chain gets a genuine new Cast stage.
func (e *Expr) Cast(target dtype.Tag, unit dtype.Unit) *Expr {
	if same := trySkipCast(e, target); same != nil {
		return same
	}
	out := e.ChainF(func(d payload.Data, ctx Evaluator) (payload.Data, Evaluator, error) {
		casted, err := d.AsArr().Cast(target, unit)
		if err != nil {
			return payload.Data{}, ctx, err
		}
		return payload.FromArr(casted), ctx, nil
	}, RefFalse)
	t := target
	out.inner.castTag = &t
	return out
}

// trySkipCast reports whether appending a Cast(target) stage to e would
// be a provable no-op, returning e itself when so and nil otherwise.
func trySkipCast(e *Expr, target dtype.Tag) *Expr {
	inner := e.inner
	inner.mu.Lock()
	defer inner.mu.Unlock()
	if inner.step == 0 && inner.base.kind == baseIsData &&
		inner.base.data.Kind == payload.KArr && inner.base.data.Arr.Tag() == target {
		return e
	}
	if inner.castTag != nil && *inner.castTag == target {
		return e
	}
	return nil
}
