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
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/payload"
)

// CloneOwned evaluates e against ctx and returns a brand new leaf Expr
// wrapping an independently owned copy of the result: unlike Clone
// (which shares the underlying node so two handles alias one cached
// value), CloneOwned severs that sharing, so mutating code downstream of
// the copy can never observe or be observed by the original (spec.md
// §3.4's owned tri-state: the result is unconditionally OwnedTrue).
func CloneOwned(e *Expr, ctx Evaluator) (*Expr, error) {
	d, err := e.Value(ctx)
	if err != nil {
		return nil, err
	}
	return FromData(ownedCopy(d)), nil
}

func ownedCopy(d payload.Data) payload.Data {
	switch d.Kind {
	case payload.KArr:
		return payload.FromArr(d.Arr.ToOwned())
	case payload.KArrVec:
		out := make([]dynamic.ArrOk, len(d.ArrVec))
		for i, a := range d.ArrVec {
			out[i] = a.ToOwned()
		}
		return payload.FromArrVec(out)
	case payload.KArcArr:
		owned := d.ArcArr.ToOwned()
		return payload.FromArr(owned)
	default:
		return d
	}
}
