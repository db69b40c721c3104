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

import "github.com/arborql/arbor/payload"

// chainBinary appends a stage that, once lhs's own chain has resolved,
// also forces rhs (captured by closure) and combines both payloads with
// f. rhs is kept reachable for as long as the returned node is, which
// is arbor's equivalent of an anchor for the second operand — Go's
// garbage collector does this for free via the closure capture, with no
// separate entry needed in the node's anchors list.
func (lhs *Expr) chainBinary(rhs *Expr, f func(l, r payload.Data) (payload.Data, error)) *Expr {
	return lhs.ChainF(func(l payload.Data, ctx Evaluator) (payload.Data, Evaluator, error) {
		r, err := rhs.Value(ctx)
		if err != nil {
			return payload.Data{}, ctx, err
		}
		out, err := f(l, r)
		if err != nil {
			return payload.Data{}, ctx, err
		}
		return out, ctx, nil
	}, RefFalse)
}
