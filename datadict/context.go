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

package datadict

import (
	"fmt"

	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/selector"
)

// Context is the namespace spec.md §3.6 describes: "A handle to a
// DataDict used as a namespace for selector-valued Exprs during
// evaluation." It implements expr.Evaluator without expr ever importing
// datadict, avoiding an import cycle.
type Context struct{ d *DataDict }

// AsContext wraps d for passing to Expr.Value/EvalInplace.
func (d *DataDict) AsContext() Context { return Context{d: d} }

// Lookup resolves sel against the wrapped dict, requiring it to name
// exactly one column — the contract a Context(selector)-based Expr
// relies on.
func (c Context) Lookup(sel selector.Selector) (*expr.Expr, error) {
	idxs, err := resolveSelector(sel, c.d.names, c.d.byName)
	if err != nil {
		return nil, err
	}
	if len(idxs) != 1 {
		return nil, fmt.Errorf("%w: selector must resolve to exactly one column inside a Context", arberr.ErrAmbiguousIndex)
	}
	return c.d.cols[idxs[0]], nil
}

var _ expr.Evaluator = Context{}
