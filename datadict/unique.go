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
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/relate"
	"github.com/arborql/arbor/selector"
)

// Unique drops duplicate rows by the columns subset selects, keeping
// either the first or last occurrence per distinct key
// (spec.md §4.4.7). An empty subset (selector.NewAll()) dedups on every
// column.
func (d *DataDict) Unique(subset selector.Selector, keepLast bool, par bool) (*DataDict, error) {
	keyIdxs, err := resolveSelector(subset, d.names, d.byName)
	if err != nil {
		return nil, err
	}
	keys := make(relate.Keys, len(keyIdxs))
	for i, idx := range keyIdxs {
		a, err := d.cols[idx].Arr(nil)
		if err != nil {
			return nil, err
		}
		keys[i] = a
	}
	rows, err := relate.UniqueKeep(keys, keepLast, par)
	if err != nil {
		return nil, err
	}
	return gatherRows(d, rows)
}

// gatherRows builds a new DataDict selecting rows (in the given order)
// from every column of d.
func gatherRows(d *DataDict, rows []int) (*DataDict, error) {
	newCols := make([]*expr.Expr, len(d.cols))
	for i, c := range d.cols {
		a, err := c.Arr(nil)
		if err != nil {
			return nil, err
		}
		out, err := dynamic.Gather(a, rows)
		if err != nil {
			return nil, err
		}
		newCols[i] = expr.FromArr(out)
	}
	return New(newCols, append([]string(nil), d.names...))
}
