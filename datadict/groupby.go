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
	"sort"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/relate"
	"github.com/arborql/arbor/selector"
)

// Grouped is the result of DataDict.GroupBy: a set of row-index groups
// over d, in relate.GroupIndices' order (first-occurrence order when par
// is false) unless sort reorders them by first index (spec.md §4.4.4).
// Apply reduces every numeric non-key column per group.
type Grouped struct {
	d       *DataDict
	keyIdxs []int
	groups  *relate.Groups
	order   []string
}

// GroupBy partitions d's rows by the columns sel selects (spec.md
// §4.4): sort additionally orders the groups by first-occurrence row
// index instead of relate.GroupIndices' order; par opts into the
// hash-partitioned parallel index collection of relate.GroupIndices.
func (d *DataDict) GroupBy(sel selector.Selector, doSort bool, par bool) (*Grouped, error) {
	keyIdxs, err := resolveSelector(sel, d.names, d.byName)
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
	groups, err := relate.GroupIndices(keys, par)
	if err != nil {
		return nil, err
	}
	order := groups.Order
	if doSort {
		order = append([]string(nil), order...)
		sort.Slice(order, func(i, j int) bool {
			return groups.Rows(order[i])[0] < groups.Rows(order[j])[0]
		})
	}
	logger.Printf("dict %s: groupby over %v -> %d groups (par=%v)", d.id, keyIdxs, len(order), par)
	return &Grouped{d: d, keyIdxs: keyIdxs, groups: groups, order: order}, nil
}

// NGroups reports the number of distinct groups.
func (g *Grouped) NGroups() int { return len(g.order) }

// Apply reduces every numeric non-key column per group with reduceFn,
// producing a DataDict of one row per group: the key columns first (one
// representative value per group), followed by the reduced value
// columns (spec.md §4.4.5's "by vec-of-vec" aggregation strategy).
// Non-key columns with a non-numeric tag are left out of the result.
func (g *Grouped) Apply(reduceFn func([]float64) float64) (*DataDict, error) {
	n := g.NGroups()
	keySet := make(map[int]bool, len(g.keyIdxs))
	for _, idx := range g.keyIdxs {
		keySet[idx] = true
	}

	newCols := make([]*expr.Expr, 0, len(g.d.cols))
	newNames := make([]string, 0, len(g.d.cols))

	for _, idx := range g.keyIdxs {
		a, err := g.d.cols[idx].Arr(nil)
		if err != nil {
			return nil, err
		}
		out, err := gatherFirstPerGroup(a, g.groups, g.order)
		if err != nil {
			return nil, err
		}
		newCols = append(newCols, expr.FromArr(out))
		newNames = append(newNames, g.d.names[idx])
	}

	for i, c := range g.d.cols {
		if keySet[i] {
			continue
		}
		a, err := c.Arr(nil)
		if err != nil {
			return nil, err
		}
		if !isNumericTag(a.Tag()) {
			continue
		}
		f64, err := toFloat64Lane(a)
		if err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for gi, key := range g.order {
			rows := g.groups.Rows(key)
			win := make([]float64, len(rows))
			for j, r := range rows {
				win[j] = f64[r]
			}
			out[gi] = reduceFn(win)
		}
		newCols = append(newCols, expr.FromFloat64(out))
		newNames = append(newNames, g.d.names[i])
	}

	return New(newCols, newNames)
}

func gatherFirstPerGroup(a dynamic.ArrOk, groups *relate.Groups, order []string) (dynamic.ArrOk, error) {
	idxs := make([]int, len(order))
	for i, key := range order {
		idxs[i] = groups.Rows(key)[0]
	}
	return dynamic.Gather(a, idxs)
}

func toFloat64Lane(a dynamic.ArrOk) ([]float64, error) {
	casted, err := a.Cast(dtype.F64, dtype.Microsecond)
	if err != nil {
		return nil, err
	}
	return dynamic.Into[float64](casted).Lane1D(), nil
}
