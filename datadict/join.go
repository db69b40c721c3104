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
	"sort"

	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/relate"
	"github.com/arborql/arbor/selector"
)

// How selects a join kind (spec.md §4.4.6).
type How uint8

const (
	LeftJoin How = iota
	OuterJoin
)

// Join pairs d's rows (left) against other's rows (right) by
// leftOn/rightOn equi-key selectors, gathering every column from both
// sides into a single result (spec.md §6's "join(other, left_on,
// right_on, how)"). LeftJoin's output length equals d's row count.
// OuterJoin pairs every matching left and right row (see relate.Join),
// so its length equals the distinct-key count over both sides only when
// no key repeats within either side. sorted additionally orders the combined output by
// (left index, then right index), matching a sort=true outer join.
func (d *DataDict) Join(other *DataDict, leftOn, rightOn selector.Selector, how How, par bool, sorted bool) (*DataDict, error) {
	leftIdxs, err := resolveSelector(leftOn, d.names, d.byName)
	if err != nil {
		return nil, err
	}
	rightIdxs, err := resolveSelector(rightOn, other.names, other.byName)
	if err != nil {
		return nil, err
	}
	if len(leftIdxs) != len(rightIdxs) {
		return nil, fmt.Errorf("%w: left_on selects %d columns, right_on selects %d", arberr.ErrShapeMismatch, len(leftIdxs), len(rightIdxs))
	}

	leftKeys := make(relate.Keys, len(leftIdxs))
	for i, idx := range leftIdxs {
		a, err := d.cols[idx].Arr(nil)
		if err != nil {
			return nil, err
		}
		leftKeys[i] = a
	}
	rightKeys := make(relate.Keys, len(rightIdxs))
	for i, idx := range rightIdxs {
		a, err := other.cols[idx].Arr(nil)
		if err != nil {
			return nil, err
		}
		rightKeys[i] = a
	}

	pairs, err := relate.Join(leftKeys, rightKeys, how == OuterJoin, par)
	if err != nil {
		return nil, err
	}
	if sorted {
		sortPairs(pairs)
	}

	var newCols []*expr.Expr
	var newNames []string
	for i, c := range d.cols {
		a, err := c.Arr(nil)
		if err != nil {
			return nil, err
		}
		out, err := gatherJoinSide(a, pairs.Left)
		if err != nil {
			return nil, err
		}
		newCols = append(newCols, expr.FromArr(out))
		newNames = append(newNames, d.names[i])
	}
	for i, c := range other.cols {
		a, err := c.Arr(nil)
		if err != nil {
			return nil, err
		}
		out, err := gatherJoinSide(a, pairs.Right)
		if err != nil {
			return nil, err
		}
		newCols = append(newCols, expr.FromArr(out))
		newNames = append(newNames, uniqueJoinName(other.names[i], newNames))
	}

	logger.Printf("dict %s: join with %s (how=%d, rows=%d)", d.id, other.id, how, len(pairs.Left))
	return New(newCols, newNames)
}

// gatherJoinSide gathers a into the given row order, substituting the
// tag's canonical missing sentinel for any relate.NoMatch entry
// (spec.md §4.4.6: "gathered right values then become [...NaN] for
// float columns").
func gatherJoinSide(a dynamic.ArrOk, idxs []int) (dynamic.ArrOk, error) {
	for _, idx := range idxs {
		if idx == relate.NoMatch {
			return dynamic.GatherOpt(a, idxs)
		}
	}
	return dynamic.Gather(a, idxs)
}

func sortPairs(p *relate.IndexPairs) {
	n := len(p.Left)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		if p.Left[a] != p.Left[b] {
			return p.Left[a] < p.Left[b]
		}
		return p.Right[a] < p.Right[b]
	})
	newLeft := make([]int, n)
	newRight := make([]int, n)
	for i, j := range idx {
		newLeft[i] = p.Left[j]
		newRight[i] = p.Right[j]
	}
	p.Left, p.Right = newLeft, newRight
}

func uniqueJoinName(name string, existing []string) string {
	candidate := name
	for _, n := range existing {
		if n == candidate {
			candidate = name + "_right"
			break
		}
	}
	return candidate
}
