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

package relate

// IndexPairs is a join result expressed as parallel row-index slices:
// row i of the output draws its left-hand columns from Left[i] (or is
// absent, see Left's sentinel) and its right-hand columns from Right[i].
type IndexPairs struct {
	Left  []int
	Right []int
}

// NoMatch marks a join-side index with no matching row (an unmatched
// left or right row under an outer join).
const NoMatch = -1

// Join derives the row-index pairing for an equi-join between leftKeys
// and rightKeys (spec.md §4.4.2). outer selects between a left join and
// a full outer join; the right side is always grouped first since a
// key may match more than one row on either side.
//
// Left join (outer=false) produces exactly one output row per left row
// (spec.md §4.4.6: "write right's row index (or NONE) into an
// ArbArray<OptUsize> of left length"; spec.md §8: "left_join output
// length equals the left table length"): a left key matching several
// right rows takes the first matching right row, not every one of
// them, per spec.md §4.4.6's "(first-match tolerated)" and scenario 5.
//
// Outer join (outer=true) keeps the full cartesian expansion on each
// matched key (every right row matching a left key is paired with it,
// and vice versa) plus NoMatch padding for either side's unmatched
// rows. Its length is the sum over matched keys of (left rows × right
// rows) plus one row per unmatched row on either side; that equals the
// distinct-key count over both sides only when no key repeats within a
// side. Rows sharing a key are not collapsed into one.
func Join(leftKeys, rightKeys Keys, outer bool, par bool) (*IndexPairs, error) {
	if outer {
		return outerJoin(leftKeys, rightKeys, par)
	}
	return leftJoin(leftKeys, rightKeys, par)
}

// leftJoin keeps one output row per left row, taking the first matching
// right row (NoMatch if none).
func leftJoin(leftKeys, rightKeys Keys, par bool) (*IndexPairs, error) {
	rightGroups, err := GroupIndices(rightKeys, par)
	if err != nil {
		return nil, err
	}
	nLeft := leftKeys.Len()
	out := &IndexPairs{Left: make([]int, nLeft), Right: make([]int, nLeft)}
	for i := 0; i < nLeft; i++ {
		k, err := rowKey(leftKeys, i)
		if err != nil {
			return nil, err
		}
		rows := rightGroups.Rows(k)
		out.Left[i] = i
		if len(rows) == 0 {
			out.Right[i] = NoMatch
		} else {
			out.Right[i] = rows[0]
		}
	}
	return out, nil
}

// outerJoin expands every matched key's full left×right row pairing and
// pads unmatched rows from either side with NoMatch on the other.
func outerJoin(leftKeys, rightKeys Keys, par bool) (*IndexPairs, error) {
	rightGroups, err := GroupIndices(rightKeys, par)
	if err != nil {
		return nil, err
	}
	out := &IndexPairs{}
	matchedRight := make(map[string]bool, len(rightGroups.Order))

	nLeft := leftKeys.Len()
	for i := 0; i < nLeft; i++ {
		k, err := rowKey(leftKeys, i)
		if err != nil {
			return nil, err
		}
		rows := rightGroups.Rows(k)
		if len(rows) == 0 {
			out.Left = append(out.Left, i)
			out.Right = append(out.Right, NoMatch)
			continue
		}
		matchedRight[k] = true
		for _, rj := range rows {
			out.Left = append(out.Left, i)
			out.Right = append(out.Right, rj)
		}
	}

	for _, k := range rightGroups.Order {
		if matchedRight[k] {
			continue
		}
		for _, rj := range rightGroups.Rows(k) {
			out.Left = append(out.Left, NoMatch)
			out.Right = append(out.Right, rj)
		}
	}
	return out, nil
}
