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

import "sort"

// UniqueKeep derives the surviving row indices when deduplicating by
// key, keeping either the first or the last row seen per distinct key
// (spec.md §4.4.3). The result is ascending by row index, so it can be
// used directly as a gather list without disturbing row order.
func UniqueKeep(keys Keys, keepLast bool, par bool) ([]int, error) {
	groups, err := GroupIndices(keys, par)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(groups.Order))
	for _, k := range groups.Order {
		rows := groups.Rows(k)
		if keepLast {
			out = append(out, rows[len(rows)-1])
		} else {
			out = append(out, rows[0])
		}
	}
	sort.Ints(out)
	return out, nil
}
